package models

type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeWorker   UserType = "worker"
)

type User struct {
	ID          int      `json:"id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	UserType    UserType `json:"user_type,omitempty"`
	IsVerified  bool     `json:"is_verified"`
	DateJoined  string   `json:"date_joined"`
}

// AuthTokens is the access/refresh pair issued by the KaamKaro API.
// The pair is replaced wholesale on refresh and cleared on logout.
type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (t AuthTokens) Empty() bool {
	return t.Access == "" && t.Refresh == ""
}

type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterData struct {
	Email           string   `json:"email"`
	Username        string   `json:"username"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	PhoneNumber     string   `json:"phone_number,omitempty"`
	UserType        UserType `json:"user_type"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"password_confirm"`
}

type AuthResponse struct {
	Message string     `json:"message"`
	User    User       `json:"user"`
	Tokens  AuthTokens `json:"tokens"`
}
