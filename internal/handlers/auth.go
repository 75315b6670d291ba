package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/middleware"
	"github.com/kaamkaro/portal/internal/models"
	"github.com/kaamkaro/portal/internal/session"
	"github.com/kaamkaro/portal/internal/utils"
)

type AuthHandler struct {
	Deps
	Sessions  *session.Manager
	JWTSecret string
	Expires   int
}

func NewAuthHandler(deps Deps, sessions *session.Manager, jwtSecret string, expiresMin int) *AuthHandler {
	return &AuthHandler{Deps: deps, Sessions: sessions, JWTSecret: jwtSecret, Expires: expiresMin}
}

type registerReq struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	UserType        string `json:"user_type"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	userType := models.UserType(strings.ToLower(strings.TrimSpace(req.UserType)))

	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "Email is required")
	} else if !strings.Contains(email, "@") {
		errs.Add("email", "Enter a valid email address")
	}
	if username == "" {
		errs.Add("username", "Username is required")
	}
	if req.Password == "" {
		errs.Add("password", "Password is required")
	}
	if req.Password != req.PasswordConfirm {
		errs.Add("password_confirm", "Passwords do not match")
	}
	if userType != models.UserTypeCustomer && userType != models.UserTypeWorker {
		errs.Add("user_type", "User type must be customer or worker")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	sess, err := h.Sessions.Register(c.UserContext(), models.RegisterData{
		Email:           email,
		Username:        username,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
		UserType:        userType,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return fail(c, err)
	}

	if err := h.setCookie(c, sess); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful",
		"data":    fiber.Map{"user": sess.User},
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	errs := FieldErrors{}
	if email == "" {
		errs.Add("email", "Email is required")
	}
	if req.Password == "" {
		errs.Add("password", "Password is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	sess, err := h.Sessions.Login(c.UserContext(), models.LoginCredentials{
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		return fail(c, err)
	}

	if err := h.setCookie(c, sess); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"data":    fiber.Map{"user": sess.User},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if _, sess := h.handle(c); sess != nil {
		h.Sessions.Logout(c.UserContext(), sess)
		h.Cache.DropSession(sess.ID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"success": true, "message": "Logout successful"})
}

// Me returns the cached identity and refreshes the profile upstream.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	_, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}

	refreshed, err := h.Sessions.Refresh(c.UserContext(), sess)
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, fiber.Map{
		"user":    refreshed.User,
		"profile": refreshed.Profile,
	})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, sess *session.Session) error {
	token, err := utils.SignSessionJWT(h.JWTSecret, sess.ID, sess.User.ID, string(sess.User.UserType), h.Expires)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
	return nil
}
