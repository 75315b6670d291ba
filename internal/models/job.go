package models

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusAccepted   JobStatus = "accepted"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

type Job struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	BudgetMin      float64   `json:"budget_min"`
	BudgetMax      float64   `json:"budget_max"`
	BudgetDisplay  string    `json:"budget_display,omitempty"`
	Location       string    `json:"location"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Pincode        string    `json:"pincode"`
	Urgency        Urgency   `json:"urgency"`
	Status         JobStatus `json:"status"`
	Customer       int       `json:"customer"`
	CustomerName   string    `json:"customer_name"`
	ResponsesCount int       `json:"responses_count"`
	CreatedAt      string    `json:"created_at"`
	UpdatedAt      string    `json:"updated_at"`
}

type CreateJobData struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	BudgetMin   float64 `json:"budget_min"`
	BudgetMax   float64 `json:"budget_max"`
	Location    string  `json:"location"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Pincode     string  `json:"pincode"`
	Urgency     Urgency `json:"urgency"`
}

// UpdateJobData carries partial-patch fields; nil means "leave unchanged".
type UpdateJobData struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	BudgetMin   *float64 `json:"budget_min,omitempty"`
	BudgetMax   *float64 `json:"budget_max,omitempty"`
	Location    *string  `json:"location,omitempty"`
	City        *string  `json:"city,omitempty"`
	State       *string  `json:"state,omitempty"`
	Pincode     *string  `json:"pincode,omitempty"`
	Urgency     *Urgency `json:"urgency,omitempty"`
}

// JobFilters narrows job list queries. Zero values are omitted from the
// query string.
type JobFilters struct {
	Category string
	City     string
	Urgency  string
	Status   string
	Customer int
}
