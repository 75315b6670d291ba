package models

type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusStarted   AssignmentStatus = "started"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// CanTransition reports whether an assignment may move from s to next.
// Status only moves forward (assigned -> started -> completed); cancellation
// is allowed from assigned or started. Completed and cancelled are terminal.
func (s AssignmentStatus) CanTransition(next AssignmentStatus) bool {
	switch s {
	case AssignmentStatusAssigned:
		return next == AssignmentStatusStarted || next == AssignmentStatusCancelled
	case AssignmentStatusStarted:
		return next == AssignmentStatusCompleted || next == AssignmentStatusCancelled
	default:
		return false
	}
}

// Assignment binds a worker to a job once a response is accepted; it is
// created 1:1 with that acceptance event and tracks execution status.
type Assignment struct {
	ID                 int              `json:"id"`
	Job                int              `json:"job"`
	JobTitle           string           `json:"job_title"`
	Worker             int              `json:"worker"`
	WorkerName         string           `json:"worker_name"`
	WorkerEmail        string           `json:"worker_email"`
	Customer           int              `json:"customer"`
	CustomerName       string           `json:"customer_name"`
	JobResponse        int              `json:"job_response"`
	AgreedAmount       Amount           `json:"agreed_amount"`
	Status             AssignmentStatus `json:"status"`
	AssignedAt         string           `json:"assigned_at"`
	StartedAt          string           `json:"started_at,omitempty"`
	CompletedAt        string           `json:"completed_at,omitempty"`
	CancelledAt        string           `json:"cancelled_at,omitempty"`
	CancellationReason string           `json:"cancellation_reason,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	DurationHours      string           `json:"duration_hours,omitempty"`
}

// UpdateAssignmentData is a partial patch for an assignment; the portal only
// ever moves status forward and stamps the matching timestamp.
type UpdateAssignmentData struct {
	Status             *AssignmentStatus `json:"status,omitempty"`
	StartedAt          *string           `json:"started_at,omitempty"`
	CompletedAt        *string           `json:"completed_at,omitempty"`
	CancelledAt        *string           `json:"cancelled_at,omitempty"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
}

type AssignmentFilters struct {
	Customer int
	Worker   int
	Status   string
}
