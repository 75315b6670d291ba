package models

type ResponseType string

const (
	ResponseTypeAccept ResponseType = "accept"
	ResponseTypeQuote  ResponseType = "quote"
)

type ResponseStatus string

const (
	ResponseStatusPending   ResponseStatus = "pending"
	ResponseStatusAccepted  ResponseStatus = "accepted"
	ResponseStatusRejected  ResponseStatus = "rejected"
	ResponseStatusWithdrawn ResponseStatus = "withdrawn"
)

// JobResponse is a worker's accept-or-quote reply to an open job. At most
// one response per job is accepted; that is enforced upstream.
type JobResponse struct {
	ID                      int            `json:"id"`
	Job                     int            `json:"job"`
	JobTitle                string         `json:"job_title"`
	Worker                  int            `json:"worker"`
	WorkerName              string         `json:"worker_name"`
	WorkerEmail             string         `json:"worker_email"`
	ResponseType            ResponseType   `json:"response_type"`
	QuoteAmount             *Amount        `json:"quote_amount,omitempty"`
	AmountDisplay           string         `json:"amount_display,omitempty"`
	Message                 string         `json:"message,omitempty"`
	Status                  ResponseStatus `json:"status"`
	EstimatedCompletionTime *int           `json:"estimated_completion_time,omitempty"`
	CreatedAt               string         `json:"created_at"`
	UpdatedAt               string         `json:"updated_at"`
}

type CreateJobResponseData struct {
	ResponseType ResponseType `json:"response_type"`
	QuoteAmount  *float64     `json:"quote_amount,omitempty"`
	Message      string       `json:"message,omitempty"`
}

type UpdateJobResponseData struct {
	ResponseType *ResponseType `json:"response_type,omitempty"`
	QuoteAmount  *float64      `json:"quote_amount,omitempty"`
	Message      *string       `json:"message,omitempty"`
}
