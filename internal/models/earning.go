package models

type TransactionType string

const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeRefund  TransactionType = "refund"
	TransactionTypeBonus   TransactionType = "bonus"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is a financial record created upstream when an assignment
// completes; the portal only displays it and triggers its creation.
type Transaction struct {
	ID                 int               `json:"id"`
	TransactionID      string            `json:"transaction_id"`
	Assignment         int               `json:"assignment"`
	AssignmentJobTitle string            `json:"assignment_job_title"`
	Worker             int               `json:"worker"`
	WorkerName         string            `json:"worker_name"`
	Customer           int               `json:"customer"`
	CustomerName       string            `json:"customer_name"`
	TransactionType    TransactionType   `json:"transaction_type"`
	Amount             Amount            `json:"amount"`
	PlatformFee        Amount            `json:"platform_fee"`
	NetAmount          Amount            `json:"net_amount"`
	PaymentMethod      string            `json:"payment_method"`
	Status             TransactionStatus `json:"status"`
	Description        string            `json:"description"`
	ProcessedAt        *string           `json:"processed_at"`
	CreatedAt          string            `json:"created_at"`
	UpdatedAt          string            `json:"updated_at"`
}

type Earning struct {
	ID               int     `json:"id"`
	Worker           int     `json:"worker"`
	WorkerName       string  `json:"worker_name"`
	Transaction      int     `json:"transaction"`
	TransactionID    string  `json:"transaction_id"`
	GrossAmount      Amount  `json:"gross_amount"`
	PlatformFee      Amount  `json:"platform_fee"`
	NetAmount        Amount  `json:"net_amount"`
	TaxDeducted      Amount  `json:"tax_deducted"`
	BonusAmount      Amount  `json:"bonus_amount"`
	FinalAmount      Amount  `json:"final_amount"`
	JobCategory      string  `json:"job_category"`
	JobDurationHours float64 `json:"job_duration_hours"`
	CustomerRating   *int    `json:"customer_rating"`
	EarnedAt         string  `json:"earned_at"`
}

type MonthlyEarning struct {
	Month     string  `json:"month"`
	MonthName string  `json:"month_name"`
	Amount    float64 `json:"amount"`
}

type EarningsSummary struct {
	TotalEarnings          Amount           `json:"total_earnings"`
	GrossTotalEarnings     Amount           `json:"gross_total_earnings"`
	ThisMonthEarnings      Amount           `json:"this_month_earnings"`
	ThisMonthGrossEarnings Amount           `json:"this_month_gross_earnings"`
	PendingAmount          Amount           `json:"pending_amount"`
	CompletedJobs          int              `json:"completed_jobs"`
	AverageRating          Amount           `json:"average_rating"`
	RecentTransactions     []Transaction    `json:"recent_transactions"`
	MonthlyEarnings        []MonthlyEarning `json:"monthly_earnings"`
}
