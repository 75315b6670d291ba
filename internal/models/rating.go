package models

type RatingType string

const (
	RatingCustomerToWorker RatingType = "customer_to_worker"
	RatingWorkerToCustomer RatingType = "worker_to_customer"
)

// Rating is directional post-completion feedback on an assignment. Exactly
// one rating per (assignment, rater) direction is expected upstream.
type Rating struct {
	ID                    int        `json:"id"`
	Assignment            int        `json:"assignment"`
	AssignmentJobTitle    string     `json:"assignment_job_title"`
	Rater                 int        `json:"rater"`
	RaterName             string     `json:"rater_name"`
	Ratee                 int        `json:"ratee"`
	RateeName             string     `json:"ratee_name"`
	RatingType            RatingType `json:"rating_type"`
	Rating                int        `json:"rating"`
	Review                string     `json:"review"`
	QualityRating         int        `json:"quality_rating,omitempty"`
	CommunicationRating   int        `json:"communication_rating,omitempty"`
	PunctualityRating     int        `json:"punctuality_rating,omitempty"`
	ProfessionalismRating int        `json:"professionalism_rating,omitempty"`
	IsAnonymous           bool       `json:"is_anonymous"`
	IsVerified            bool       `json:"is_verified"`
	HelpfulCount          int        `json:"helpful_count"`
	CreatedAt             string     `json:"created_at"`
	UpdatedAt             string     `json:"updated_at"`
}

// CreateRatingData is the rating form as submitted by the portal user.
// Sub-ratings below 1 mean "not provided" and are dropped before
// transmission; everything else is clamped into [1,5] by the upstream
// client.
type CreateRatingData struct {
	Assignment            int        `json:"assignment"`
	Ratee                 int        `json:"ratee"`
	RatingType            RatingType `json:"rating_type"`
	Rating                int        `json:"rating"`
	Review                string     `json:"review"`
	QualityRating         int        `json:"quality_rating"`
	CommunicationRating   int        `json:"communication_rating"`
	PunctualityRating     int        `json:"punctuality_rating"`
	ProfessionalismRating int        `json:"professionalism_rating"`
	IsAnonymous           bool       `json:"is_anonymous"`
}

// CanRateResult is the server's rating-eligibility pre-flight answer. When
// RateeID and RatingType are present they are used verbatim on submission.
type CanRateResult struct {
	CanRate          bool       `json:"can_rate"`
	Reason           string     `json:"reason,omitempty"`
	RatingType       RatingType `json:"rating_type,omitempty"`
	RateeID          int        `json:"ratee_id,omitempty"`
	RateeName        string     `json:"ratee_name,omitempty"`
	ExistingRatingID int        `json:"existing_rating_id,omitempty"`
}

type RatingListItem struct {
	ID                 int    `json:"id"`
	AssignmentJobTitle string `json:"assignment_job_title"`
	RaterName          string `json:"rater_name"`
	Rating             int    `json:"rating"`
	Review             string `json:"review"`
	IsAnonymous        bool   `json:"is_anonymous"`
	HelpfulCount       int    `json:"helpful_count"`
	CreatedAt          string `json:"created_at"`
}

type RatingSummary struct {
	AverageRating      float64          `json:"average_rating"`
	TotalRatings       int              `json:"total_ratings"`
	RatingDistribution map[string]int   `json:"rating_distribution"`
	RecentRatings      []RatingListItem `json:"recent_ratings"`
}

type RatingFilters struct {
	Assignment int
	Ratee      int
	Rater      int
	Type       string
}
