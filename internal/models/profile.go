package models

import "encoding/json"

type WorkerProfile struct {
	ID                 int      `json:"id"`
	User               int      `json:"user"`
	Skills             []string `json:"skills"`
	HourlyRate         float64  `json:"hourly_rate"`
	ExperienceYears    int      `json:"experience_years"`
	Address            string   `json:"address"`
	Bio                string   `json:"bio"`
	IsAvailable        bool     `json:"is_available"`
	TotalJobsCompleted int      `json:"total_jobs_completed"`
	AverageRating      float64  `json:"average_rating"`
	TotalEarnings      Amount   `json:"total_earnings"`
	ProfilePicture     string   `json:"profile_picture,omitempty"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

type CustomerProfile struct {
	ID              int     `json:"id"`
	User            int     `json:"user"`
	Address         string  `json:"address"`
	Bio             string  `json:"bio"`
	TotalJobsPosted int     `json:"total_jobs_posted"`
	AverageRating   float64 `json:"average_rating"`
	ProfilePicture  string  `json:"profile_picture,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type UpdateWorkerProfileData struct {
	Skills          *[]string `json:"skills,omitempty"`
	HourlyRate      *float64  `json:"hourly_rate,omitempty"`
	ExperienceYears *int      `json:"experience_years,omitempty"`
	Address         *string   `json:"address,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	IsAvailable     *bool     `json:"is_available,omitempty"`
	ProfilePicture  *string   `json:"profile_picture,omitempty"`
}

type UpdateCustomerProfileData struct {
	Address        *string `json:"address,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// CurrentUser is the `{user, profile}` pair from GET /auth/profile/. The
// profile shape depends on the user's type, so it stays raw until the
// caller knows which one to decode.
type CurrentUser struct {
	User    User            `json:"user"`
	Profile json.RawMessage `json:"profile"`
}

// WorkerLookup is the public worker view from /auth/profile/worker/{userId}/.
type WorkerLookup struct {
	User    User          `json:"user"`
	Profile WorkerProfile `json:"profile"`
}
