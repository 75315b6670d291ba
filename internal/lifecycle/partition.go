// Package lifecycle holds the client-side view of the job/assignment state
// machine: partitioning flat lists into dashboard buckets, validating
// assignment transitions, and gating rating submission behind the server's
// eligibility check. The backend stays authoritative; this package only
// mirrors its rules so the portal never shows or submits something the
// backend would reject.
package lifecycle

import "github.com/kaamkaro/portal/internal/models"

// JobBuckets is a customer's dashboard view of their jobs.
type JobBuckets struct {
	Active     []models.Job
	InProgress []models.Job
	Completed  []models.Job
}

// PartitionCustomerJobs derives dashboard buckets from a flat job list and
// the customer's assignments. Assignment existence, not job.status, decides
// whether a worker has been locked in: job.status can lag behind the
// assignment record upstream, and cross-referencing closes that window.
func PartitionCustomerJobs(jobs []models.Job, assignments []models.Assignment) JobBuckets {
	assigned := make(map[int]bool, len(assignments))
	inProgress := make(map[int]bool)
	completed := make(map[int]bool)
	for _, a := range assignments {
		assigned[a.Job] = true
		switch a.Status {
		case models.AssignmentStatusAssigned, models.AssignmentStatusStarted:
			inProgress[a.Job] = true
		case models.AssignmentStatusCompleted:
			completed[a.Job] = true
		}
	}

	var buckets JobBuckets
	for _, job := range jobs {
		switch {
		case job.Status == models.JobStatusOpen && !assigned[job.ID]:
			buckets.Active = append(buckets.Active, job)
		case inProgress[job.ID]:
			buckets.InProgress = append(buckets.InProgress, job)
		case completed[job.ID]:
			buckets.Completed = append(buckets.Completed, job)
		}
	}
	return buckets
}

// AvailableJobs filters a worker's nearby open jobs down to those they have
// not responded to yet. Any response counts, whatever its status; the
// backend would reject a duplicate anyway, this just keeps it out of the UI.
func AvailableJobs(nearby []models.Job, ownResponses []models.JobResponse) []models.Job {
	responded := make(map[int]bool, len(ownResponses))
	for _, r := range ownResponses {
		responded[r.Job] = true
	}

	available := make([]models.Job, 0, len(nearby))
	for _, job := range nearby {
		if !responded[job.ID] {
			available = append(available, job)
		}
	}
	return available
}

// CompletedTotal sums agreed amounts over completed assignments, tolerating
// the string-or-number amounts the backend emits.
func CompletedTotal(assignments []models.Assignment) float64 {
	var total float64
	for _, a := range assignments {
		if a.Status == models.AssignmentStatusCompleted {
			total += float64(a.AgreedAmount)
		}
	}
	return total
}
