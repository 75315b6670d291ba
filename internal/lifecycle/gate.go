package lifecycle

import (
	"sync"
	"time"

	"github.com/kaamkaro/portal/internal/models"
)

// RatingMeta is the rater->ratee mapping a submission must use. Captured
// verbatim from the eligibility response when the server supplies it.
type RatingMeta struct {
	RateeID    int
	RatingType models.RatingType
}

// InferRatingMeta is the fallback for eligibility responses that omit
// ratee_id/rating_type: the opposite role is inferred from the current
// user's own type. This path is only taken when the server is silent.
func InferRatingMeta(userType models.UserType, a models.Assignment) RatingMeta {
	if userType == models.UserTypeCustomer {
		return RatingMeta{RateeID: a.Worker, RatingType: models.RatingCustomerToWorker}
	}
	return RatingMeta{RateeID: a.Customer, RatingType: models.RatingWorkerToCustomer}
}

// ResolveRatingMeta prefers the server-supplied mapping and falls back to
// local inference only when the eligibility response omits the fields.
func ResolveRatingMeta(result models.CanRateResult, userType models.UserType, a models.Assignment) RatingMeta {
	if result.RateeID != 0 && result.RatingType != "" {
		return RatingMeta{RateeID: result.RateeID, RatingType: result.RatingType}
	}
	return InferRatingMeta(userType, a)
}

const confirmationTTL = 15 * time.Minute

type confirmation struct {
	meta      RatingMeta
	expiresAt time.Time
}

// RatingGate enforces the two-step rating flow: a submission is only
// accepted after an eligibility confirmation for the same session and
// assignment, and each confirmation is consumed by one submission.
type RatingGate struct {
	mu        sync.Mutex
	confirmed map[gateKey]confirmation
}

type gateKey struct {
	sessionID  string
	assignment int
}

func NewRatingGate() *RatingGate {
	return &RatingGate{confirmed: make(map[gateKey]confirmation)}
}

// Confirm records a positive eligibility result for the flow. Confirmations
// abandoned by other flows are swept here so the map stays bounded by the
// number of live flows.
func (g *RatingGate) Confirm(sessionID string, assignmentID int, meta RatingMeta) {
	now := time.Now()
	g.mu.Lock()
	for key, c := range g.confirmed {
		if now.After(c.expiresAt) {
			delete(g.confirmed, key)
		}
	}
	g.confirmed[gateKey{sessionID, assignmentID}] = confirmation{
		meta:      meta,
		expiresAt: now.Add(confirmationTTL),
	}
	g.mu.Unlock()
}

// Take consumes the confirmation for (session, assignment). The second
// return is false when no live confirmation exists, in which case the
// submission must be refused without any upstream call.
func (g *RatingGate) Take(sessionID string, assignmentID int) (RatingMeta, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := gateKey{sessionID, assignmentID}
	c, ok := g.confirmed[key]
	if !ok {
		return RatingMeta{}, false
	}
	delete(g.confirmed, key)
	if time.Now().After(c.expiresAt) {
		return RatingMeta{}, false
	}
	return c.meta, true
}
