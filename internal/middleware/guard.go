package middleware

import "github.com/kaamkaro/portal/internal/models"

// AuthState is what the guard knows about the caller when a protected
// route is hit.
type AuthState int

const (
	// StateLoading: the session store could not answer yet; make no
	// navigation decision.
	StateLoading AuthState = iota
	StateAnonymous
	StateAuthenticated
)

// Verdict is the guard's routing decision.
type Verdict int

const (
	// VerdictPending: hold the request, no redirect.
	VerdictPending Verdict = iota
	// VerdictLogin: redirect to login, carrying the original path.
	VerdictLogin
	// VerdictOwnDashboard: wrong portal for this user type; send them to
	// their own dashboard instead of an error page.
	VerdictOwnDashboard
	VerdictAllow
)

// Decide evaluates the three guard branches in order: loading defers,
// unauthenticated goes to login, a user-type mismatch goes to the caller's
// own dashboard. required == "" means any signed-in user may pass.
func Decide(state AuthState, userType, required models.UserType) Verdict {
	if state == StateLoading {
		return VerdictPending
	}
	if state != StateAuthenticated {
		return VerdictLogin
	}
	if required != "" && userType != required {
		return VerdictOwnDashboard
	}
	return VerdictAllow
}

// DashboardPath is where a user lands when they hit a portal that is not
// theirs.
func DashboardPath(userType models.UserType) string {
	if userType == models.UserTypeCustomer {
		return "/customer"
	}
	return "/worker"
}
