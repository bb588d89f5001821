package router

import (
	"slices"

	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/session"
)

// Kind is the outcome of a guard evaluation
type Kind int

const (
	// Render the requested page
	Render Kind = iota
	// Placeholder renders a neutral page while the session is still loading
	Placeholder
	// Redirect to Decision.To
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Placeholder:
		return "placeholder"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is what a guard tells the router to do
type Decision struct {
	Kind Kind
	To   string
}

func renderDecision() Decision { return Decision{Kind: Render} }
func placeholderDecision() Decision { return Decision{Kind: Placeholder} }
func redirectTo(to string) Decision { return Decision{Kind: Redirect, To: to} }

// HomeFor returns the landing route of a role. Anything that is not admin is
// treated as a member, matching the root dispatcher.
func HomeFor(role models.Role) string {
	if role == models.RoleAdmin {
		return RouteAdminDashboard
	}
	return RouteUserDashboard
}

// Decide evaluates the guard of a protected route. A logged-in user with the
// wrong role goes to their own home, never back to login.
func Decide(snap session.Snapshot, allowed []models.Role) Decision {
	if snap.Loading {
		return placeholderDecision()
	}
	if snap.User == nil {
		return redirectTo(RouteLogin)
	}
	if slices.Contains(allowed, snap.User.Role) {
		return renderDecision()
	}
	return redirectTo(HomeFor(snap.User.Role))
}

// DecideRoot evaluates the "/" dispatcher
func DecideRoot(snap session.Snapshot) Decision {
	if snap.Loading {
		return placeholderDecision()
	}
	if snap.User == nil {
		return redirectTo(RouteLogin)
	}
	return redirectTo(HomeFor(snap.User.Role))
}
