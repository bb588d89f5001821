// Package router maps client routes to pages and gates them on the session.
//
// Guard logic lives in the pure Decide/DecideRoot functions; the Router only
// resolves paths, applies decisions, follows redirects and renders.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nexa-tasks/nexa/internal/session"
)

const maxRedirects = 5

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrRedirectLoop  = errors.New("redirect loop")
)

// Request describes the page being rendered
type Request struct {
	Path   string
	Params map[string]string
	Route  *Route
}

// Param returns a path parameter such as ":id"
func (r Request) Param(name string) string {
	return r.Params[name]
}

// Page renders one route
type Page func(ctx context.Context, req Request) error

// Router resolves and guards client routes
type Router struct {
	mu      sync.Mutex
	routes  []*Route
	session *session.Store
	logger  zerolog.Logger

	current string
	pending string

	// Placeholder renders while the session is loading; nil renders nothing
	Placeholder Page
	// OnRedirect observes every guard redirect
	OnRedirect func(from, to string)
}

// New creates a router over the default route table. It re-evaluates the
// current route whenever the session changes.
func New(sess *session.Store, logger zerolog.Logger) *Router {
	r := &Router{session: sess, logger: logger}
	for _, route := range DefaultRoutes() {
		r.Handle(route)
	}
	sess.Subscribe(r.reevaluate)
	return r
}

// Handle registers a route, replacing any route with the same pattern
func (r *Router) Handle(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.routes {
		if existing.Pattern == route.Pattern {
			r.routes[i] = &route
			return
		}
	}
	r.routes = append(r.routes, &route)
}

// SetPage attaches the default page of a registered route
func (r *Router) SetPage(pattern string, page Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, route := range r.routes {
		if route.Pattern == pattern {
			route.Page = page
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRouteNotFound, pattern)
}

// Routes returns a copy of the route table
func (r *Router) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Route, len(r.routes))
	for i, route := range r.routes {
		out[i] = *route
	}
	return out
}

// Match finds the route for a concrete path
func (r *Router) Match(path string) (*Route, map[string]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.match(path)
}

func (r *Router) match(path string) (*Route, map[string]string, bool) {
	path = normalize(path)
	for _, route := range r.routes {
		if params, ok := matchPattern(route.Pattern, path); ok {
			copied := *route
			return &copied, params, true
		}
	}
	return nil, nil, false
}

// Evaluate returns the guard decision for a route against the current session
func (r *Router) Evaluate(route *Route) Decision {
	snap := r.session.Snapshot()
	switch route.Access {
	case Dispatcher:
		return DecideRoot(snap)
	case Protected:
		return Decide(snap, route.Roles)
	default:
		return renderDecision()
	}
}

// Visit navigates to path and renders it through the guard. override, when
// non-nil, replaces the route's page for the originally requested path only;
// redirect targets always render their own page.
func (r *Router) Visit(ctx context.Context, path string, override Page) error {
	current := normalize(path)
	page := override
	seen := map[string]bool{current: true}

	for hops := 0; ; hops++ {
		route, params, ok := r.Match(current)
		if !ok {
			return fmt.Errorf("%w: %s", ErrRouteNotFound, current)
		}

		decision := r.Evaluate(route)
		r.logger.Debug().Str("path", current).Str("decision", decision.Kind.String()).Str("to", decision.To).Msg("Route evaluated")

		switch decision.Kind {
		case Placeholder:
			r.setCurrent(current)
			if r.Placeholder != nil {
				return r.Placeholder(ctx, Request{Path: current, Params: params, Route: route})
			}
			return nil

		case Render:
			r.setCurrent(current)
			if page == nil {
				page = route.Page
			}
			if page == nil {
				return fmt.Errorf("route %s has no page", route.Pattern)
			}
			return page(ctx, Request{Path: current, Params: params, Route: route})

		case Redirect:
			if r.OnRedirect != nil {
				r.OnRedirect(current, decision.To)
			}
			next := normalize(decision.To)
			if seen[next] || hops >= maxRedirects {
				return fmt.Errorf("%w: %s -> %s", ErrRedirectLoop, current, next)
			}
			seen[next] = true
			current = next
			page = nil
		}
	}
}

// Navigate records a navigation to be performed by the caller that owns the
// render loop. It implements api.Navigator.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = normalize(path)
}

// TakePending returns and clears the recorded navigation
func (r *Router) TakePending() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pending
	r.pending = ""
	return p
}

// Current returns the last rendered path
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) setCurrent(path string) {
	r.mu.Lock()
	r.current = path
	r.mu.Unlock()
}

// reevaluate runs on session changes: if the page on screen is no longer
// allowed, a navigation to the guard's target is recorded
func (r *Router) reevaluate(snap session.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == "" {
		return
	}
	route, _, ok := r.match(r.current)
	if !ok {
		return
	}

	var decision Decision
	switch route.Access {
	case Protected:
		decision = Decide(snap, route.Roles)
	case Dispatcher:
		decision = DecideRoot(snap)
	default:
		return
	}
	if decision.Kind == Redirect && r.pending == "" {
		r.pending = decision.To
	}
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return RouteRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// matchPattern matches "/a/:id" style patterns segment by segment
func matchPattern(pattern, path string) (map[string]string, bool) {
	if pattern == path {
		return map[string]string{}, true
	}

	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	params := map[string]string{}
	for i, part := range patternParts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			if pathParts[i] == "" {
				return nil, false
			}
			params[name] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}
	return params, true
}
