package router

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexa-tasks/nexa/internal/models"
	"github.com/nexa-tasks/nexa/internal/session"
)

func admin() *models.User {
	return &models.User{ID: "a1", Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin}
}

func member() *models.User {
	return &models.User{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: models.RoleUser}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		snap    session.Snapshot
		allowed []models.Role
		want    Decision
	}{
		{
			name:    "loading never redirects",
			snap:    session.Snapshot{Loading: true},
			allowed: adminOnly,
			want:    Decision{Kind: Placeholder},
		},
		{
			name:    "loading with stale user still pending",
			snap:    session.Snapshot{Loading: true, User: member()},
			allowed: adminOnly,
			want:    Decision{Kind: Placeholder},
		},
		{
			name:    "no user goes to login",
			snap:    session.Snapshot{},
			allowed: adminOnly,
			want:    Decision{Kind: Redirect, To: RouteLogin},
		},
		{
			name:    "admin on admin route renders",
			snap:    session.Snapshot{User: admin()},
			allowed: adminOnly,
			want:    Decision{Kind: Render},
		},
		{
			name:    "member on admin route goes to own dashboard",
			snap:    session.Snapshot{User: member()},
			allowed: adminOnly,
			want:    Decision{Kind: Redirect, To: RouteUserDashboard},
		},
		{
			name:    "admin on member route goes to admin dashboard",
			snap:    session.Snapshot{User: admin()},
			allowed: userOnly,
			want:    Decision{Kind: Redirect, To: RouteAdminDashboard},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.snap, tt.allowed))
		})
	}
}

func TestDecideRoot(t *testing.T) {
	assert.Equal(t, Decision{Kind: Placeholder}, DecideRoot(session.Snapshot{Loading: true}))
	assert.Equal(t, Decision{Kind: Redirect, To: RouteLogin}, DecideRoot(session.Snapshot{}))
	assert.Equal(t, Decision{Kind: Redirect, To: RouteAdminDashboard}, DecideRoot(session.Snapshot{User: admin()}))
	assert.Equal(t, Decision{Kind: Redirect, To: RouteUserDashboard}, DecideRoot(session.Snapshot{User: member()}))
}

func TestMatchPattern(t *testing.T) {
	params, ok := matchPattern(RouteUserTaskDetails, "/user/task-details/t-42")
	require.True(t, ok)
	assert.Equal(t, "t-42", params["id"])

	_, ok = matchPattern(RouteUserTaskDetails, "/user/task-details")
	assert.False(t, ok)

	_, ok = matchPattern(RouteRoot, "/login")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "/", normalize(""))
	assert.Equal(t, "/admin/tasks", normalize("admin/tasks/"))
	assert.Equal(t, "/admin/tasks", normalize("/admin/tasks?status=Pending"))
}

// recorder collects rendered paths
type recorder struct {
	rendered []string
}

func (rec *recorder) page(ctx context.Context, req Request) error {
	rec.rendered = append(rec.rendered, req.Path)
	return nil
}

func newTestRouter(t *testing.T, sess *session.Store) (*Router, *recorder) {
	t.Helper()
	r := New(sess, zerolog.Nop())
	rec := &recorder{}
	for _, route := range r.Routes() {
		require.NoError(t, r.SetPage(route.Pattern, rec.page))
	}
	return r, rec
}

func TestVisit_RootDispatch(t *testing.T) {
	sess := session.New()
	sess.Set(admin())
	r, rec := newTestRouter(t, sess)

	require.NoError(t, r.Visit(context.Background(), "/", nil))
	assert.Equal(t, []string{RouteAdminDashboard}, rec.rendered)
	assert.Equal(t, RouteAdminDashboard, r.Current())
}

func TestVisit_WrongRoleRedirectsHome(t *testing.T) {
	sess := session.New()
	sess.Set(member())
	r, rec := newTestRouter(t, sess)

	var redirects [][2]string
	r.OnRedirect = func(from, to string) { redirects = append(redirects, [2]string{from, to}) }

	overrideCalled := false
	err := r.Visit(context.Background(), RouteAdminUsers, func(ctx context.Context, req Request) error {
		overrideCalled = true
		return nil
	})
	require.NoError(t, err)

	assert.False(t, overrideCalled, "override only applies to the requested route")
	assert.Equal(t, []string{RouteUserDashboard}, rec.rendered)
	assert.Equal(t, [][2]string{{RouteAdminUsers, RouteUserDashboard}}, redirects)
}

func TestVisit_LoggedOutGoesToLogin(t *testing.T) {
	sess := session.New()
	sess.Set(nil)
	r, rec := newTestRouter(t, sess)

	require.NoError(t, r.Visit(context.Background(), RouteUserTasks, nil))
	assert.Equal(t, []string{RouteLogin}, rec.rendered)
}

func TestVisit_LoadingRendersPlaceholder(t *testing.T) {
	sess := session.New()
	r, rec := newTestRouter(t, sess)

	placeholder := 0
	r.Placeholder = func(ctx context.Context, req Request) error {
		placeholder++
		return nil
	}

	require.NoError(t, r.Visit(context.Background(), RouteAdminDashboard, nil))
	assert.Equal(t, 1, placeholder)
	assert.Empty(t, rec.rendered)
}

func TestVisit_Params(t *testing.T) {
	sess := session.New()
	sess.Set(member())
	r, _ := newTestRouter(t, sess)

	var got string
	err := r.Visit(context.Background(), "/user/task-details/t-7", func(ctx context.Context, req Request) error {
		got = req.Param("id")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "t-7", got)
}

func TestVisit_UnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t, session.New())
	err := r.Visit(context.Background(), "/nowhere", nil)
	assert.True(t, errors.Is(err, ErrRouteNotFound))
}

func TestVisit_RedirectLoop(t *testing.T) {
	sess := session.New()
	// A role the guard does not know is sent to the member dashboard, which
	// it may not render either
	sess.Set(&models.User{ID: "x", Email: "x@example.com", Role: "auditor"})
	r, _ := newTestRouter(t, sess)

	err := r.Visit(context.Background(), RouteUserTasks, nil)
	assert.True(t, errors.Is(err, ErrRedirectLoop))
}

func TestNavigateAndTakePending(t *testing.T) {
	r, _ := newTestRouter(t, session.New())
	assert.Empty(t, r.TakePending())

	r.Navigate("login")
	assert.Equal(t, RouteLogin, r.TakePending())
	assert.Empty(t, r.TakePending())
}

func TestSessionChangeReevaluatesCurrentRoute(t *testing.T) {
	sess := session.New()
	sess.Set(admin())
	r, _ := newTestRouter(t, sess)

	require.NoError(t, r.Visit(context.Background(), RouteAdminTasks, nil))
	assert.Empty(t, r.TakePending())

	sess.Clear()
	assert.Equal(t, RouteLogin, r.TakePending())
}

func TestSetPage_UnknownPattern(t *testing.T) {
	r, _ := newTestRouter(t, session.New())
	err := r.SetPage("/missing", nil)
	assert.True(t, errors.Is(err, ErrRouteNotFound))
}
