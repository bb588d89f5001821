package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexa-tasks/nexa/internal/models"
)

type fakeFetcher struct {
	user  *models.User
	err   error
	calls int
	// seen records the loading flag observed while fetching
	seen  []bool
	store *Store
}

func (f *fakeFetcher) Profile(ctx context.Context) (*models.User, error) {
	f.calls++
	if f.store != nil {
		f.seen = append(f.seen, f.store.Snapshot().Loading)
	}
	return f.user, f.err
}

func jane() *models.User {
	return &models.User{ID: "u1", Name: "Jane", Email: "jane@example.com", Role: models.RoleUser}
}

func TestNew_StartsLoading(t *testing.T) {
	snap := New().Snapshot()
	assert.True(t, snap.Loading)
	assert.Nil(t, snap.User)
}

func TestInit_Success(t *testing.T) {
	store := New()
	fetcher := &fakeFetcher{user: jane(), store: store}

	require.NoError(t, store.Init(context.Background(), fetcher, true))

	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.User)
	assert.Equal(t, "Jane", snap.User.Name)
	assert.Equal(t, []bool{true}, fetcher.seen, "loading is true during the fetch")
}

func TestInit_FailureSettlesWithoutUser(t *testing.T) {
	store := New()
	store.Set(jane())
	fetcher := &fakeFetcher{err: errors.New("boom")}

	err := store.Init(context.Background(), fetcher, true)
	assert.EqualError(t, err, "boom")

	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
}

func TestInit_NoTokenSkipsFetch(t *testing.T) {
	store := New()
	fetcher := &fakeFetcher{user: jane()}

	require.NoError(t, store.Init(context.Background(), fetcher, false))

	assert.Zero(t, fetcher.calls)
	snap := store.Snapshot()
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.User)
}

func TestSet_DropsToken(t *testing.T) {
	store := New()
	u := jane()
	u.Token = "secret"
	store.Set(u)

	assert.Empty(t, store.User().Token)
	assert.Equal(t, "secret", u.Token, "caller's value is not mutated")
}

func TestUpdate_MergesAndKeepsLoading(t *testing.T) {
	store := New()
	store.Set(jane())

	store.Update(&models.User{ProfileImageURL: "http://img/new.png"})

	u := store.User()
	assert.Equal(t, "http://img/new.png", u.ProfileImageURL)
	assert.Equal(t, "Jane", u.Name)
	assert.Equal(t, models.RoleUser, u.Role)
}

func TestUpdate_DoesNotTouchLoading(t *testing.T) {
	store := New()
	store.Update(jane())

	snap := store.Snapshot()
	assert.True(t, snap.Loading, "update must not settle loading")
	assert.NotNil(t, snap.User)
}

func TestClear(t *testing.T) {
	store := New()
	store.Set(jane())
	store.Clear()

	snap := store.Snapshot()
	assert.Nil(t, snap.User)
	assert.False(t, snap.Loading)
}

func TestSnapshot_IsACopy(t *testing.T) {
	store := New()
	store.Set(jane())

	snap := store.Snapshot()
	snap.User.Name = "Mallory"

	assert.Equal(t, "Jane", store.User().Name)
}

func TestSubscribe(t *testing.T) {
	store := New()
	var seen []Snapshot
	store.Subscribe(func(s Snapshot) { seen = append(seen, s) })

	store.Set(jane())
	store.Clear()

	require.Len(t, seen, 2)
	assert.True(t, seen[0].LoggedIn())
	assert.False(t, seen[1].LoggedIn())
}
