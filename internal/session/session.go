// Package session holds the in-memory view of who is logged in.
//
// A Store is created once per process and passed to whatever needs it. The
// user is populated by Init (profile fetch) or Set (after login) and removed
// by Clear. Loading is true only while Init runs; consumers must treat it as
// "decision pending".
package session

import (
	"context"
	"sync"

	"github.com/nexa-tasks/nexa/internal/models"
)

// ProfileFetcher loads the current user from the API
type ProfileFetcher interface {
	Profile(ctx context.Context) (*models.User, error)
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	User    *models.User
	Loading bool
}

// LoggedIn reports whether a user is present
func (s Snapshot) LoggedIn() bool {
	return s.User != nil
}

// Store owns the session state
type Store struct {
	mu          sync.RWMutex
	user        *models.User
	loading     bool
	subscribers []func(Snapshot)
}

// New returns a store in its initial state: no user, loading
func New() *Store {
	return &Store{loading: true}
}

// Init fetches the profile and settles the loading flag. hasToken short
// circuits the fetch when nothing is stored. The fetch error is returned for
// logging only; the session is settled either way.
func (s *Store) Init(ctx context.Context, fetcher ProfileFetcher, hasToken bool) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.notify()

	var (
		user *models.User
		err  error
	)
	if hasToken {
		user, err = fetcher.Profile(ctx)
		if err != nil {
			user = nil
		}
	}

	s.mu.Lock()
	s.user = clone(user)
	s.loading = false
	s.mu.Unlock()
	s.notify()

	return err
}

// Set replaces the user
func (s *Store) Set(user *models.User) {
	s.mu.Lock()
	s.user = clone(user)
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

// Update merges the non-empty fields of user into the current one, leaving
// loading untouched. With no current user it behaves like a replace.
func (s *Store) Update(user *models.User) {
	if user == nil {
		return
	}

	s.mu.Lock()
	if s.user == nil {
		s.user = clone(user)
	} else {
		merge(s.user, user)
	}
	s.mu.Unlock()
	s.notify()
}

// Clear removes the user. The persisted token is not touched; callers logging
// out must clear storage themselves.
func (s *Store) Clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{User: clone(s.user), Loading: s.loading}
}

// User returns a copy of the current user, or nil
func (s *Store) User() *models.User {
	return s.Snapshot().User
}

// Subscribe registers fn to run after every change
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	snap := Snapshot{User: clone(s.user), Loading: s.loading}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func clone(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	// The token belongs to the token store, never to the session
	c.Token = ""
	return &c
}

func merge(dst, src *models.User) {
	if src.ID != "" {
		dst.ID = src.ID
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Email != "" {
		dst.Email = src.Email
	}
	if src.Role != "" {
		dst.Role = src.Role
	}
	if src.ProfileImageURL != "" {
		dst.ProfileImageURL = src.ProfileImageURL
	}
	if !src.CreatedAt.IsZero() {
		dst.CreatedAt = src.CreatedAt
	}
	if !src.UpdatedAt.IsZero() {
		dst.UpdatedAt = src.UpdatedAt
	}
}
