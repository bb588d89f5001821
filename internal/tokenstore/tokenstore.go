// Package tokenstore persists the bearer token and the few other values the
// client keeps between runs. Each API profile gets its own namespace, and
// Clear wipes that namespace wholesale.
package tokenstore

import (
	"errors"
	"fmt"
)

const (
	KeyToken = "token"
	KeyEmail = "email" // Last email used to log in, offered as the prompt default
)

// ErrNotFound is returned by backends for a missing key
var ErrNotFound = errors.New("key not found")

// Backend is a key/value namespace for one profile
type Backend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	// DeleteAll removes every key of the namespace
	DeleteAll() error
}

// Store gives typed access to a backend
type Store struct {
	backend Backend
}

// New wraps a backend
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Token returns the persisted bearer token, or "" when none is stored
func (s *Store) Token() (string, error) {
	return s.optional(KeyToken)
}

// SaveToken persists the bearer token
func (s *Store) SaveToken(token string) error {
	if err := s.backend.Set(KeyToken, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Email returns the last login email, or "" when unknown
func (s *Store) Email() string {
	email, _ := s.optional(KeyEmail)
	return email
}

// SaveEmail remembers the login email
func (s *Store) SaveEmail(email string) error {
	if err := s.backend.Set(KeyEmail, email); err != nil {
		return fmt.Errorf("failed to save email: %w", err)
	}
	return nil
}

// Clear removes every stored value of the profile, not just the token
func (s *Store) Clear() error {
	if err := s.backend.DeleteAll(); err != nil {
		return fmt.Errorf("failed to clear stored credentials: %w", err)
	}
	return nil
}

func (s *Store) optional(key string) (string, error) {
	value, err := s.backend.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}

// Backend kinds accepted by Open
const (
	KindKeyring = "keyring"
	KindFile    = "file"
	KindMemory  = "memory"
)

// Open builds a store of the given kind for a profile. dir is only used by
// the file backend.
func Open(kind, dir, profile string) (*Store, error) {
	switch kind {
	case "", KindKeyring:
		return New(NewKeyring(profile)), nil
	case KindFile:
		return New(NewFile(dir, profile)), nil
	case KindMemory:
		return New(NewMemory()), nil
	default:
		return nil, fmt.Errorf("unknown token store '%s', must be one of: keyring, file, memory", kind)
	}
}
