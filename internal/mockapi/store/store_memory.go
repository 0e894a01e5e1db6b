// Package store holds the in-memory state behind the bundled consent
// platform.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"assent/internal/mockapi/models"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested entity does not exist
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore keeps the purpose catalog and consent grants in memory.
// The catalog preserves insertion order so listings stay stable across
// calls.
type InMemoryStore struct {
	mu       sync.RWMutex
	purposes []models.Purpose
	byUUID   map[string]int
	grants   map[string][]*models.Grant
}

// New constructs an empty in-memory consent store.
func New() *InMemoryStore {
	return &InMemoryStore{
		byUUID: make(map[string]int),
		grants: make(map[string][]*models.Grant),
	}
}

// AddPurpose inserts a purpose into the catalog, or replaces it in place
// when the UUID is already present.
func (s *InMemoryStore) AddPurpose(_ context.Context, purpose models.Purpose) error {
	if err := purpose.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.byUUID[purpose.UUID]; ok {
		s.purposes[idx] = purpose
		return nil
	}
	s.byUUID[purpose.UUID] = len(s.purposes)
	s.purposes = append(s.purposes, purpose)
	return nil
}

// ListPurposes returns the catalog in insertion order.
func (s *InMemoryStore) ListPurposes(_ context.Context) ([]models.Purpose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Purpose, len(s.purposes))
	copy(out, s.purposes)
	return out, nil
}

// FindPurpose looks up a catalog entry by UUID.
func (s *InMemoryStore) FindPurpose(_ context.Context, uuid string) (models.Purpose, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byUUID[uuid]
	if !ok {
		return models.Purpose{}, ErrNotFound
	}
	return s.purposes[idx], nil
}

// SaveGrant upserts a grant keyed by (email, purpose UUID). An existing
// grant for the same purpose is replaced in place so a user carries at most
// one record per purpose.
func (s *InMemoryStore) SaveGrant(_ context.Context, grant *models.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.grants[grant.UserEmail]
	copyGrant := *grant
	for i, existing := range records {
		if existing.Purpose.UUID == grant.Purpose.UUID {
			records[i] = &copyGrant
			return nil
		}
	}
	s.grants[grant.UserEmail] = append(records, &copyGrant)
	return nil
}

// GrantsByEmail returns copies of all grants held for the given email,
// active or not. An unknown email yields an empty slice, not an error:
// absence of records is a valid consent state.
func (s *InMemoryStore) GrantsByEmail(_ context.Context, email string) ([]models.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.grants[email]
	out := make([]models.Grant, 0, len(records))
	for _, record := range records {
		out = append(out, *record)
	}
	return out, nil
}

// RevokeGrant sets the RevokedAt timestamp on the user's grant for the
// given purpose. Returns the updated grant, or ErrNotFound when no
// unrevoked grant exists.
func (s *InMemoryStore) RevokeGrant(_ context.Context, email, purposeUUID string, revokedAt time.Time) (*models.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.grants[email] {
		if record.Purpose.UUID == purposeUUID && record.RevokedAt == nil {
			record.RevokedAt = &revokedAt
			copyGrant := *record
			return &copyGrant, nil
		}
	}
	return nil, ErrNotFound
}

// DeleteGrantsByEmail removes every grant held for the email.
func (s *InMemoryStore) DeleteGrantsByEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, email)
	return nil
}
