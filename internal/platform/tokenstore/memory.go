package tokenstore

import (
	"context"
	"sync"
	"time"
)

const defaultTTL = 31 * 24 * time.Hour

// MemoryStore is a process-local token store for single-instance
// deployments and tests. It keeps the same digest semantics as RedisStore.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]string
	blacklist map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]string),
		blacklist: make(map[string]struct{}),
	}
}

// Get returns the SHA-256 digest of the user's current refresh token, never
// the token itself, or "" when the user has no session.
func (s *MemoryStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID], nil
}

func (s *MemoryStore) Matches(ctx context.Context, userID, token string) (bool, error) {
	digest, _ := s.Get(ctx, userID)
	return digest != "" && digest == Digest(token), nil
}

func (s *MemoryStore) Set(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = Digest(token)
	return nil
}

func (s *MemoryStore) Blacklist(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[Digest(token)] = struct{}{}
	return nil
}

func (s *MemoryStore) IsBlacklisted(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blacklist[Digest(token)]
	return ok, nil
}

func (s *MemoryStore) Remove(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *MemoryStore) Rotate(_ context.Context, userID, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[userID] != Digest(current) {
		return false, nil
	}
	s.sessions[userID] = Digest(next)
	s.blacklist[Digest(current)] = struct{}{}
	return true, nil
}
