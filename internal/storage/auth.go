package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/tw-accounting/twacc/pkg/domain"
)

// AuthKey is the fixed key the persisted session lives under.
const AuthKey = "auth-storage"

// AuthRecord is the persisted subset of the session.
type AuthRecord struct {
	Token           string       `json:"token"`
	User            *domain.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// AuthStore reads and writes the AuthRecord. It also serves as the HTTP
// client's token source.
type AuthStore struct {
	kv KV

	mu     sync.Mutex
	cached *AuthRecord
}

func NewAuthStore(kv KV) *AuthStore {
	return &AuthStore{kv: kv}
}

// Load returns the persisted record. A missing or unreadable record yields
// the zero (logged-out) record.
func (s *AuthStore) Load(ctx context.Context) (AuthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *AuthStore) loadLocked(ctx context.Context) (AuthRecord, error) {
	if s.cached != nil {
		return *s.cached, nil
	}
	data, err := s.kv.Get(ctx, AuthKey)
	if errors.Is(err, ErrNotFound) {
		s.cached = &AuthRecord{}
		return AuthRecord{}, nil
	}
	if err != nil {
		return AuthRecord{}, fmt.Errorf("storage.AuthStore.Load: %w", err)
	}
	var rec AuthRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.cached = &AuthRecord{}
		return AuthRecord{}, fmt.Errorf("storage.AuthStore.Load: corrupt record: %w", err)
	}
	s.cached = &rec
	return rec, nil
}

// Save replaces the persisted record.
func (s *AuthStore) Save(ctx context.Context, rec AuthRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, rec)
}

func (s *AuthStore) saveLocked(ctx context.Context, rec AuthRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("storage.AuthStore.Save: %w", err)
	}
	if err := s.kv.Set(ctx, AuthKey, data); err != nil {
		return fmt.Errorf("storage.AuthStore.Save: %w", err)
	}
	s.cached = &rec
	return nil
}

// Token returns the persisted token, or "" when logged out.
func (s *AuthStore) Token() string {
	rec, err := s.Load(context.Background())
	if err != nil {
		return ""
	}
	return rec.Token
}

// ClearToken resets the whole record. A stored user without a token would
// otherwise rehydrate as a half-authenticated session.
func (s *AuthStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(context.Background(), AuthRecord{})
}
