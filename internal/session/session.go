// Package session holds the authenticated-user state of the client: the
// bearer token, the user's profile and whether both have been confirmed by
// the API. Every change is persisted through storage.AuthStore and fanned out
// to subscribers.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tw-accounting/twacc/internal/storage"
	"github.com/tw-accounting/twacc/pkg/client"
	"github.com/tw-accounting/twacc/pkg/domain"
)

// ErrNotAuthenticated is returned by operations that need a logged-in user.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// AuthAPI is the subset of the API client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthToken, error)
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	GetMeWithToken(ctx context.Context, token string) (*domain.User, error)
	UpdateMe(ctx context.Context, upd domain.ProfileUpdate) (*domain.User, error)
}

// State is a snapshot of the session.
type State struct {
	User            *domain.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

// FailurePolicy decides what a failed profile fetch does to the session.
type FailurePolicy int

const (
	// FailClosed logs out on any profile fetch failure.
	FailClosed FailurePolicy = iota
	// UnauthorizedOnly logs out only when the API answered 401; transport
	// errors and 5xx leave the session alone.
	UnauthorizedOnly
)

// ParseFailurePolicy maps the config value to a policy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "logout":
		return FailClosed, nil
	case "unauthorized-only":
		return UnauthorizedOnly, nil
	default:
		return FailClosed, fmt.Errorf("session: unknown profile failure policy %q", s)
	}
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithFailurePolicy(p FailurePolicy) Option {
	return func(s *Store) { s.policy = p }
}

// Store is the session store. It is safe for concurrent use.
type Store struct {
	api    AuthAPI
	auth   *storage.AuthStore
	logger *slog.Logger
	policy FailurePolicy

	// opMu serializes the multi-step network operations. Logout never takes
	// it, so the client's 401 handler can run while one is in flight.
	opMu sync.Mutex

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int

	initOnce sync.Once
}

// New creates a logged-out store. Call Init to rehydrate it.
func New(api AuthAPI, auth *storage.AuthStore, opts ...Option) *Store {
	s := &Store{
		api:       api,
		auth:      auth,
		logger:    slog.Default(),
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called with the new state after every change.
// The returned func removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update applies fn to the state. When fn reports a change, the persisted
// subset is written and listeners are notified outside the lock.
func (s *Store) update(fn func(*State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	snap := s.state
	fns := make([]func(State), 0, len(s.listeners))
	for _, l := range s.listeners {
		fns = append(fns, l)
	}
	err := s.auth.Save(context.Background(), storage.AuthRecord{
		Token:           snap.Token,
		User:            snap.User,
		IsAuthenticated: snap.IsAuthenticated,
	})
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("persist session", "component", "session", "error", err)
	}
	for _, l := range fns {
		l(snap)
	}
}

func (s *Store) setLoading(v bool) {
	s.update(func(st *State) bool {
		if st.IsLoading == v {
			return false
		}
		st.IsLoading = v
		return true
	})
}

// Init rehydrates the session from storage. If a token was stored without a
// user, the profile is fetched once. Later calls are no-ops.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		rec, err := s.auth.Load(ctx)
		if err != nil {
			s.logger.Warn("rehydrate session", "component", "session", "error", err)
		}
		s.update(func(st *State) bool {
			*st = State{
				Token:           rec.Token,
				User:            rec.User,
				IsAuthenticated: rec.IsAuthenticated && rec.Token != "",
			}
			return true
		})
		if rec.Token != "" && rec.User == nil {
			s.GetProfile(ctx)
		}
	})
}

// Login exchanges credentials for a token and loads the profile with it. The
// session only changes once both calls succeed.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading(true)
	tok, err := s.api.Login(ctx, creds)
	if err != nil {
		s.setLoading(false)
		return fmt.Errorf("session.Login: %w", err)
	}
	user, err := s.api.GetMeWithToken(ctx, tok.AccessToken)
	if err != nil {
		s.setLoading(false)
		return fmt.Errorf("session.Login: profile: %w", err)
	}

	s.update(func(st *State) bool {
		*st = State{Token: tok.AccessToken, User: user, IsAuthenticated: true}
		return true
	})
	s.logger.Info("logged in", "component", "session", "user_id", user.ID)
	return nil
}

// Adopt validates an externally supplied token (e.g. from the environment)
// by fetching its profile, and makes it the session token on success.
func (s *Store) Adopt(ctx context.Context, token string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	user, err := s.api.GetMeWithToken(ctx, token)
	if err != nil {
		return fmt.Errorf("session.Adopt: %w", err)
	}
	s.update(func(st *State) bool {
		*st = State{Token: token, User: user, IsAuthenticated: true}
		return true
	})
	return nil
}

// Logout clears the session and the persisted token. It makes no network
// call and is safe to call any number of times.
func (s *Store) Logout() {
	s.update(func(st *State) bool {
		*st = State{}
		return true
	})
}

// Register creates an account. The session itself is left as it was.
func (s *Store) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	u, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("session.Register: %w", err)
	}
	return u, nil
}

// GetProfile refreshes the user with the stored token. Failures are not
// returned: depending on the policy the session is logged out or kept.
func (s *Store) GetProfile(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	tok := s.State().Token
	if tok == "" {
		s.Logout()
		return
	}

	user, err := s.api.GetMeWithToken(ctx, tok)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if s.policy == FailClosed || client.IsStatus(err, http.StatusUnauthorized) {
			s.logger.Info("profile fetch failed, logging out", "component", "session", "error", err)
			s.Logout()
			return
		}
		s.logger.Warn("profile fetch failed", "component", "session", "error", err)
		return
	}

	s.update(func(st *State) bool {
		// A logout or a new login happened meanwhile.
		if st.Token != tok {
			return false
		}
		st.User = user
		st.IsAuthenticated = true
		return true
	})
}

// UpdateProfile sends a partial update and replaces the user with the
// server's representation.
func (s *Store) UpdateProfile(ctx context.Context, upd domain.ProfileUpdate) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	tok := s.State().Token
	if tok == "" {
		return ErrNotAuthenticated
	}
	user, err := s.api.UpdateMe(ctx, upd)
	if err != nil {
		return fmt.Errorf("session.UpdateProfile: %w", err)
	}
	s.update(func(st *State) bool {
		if st.Token != tok {
			return false
		}
		st.User = user
		return true
	})
	return nil
}

// TokenStore adapts the store for client.WithTokenStore. Reads go to the
// persisted record so a token cleared by the client is seen immediately.
func (s *Store) TokenStore() client.TokenStore { return s.auth }
