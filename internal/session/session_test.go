package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tw-accounting/twacc/internal/storage"
	"github.com/tw-accounting/twacc/pkg/client"
	"github.com/tw-accounting/twacc/pkg/domain"
)

type fakeAPI struct {
	login    func(domain.Credentials) (*domain.AuthToken, error)
	register func(domain.RegisterRequest) (*domain.User, error)
	me       func(token string) (*domain.User, error)
	update   func(domain.ProfileUpdate) (*domain.User, error)
	calls    int
}

func (f *fakeAPI) Login(_ context.Context, c domain.Credentials) (*domain.AuthToken, error) {
	f.calls++
	return f.login(c)
}

func (f *fakeAPI) Register(_ context.Context, r domain.RegisterRequest) (*domain.User, error) {
	f.calls++
	return f.register(r)
}

func (f *fakeAPI) GetMeWithToken(_ context.Context, tok string) (*domain.User, error) {
	f.calls++
	return f.me(tok)
}

func (f *fakeAPI) UpdateMe(_ context.Context, u domain.ProfileUpdate) (*domain.User, error) {
	f.calls++
	return f.update(u)
}

var alice = &domain.User{ID: 1, Email: "alice@example.com", Name: "Alice", IsActive: true}

func okAPI() *fakeAPI {
	return &fakeAPI{
		login: func(c domain.Credentials) (*domain.AuthToken, error) {
			if c.Password != "secret" {
				return nil, &client.HTTPError{StatusCode: 401, Message: "Incorrect email or password"}
			}
			return &domain.AuthToken{AccessToken: "jwt-1", TokenType: "bearer"}, nil
		},
		register: func(r domain.RegisterRequest) (*domain.User, error) {
			return &domain.User{ID: 2, Email: r.Email}, nil
		},
		me: func(tok string) (*domain.User, error) {
			if tok != "jwt-1" {
				return nil, &client.HTTPError{StatusCode: 401, Message: "bad token"}
			}
			return alice, nil
		},
		update: func(u domain.ProfileUpdate) (*domain.User, error) {
			cp := *alice
			if u.Name != nil {
				cp.Name = *u.Name
			}
			return &cp, nil
		},
	}
}

func newStore(t *testing.T, api AuthAPI, opts ...Option) (*Store, *storage.AuthStore, storage.KV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	auth := storage.NewAuthStore(kv)
	return New(api, auth, opts...), auth, kv
}

func persisted(t *testing.T, kv storage.KV) storage.AuthRecord {
	t.Helper()
	rec, err := storage.NewAuthStore(kv).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return rec
}

func TestLoginSuccess(t *testing.T) {
	s, _, kv := newStore(t, okAPI())

	if err := s.Login(context.Background(), domain.Credentials{Username: alice.Email, Password: "secret"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	st := s.State()
	if !st.IsAuthenticated || st.Token != "jwt-1" || st.User == nil || st.User.ID != 1 || st.IsLoading {
		t.Errorf("state = %+v", st)
	}
	rec := persisted(t, kv)
	if rec.Token != "jwt-1" || !rec.IsAuthenticated || rec.User == nil {
		t.Errorf("persisted = %+v", rec)
	}
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	s, _, kv := newStore(t, okAPI())

	err := s.Login(context.Background(), domain.Credentials{Username: alice.Email, Password: "wrong"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !client.IsStatus(err, 401) {
		t.Errorf("err = %v, want wrapped 401", err)
	}
	st := s.State()
	if st.IsAuthenticated || st.Token != "" || st.User != nil || st.IsLoading {
		t.Errorf("state = %+v, want logged out and not loading", st)
	}
	if rec := persisted(t, kv); rec.Token != "" {
		t.Errorf("persisted token = %q, want empty", rec.Token)
	}
}

func TestLoginProfileFailureStoresNoToken(t *testing.T) {
	api := okAPI()
	api.me = func(string) (*domain.User, error) { return nil, errors.New("connection reset") }
	s, _, kv := newStore(t, api)

	if err := s.Login(context.Background(), domain.Credentials{Password: "secret"}); err == nil {
		t.Fatal("expected error")
	}
	if st := s.State(); st.Token != "" || st.IsAuthenticated {
		t.Errorf("state = %+v, want no partial token", st)
	}
	if rec := persisted(t, kv); rec.Token != "" {
		t.Errorf("persisted token = %q", rec.Token)
	}
}

func TestLogoutIsIdempotentAndOffline(t *testing.T) {
	api := okAPI()
	s, _, kv := newStore(t, api)
	if err := s.Login(context.Background(), domain.Credentials{Password: "secret"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	calls := api.calls

	s.Logout()
	first := s.State()
	s.Logout()
	second := s.State()

	if api.calls != calls {
		t.Errorf("Logout made %d API calls", api.calls-calls)
	}
	if first != second || first != (State{}) {
		t.Errorf("states = %+v / %+v, want zero both times", first, second)
	}
	if rec := persisted(t, kv); rec.Token != "" || rec.User != nil || rec.IsAuthenticated {
		t.Errorf("persisted = %+v, want zero", rec)
	}
}

func TestGetProfileFailureLogsOut(t *testing.T) {
	api := okAPI()
	s, _, _ := newStore(t, api)
	if err := s.Login(context.Background(), domain.Credentials{Password: "secret"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	api.me = func(string) (*domain.User, error) {
		return nil, &client.HTTPError{StatusCode: 500, Message: "boom"}
	}
	s.GetProfile(context.Background())

	if st := s.State(); st != (State{}) {
		t.Errorf("state = %+v, want logged-out state", st)
	}
}

func TestGetProfileUnauthorizedOnlyPolicy(t *testing.T) {
	api := okAPI()
	s, _, _ := newStore(t, api, WithFailurePolicy(UnauthorizedOnly))
	if err := s.Login(context.Background(), domain.Credentials{Password: "secret"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	api.me = func(string) (*domain.User, error) {
		return nil, &client.HTTPError{StatusCode: 503, Message: "maintenance"}
	}
	s.GetProfile(context.Background())
	if st := s.State(); !st.IsAuthenticated {
		t.Errorf("state = %+v, want session kept on 503", st)
	}

	api.me = func(string) (*domain.User, error) {
		return nil, &client.HTTPError{StatusCode: 401, Message: "expired"}
	}
	s.GetProfile(context.Background())
	if st := s.State(); st.IsAuthenticated {
		t.Errorf("state = %+v, want logged out on 401", st)
	}
}

func TestInitRehydratesAndFetchesMissingUser(t *testing.T) {
	api := okAPI()
	s, auth, _ := newStore(t, api)
	if err := auth.Save(context.Background(), storage.AuthRecord{Token: "jwt-1"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	s.Init(context.Background())
	st := s.State()
	if !st.IsAuthenticated || st.User == nil || st.User.Email != alice.Email {
		t.Errorf("state = %+v, want profile loaded", st)
	}

	calls := api.calls
	s.Init(context.Background())
	if api.calls != calls {
		t.Error("second Init made API calls")
	}
}

func TestInitWithFullRecordMakesNoCalls(t *testing.T) {
	api := okAPI()
	s, auth, _ := newStore(t, api)
	auth.Save(context.Background(), storage.AuthRecord{Token: "jwt-1", User: alice, IsAuthenticated: true}) //nolint:errcheck

	s.Init(context.Background())
	if api.calls != 0 {
		t.Errorf("Init made %d API calls, want 0", api.calls)
	}
	if st := s.State(); !st.IsAuthenticated || st.User.ID != alice.ID {
		t.Errorf("state = %+v", st)
	}
}

func TestRegisterDoesNotChangeSession(t *testing.T) {
	s, _, _ := newStore(t, okAPI())
	u, err := s.Register(context.Background(), domain.RegisterRequest{Email: "bob@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if u.Email != "bob@example.com" {
		t.Errorf("user = %+v", u)
	}
	if st := s.State(); st != (State{}) {
		t.Errorf("state = %+v, want unchanged", st)
	}
}

func TestUpdateProfile(t *testing.T) {
	api := okAPI()
	s, _, _ := newStore(t, api)

	name := "Alice B."
	if err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &name}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}

	if err := s.Login(context.Background(), domain.Credentials{Password: "secret"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if got := s.State().User.Name; got != name {
		t.Errorf("Name = %q, want %q", got, name)
	}

	api.update = func(domain.ProfileUpdate) (*domain.User, error) {
		return nil, &client.HTTPError{StatusCode: 400, Message: "Email already registered"}
	}
	other := "Mallory"
	if err := s.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: &other}); err == nil {
		t.Fatal("expected error")
	}
	if got := s.State().User.Name; got != name {
		t.Errorf("Name = %q after failed update, want %q", got, name)
	}
}

func TestSubscribe(t *testing.T) {
	s, _, _ := newStore(t, okAPI())
	var seen []State
	unsubscribe := s.Subscribe(func(st State) { seen = append(seen, st) })

	if err := s.Login(context.Background(), domain.Credentials{Password: "secret"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if len(seen) == 0 || !seen[len(seen)-1].IsAuthenticated {
		t.Fatalf("seen = %+v, want final authenticated state", seen)
	}
	if !seen[0].IsLoading {
		t.Errorf("first notification = %+v, want loading", seen[0])
	}

	unsubscribe()
	n := len(seen)
	s.Logout()
	if len(seen) != n {
		t.Error("listener called after unsubscribe")
	}
}

// A 401 from any request clears the stored token through the client's
// trap, and the handler brings the in-memory session down with it.
func TestUnauthorizedResponseClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer jwt-1" && r.URL.Path == "/api/auth/me" {
			json.NewEncoder(w).Encode(alice) //nolint:errcheck
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"}) //nolint:errcheck
	}))
	defer srv.Close()

	kv := storage.NewMemoryKV()
	auth := storage.NewAuthStore(kv)
	var store *Store
	c := client.New(srv.URL, client.WithTokenStore(auth), client.WithUnauthorizedHandler(func() { store.Logout() }))
	store = New(c, auth)

	if err := store.Adopt(context.Background(), "jwt-1"); err != nil {
		t.Fatalf("Adopt() error: %v", err)
	}
	if !store.State().IsAuthenticated {
		t.Fatal("expected authenticated session")
	}

	if _, err := c.ListAccounts(context.Background()); !client.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("ListAccounts() err = %v, want 401", err)
	}
	if st := store.State(); st != (State{}) {
		t.Errorf("state = %+v, want logged out", st)
	}
	if rec := persisted(t, kv); rec.Token != "" {
		t.Errorf("persisted token = %q, want empty", rec.Token)
	}
}

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    FailurePolicy
		wantErr bool
	}{
		{"", FailClosed, false},
		{"logout", FailClosed, false},
		{"unauthorized-only", UnauthorizedOnly, false},
		{"sometimes", FailClosed, true},
	}
	for _, tt := range tests {
		got, err := ParseFailurePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFailurePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}
