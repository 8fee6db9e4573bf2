package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/api"
	"github.com/nurpe/drillfleet/internal/model"
)

type fakeAuthAPI struct {
	loginResp  *model.AuthResponse
	loginErr   error
	logoutErr  error
	logoutHits int
	user       *model.User
}

func (f *fakeAuthAPI) Login(context.Context, model.LoginCredentials) (*model.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Register(context.Context, model.RegisterCredentials) (*model.AuthResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Logout(context.Context) error {
	f.logoutHits++
	return f.logoutErr
}

func (f *fakeAuthAPI) CurrentUser(context.Context) (*model.User, error) {
	return f.user, nil
}

func newSession(t *testing.T, store TokenStore) (*Session, *Router) {
	t.Helper()
	router := NewRouter(LoginRoute, zerolog.Nop())
	s, err := NewSession(context.Background(), store, router, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, router
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	s, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestRestoreIsSynchronous(t *testing.T) {
	s, _ := newSession(t, &MemoryTokenStore{token: "opaque-token"})
	if s.State() != StateAuthenticated {
		t.Fatalf("state = %s, want authenticated", s.State())
	}
	if s.Token() != "opaque-token" {
		t.Errorf("token = %q", s.Token())
	}
}

func TestExpiredTokenDiscarded(t *testing.T) {
	store := &MemoryTokenStore{token: signed(t, time.Now().Add(-time.Hour))}
	s, _ := newSession(t, store)
	if s.State() != StateAnonymous {
		t.Fatalf("state = %s, want anonymous", s.State())
	}
	if store.token != "" {
		t.Error("expired token left in store")
	}

	fresh := &MemoryTokenStore{token: signed(t, time.Now().Add(time.Hour))}
	s, _ = newSession(t, fresh)
	if s.State() != StateAuthenticated {
		t.Errorf("valid jwt dropped")
	}
}

func TestLoginEstablishesSession(t *testing.T) {
	store := &MemoryTokenStore{}
	s, router := newSession(t, store)
	s.Bind(&fakeAuthAPI{loginResp: &model.AuthResponse{Token: "t1", User: model.User{ID: 3, Role: model.RoleEngineer}}})

	user, err := s.Login(context.Background(), model.LoginCredentials{Email: "eng@site.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != 3 || s.User().ID != 3 {
		t.Errorf("user = %+v", user)
	}
	if store.token != "t1" || s.State() != StateAuthenticated {
		t.Errorf("store=%q state=%s", store.token, s.State())
	}
	if router.Current() != DashboardRoute {
		t.Errorf("route = %s", router.Current())
	}
}

func TestLoginRejectsInvalidCredentials(t *testing.T) {
	s, _ := newSession(t, &MemoryTokenStore{})
	fake := &fakeAuthAPI{}
	s.Bind(fake)
	if _, err := s.Login(context.Background(), model.LoginCredentials{Email: "not-an-email", Password: "pw"}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLogoutRunsHooksDespiteAPIFailure(t *testing.T) {
	store := &MemoryTokenStore{token: "t1"}
	s, router := newSession(t, store)
	fake := &fakeAuthAPI{logoutErr: errors.New("boom")}
	s.Bind(fake)
	router.Navigate(DashboardRoute)

	cleared := 0
	s.OnLogout(func() { cleared++ })
	s.Logout(context.Background())

	if fake.logoutHits != 1 || cleared != 1 {
		t.Errorf("logoutHits=%d cleared=%d", fake.logoutHits, cleared)
	}
	if s.State() != StateAnonymous || store.token != "" {
		t.Error("session not cleared")
	}
	if router.Current() != LoginRoute {
		t.Errorf("route = %s", router.Current())
	}
}

func TestUnauthorizedFromAnyEndpointEndsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"invalid token"}`)
	}))
	defer srv.Close()

	store := &MemoryTokenStore{token: "stale"}
	s, router := newSession(t, store)
	router.Navigate(DashboardRoute)
	client := api.NewClient(api.Options{BaseURL: srv.URL, Timeout: time.Second}, s, zerolog.Nop())
	s.Bind(client)

	calls := []func() error{
		func() error { _, err := client.FuelSummary(context.Background(), 1); return err },
		func() error { _, err := client.ListInventory(context.Background()); return err },
	}
	for i, call := range calls {
		store.token = "stale"
		s.mu.Lock()
		s.token = "stale"
		s.mu.Unlock()
		router.Navigate(DashboardRoute)

		if err := call(); !errors.Is(err, api.ErrUnauthorized) {
			t.Fatalf("call %d: err = %v", i, err)
		}
		if s.Token() != "" || store.token != "" {
			t.Errorf("call %d: token not cleared", i)
		}
		if router.Current() != LoginRoute {
			t.Errorf("call %d: route = %s", i, router.Current())
		}
	}
}

func TestFileTokenStore(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "token"))
	ctx := context.Background()

	if tok, err := store.Load(ctx); err != nil || tok != "" {
		t.Fatalf("empty load = %q, %v", tok, err)
	}
	if err := store.Save(ctx, "abc\n"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if tok, _ := store.Load(ctx); tok != "abc" {
		t.Errorf("load = %q", tok)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}
