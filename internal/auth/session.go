package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/drillfleet/internal/model"
)

const (
	LoginRoute     = "/login"
	DashboardRoute = "/dashboard"
)

var errUnbound = errors.New("session has no api bound")

type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Navigator moves the operator to another screen.
type Navigator interface {
	Navigate(route string)
}

// Authenticator is the subset of the API client the session drives.
type Authenticator interface {
	Login(ctx context.Context, creds model.LoginCredentials) (*model.AuthResponse, error)
	Register(ctx context.Context, creds model.RegisterCredentials) (*model.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*model.User, error)
}

// Session owns the bearer token and the current user. It is handed to the API client by
// reference, so each Session is an independent login.
type Session struct {
	mu    sync.RWMutex
	token string
	user  *model.User

	store    TokenStore
	nav      Navigator
	api      Authenticator
	onLogout []func()
	now      func() time.Time
	log      zerolog.Logger
}

// NewSession restores the stored token synchronously, so the first request after start
// already sees the right state. Expired JWTs are discarded.
func NewSession(ctx context.Context, store TokenStore, nav Navigator, log zerolog.Logger) (*Session, error) {
	s := &Session{
		store: store,
		nav:   nav,
		now:   time.Now,
		log:   log.With().Str("component", "session").Logger(),
	}
	token, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if token != "" && expired(token, s.now()) {
		s.log.Info().Msg("stored token expired, starting anonymous")
		if err := store.Clear(ctx); err != nil {
			s.log.Warn().Err(err).Msg("failed to clear expired token")
		}
		token = ""
	}
	s.token = token
	return s, nil
}

// Bind attaches the API used by Login, Register, Logout and RefreshUser.
func (s *Session) Bind(api Authenticator) {
	s.mu.Lock()
	s.api = api
	s.mu.Unlock()
}

// OnLogout registers a hook run whenever the session ends, by logout or by a 401.
func (s *Session) OnLogout(fn func()) {
	s.mu.Lock()
	s.onLogout = append(s.onLogout, fn)
	s.mu.Unlock()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) State() State {
	if s.Token() == "" {
		return StateAnonymous
	}
	return StateAuthenticated
}

// User returns the cached profile; it may be nil while authenticated until RefreshUser runs.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Login(ctx context.Context, creds model.LoginCredentials) (*model.User, error) {
	if err := model.Validate(creds); err != nil {
		return nil, err
	}
	api := s.authenticator()
	if api == nil {
		return nil, errUnbound
	}
	resp, err := api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *Session) Register(ctx context.Context, creds model.RegisterCredentials) (*model.User, error) {
	if err := model.Validate(creds); err != nil {
		return nil, err
	}
	api := s.authenticator()
	if api == nil {
		return nil, errUnbound
	}
	resp, err := api.Register(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *Session) establish(ctx context.Context, resp *model.AuthResponse) (*model.User, error) {
	if err := s.store.Save(ctx, resp.Token); err != nil {
		return nil, err
	}
	user := resp.User
	s.mu.Lock()
	s.token = resp.Token
	s.user = &user
	s.mu.Unlock()

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("logged in")
	s.nav.Navigate(DashboardRoute)
	return &user, nil
}

// Logout tells the API and ends the session locally even if the API call fails.
func (s *Session) Logout(ctx context.Context) {
	if s.Token() != "" {
		if api := s.authenticator(); api != nil {
			if err := api.Logout(ctx); err != nil {
				s.log.Warn().Err(err).Msg("logout request failed")
			}
		}
	}
	s.end(ctx)
}

// Invalidate is called by the API transport on any 401.
func (s *Session) Invalidate() {
	if s.Token() == "" {
		s.nav.Navigate(LoginRoute)
		return
	}
	s.log.Warn().Msg("api rejected token, ending session")
	s.end(context.Background())
}

func (s *Session) end(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	hooks := append([]func(){}, s.onLogout...)
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to clear stored token")
	}
	for _, fn := range hooks {
		fn()
	}
	s.nav.Navigate(LoginRoute)
}

// RefreshUser loads the profile for a restored token. Failures leave the state alone;
// a 401 has already ended the session through Invalidate.
func (s *Session) RefreshUser(ctx context.Context) (*model.User, error) {
	if s.Token() == "" {
		return nil, nil
	}
	api := s.authenticator()
	if api == nil {
		return nil, errUnbound
	}
	user, err := api.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.token != "" {
		s.user = user
	}
	s.mu.Unlock()
	return user, nil
}

func (s *Session) authenticator() Authenticator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api
}
