// Package services contains the client's controllers: session, decision,
// and server settings. Controllers own observable state; the presentation
// layer reads snapshots and subscribes to changes, it never holds logic.
package services

import (
	"context"
	"strings"
	"sync"

	"github.com/what-to-eat/client/internal/client/api"
	"github.com/what-to-eat/client/internal/client/settings"
	"github.com/what-to-eat/client/internal/logging"
)

// SessionStatus is the authentication state of the client.
type SessionStatus int

const (
	// StatusUnknown is the only legal initial status, before the stored
	// token has been checked.
	StatusUnknown SessionStatus = iota
	// StatusAnonymous means no session exists and guest login failed or
	// the user logged out.
	StatusAnonymous
	// StatusGuest is an authenticated session obtained without
	// user-supplied credentials.
	StatusGuest
	// StatusAuthenticated is a session backed by a registered account.
	StatusAuthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusGuest:
		return "guest"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// SessionState is the observable state of the session controller.
type SessionState struct {
	Status   SessionStatus
	UserID   int64
	Username string
	Busy     bool
	Err      string
}

// LoggedIn reports whether a usable session exists.
func (s SessionState) LoggedIn() bool {
	return s.Status == StatusGuest || s.Status == StatusAuthenticated
}

// SessionService owns the session state machine: check, auto guest login,
// login, register, guest login, logout. Credentials are always persisted
// before success is observable and cleared before logout is observable.
type SessionService struct {
	client api.Client
	store  settings.Store
	log    logging.Logger

	mu    sync.Mutex
	state SessionState
	watch *notifier[SessionState]
}

func NewSessionService(client api.Client, store settings.Store, log logging.Logger) *SessionService {
	return &SessionService{
		client: client,
		store:  store,
		log:    log.With("component", "session"),
		state:  SessionState{Status: StatusUnknown},
		watch:  newNotifier[SessionState](),
	}
}

// State returns a snapshot of the current session state.
func (s *SessionService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe observes state changes; see notifier for delivery semantics.
func (s *SessionService) Subscribe() (<-chan SessionState, func()) {
	return s.watch.Subscribe()
}

func (s *SessionService) setState(mutate func(*SessionState)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	s.mu.Unlock()
	s.watch.publish(snapshot)
}

// Check resolves Unknown from the stored credentials: a stored token means
// the previous session is still usable (guest or authenticated depending on
// the stored username). Without a token the status is left for
// AutoGuestLogin to settle. No network call is made.
func (s *SessionService) Check(ctx context.Context) error {
	creds, err := s.store.Credentials(ctx)
	if err != nil {
		return err
	}
	if creds == nil {
		return nil
	}

	status := StatusAuthenticated
	if creds.Username == settings.GuestUsername {
		status = StatusGuest
	}
	s.setState(func(st *SessionState) {
		st.Status = status
		st.UserID = creds.UserID
		st.Username = creds.Username
		st.Err = ""
	})
	return nil
}

// AutoGuestLogin implements the launch policy: when a token already exists
// the network is not touched at all; otherwise a guest login is attempted.
// Failure is absorbed into the Anonymous state, never returned.
func (s *SessionService) AutoGuestLogin(ctx context.Context) {
	creds, err := s.store.Credentials(ctx)
	if err == nil && creds != nil {
		_ = s.Check(ctx)
		return
	}

	res, err := s.client.GuestLogin(ctx)
	if err != nil {
		s.log.Warn(ctx, "auto guest login failed", "err", err)
		s.setState(func(st *SessionState) {
			st.Status = StatusAnonymous
		})
		return
	}

	if err := s.persistSession(ctx, res); err != nil {
		s.log.Error(ctx, "persisting guest credentials failed", "err", err)
		s.setState(func(st *SessionState) {
			st.Status = StatusAnonymous
		})
		return
	}

	s.setState(func(st *SessionState) {
		st.Status = StatusGuest
		st.UserID = res.UserID
		st.Username = res.Username
		st.Err = ""
	})
}

// persistSession writes the credential triple atomically. Success of any
// login flow is reported only after this returns.
func (s *SessionService) persistSession(ctx context.Context, res *api.LoginResult) error {
	return s.store.SetCredentials(ctx, settings.Credentials{
		Token:    res.Token,
		UserID:   res.UserID,
		Username: res.Username,
	})
}

// Login authenticates with the given credentials. Blank fields fail locally
// without a network call.
func (s *SessionService) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return s.fail(validationErr("Please enter username and password"))
	}

	s.setState(func(st *SessionState) { st.Busy = true; st.Err = "" })

	res, err := s.client.Login(ctx, username, password)
	if err != nil {
		return s.fail(err)
	}
	if err := s.persistSession(ctx, res); err != nil {
		return s.fail(err)
	}

	status := StatusAuthenticated
	if res.Username == settings.GuestUsername {
		status = StatusGuest
	}
	s.setState(func(st *SessionState) {
		st.Status = status
		st.UserID = res.UserID
		st.Username = res.Username
		st.Busy = false
		st.Err = ""
	})
	s.log.Info(ctx, "login succeeded", "user_id", res.UserID)
	return nil
}

// Register creates an account and, on success, chains into Login with the
// same credentials: registration does not itself establish a session.
func (s *SessionService) Register(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return s.fail(validationErr("Please enter username and password"))
	}
	if len(password) < 6 {
		return s.fail(validationErr("Password must be at least 6 characters"))
	}

	s.setState(func(st *SessionState) { st.Busy = true; st.Err = "" })

	if _, err := s.client.Register(ctx, username, password); err != nil {
		return s.fail(err)
	}
	return s.Login(ctx, username, password)
}

// GuestLogin establishes a guest session on explicit user request.
func (s *SessionService) GuestLogin(ctx context.Context) error {
	s.setState(func(st *SessionState) { st.Busy = true; st.Err = "" })

	res, err := s.client.GuestLogin(ctx)
	if err != nil {
		return s.fail(err)
	}
	if err := s.persistSession(ctx, res); err != nil {
		return s.fail(err)
	}

	s.setState(func(st *SessionState) {
		st.Status = StatusGuest
		st.UserID = res.UserID
		st.Username = res.Username
		st.Busy = false
		st.Err = ""
	})
	return nil
}

// Logout clears the stored credentials before flipping state, so no reader
// can observe a logged-in status with absent credentials.
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.ClearCredentials(ctx); err != nil {
		return s.fail(err)
	}
	s.setState(func(st *SessionState) {
		st.Status = StatusAnonymous
		st.UserID = 0
		st.Username = ""
		st.Err = ""
	})
	return nil
}

// fail stores the displayable message for the presentation layer and
// returns the original error to the caller.
func (s *SessionService) fail(err error) error {
	msg := displayMessage(err)
	s.setState(func(st *SessionState) {
		st.Busy = false
		st.Err = msg
	})
	return err
}
