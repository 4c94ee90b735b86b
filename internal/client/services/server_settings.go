package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/what-to-eat/client/internal/client/api"
	"github.com/what-to-eat/client/internal/client/settings"
	"github.com/what-to-eat/client/internal/logging"
)

// ProbeFunc validates a candidate server address with a live health check.
// The production implementation is api.ProbeHealth.
type ProbeFunc func(ctx context.Context, baseURL string, timeout time.Duration) error

// ServerSettingsState is the observable state of the settings controller.
// Candidate is in-memory only until Save commits it.
type ServerSettingsState struct {
	Candidate string
	Saving    bool
	Saved     bool
	Err       string
}

// ServerSettingsService validates a candidate server address via a health
// probe before committing it to the settings store.
type ServerSettingsService struct {
	store        settings.Store
	probe        ProbeFunc
	probeTimeout time.Duration
	log          logging.Logger

	mu    sync.Mutex
	state ServerSettingsState
	watch *notifier[ServerSettingsState]
}

func NewServerSettingsService(store settings.Store, log logging.Logger, probeTimeout time.Duration) *ServerSettingsService {
	return &ServerSettingsService{
		store:        store,
		probe:        api.ProbeHealth,
		probeTimeout: probeTimeout,
		log:          log.With("component", "settings"),
		watch:        newNotifier[ServerSettingsState](),
	}
}

func (s *ServerSettingsService) State() ServerSettingsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ServerSettingsService) Subscribe() (<-chan ServerSettingsState, func()) {
	return s.watch.Subscribe()
}

func (s *ServerSettingsService) setState(mutate func(*ServerSettingsState)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	s.mu.Unlock()
	s.watch.publish(snapshot)
}

// Load initialises the candidate from the currently configured address.
func (s *ServerSettingsService) Load(ctx context.Context) error {
	host, err := s.store.ServerHost(ctx)
	if err != nil {
		return err
	}
	s.setState(func(st *ServerSettingsState) { st.Candidate = host })
	return nil
}

// SetCandidate updates the in-memory candidate address.
func (s *ServerSettingsService) SetCandidate(addr string) {
	s.setState(func(st *ServerSettingsState) {
		st.Candidate = addr
		st.Saved = false
		st.Err = ""
	})
}

// ResetToDefault sets the candidate back to the built-in default address.
// The store is not touched until Save is called.
func (s *ServerSettingsService) ResetToDefault() {
	s.setState(func(st *ServerSettingsState) {
		st.Candidate = settings.DefaultServerHost
		st.Saved = false
		st.Err = ""
	})
}

// Save validates the candidate locally, probes its health endpoint directly
// (bypassing the configured address, with the shorter probe timeout), and
// commits it only when the probe succeeds. On any failure the store is left
// unchanged and a cause-specific message is surfaced.
func (s *ServerSettingsService) Save(ctx context.Context) error {
	s.mu.Lock()
	candidate := strings.TrimSpace(s.state.Candidate)
	s.mu.Unlock()

	if candidate == "" {
		return s.fail(validationErr("Please enter a server address"))
	}
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		return s.fail(validationErr("Server address must start with http:// or https://"))
	}

	s.setState(func(st *ServerSettingsState) {
		st.Saving = true
		st.Saved = false
		st.Err = ""
	})

	if err := s.probe(ctx, candidate, s.probeTimeout); err != nil {
		s.log.Warn(ctx, "health probe failed", "candidate", candidate, "err", err)
		return s.fail(err)
	}

	if err := s.store.SetServerHost(ctx, candidate); err != nil {
		return s.fail(err)
	}

	s.setState(func(st *ServerSettingsState) {
		st.Candidate = candidate
		st.Saving = false
		st.Saved = true
	})
	s.log.Info(ctx, "server address saved", "host", candidate)
	return nil
}

func (s *ServerSettingsService) fail(err error) error {
	msg := displayMessage(err)
	s.setState(func(st *ServerSettingsState) {
		st.Saving = false
		st.Err = msg
	})
	return err
}
