// Package cli is the REPL front end of the what-to-eat client. It wires the
// controllers together and renders their observable state; all decisions
// and error handling live in the services layer.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/what-to-eat/client/internal/client/api"
	"github.com/what-to-eat/client/internal/client/config"
	"github.com/what-to-eat/client/internal/client/services"
	"github.com/what-to-eat/client/internal/client/settings"
	"github.com/what-to-eat/client/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	log    logging.Logger
	store  settings.Store

	session  *services.SessionService
	decision *services.DecisionService
	server   *services.ServerSettingsService

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewZerologLogger(logging.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	store, err := settings.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "opening settings store failed", "path", cfg.DatabasePath, "err", err)
		return nil, err
	}

	client := api.NewHTTPClient(store, log, cfg.HTTPTimeout)

	return &App{
		config:   cfg,
		log:      log,
		store:    store,
		session:  services.NewSessionService(client, store, log),
		decision: services.NewDecisionService(client, log),
		server:   services.NewServerSettingsService(store, log, cfg.ProbeTimeout),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.State().LoggedIn()
}

func (a *App) status() string {
	st := a.session.State()
	if st.LoggedIn() {
		return "(" + st.Username + ")"
	}
	return ""
}

// Run performs the launch sequence (resolve the stored session, fall back to
// guest login, warm the caches) and hands control to the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	if err := a.session.Check(ctx); err != nil {
		a.log.Warn(ctx, "session check failed", "err", err)
	}
	a.session.AutoGuestLogin(ctx)
	if a.isLoggedIn() {
		a.decision.Load(ctx)
	}

	printlnFn("Welcome to what-to-eat (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}
