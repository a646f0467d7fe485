package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/client/config"
	"github.com/dmitrijs2005/streamdesk/internal/client/services"
	"github.com/dmitrijs2005/streamdesk/internal/client/session"
	"github.com/dmitrijs2005/streamdesk/internal/client/statedb"
	"github.com/dmitrijs2005/streamdesk/internal/client/upload"
	"github.com/dmitrijs2005/streamdesk/internal/filex"
	"github.com/dmitrijs2005/streamdesk/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	session        *session.Session
	authService    services.AuthService
	catalogService services.CatalogService
	uploadService  services.UploadService

	reader *bufio.Reader
	out    io.Writer
	// fancy enables the bubbletea progress view.
	fancy bool

	expired atomic.Bool
}

// NewApp opens the state database, restores the stored session and wires
// the API client and services.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	if err := filex.EnsureParentDir(c.StateFile); err != nil {
		return nil, err
	}
	db, err := statedb.Open(ctx, c.StateFile)
	if err != nil {
		return nil, err
	}

	sess := session.New(session.NewSQLiteStore(db), logger)
	if err := sess.Load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	api, err := client.New(client.Options{
		BaseURL:  c.APIBaseURL,
		Session:  sess,
		Logger:   logger,
		Timeout:  c.RequestTimeout,
		CacheTTL: c.CacheTTL,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	pipeline := upload.New(api, upload.HTTPTransfer{Client: &http.Client{}}, uploadOptions(c), logger)

	a := &App{
		config:         c,
		logger:         logger,
		db:             db,
		session:        sess,
		authService:    services.NewAuthService(api),
		catalogService: services.NewCatalogService(api),
		uploadService:  services.NewUploadService(pipeline),
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
		fancy:          isTerminal(int(os.Stdout.Fd())),
	}
	sess.OnCleared(a.onSessionCleared)
	return a, nil
}

func uploadOptions(c *config.Config) upload.Options {
	return upload.Options{
		SimulatedStep:         c.SimulatedStep,
		SimulatedDelay:        c.SimulatedDelay,
		TransferTimeout:       c.TransferTimeout,
		TranscodeWait:         c.TranscodeWait,
		TranscodePollInterval: c.TranscodePollInterval,
		TranscodeTimeout:      c.TranscodeTimeout,
		Compensate:            c.Compensate,
	}
}

func (a *App) onSessionCleared(reason session.ClearReason) {
	if reason == session.ReasonRefreshFailed {
		a.expired.Store(true)
	}
}

// Run starts the REPL and blocks until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to streamdesk (type 'help' for commands)")
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Restored session for", a.getStatus())
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) sessionExpired() bool {
	return a.expired.Swap(false)
}

func (a *App) getStatus() string {
	claims, err := a.session.Claims()
	if err != nil {
		return ""
	}
	if claims.IsAdmin() {
		return fmt.Sprintf("(%s admin)", claims.Email)
	}
	return fmt.Sprintf("(%s)", claims.Email)
}
