package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/notesum/internal/client/client"
	"github.com/dmitrijs2005/notesum/internal/client/config"
	"github.com/dmitrijs2005/notesum/internal/client/services"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pending is the last summarize result that has not been saved yet.
type pending struct {
	note    string
	summary string
}

type App struct {
	config         *config.Config
	db             *sql.DB
	sessionService services.SessionService
	noteService    services.NoteService
	reader         *bufio.Reader
	out            io.Writer

	mu    sync.Mutex
	email string
	mode  Mode
	last  *pending
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.StateFile)
	if err != nil {
		log.Printf("error initializing local state: %s", err.Error())
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)

	return &App{
		config:         c,
		db:             db,
		sessionService: services.NewSessionService(api, db),
		noteService:    services.NewNoteService(api, db, c.ExportDir),
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) setEmail(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.email = email
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.email != ""
}

// getStatus renders the prompt suffix, e.g. "(alice@example.com online)".
func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.email
	if a.mode != "" {
		if s != "" {
			s += " "
		}
		s += string(a.mode)
	}
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

// Run restores a saved session, starts the connectivity watcher and blocks
// in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if email, ok, err := a.sessionService.Restore(ctx); err != nil {
		log.Printf("could not restore session: %s", err.Error())
	} else if ok {
		a.setEmail(email)
		log.Printf("Restored session for %s", email)
	}

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	printlnFn("Welcome to notesum (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.sessionService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
