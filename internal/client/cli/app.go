// Package cli is the interactive Journey Connect client. It resolves the
// session on start, offers the commands the signed-in role may use and can
// follow the message feed in the background.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/journeyconnect/journeyconnect/internal/client/client"
	"github.com/journeyconnect/journeyconnect/internal/client/config"
	"github.com/journeyconnect/journeyconnect/internal/client/feed"
	"github.com/journeyconnect/journeyconnect/internal/client/session"
	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

type App struct {
	api     *client.Client
	session *session.Resolver
	feed    *feed.Poller
	in      *bufio.Reader
	log     logging.Logger

	out io.Writer

	seenMu   sync.Mutex
	lastSeen string
}

// syncWriter serialises REPL output with feed output.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func NewApp(cfg *config.Config, log logging.Logger) *App {
	return newApp(cfg, log, os.Stdin, os.Stdout)
}

func newApp(cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) *App {
	api := client.New(cfg.ServerURL, cfg.RequestTimeout)
	a := &App{
		api:     api,
		session: session.NewResolver(api, client.TokenFile{Path: cfg.CredentialFile}, log),
		in:      bufio.NewReader(in),
		out:     &syncWriter{w: out},
		log:     log,
	}
	a.feed = feed.NewPoller(api, cfg.PollInterval, a.showFeed, log)
	return a
}

// Run resolves the stored session and reads commands until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.feed.Stop()

	a.println("Welcome to Journey Connect (type 'help' for commands)")
	if st := a.session.Resolve(ctx); st.Authenticated {
		a.printf("Signed in as %s (%s)\n", st.User.Name, st.User.Role)
	} else {
		a.println("Not signed in. Use 'login' with your auth provider session id.")
	}

	runREPL(ctx, a)
}

func (a *App) user() (models.User, bool) {
	st := a.session.Current()
	if !st.Authenticated {
		return models.User{}, false
	}
	return *st.User, true
}

func (a *App) status() string {
	u, ok := a.user()
	if !ok {
		return "(anonymous)"
	}
	s := fmt.Sprintf("(%s %s", u.Name, u.Role)
	if a.feed.Running() {
		s += " feed"
	}
	return s + ")"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
