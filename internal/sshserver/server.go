// Package sshserver hosts the game over SSH, one session per connection.
package sshserver

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/muesli/termenv"

	"github.com/verte-zerg/tuipairs/internal/ledger"
	"github.com/verte-zerg/tuipairs/internal/model"
	"github.com/verte-zerg/tuipairs/internal/session"
	"github.com/verte-zerg/tuipairs/internal/tui"
)

// Config configures the SSH host.
type Config struct {
	Addr        string
	HostKeyPath string
	Game        model.Config
	Symbols     []string
	Scores      *ledger.Ledger
	History     session.HistorySink
	Logger      *log.Logger
}

// New builds the SSH server. The host key is generated on first use.
func New(cfg Config) (*ssh.Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create host key dir: %w", err)
	}
	h := handler{cfg: cfg}
	srv, err := wish.NewServer(
		wish.WithAddress(cfg.Addr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithMiddleware(
			bm.Middleware(h.teaHandler),
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(cfg.Logger),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh server: %w", err)
	}
	return srv, nil
}

type handler struct {
	cfg Config
}

// teaHandler gives every connection its own model and deck generator while
// sharing the score ledger and history store.
func (h handler) teaHandler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	// Force a palette every remote client renders.
	lipgloss.SetColorProfile(termenv.ANSI256)

	game := h.cfg.Game
	if game.PlayerName == "" {
		game.PlayerName = s.User()
	}
	h.cfg.Logger.Info("new game session", "user", s.User(), "remote", s.RemoteAddr().String())

	m := tui.NewModel(tui.Options{
		Config:  game,
		Symbols: h.cfg.Symbols,
		Scores:  h.cfg.Scores,
		History: h.cfg.History,
		Logger:  h.cfg.Logger,
		Bell:    tui.NewBell(s.Stderr()),
	})
	return m, []tea.ProgramOption{tea.WithAltScreen()}
}
