// Package main provides the CLI entrypoint for tuipairs.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuipairs/internal/config"
	"github.com/verte-zerg/tuipairs/internal/deck"
	"github.com/verte-zerg/tuipairs/internal/httpapi"
	"github.com/verte-zerg/tuipairs/internal/ledger"
	"github.com/verte-zerg/tuipairs/internal/logging"
	"github.com/verte-zerg/tuipairs/internal/model"
	"github.com/verte-zerg/tuipairs/internal/session"
	"github.com/verte-zerg/tuipairs/internal/sshserver"
	"github.com/verte-zerg/tuipairs/internal/stats"
	"github.com/verte-zerg/tuipairs/internal/statsui"
	"github.com/verte-zerg/tuipairs/internal/store"
	"github.com/verte-zerg/tuipairs/internal/symbols"
	"github.com/verte-zerg/tuipairs/internal/tui"
)

const (
	defaultGrid        = 4
	defaultSSHAddr     = "localhost:23234"
	defaultTrendWindow = 5
	shutdownTimeout    = 30 * time.Second
)

const (
	envLogLevel = "TUIPAIRS_LOG_LEVEL"
	envLogFile  = "TUIPAIRS_LOG_FILE"
)

var (
	gameName        string
	gameGrid        int
	gameTimeLimit   int
	gameSound       bool
	gameScoresFile  string
	gameSymbolsFile string
	gameSeed        int64

	scoresPlain bool

	statsDifficulty string
	statsSince      string
	statsLast       int
	statsWindow     int
	statsPlain      bool

	serveAddr     string
	serveHostKey  string
	serveHTTPAddr string
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuipairs",
		Short:         "TUI memory card pairs game",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&gameName, "name", "", "player name (default: Player)")
	flags.IntVar(&gameGrid, "grid", defaultGrid, "board size: 4 (Easy), 6 (Medium) or 8 (Hard)")
	flags.IntVar(&gameTimeLimit, "time-limit", session.DefaultTimeLimit, "session length in seconds")
	flags.BoolVar(&gameSound, "sound", true, "ring the terminal bell on matches")
	flags.StringVar(&gameScoresFile, "scores-file", ledger.DefaultFile, "high score file")
	flags.StringVar(&gameSymbolsFile, "symbols-file", "", "card symbol file, one per line (default: built-in animals)")
	rootCmd.Flags().Int64Var(&gameSeed, "seed", 0, "deck seed (0 = random)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveGameConfig(cmd)
	if err != nil {
		return err
	}
	alphabet, err := symbols.Resolve(cfg.SymbolsPath)
	if err != nil {
		return fmt.Errorf("failed to load symbols: %w", err)
	}

	logger, closeLog := newFileLogger()
	defer closeLog()

	scores := ledger.Open(ledger.FileStore{Path: cfg.ScoresPath}, logger)
	st := openHistory(logger)
	defer closeHistory(st, logger)

	var history session.HistorySink
	if st != nil {
		history = st
	}
	m := tui.NewModel(tui.Options{
		Config:  cfg,
		Symbols: alphabet,
		Scores:  scores,
		History: history,
		Logger:  logger,
		Bell:    tui.NewBell(os.Stderr),
		Seed:    gameSeed,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show the top 10 high scores",
		Args:  cobra.NoArgs,
		RunE:  runScoresCmd,
	}
	cmd.Flags().BoolVar(&scoresPlain, "plain", false, "print a plain table instead of the TUI")
	return cmd
}

func runScoresCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveGameConfig(cmd)
	if err != nil {
		return err
	}
	logger := newStderrLogger()
	scores := ledger.Open(ledger.FileStore{Path: cfg.ScoresPath}, logger)

	if scoresPlain || !isTerminal(os.Stdout) {
		if err := stats.RenderScores(cmd.OutOrStdout(), scores.Top()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	st := openHistory(logger)
	defer closeHistory(st, logger)
	return runStatsUI(st, scores, model.StatsConfig{TrendWindow: defaultTrendWindow}, statsui.TabScores)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session history stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDifficulty, "difficulty", "", "difficulty filter (easy, medium, hard)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsWindow, "window", defaultTrendWindow, "moving average window for the attempts trend")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	statsCfg, err := buildStatsConfig()
	if err != nil {
		return err
	}
	cfg, err := resolveGameConfig(cmd)
	if err != nil {
		return err
	}
	logger := newStderrLogger()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeHistory(st, logger)

	if statsPlain || !isTerminal(os.Stdout) {
		report, err := stats.BuildReport(context.Background(), st, statsCfg.Filter(), statsCfg.TrendWindow)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		if err := stats.RenderReport(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	scores := ledger.Open(ledger.FileStore{Path: cfg.ScoresPath}, logger)
	return runStatsUI(st, scores, statsCfg, statsui.TabOverview)
}

func buildStatsConfig() (model.StatsConfig, error) {
	difficulty, err := model.ParseDifficulty(statsDifficulty)
	if err != nil {
		return model.StatsConfig{}, fmt.Errorf("invalid --difficulty value: %w", err)
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--window must be >= 1")
	}
	return model.StatsConfig{
		Difficulty:  difficulty,
		Since:       sinceTime,
		Last:        statsLast,
		TrendWindow: statsWindow,
	}, nil
}

func runStatsUI(st *store.Store, scores *ledger.Ledger, cfg model.StatsConfig, tab int) error {
	var lister stats.SessionLister
	if st != nil {
		lister = st
	}
	m := statsui.NewModel(lister, scores, cfg, tab)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the game over SSH",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultSSHAddr, "SSH listen address")
	cmd.Flags().StringVar(&serveHostKey, "host-key", config.DefaultHostKeyPath(), "SSH host key path")
	cmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "", "optional HTTP scoreboard address, e.g. :8080")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveGameConfig(cmd)
	if err != nil {
		return err
	}
	alphabet, err := symbols.Resolve(cfg.SymbolsPath)
	if err != nil {
		return fmt.Errorf("failed to load symbols: %w", err)
	}
	logger := newStderrLogger()

	scores := ledger.Open(ledger.FileStore{Path: cfg.ScoresPath}, logger)
	st := openHistory(logger)
	defer closeHistory(st, logger)

	var history session.HistorySink
	var lister stats.SessionLister
	if st != nil {
		history = st
		lister = st
	}

	sshSrv, err := sshserver.New(sshserver.Config{
		Addr:        serveAddr,
		HostKeyPath: serveHostKey,
		Game:        cfg,
		Symbols:     alphabet,
		Scores:      scores,
		History:     history,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var httpSrv *http.Server
	if serveHTTPAddr != "" {
		httpSrv = &http.Server{
			Addr:              serveHTTPAddr,
			Handler:           httpapi.New(scores, lister, logger).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", serveAddr)
	go func() {
		if err := sshSrv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Error("could not start ssh server", "err", err)
			notifyStop(done)
		}
	}()
	if httpSrv != nil {
		logger.Info("starting HTTP scoreboard", "addr", serveHTTPAddr)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("could not start http server", "err", err)
				notifyStop(done)
			}
		}()
	}

	<-done
	logger.Info("stopping servers")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sshSrv.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		logger.Error("could not stop ssh server", "err", err)
	}
	if httpSrv != nil {
		if err := httpSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("could not stop http server", "err", err)
		}
	}
	return nil
}

// notifyStop wakes the serve loop without blocking when a stop is already queued.
func notifyStop(done chan<- os.Signal) {
	select {
	case done <- nil:
	default:
	}
}

// resolveGameConfig merges flags, the config file and defaults, in that order.
func resolveGameConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "name", &gameName, fileCfg.Game.Name)
	applyIntConfig(cmd, "grid", &gameGrid, fileCfg.Game.Grid)
	applyIntConfig(cmd, "time-limit", &gameTimeLimit, fileCfg.Game.TimeLimit)
	applyBoolConfig(cmd, "sound", &gameSound, fileCfg.Game.Sound)
	applyStringConfig(cmd, "scores-file", &gameScoresFile, fileCfg.Game.ScoresFile)
	applyStringConfig(cmd, "symbols-file", &gameSymbolsFile, fileCfg.Game.SymbolsFile)

	cfg := model.Config{
		PlayerName:  strings.TrimSpace(gameName),
		GridSize:    gameGrid,
		TimeLimit:   gameTimeLimit,
		Sound:       gameSound,
		ScoresPath:  gameScoresFile,
		SymbolsPath: gameSymbolsFile,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if !deck.SupportedSize(cfg.GridSize) {
		return fmt.Errorf("--grid must be one of 4, 6, 8")
	}
	if cfg.TimeLimit <= 0 {
		return fmt.Errorf("--time-limit must be > 0")
	}
	if cfg.ScoresPath == "" {
		return fmt.Errorf("--scores-file must not be empty")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// newFileLogger logs away from the terminal the TUI is drawing on.
func newFileLogger() (*log.Logger, func()) {
	path := os.Getenv(envLogFile)
	if path == "" {
		path = config.DefaultLogPath()
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		logErrf("failed to open log file %s: %v\n", path, err)
		return logging.Discard(), func() {}
	}
	logger := logging.New(f, logging.ParseLevel(os.Getenv(envLogLevel)))
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}
}

func newStderrLogger() *log.Logger {
	return logging.New(os.Stderr, logging.ParseLevel(os.Getenv(envLogLevel)))
}

// openHistory opens the session history. Failure disables history only.
func openHistory(logger *log.Logger) *store.Store {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		logger.Warn("session history disabled", "err", err)
		return nil
	}
	return st
}

func closeHistory(st *store.Store, logger *log.Logger) {
	if st == nil {
		return
	}
	if cerr := st.Close(); cerr != nil {
		logger.Warn("failed to close db", "err", cerr)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
