// Package session wires a deck, a match engine, a clock and the score
// ledger into one play session.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/verte-zerg/tuipairs/internal/deck"
	"github.com/verte-zerg/tuipairs/internal/game"
	"github.com/verte-zerg/tuipairs/internal/ledger"
	"github.com/verte-zerg/tuipairs/internal/model"
)

const (
	// DefaultPlayer replaces an empty player name.
	DefaultPlayer = "Player"
	// DefaultTimeLimit is the session length in seconds.
	DefaultTimeLimit = 180
)

// Presenter renders a session.
type Presenter interface {
	RenderCard(index int, card game.CardView)
	RenderStatus(text string)
	RenderTimer(clock string, warning bool)
	PlaySound(kind game.SoundKind)
	SessionEnd(won bool, summary string)
}

// ScoreKeeper receives winning scores.
type ScoreKeeper interface {
	Add(entry ledger.Entry)
}

// HistorySink records finished sessions.
type HistorySink interface {
	InsertSession(ctx context.Context, rec model.SessionRecord) error
}

// Options configures a session. Generator and Scheduler are required.
type Options struct {
	Player    string
	GridSize  int
	TimeLimit int
	Generator *deck.Generator
	Scheduler game.Scheduler
	Scores    ScoreKeeper
	History   HistorySink
	Logger    *log.Logger
	Now       func() time.Time
}

// Session is one playthrough from deck generation to win or loss.
type Session struct {
	id        string
	opts      Options
	presenter Presenter
	engine    *game.Engine
	startedAt time.Time
	result    *game.Result
}

// New generates a board and starts the clock. On error no session exists.
func New(opts Options, presenter Presenter) (*Session, error) {
	if opts.Generator == nil || opts.Scheduler == nil {
		return nil, fmt.Errorf("%w: session needs a generator and a scheduler", deck.ErrInvalidConfiguration)
	}
	if opts.TimeLimit < 0 {
		return nil, fmt.Errorf("%w: negative time limit %d", deck.ErrInvalidConfiguration, opts.TimeLimit)
	}
	if opts.TimeLimit == 0 {
		opts.TimeLimit = DefaultTimeLimit
	}
	opts.Player = strings.TrimSpace(opts.Player)
	if opts.Player == "" {
		opts.Player = DefaultPlayer
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cards, err := opts.Generator.Generate(opts.GridSize)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        uuid.NewString(),
		opts:      opts,
		presenter: presenter,
		startedAt: opts.Now(),
	}
	clock := game.NewClock()
	clock.Start(opts.TimeLimit)
	s.engine = game.NewEngine(cards, clock, opts.Scheduler, relay{s}, game.Options{
		Player:     opts.Player,
		Difficulty: s.Difficulty(),
	})
	s.engine.RenderAll()
	return s, nil
}

// ID returns the session identifier used in history records.
func (s *Session) ID() string {
	return s.id
}

// Player returns the resolved player name.
func (s *Session) Player() string {
	return s.opts.Player
}

// GridSize returns the board width.
func (s *Session) GridSize() int {
	return s.opts.GridSize
}

// Difficulty returns the label for the grid size.
func (s *Session) Difficulty() string {
	return model.DifficultyLabel(s.opts.GridSize)
}

// OnCardActivated relays a card selection to the engine.
func (s *Session) OnCardActivated(index int) {
	s.engine.Select(index)
}

// Tick advances the session clock by one second.
func (s *Session) Tick() {
	s.engine.Tick()
}

// Close discards pending deferred work. The session accepts no more input.
func (s *Session) Close() {
	s.engine.Close()
}

// Snapshot returns the engine state.
func (s *Session) Snapshot() game.Snapshot {
	return s.engine.Snapshot()
}

// Ended reports whether the session was won or lost.
func (s *Session) Ended() bool {
	return s.result != nil
}

// Result returns the final result once the session has ended.
func (s *Session) Result() (game.Result, bool) {
	if s.result == nil {
		return game.Result{}, false
	}
	return *s.result, true
}

func (s *Session) finish(result game.Result) {
	s.result = &result
	var summary string
	if result.Won {
		timeLeft := game.FormatSeconds(result.TimeLeft)
		if s.opts.Scores != nil {
			s.opts.Scores.Add(ledger.Entry{
				Player:     s.opts.Player,
				Difficulty: s.Difficulty(),
				Attempts:   result.Attempts,
				TimeLeft:   timeLeft,
			})
		}
		summary = WinSummary(s.opts.Player, result.Attempts, timeLeft)
	} else {
		summary = LossSummary(result.PairsFound, result.TotalPairs)
	}
	s.record(result)
	s.opts.Logger.Info("session ended",
		"session", s.id,
		"player", s.opts.Player,
		"difficulty", s.Difficulty(),
		"won", result.Won,
		"attempts", result.Attempts,
		"pairs", result.PairsFound,
	)
	s.presenter.SessionEnd(result.Won, summary)
}

func (s *Session) record(result game.Result) {
	if s.opts.History == nil {
		return
	}
	rec := model.SessionRecord{
		ID:           s.id,
		Player:       s.opts.Player,
		GridSize:     s.opts.GridSize,
		Difficulty:   s.Difficulty(),
		Won:          result.Won,
		Attempts:     result.Attempts,
		PairsFound:   result.PairsFound,
		TotalPairs:   result.TotalPairs,
		TimeLimitSec: s.opts.TimeLimit,
		TimeLeftSec:  result.TimeLeft,
		StartedAt:    s.startedAt,
		EndedAt:      s.opts.Now(),
	}
	if err := s.opts.History.InsertSession(context.Background(), rec); err != nil {
		s.opts.Logger.Warn("failed to record session", "session", s.id, "err", err)
	}
}

// WinSummary formats the end-of-session message for a win.
func WinSummary(player string, attempts int, timeLeft string) string {
	return fmt.Sprintf("Congratulations %s! You won in %d attempts! With %s remaining!", player, attempts, timeLeft)
}

// LossSummary formats the end-of-session message for a timeout.
func LossSummary(pairsFound, totalPairs int) string {
	return fmt.Sprintf("Time's up! You found %d of %d pairs.", pairsFound, totalPairs)
}

// relay adapts engine events to the presenter.
type relay struct {
	s *Session
}

func (r relay) RenderCard(index int, card game.CardView) {
	r.s.presenter.RenderCard(index, card)
}

func (r relay) RenderStatus(text string) {
	r.s.presenter.RenderStatus(text)
}

func (r relay) RenderTimer(clock string, warning bool) {
	r.s.presenter.RenderTimer(clock, warning)
}

func (r relay) PlaySound(kind game.SoundKind) {
	r.s.presenter.PlaySound(kind)
}

func (r relay) GameOver(result game.Result) {
	r.s.finish(result)
}
