// Package game implements the card matching state machine and its clock.
package game

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tuipairs/internal/deck"
)

// FlipBackDelay is how long a mismatched pair stays face up.
const FlipBackDelay = time.Second

// State is the engine's selection state.
type State int

const (
	AwaitingFirst State = iota
	AwaitingSecond
	Locked
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case AwaitingFirst:
		return "awaiting-first"
	case AwaitingSecond:
		return "awaiting-second"
	case Locked:
		return "locked"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Ended reports whether the state is terminal.
func (s State) Ended() bool {
	return s == Won || s == Lost
}

// Options labels the status line.
type Options struct {
	Player     string
	Difficulty string
}

// Snapshot is a copy of the engine state.
type Snapshot struct {
	State         State
	FirstSelected int
	Attempts      int
	PairsFound    int
	TotalPairs    int
	TimeLeft      int
	Cards         []CardView
}

// Engine resolves card selections for one board. It is not safe for
// concurrent use; Select, Tick and scheduled tasks must be serialized.
type Engine struct {
	cards      []deck.Card
	opts       Options
	clock      *Clock
	sched      Scheduler
	listener   Listener
	state      State
	first      int
	attempts   int
	pairsFound int
	totalPairs int

	flipTask    TaskID
	flipPending bool
	closed      bool
}

// NewEngine takes ownership of cards. The clock is expected to be started by
// the caller.
func NewEngine(cards []deck.Card, clock *Clock, sched Scheduler, listener Listener, opts Options) *Engine {
	return &Engine{
		cards:      cards,
		opts:       opts,
		clock:      clock,
		sched:      sched,
		listener:   listener,
		state:      AwaitingFirst,
		first:      -1,
		totalPairs: len(cards) / 2,
	}
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Active reports whether selections are accepted.
func (e *Engine) Active() bool {
	if e.closed {
		return false
	}
	return e.state == AwaitingFirst || e.state == AwaitingSecond
}

// Select flips the card at index. Selections of out-of-range, matched or
// face-up cards, and selections while locked or ended, are ignored.
func (e *Engine) Select(index int) {
	if !e.Active() || index < 0 || index >= len(e.cards) {
		return
	}
	card := &e.cards[index]
	if card.Matched || card.Flipped {
		return
	}
	card.Flipped = true
	e.renderCard(index)

	if e.state == AwaitingFirst {
		e.first = index
		e.state = AwaitingSecond
		e.renderStatus()
		return
	}

	first := e.first
	e.first = -1
	e.attempts++

	if e.cards[first].Symbol == card.Symbol {
		e.cards[first].Matched = true
		card.Matched = true
		e.pairsFound++
		e.renderCard(first)
		e.renderCard(index)
		e.renderStatus()
		if e.pairsFound == e.totalPairs {
			e.state = Won
			e.clock.Stop()
			e.listener.PlaySound(SoundWin)
			e.listener.GameOver(e.result())
			return
		}
		e.listener.PlaySound(SoundMatch)
		e.state = AwaitingFirst
		return
	}

	e.state = Locked
	e.renderStatus()
	e.listener.PlaySound(SoundMismatch)
	e.flipTask = e.sched.Schedule(FlipBackDelay, func() {
		e.flipBack(first, index)
	})
	e.flipPending = true
}

// Tick advances the clock by one second. When it reaches zero the game is
// lost whatever the current selection state.
func (e *Engine) Tick() {
	if e.closed || e.state.Ended() {
		return
	}
	remaining := e.clock.Tick()
	e.listener.RenderTimer(FormatSeconds(remaining), e.clock.Warning())
	if remaining > 0 {
		return
	}
	e.cancelFlipBack()
	e.state = Lost
	e.first = -1
	e.clock.Stop()
	e.listener.RenderStatus(fmt.Sprintf("Time's up! Pairs: %d/%d", e.pairsFound, e.totalPairs))
	e.listener.GameOver(e.result())
}

// Close stops the clock and drops any pending flip-back so a discarded board
// is never mutated again.
func (e *Engine) Close() {
	e.cancelFlipBack()
	e.clock.Stop()
	e.closed = true
}

// StatusText formats the status line for the current counters.
func (e *Engine) StatusText() string {
	return fmt.Sprintf("%s | %s | Attempts: %d | Pairs: %d/%d",
		e.opts.Player, e.opts.Difficulty, e.attempts, e.pairsFound, e.totalPairs)
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	views := make([]CardView, len(e.cards))
	for i := range e.cards {
		views[i] = view(e.cards[i])
	}
	return Snapshot{
		State:         e.state,
		FirstSelected: e.first,
		Attempts:      e.attempts,
		PairsFound:    e.pairsFound,
		TotalPairs:    e.totalPairs,
		TimeLeft:      e.clock.Remaining(),
		Cards:         views,
	}
}

// RenderAll emits the full board, status and timer.
func (e *Engine) RenderAll() {
	for i := range e.cards {
		e.renderCard(i)
	}
	e.renderStatus()
	e.listener.RenderTimer(FormatSeconds(e.clock.Remaining()), e.clock.Warning())
}

func (e *Engine) flipBack(a, b int) {
	e.flipPending = false
	if e.closed || e.state != Locked {
		return
	}
	e.cards[a].Flipped = false
	e.cards[b].Flipped = false
	e.renderCard(a)
	e.renderCard(b)
	e.state = AwaitingFirst
	e.renderStatus()
}

func (e *Engine) cancelFlipBack() {
	if !e.flipPending {
		return
	}
	e.sched.Cancel(e.flipTask)
	e.flipPending = false
}

func (e *Engine) result() Result {
	return Result{
		Won:        e.state == Won,
		Attempts:   e.attempts,
		PairsFound: e.pairsFound,
		TotalPairs: e.totalPairs,
		TimeLeft:   e.clock.Remaining(),
	}
}

func (e *Engine) renderCard(index int) {
	e.listener.RenderCard(index, view(e.cards[index]))
}

func (e *Engine) renderStatus() {
	e.listener.RenderStatus(e.StatusText())
}

func view(c deck.Card) CardView {
	return CardView{Symbol: c.Symbol, FaceUp: c.Flipped || c.Matched, Matched: c.Matched}
}
