package game

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuipairs/internal/deck"
)

type recorder struct {
	cards    map[int]CardView
	statuses []string
	timers   []string
	warnings []bool
	sounds   []SoundKind
	results  []Result
}

func newRecorder() *recorder {
	return &recorder{cards: map[int]CardView{}}
}

func (r *recorder) RenderCard(index int, card CardView) {
	r.cards[index] = card
}

func (r *recorder) RenderStatus(text string) {
	r.statuses = append(r.statuses, text)
}

func (r *recorder) RenderTimer(clock string, warning bool) {
	r.timers = append(r.timers, clock)
	r.warnings = append(r.warnings, warning)
}

func (r *recorder) PlaySound(kind SoundKind) {
	r.sounds = append(r.sounds, kind)
}

func (r *recorder) GameOver(result Result) {
	r.results = append(r.results, result)
}

func (r *recorder) lastStatus() string {
	if len(r.statuses) == 0 {
		return ""
	}
	return r.statuses[len(r.statuses)-1]
}

func board(symbols ...string) []deck.Card {
	cards := make([]deck.Card, len(symbols))
	for i, s := range symbols {
		cards[i] = deck.Card{Symbol: s}
	}
	return cards
}

func newTestEngine(t *testing.T, cards []deck.Card, seconds int) (*Engine, *recorder, *Queue, *Clock) {
	t.Helper()
	rec := newRecorder()
	q := NewQueue()
	clock := NewClock()
	clock.Start(seconds)
	e := NewEngine(cards, clock, q, rec, Options{Player: "Alice", Difficulty: "Easy"})
	return e, rec, q, clock
}

func TestMismatchThenMatch(t *testing.T) {
	cards := board("A", "B", "A", "C", "B", "D", "C", "D",
		"E", "F", "E", "G", "F", "H", "G", "H")
	e, rec, q, _ := newTestEngine(t, cards, 180)

	e.Select(0)
	if e.State() != AwaitingSecond {
		t.Fatalf("expected awaiting-second, got %s", e.State())
	}
	e.Select(1)
	if e.State() != Locked {
		t.Fatalf("expected locked after mismatch, got %s", e.State())
	}
	if !rec.cards[0].FaceUp || !rec.cards[1].FaceUp {
		t.Fatalf("expected mismatched cards face up during cool-down")
	}
	if rec.sounds[len(rec.sounds)-1] != SoundMismatch {
		t.Fatalf("expected mismatch sound, got %v", rec.sounds)
	}

	e.Select(2)
	snap := e.Snapshot()
	if snap.Cards[2].FaceUp {
		t.Fatalf("expected selection during lock to be ignored")
	}

	if ran := q.Advance(FlipBackDelay); ran != 1 {
		t.Fatalf("expected flip-back to run once, ran %d", ran)
	}
	snap = e.Snapshot()
	if snap.State != AwaitingFirst {
		t.Fatalf("expected awaiting-first after flip-back, got %s", snap.State)
	}
	if snap.Cards[0].FaceUp || snap.Cards[1].FaceUp {
		t.Fatalf("expected both cards face down after flip-back")
	}
	if snap.Attempts != 1 || snap.PairsFound != 0 {
		t.Fatalf("unexpected counters: attempts=%d pairs=%d", snap.Attempts, snap.PairsFound)
	}

	e.Select(0)
	e.Select(2)
	snap = e.Snapshot()
	if snap.Attempts != 2 || snap.PairsFound != 1 {
		t.Fatalf("unexpected counters: attempts=%d pairs=%d", snap.Attempts, snap.PairsFound)
	}
	if !snap.Cards[0].Matched || !snap.Cards[2].Matched || !snap.Cards[0].FaceUp || !snap.Cards[2].FaceUp {
		t.Fatalf("expected matched cards to stay face up")
	}
	if rec.sounds[len(rec.sounds)-1] != SoundMatch {
		t.Fatalf("expected match sound, got %v", rec.sounds)
	}
	if rec.lastStatus() != "Alice | Easy | Attempts: 2 | Pairs: 1/8" {
		t.Fatalf("unexpected status: %q", rec.lastStatus())
	}

	e.Select(0)
	e.Select(2)
	if got := e.Snapshot(); got.Attempts != 2 || got.State != AwaitingFirst {
		t.Fatalf("expected matched cards to ignore selection, got %+v", got)
	}
}

func TestSelectSameCardTwiceIsNotAnAttempt(t *testing.T) {
	e, _, _, _ := newTestEngine(t, board("A", "B", "A", "B"), 60)
	e.Select(1)
	e.Select(1)
	snap := e.Snapshot()
	if snap.Attempts != 0 {
		t.Fatalf("expected no attempt, got %d", snap.Attempts)
	}
	if snap.State != AwaitingSecond || snap.FirstSelected != 1 {
		t.Fatalf("expected pending first selection at 1, got %+v", snap)
	}
}

func TestSelectIgnoresOutOfRange(t *testing.T) {
	e, rec, _, _ := newTestEngine(t, board("A", "A"), 60)
	e.Select(-1)
	e.Select(2)
	if len(rec.cards) != 0 || e.State() != AwaitingFirst {
		t.Fatalf("expected out-of-range selections to be ignored")
	}
}

func TestWinStopsClock(t *testing.T) {
	e, rec, _, clock := newTestEngine(t, board("A", "B", "B", "A"), 60)
	e.Select(0)
	e.Select(3)
	e.Select(1)
	e.Select(2)
	if e.State() != Won {
		t.Fatalf("expected won, got %s", e.State())
	}
	if clock.Running() {
		t.Fatalf("expected clock stopped on win")
	}
	if len(rec.results) != 1 || !rec.results[0].Won || rec.results[0].Attempts != 2 || rec.results[0].TimeLeft != 60 {
		t.Fatalf("unexpected result: %+v", rec.results)
	}
	if len(rec.sounds) != 2 || rec.sounds[0] != SoundMatch || rec.sounds[1] != SoundWin {
		t.Fatalf("expected match then win sound, got %v", rec.sounds)
	}
	e.Tick()
	if clock.Remaining() != 60 || len(rec.results) != 1 {
		t.Fatalf("expected ticks after win to be ignored")
	}
}

func TestTimeoutWhileLocked(t *testing.T) {
	e, rec, q, _ := newTestEngine(t, board("A", "B", "A", "B"), 2)
	e.Select(0)
	e.Select(1)
	if e.State() != Locked {
		t.Fatalf("expected locked, got %s", e.State())
	}
	e.Tick()
	e.Tick()
	if e.State() != Lost {
		t.Fatalf("expected lost, got %s", e.State())
	}
	if q.Len() != 0 {
		t.Fatalf("expected pending flip-back to be cancelled")
	}
	if q.Advance(5*time.Second) != 0 {
		t.Fatalf("expected no task to run after timeout")
	}
	if len(rec.results) != 1 || rec.results[0].Won {
		t.Fatalf("expected a single lost result, got %+v", rec.results)
	}
	if !strings.HasPrefix(rec.lastStatus(), "Time's up!") || !strings.Contains(rec.lastStatus(), "0/2") {
		t.Fatalf("unexpected timeout status: %q", rec.lastStatus())
	}
	e.Select(2)
	if e.Snapshot().Cards[2].FaceUp {
		t.Fatalf("expected selections after timeout to be ignored")
	}
}

func TestTickEmitsTimerAndWarning(t *testing.T) {
	e, rec, _, _ := newTestEngine(t, board("A", "A"), 32)
	e.Tick()
	e.Tick()
	if rec.timers[0] != "00:31" || rec.warnings[0] {
		t.Fatalf("unexpected first tick: %s warning=%v", rec.timers[0], rec.warnings[0])
	}
	if rec.timers[1] != "00:30" || !rec.warnings[1] {
		t.Fatalf("unexpected second tick: %s warning=%v", rec.timers[1], rec.warnings[1])
	}
}

func TestCloseDiscardsPendingFlipBack(t *testing.T) {
	e, _, q, _ := newTestEngine(t, board("A", "B", "A", "B"), 60)
	e.Select(0)
	e.Select(1)
	e.Close()
	q.Advance(FlipBackDelay)
	snap := e.Snapshot()
	if !snap.Cards[0].FaceUp || !snap.Cards[1].FaceUp {
		t.Fatalf("expected closed board to stay untouched")
	}
	if snap.State != Locked {
		t.Fatalf("expected closed engine to keep its state, got %s", snap.State)
	}
}

func TestRenderAll(t *testing.T) {
	e, rec, _, _ := newTestEngine(t, board("A", "B", "A", "B"), 90)
	e.RenderAll()
	if len(rec.cards) != 4 {
		t.Fatalf("expected all cards rendered, got %d", len(rec.cards))
	}
	if rec.timers[0] != "01:30" {
		t.Fatalf("unexpected timer: %s", rec.timers[0])
	}
	if rec.lastStatus() != "Alice | Easy | Attempts: 0 | Pairs: 0/2" {
		t.Fatalf("unexpected status: %q", rec.lastStatus())
	}
}
