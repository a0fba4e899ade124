package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/tuipairs/internal/deck"
	"github.com/verte-zerg/tuipairs/internal/game"
	"github.com/verte-zerg/tuipairs/internal/ledger"
	"github.com/verte-zerg/tuipairs/internal/model"
)

type presenter struct {
	cards    map[int]game.CardView
	statuses []string
	timers   []string
	sounds   []game.SoundKind
	ends     []string
	won      []bool
}

func newPresenter() *presenter {
	return &presenter{cards: map[int]game.CardView{}}
}

func (p *presenter) RenderCard(index int, card game.CardView) {
	p.cards[index] = card
}

func (p *presenter) RenderStatus(text string) {
	p.statuses = append(p.statuses, text)
}

func (p *presenter) RenderTimer(clock string, _ bool) {
	p.timers = append(p.timers, clock)
}

func (p *presenter) PlaySound(kind game.SoundKind) {
	p.sounds = append(p.sounds, kind)
}

func (p *presenter) SessionEnd(won bool, summary string) {
	p.won = append(p.won, won)
	p.ends = append(p.ends, summary)
}

type scores struct {
	entries []ledger.Entry
}

func (s *scores) Add(entry ledger.Entry) {
	s.entries = append(s.entries, entry)
}

type history struct {
	records []model.SessionRecord
	err     error
}

func (h *history) InsertSession(_ context.Context, rec model.SessionRecord) error {
	h.records = append(h.records, rec)
	return h.err
}

type fixture struct {
	sess    *Session
	p       *presenter
	queue   *game.Queue
	scores  *scores
	history *history
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, player string) fixture {
	t.Helper()
	f := fixture{
		p:       newPresenter(),
		queue:   game.NewQueue(),
		scores:  &scores{},
		history: &history{},
		logs:    &bytes.Buffer{},
	}
	now := time.Unix(1000, 0)
	sess, err := New(Options{
		Player:    player,
		GridSize:  4,
		Generator: deck.NewWithSeed(3),
		Scheduler: f.queue,
		Scores:    f.scores,
		History:   f.history,
		Logger:    log.NewWithOptions(f.logs, log.Options{Level: log.InfoLevel}),
		Now: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
	}, f.p)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	f.sess = sess
	return f
}

func pairIndices(snap game.Snapshot) [][2]int {
	seen := map[string]int{}
	var pairs [][2]int
	for i, c := range snap.Cards {
		if j, ok := seen[c.Symbol]; ok {
			pairs = append(pairs, [2]int{j, i})
			delete(seen, c.Symbol)
			continue
		}
		seen[c.Symbol] = i
	}
	return pairs
}

func TestNewRejectsInvalidGrid(t *testing.T) {
	sess, err := New(Options{GridSize: 5, Generator: deck.NewWithSeed(1), Scheduler: game.NewQueue()}, newPresenter())
	if !errors.Is(err, deck.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if sess != nil {
		t.Fatalf("expected no session")
	}
}

func TestNewRendersInitialBoard(t *testing.T) {
	f := newFixture(t, "  ")
	if len(f.p.cards) != 16 {
		t.Fatalf("expected 16 rendered cards, got %d", len(f.p.cards))
	}
	for i, c := range f.p.cards {
		if c.FaceUp {
			t.Fatalf("card %d starts face up", i)
		}
	}
	if f.p.timers[0] != "03:00" {
		t.Fatalf("unexpected timer: %s", f.p.timers[0])
	}
	if f.p.statuses[0] != "Player | Easy | Attempts: 0 | Pairs: 0/8" {
		t.Fatalf("unexpected status: %q", f.p.statuses[0])
	}
	if f.sess.Player() != DefaultPlayer {
		t.Fatalf("expected default player, got %q", f.sess.Player())
	}
}

func TestWinAddsScoreAndRecordsHistory(t *testing.T) {
	f := newFixture(t, "Alice")
	f.sess.Tick()
	for _, pair := range pairIndices(f.sess.Snapshot()) {
		f.sess.OnCardActivated(pair[0])
		f.sess.OnCardActivated(pair[1])
	}
	if !f.sess.Ended() {
		t.Fatalf("expected session to end")
	}
	res, ok := f.sess.Result()
	if !ok || !res.Won || res.Attempts != 8 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(f.p.ends) != 1 || !f.p.won[0] {
		t.Fatalf("expected one won session end, got %v", f.p.won)
	}
	if f.p.ends[0] != "Congratulations Alice! You won in 8 attempts! With 02:59 remaining!" {
		t.Fatalf("unexpected summary: %q", f.p.ends[0])
	}
	if f.p.sounds[len(f.p.sounds)-1] != game.SoundWin {
		t.Fatalf("expected win sound last, got %v", f.p.sounds)
	}
	want := ledger.Entry{Player: "Alice", Difficulty: "Easy", Attempts: 8, TimeLeft: "02:59"}
	if len(f.scores.entries) != 1 || f.scores.entries[0] != want {
		t.Fatalf("unexpected score entries: %+v", f.scores.entries)
	}
	if len(f.history.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(f.history.records))
	}
	rec := f.history.records[0]
	if !rec.Won || rec.ID != f.sess.ID() || rec.TimeLeftSec != 179 || rec.TimeLimitSec != DefaultTimeLimit {
		t.Fatalf("unexpected history record: %+v", rec)
	}
	if !rec.EndedAt.After(rec.StartedAt) {
		t.Fatalf("expected ended_at after started_at")
	}
}

func TestTimeoutSkipsLedger(t *testing.T) {
	f := newFixture(t, "Bob")
	pairs := pairIndices(f.sess.Snapshot())
	f.sess.OnCardActivated(pairs[0][0])
	f.sess.OnCardActivated(pairs[0][1])
	for i := 0; i < DefaultTimeLimit; i++ {
		f.sess.Tick()
	}
	res, ok := f.sess.Result()
	if !ok || res.Won {
		t.Fatalf("expected lost result, got %+v", res)
	}
	if len(f.scores.entries) != 0 {
		t.Fatalf("expected ledger untouched on loss")
	}
	if len(f.p.ends) != 1 || f.p.won[0] || f.p.ends[0] != "Time's up! You found 1 of 8 pairs." {
		t.Fatalf("unexpected session end: %v %v", f.p.won, f.p.ends)
	}
	if len(f.history.records) != 1 || f.history.records[0].Won {
		t.Fatalf("expected lost history record")
	}
	f.sess.Tick()
	if len(f.p.ends) != 1 {
		t.Fatalf("expected no further end events")
	}
}

func TestCloseDropsPendingFlipBack(t *testing.T) {
	f := newFixture(t, "Cy")
	snap := f.sess.Snapshot()
	a, b := 0, -1
	for i := 1; i < len(snap.Cards); i++ {
		if snap.Cards[i].Symbol != snap.Cards[a].Symbol {
			b = i
			break
		}
	}
	f.sess.OnCardActivated(a)
	f.sess.OnCardActivated(b)
	if f.queue.Len() != 1 {
		t.Fatalf("expected pending flip-back")
	}
	f.sess.Close()
	f.queue.Advance(game.FlipBackDelay)
	if !f.p.cards[a].FaceUp || !f.p.cards[b].FaceUp {
		t.Fatalf("expected closed session board to stay untouched")
	}
	f.sess.OnCardActivated(a)
	if f.sess.Snapshot().Attempts != 1 {
		t.Fatalf("expected closed session to ignore input")
	}
}

func TestHistoryErrorIsLogged(t *testing.T) {
	f := newFixture(t, "Dee")
	f.history.err = errors.New("db locked")
	for i := 0; i < DefaultTimeLimit; i++ {
		f.sess.Tick()
	}
	if !f.sess.Ended() {
		t.Fatalf("expected session to end despite history error")
	}
	if !strings.Contains(f.logs.String(), "failed to record session") {
		t.Fatalf("expected history error to be logged: %q", f.logs.String())
	}
}
