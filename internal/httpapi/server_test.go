package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/verte-zerg/tuipairs/internal/ledger"
	"github.com/verte-zerg/tuipairs/internal/logging"
	"github.com/verte-zerg/tuipairs/internal/model"
)

type fakeScores []ledger.Entry

func (f fakeScores) Top() []ledger.Entry {
	return f
}

type fakeLister struct {
	sessions []model.SessionRecord
	err      error
	last     model.HistoryFilter
}

func (f *fakeLister) ListSessions(_ context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error) {
	f.last = filter
	return f.sessions, f.err
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := New(fakeScores{}, nil, logging.Discard())
	rec := get(t, s, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestScoresKeepLedgerOrder(t *testing.T) {
	raw, _ := ledger.ParseEntry("garbage")
	scores := fakeScores{
		{Player: "Alice", Difficulty: "Easy", Attempts: 5, TimeLeft: "02:30"},
		{Player: "Bob", Difficulty: "Easy", Attempts: 7, TimeLeft: "02:00"},
		raw,
	}
	rec := get(t, New(scores, nil, logging.Discard()), "/scores")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var out []Score
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(out))
	}
	if out[0].Player != "Alice" || out[0].Rank != 1 || out[1].Player != "Bob" {
		t.Fatalf("unexpected order %+v", out)
	}
	if out[2].Raw != "garbage" || out[2].Player != "" {
		t.Fatalf("malformed record should be raw: %+v", out[2])
	}
}

func TestStats(t *testing.T) {
	lister := &fakeLister{sessions: []model.SessionRecord{
		{Difficulty: "Hard", GridSize: 8, Won: true, Attempts: 40, TimeLeftSec: 12},
	}}
	rec := get(t, New(fakeScores{}, lister, logging.Discard()), "/stats?difficulty=hard&last=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if lister.last.Difficulty != "Hard" || lister.last.Last != 5 {
		t.Fatalf("unexpected filter %+v", lister.last)
	}
	var out StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Summary.Played != 1 || out.Summary.BestAttempts != 40 {
		t.Fatalf("unexpected summary %+v", out.Summary)
	}
	if len(out.Difficulties) != 1 || out.Difficulties[0].Difficulty != "Hard" {
		t.Fatalf("unexpected rows %+v", out.Difficulties)
	}
}

func TestStatsErrors(t *testing.T) {
	if rec := get(t, New(fakeScores{}, nil, logging.Discard()), "/stats"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without history, got %d", rec.Code)
	}
	s := New(fakeScores{}, &fakeLister{}, logging.Discard())
	if rec := get(t, s, "/stats?difficulty=nope"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad difficulty, got %d", rec.Code)
	}
	if rec := get(t, s, "/stats?last=-1"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad last, got %d", rec.Code)
	}
	failing := New(fakeScores{}, &fakeLister{err: errors.New("db down")}, logging.Discard())
	if rec := get(t, failing, "/stats"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on store error, got %d", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	rec := get(t, New(fakeScores{}, nil, logging.Discard()), "/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
