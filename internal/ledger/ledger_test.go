package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type failingStore struct {
	readErr  error
	writeErr error
	written  [][]string
}

func (f *failingStore) Read() ([]string, error) {
	return nil, f.readErr
}

func (f *failingStore) Write(lines []string) error {
	f.written = append(f.written, lines)
	return f.writeErr
}

func quietLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.WarnLevel})
}

func TestAddRanksByAttemptsThenTimeLeft(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	l := New(FileStore{Path: path}, quietLogger(&bytes.Buffer{}))
	l.Add(Entry{Player: "Bob", Difficulty: "Easy", Attempts: 5, TimeLeft: "02:10"})
	l.Add(Entry{Player: "Carol", Difficulty: "Hard", Attempts: 9, TimeLeft: "00:45"})
	l.Add(Entry{Player: "Alice", Difficulty: "Easy", Attempts: 5, TimeLeft: "02:30"})

	top := l.Top()
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	if top[0].Player != "Alice" || top[1].Player != "Bob" || top[2].Player != "Carol" {
		t.Fatalf("unexpected order: %v", top)
	}
}

func TestAddKeepsTopTen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	l := New(FileStore{Path: path}, quietLogger(&bytes.Buffer{}))
	for i := 0; i < 10; i++ {
		l.Add(Entry{Player: fmt.Sprintf("p%d", i), Difficulty: "Easy", Attempts: 10 + i, TimeLeft: "01:00"})
	}
	// Same attempts as the current worst but less time left.
	l.Add(Entry{Player: "late", Difficulty: "Easy", Attempts: 19, TimeLeft: "00:10"})

	top := l.Top()
	if len(top) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(top))
	}
	for _, e := range top {
		if e.Player == "late" {
			t.Fatalf("expected worst entry to be dropped")
		}
	}
	if top[9].Player != "p9" {
		t.Fatalf("unexpected last entry: %v", top[9])
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	l := New(FileStore{Path: path}, quietLogger(&bytes.Buffer{}))
	want := []Entry{
		{Player: "Alice", Difficulty: "Easy", Attempts: 5, TimeLeft: "02:30"},
		{Player: "Bob", Difficulty: "Easy", Attempts: 5, TimeLeft: "02:10"},
		{Player: "Dan", Difficulty: "Medium", Attempts: 20, TimeLeft: "00:05"},
	}
	for _, e := range want {
		l.Add(e)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read score file: %v", err)
	}
	if got := string(data); got != "Alice,Easy,5,02:30\nBob,Easy,5,02:10\nDan,Medium,20,00:05\n" {
		t.Fatalf("unexpected file content: %q", got)
	}

	reloaded := Open(FileStore{Path: path}, quietLogger(&bytes.Buffer{}))
	got := reloaded.Top()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMalformedRecordsAreKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := "Alice,Easy,5,02:30\ngarbage\nBob,Easy,x,01:00\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write score file: %v", err)
	}
	l := Open(FileStore{Path: path}, quietLogger(&bytes.Buffer{}))
	l.Add(Entry{Player: "Cy", Difficulty: "Hard", Attempts: 3, TimeLeft: "00:30"})

	top := l.Top()
	if len(top) != 4 {
		t.Fatalf("expected malformed records to be kept, got %d entries", len(top))
	}
	raw := 0
	for _, e := range top {
		if !e.Valid() {
			raw++
		}
	}
	if raw != 2 {
		t.Fatalf("expected 2 raw entries, got %d", raw)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read score file: %v", err)
	}
	if !strings.Contains(string(data), "garbage\n") || !strings.Contains(string(data), "Bob,Easy,x,01:00\n") {
		t.Fatalf("expected raw records written back verbatim: %q", data)
	}
}

func TestLoadFailureYieldsEmptyLedger(t *testing.T) {
	var buf bytes.Buffer
	store := &failingStore{readErr: errors.New("disk gone")}
	l := Open(store, quietLogger(&buf))
	if len(l.Top()) != 0 {
		t.Fatalf("expected empty ledger")
	}
	if !strings.Contains(buf.String(), "failed to load scores") {
		t.Fatalf("expected warning to be logged: %q", buf.String())
	}
}

func TestSaveFailureKeepsEntries(t *testing.T) {
	var buf bytes.Buffer
	store := &failingStore{writeErr: errors.New("read-only")}
	l := New(store, quietLogger(&buf))
	l.Add(Entry{Player: "Alice", Difficulty: "Easy", Attempts: 5, TimeLeft: "02:30"})
	if len(l.Top()) != 1 {
		t.Fatalf("expected in-memory entry to survive a failed save")
	}
	if len(store.written) != 1 {
		t.Fatalf("expected one write attempt, got %d", len(store.written))
	}
	if !strings.Contains(buf.String(), "failed to save scores") {
		t.Fatalf("expected warning to be logged: %q", buf.String())
	}
}

func TestMissingFileReadsEmpty(t *testing.T) {
	lines, err := FileStore{Path: filepath.Join(t.TempDir(), "missing.txt")}.Read()
	if err != nil || len(lines) != 0 {
		t.Fatalf("expected empty read, got %v, %v", lines, err)
	}
}

func TestMalformedRecordDoesNotBlockBetterScore(t *testing.T) {
	lines := make([]string, 0, MaxEntries)
	for i := 0; i < MaxEntries-1; i++ {
		lines = append(lines, fmt.Sprintf("p%d,Easy,%d,01:00", i, 10+i))
	}
	lines = append(lines, "garbage")
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write score file: %v", err)
	}
	l := Open(FileStore{Path: path}, quietLogger(&bytes.Buffer{}))
	l.Add(Entry{Player: "best", Difficulty: "Easy", Attempts: 1, TimeLeft: "02:00"})

	top := l.Top()
	if len(top) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(top))
	}
	if top[0].Player != "best" {
		t.Fatalf("expected new best score first, got %v", top[0])
	}
	if top[MaxEntries-1].Valid() || top[MaxEntries-1].Raw() != "garbage" {
		t.Fatalf("expected malformed record to keep its slot, got %v", top[MaxEntries-1])
	}
	for _, e := range top {
		if e.Player == "p8" {
			t.Fatalf("expected worst ranked score to be dropped")
		}
	}
}
