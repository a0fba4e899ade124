package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/verte-zerg/tuipairs/internal/game"
)

// Entry is one high score.
type Entry struct {
	Player     string
	Difficulty string
	Attempts   int
	TimeLeft   string

	// malformed entries hold a stored line that could not be parsed in raw.
	// They are kept and written back verbatim.
	malformed bool
	raw       string
}

func malformedEntry(line string) Entry {
	return Entry{malformed: true, raw: line}
}

// ParseEntry parses a "name,difficulty,attempts,mm:ss" record. A malformed
// record is returned as a raw entry together with the parse error.
func ParseEntry(line string) (Entry, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 4 {
		return malformedEntry(line), fmt.Errorf("score record %q: expected 4 fields, got %d", line, len(parts))
	}
	attempts, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return malformedEntry(line), fmt.Errorf("score record %q: attempts: %w", line, err)
	}
	if _, err := game.ParseClock(parts[3]); err != nil {
		return malformedEntry(line), fmt.Errorf("score record %q: %w", line, err)
	}
	if len(parts) > 4 {
		return malformedEntry(line), fmt.Errorf("score record %q: expected 4 fields, got %d", line, len(parts))
	}
	return Entry{
		Player:     parts[0],
		Difficulty: parts[1],
		Attempts:   attempts,
		TimeLeft:   parts[3],
	}, nil
}

// Valid reports whether the entry carries parsed fields.
func (e Entry) Valid() bool {
	return !e.malformed
}

// Raw returns the unparsed record for malformed entries.
func (e Entry) Raw() string {
	return e.raw
}

// String formats the entry as a stored record.
func (e Entry) String() string {
	if e.malformed {
		return e.raw
	}
	return fmt.Sprintf("%s,%s,%d,%s", e.Player, e.Difficulty, e.Attempts, e.TimeLeft)
}

// SecondsLeft parses TimeLeft.
func (e Entry) SecondsLeft() (int, bool) {
	if !e.Valid() {
		return 0, false
	}
	secs, err := game.ParseClock(e.TimeLeft)
	if err != nil {
		return 0, false
	}
	return secs, true
}

// Rankable reports whether the entry takes part in ranking.
func (e Entry) Rankable() bool {
	_, ok := e.SecondsLeft()
	return ok
}

// Compare orders entries by ascending attempts, then by descending time
// left. It returns a negative number when a ranks above b. Entries that
// cannot be compared rank equal.
func Compare(a, b Entry) int {
	if !a.Valid() || !b.Valid() {
		return 0
	}
	if a.Attempts != b.Attempts {
		if a.Attempts < b.Attempts {
			return -1
		}
		return 1
	}
	secA, okA := a.SecondsLeft()
	secB, okB := b.SecondsLeft()
	if !okA || !okB {
		return 0
	}
	switch {
	case secA > secB:
		return -1
	case secA < secB:
		return 1
	default:
		return 0
	}
}
