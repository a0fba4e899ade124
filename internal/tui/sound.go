package tui

import (
	"io"
	"strings"

	"github.com/verte-zerg/tuipairs/internal/game"
)

// Bell plays game sounds as terminal bells.
type Bell struct {
	w io.Writer
}

// NewBell returns a Bell writing to w. A nil writer yields a silent bell.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Play rings once for a match or mismatch and three times for a win.
func (b *Bell) Play(kind game.SoundKind) {
	if b == nil || b.w == nil {
		return
	}
	if _, err := io.WriteString(b.w, bellsFor(kind)); err != nil {
		// Best-effort sound output.
		_ = err
	}
}

func bellsFor(kind game.SoundKind) string {
	switch kind {
	case game.SoundWin:
		return strings.Repeat("\a", 3)
	case game.SoundMatch, game.SoundMismatch:
		return "\a"
	default:
		return ""
	}
}
