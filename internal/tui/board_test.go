package tui

import (
	"bytes"
	"testing"

	"github.com/verte-zerg/tuipairs/internal/game"
)

func TestFaceTextPadsToWidth(t *testing.T) {
	if got := faceText(game.CardView{Symbol: "A", FaceUp: true}, 2); got != "A " {
		t.Fatalf("unexpected ascii face %q", got)
	}
	if got := faceText(game.CardView{Symbol: "🐶", FaceUp: true}, 2); got != "🐶" {
		t.Fatalf("unexpected emoji face %q", got)
	}
	if got := faceText(game.CardView{Symbol: "🐶"}, 2); got != "??" {
		t.Fatalf("hidden card must not show its symbol: %q", got)
	}
}

func TestFaceWidthUsesWidestSymbol(t *testing.T) {
	cards := []game.CardView{{Symbol: "A"}, {Symbol: "lion"}}
	if got := faceWidth(cards); got != 4 {
		t.Fatalf("expected width 4, got %d", got)
	}
}

func TestMoveCursorWraps(t *testing.T) {
	if got := moveCursor(0, 4, -1, 0); got != 12 {
		t.Fatalf("expected wrap to bottom row, got %d", got)
	}
	if got := moveCursor(3, 4, 0, 1); got != 0 {
		t.Fatalf("expected wrap to first column, got %d", got)
	}
	if got := moveCursor(5, 4, 1, 1); got != 10 {
		t.Fatalf("expected diagonal move, got %d", got)
	}
}

func TestBellRings(t *testing.T) {
	var buf bytes.Buffer
	bell := NewBell(&buf)
	bell.Play(game.SoundMatch)
	bell.Play(game.SoundWin)
	if buf.String() != "\a\a\a\a" {
		t.Fatalf("unexpected bells %q", buf.String())
	}
	var silent *Bell
	silent.Play(game.SoundWin)
}
