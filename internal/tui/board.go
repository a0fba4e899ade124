package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuipairs/internal/game"
)

const (
	hiddenFace   = "?"
	minFaceWidth = 2
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	hiddenStyle  = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("238")).Foreground(lipgloss.Color("245"))
	faceUpStyle  = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("24")).Foreground(lipgloss.Color("15"))
	matchedStyle = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("22")).Foreground(lipgloss.Color("15"))
	cursorStyle  = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("220")).Foreground(lipgloss.Color("0")).Bold(true)
	timerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	wonStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00C853")).Bold(true)
	lostStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#C89A3A")).Padding(1, 3)
)

// faceWidth returns the widest symbol on the board so every cell lines up,
// whether it holds an emoji or plain text.
func faceWidth(cards []game.CardView) int {
	width := minFaceWidth
	for _, c := range cards {
		if w := runewidth.StringWidth(c.Symbol); w > width {
			width = w
		}
	}
	return width
}

// faceText is the visible text of a card padded to width cells.
func faceText(card game.CardView, width int) string {
	text := strings.Repeat(hiddenFace, width)
	if card.FaceUp {
		text = runewidth.FillRight(card.Symbol, width)
	}
	return text
}

func cellStyle(card game.CardView, isCursor bool) lipgloss.Style {
	switch {
	case isCursor:
		return cursorStyle
	case card.Matched:
		return matchedStyle
	case card.FaceUp:
		return faceUpStyle
	default:
		return hiddenStyle
	}
}

// renderBoard draws the cards row by row. cursor < 0 hides the cursor.
func renderBoard(cards []game.CardView, gridSize, cursor int) string {
	if gridSize <= 0 || len(cards) == 0 {
		return ""
	}
	width := faceWidth(cards)
	var b strings.Builder
	for row := 0; row*gridSize < len(cards); row++ {
		if row > 0 {
			b.WriteString("\n\n")
		}
		for col := 0; col < gridSize; col++ {
			idx := row*gridSize + col
			if idx >= len(cards) {
				break
			}
			if col > 0 {
				b.WriteByte(' ')
			}
			card := cards[idx]
			b.WriteString(cellStyle(card, idx == cursor).Render(faceText(card, width)))
		}
	}
	return b.String()
}

// moveCursor moves within a gridSize x gridSize board, wrapping at the edges.
func moveCursor(cursor, gridSize, dRow, dCol int) int {
	if gridSize <= 0 {
		return 0
	}
	row := (cursor/gridSize + dRow + gridSize) % gridSize
	col := (cursor%gridSize + dCol + gridSize) % gridSize
	return row*gridSize + col
}
