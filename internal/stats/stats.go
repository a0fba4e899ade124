// Package stats contains session history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tuipairs/internal/game"
	"github.com/verte-zerg/tuipairs/internal/ledger"
	"github.com/verte-zerg/tuipairs/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of sessions.
type Summary struct {
	Played       int     `json:"played"`
	Won          int     `json:"won"`
	WinRate      float64 `json:"winRate"`
	AvgAttempts  float64 `json:"avgAttempts"`
	BestAttempts int     `json:"bestAttempts"`
	BestTimeLeft int     `json:"bestTimeLeft"`
}

// Summarize computes totals over sessions. Attempt figures only count wins.
func Summarize(sessions []model.SessionRecord) Summary {
	var s Summary
	totalAttempts := 0
	for _, rec := range sessions {
		s.Played++
		if !rec.Won {
			continue
		}
		s.Won++
		totalAttempts += rec.Attempts
		if s.BestAttempts == 0 || rec.Attempts < s.BestAttempts {
			s.BestAttempts = rec.Attempts
		}
		if rec.TimeLeftSec > s.BestTimeLeft {
			s.BestTimeLeft = rec.TimeLeftSec
		}
	}
	if s.Played > 0 {
		s.WinRate = float64(s.Won) / float64(s.Played)
	}
	if s.Won > 0 {
		s.AvgAttempts = float64(totalAttempts) / float64(s.Won)
	}
	return s
}

// AttemptsSeries returns attempts per won session, oldest first.
func AttemptsSeries(sessions []model.SessionRecord) []float64 {
	out := make([]float64, 0, len(sessions))
	for _, rec := range sessions {
		if rec.Won {
			out = append(out, float64(rec.Attempts))
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[(len(sparkChars)-1)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block.
func RenderSummary(w io.Writer, s Summary) error {
	if s.Played == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Played),
		fmt.Sprintf("Won: %d (%.1f%%)", s.Won, s.WinRate*100),
	}
	if s.Won > 0 {
		lines = append(lines,
			fmt.Sprintf("Avg attempts: %.1f", s.AvgAttempts),
			fmt.Sprintf("Best attempts: %d", s.BestAttempts),
			fmt.Sprintf("Most time left: %s", game.FormatSeconds(s.BestTimeLeft)),
		)
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ScoreRows formats ledger entries as table rows.
func ScoreRows(entries []ledger.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		if !e.Valid() {
			rows = append(rows, []string{fmt.Sprintf("%d", i+1), e.Raw(), "", "", ""})
			continue
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.Player,
			e.Difficulty,
			fmt.Sprintf("%d", e.Attempts),
			e.TimeLeft,
		})
	}
	return rows
}

// ScoreHeaders are the column titles for ScoreRows.
var ScoreHeaders = []string{"#", "Player", "Difficulty", "Attempts", "Time Left"}

// RenderScores prints the high score table.
func RenderScores(w io.Writer, entries []ledger.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No high scores yet.")
		return err
	}
	lines := formatTable(ScoreHeaders, ScoreRows(entries), map[int]bool{0: true, 3: true, 4: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
