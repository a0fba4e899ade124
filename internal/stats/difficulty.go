package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/tuipairs/internal/model"
)

// DifficultyRow aggregates sessions of one difficulty.
type DifficultyRow struct {
	Difficulty   string  `json:"difficulty"`
	GridSize     int     `json:"gridSize"`
	Played       int     `json:"played"`
	Won          int     `json:"won"`
	BestAttempts int     `json:"bestAttempts"`
	AvgAttempts  float64 `json:"avgAttempts"`
}

// DifficultyRows groups sessions by difficulty, smallest grid first.
func DifficultyRows(sessions []model.SessionRecord) []DifficultyRow {
	byLabel := map[string]*DifficultyRow{}
	sums := map[string]int{}
	for _, rec := range sessions {
		row, ok := byLabel[rec.Difficulty]
		if !ok {
			row = &DifficultyRow{Difficulty: rec.Difficulty, GridSize: rec.GridSize}
			byLabel[rec.Difficulty] = row
		}
		row.Played++
		if !rec.Won {
			continue
		}
		row.Won++
		sums[rec.Difficulty] += rec.Attempts
		if row.BestAttempts == 0 || rec.Attempts < row.BestAttempts {
			row.BestAttempts = rec.Attempts
		}
	}
	rows := make([]DifficultyRow, 0, len(byLabel))
	for label, row := range byLabel {
		if row.Won > 0 {
			row.AvgAttempts = float64(sums[label]) / float64(row.Won)
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].GridSize == rows[j].GridSize {
			return rows[i].Difficulty < rows[j].Difficulty
		}
		return rows[i].GridSize < rows[j].GridSize
	})
	return rows
}

// DifficultyHeaders are the column titles for DifficultyTableRows.
var DifficultyHeaders = []string{"Difficulty", "Played", "Won", "Win %", "Best", "Avg Attempts"}

// DifficultyTableRows formats rows for display.
func DifficultyTableRows(rows []DifficultyRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		winPct := 0.0
		if r.Played > 0 {
			winPct = float64(r.Won) / float64(r.Played) * 100
		}
		best := "-"
		avg := "-"
		if r.Won > 0 {
			best = fmt.Sprintf("%d", r.BestAttempts)
			avg = fmt.Sprintf("%.1f", r.AvgAttempts)
		}
		out = append(out, []string{
			r.Difficulty,
			fmt.Sprintf("%d", r.Played),
			fmt.Sprintf("%d", r.Won),
			fmt.Sprintf("%.1f%%", winPct),
			best,
			avg,
		})
	}
	return out
}

// RenderDifficultyTable prints per-difficulty aggregates.
func RenderDifficultyTable(w io.Writer, rows []DifficultyRow) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Difficulty"); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(DifficultyHeaders, DifficultyTableRows(rows), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
