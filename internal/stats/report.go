package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/tuipairs/internal/model"
)

// SessionLister loads session history.
type SessionLister interface {
	ListSessions(ctx context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionRecord
	Summary  Summary
	Rows     []DifficultyRow
	Trend    []float64
}

// BuildReport loads and prepares data for stats rendering. Trend is the
// moving average of attempts over won sessions.
func BuildReport(ctx context.Context, st SessionLister, filter model.HistoryFilter, window int) (Report, error) {
	sessions, err := st.ListSessions(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Sessions: sessions,
		Summary:  Summarize(sessions),
		Rows:     DifficultyRows(sessions),
		Trend:    MovingAverage(AttemptsSeries(sessions), window),
	}, nil
}

// RenderReport prints the full plain-text report.
func RenderReport(w io.Writer, r Report) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if err := RenderDifficultyTable(w, r.Rows); err != nil {
		return err
	}
	if len(r.Trend) > 1 {
		if _, err := fmt.Fprintf(w, "Attempts trend: %s\n", Sparkline(r.Trend)); err != nil {
			return err
		}
	}
	return nil
}
