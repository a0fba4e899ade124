// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Config defines game settings.
type Config struct {
	PlayerName  string
	GridSize    int
	TimeLimit   int
	Sound       bool
	ScoresPath  string
	SymbolsPath string
}

// HistoryFilter defines filters for session history queries.
type HistoryFilter struct {
	Difficulty string
	Since      *time.Time
	Last       int
}

// StatsConfig defines history report settings.
type StatsConfig struct {
	Difficulty  string
	Since       *time.Time
	Last        int
	TrendWindow int
}

// Filter returns the history query part of the settings.
func (c StatsConfig) Filter() HistoryFilter {
	return HistoryFilter{Difficulty: c.Difficulty, Since: c.Since, Last: c.Last}
}

// SessionRecord captures a finished play session, won or lost.
type SessionRecord struct {
	ID           string
	Player       string
	GridSize     int
	Difficulty   string
	Won          bool
	Attempts     int
	PairsFound   int
	TotalPairs   int
	TimeLimitSec int
	TimeLeftSec  int
	StartedAt    time.Time
	EndedAt      time.Time
}

// DifficultyLabel names a grid size the way scores and status lines show it.
func DifficultyLabel(gridSize int) string {
	switch gridSize {
	case 4:
		return "Easy"
	case 6:
		return "Medium"
	case 8:
		return "Hard"
	default:
		return "Custom"
	}
}

// ParseDifficulty normalizes a difficulty label. Empty input means any.
func ParseDifficulty(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	for _, label := range []string{"Easy", "Medium", "Hard", "Custom"} {
		if strings.EqualFold(input, label) {
			return label, nil
		}
	}
	return "", fmt.Errorf("invalid difficulty %q (use easy, medium, hard or custom)", input)
}
