package game

import (
	"fmt"
	"strconv"
	"strings"
)

// WarningThreshold is the remaining time at which the timer is highlighted.
const WarningThreshold = 30

// Clock is a whole-second countdown. It does not own a ticker; callers
// invoke Tick once per second.
type Clock struct {
	remaining int
	running   bool
}

// NewClock returns a stopped clock at zero.
func NewClock() *Clock {
	return &Clock{}
}

// Start resets the countdown to seconds and starts it.
func (c *Clock) Start(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	c.remaining = seconds
	c.running = seconds > 0
}

// Tick advances the countdown by one second and returns the remaining time.
// A stopped clock does not move. The clock stops itself at zero.
func (c *Clock) Tick() int {
	if !c.running {
		return c.remaining
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.running = false
	}
	return c.remaining
}

// Stop freezes the countdown.
func (c *Clock) Stop() {
	c.running = false
}

// Remaining returns the seconds left.
func (c *Clock) Remaining() int {
	return c.remaining
}

// Running reports whether Tick still counts down.
func (c *Clock) Running() bool {
	return c.running
}

// Warning reports whether the remaining time is within WarningThreshold.
func (c *Clock) Warning() bool {
	return c.remaining <= WarningThreshold
}

// FormatSeconds renders seconds as mm:ss.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ParseClock parses an mm:ss label back into seconds.
func ParseClock(label string) (int, error) {
	minStr, secStr, ok := strings.Cut(label, ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q", label)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(minStr))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", label, err)
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(secStr))
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", label, err)
	}
	if minutes < 0 || seconds < 0 {
		return 0, fmt.Errorf("invalid clock %q", label)
	}
	return minutes*60 + seconds, nil
}
