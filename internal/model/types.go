// Package model defines shared data structures.
package model

import "time"

// UI modes.
const (
	UIPlain = "plain"
	UITUI   = "tui"
)

// Options defines session settings.
type Options struct {
	UI      string
	Seed    int64
	LogFile string
}

// Trial is the result of one prompted letter.
type Trial struct {
	Letter  rune
	Elapsed time.Duration
}

// ElapsedMs returns the elapsed time in fractional milliseconds.
func (t Trial) ElapsedMs() float64 {
	return float64(t.Elapsed) / float64(time.Millisecond)
}
