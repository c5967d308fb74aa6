// Package stats contains result calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"time"
	"unicode"

	"github.com/verte-zerg/tuireact/internal/model"
)

const (
	resultsHeader = "=== Results ==="
	resultsFooter = "================================"
)

// Total returns the sum of elapsed times.
func Total(trials []model.Trial) time.Duration {
	var total time.Duration
	for _, t := range trials {
		total += t.Elapsed
	}
	return total
}

// MeanMs returns the arithmetic mean of elapsed times in milliseconds.
func MeanMs(trials []model.Trial) float64 {
	if len(trials) == 0 {
		return 0
	}
	var sum float64
	for _, t := range trials {
		sum += t.ElapsedMs()
	}
	return sum / float64(len(trials))
}

// FormatMs renders a duration as whole milliseconds.
func FormatMs(d time.Duration) string {
	return fmt.Sprintf("%.0f", float64(d)/float64(time.Millisecond))
}

// TrialLine renders one summary line, e.g. "B : 150 ms".
func TrialLine(t model.Trial) string {
	return fmt.Sprintf("%c : %s ms", unicode.ToUpper(t.Letter), FormatMs(t.Elapsed))
}

// AverageLine renders the mean line with one decimal.
func AverageLine(trials []model.Trial) string {
	return fmt.Sprintf("Average reaction time: %.1f ms", MeanMs(trials))
}

// RenderSummary prints per-letter times and the average.
func RenderSummary(w io.Writer, trials []model.Trial) error {
	if _, err := fmt.Fprintf(w, "\n%s\n", resultsHeader); err != nil {
		return err
	}
	if len(trials) == 0 {
		_, err := fmt.Fprintln(w, "No trials recorded.")
		return err
	}
	for _, t := range trials {
		if _, err := fmt.Fprintln(w, TrialLine(t)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", AverageLine(trials)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, resultsFooter); err != nil {
		return err
	}
	return nil
}
