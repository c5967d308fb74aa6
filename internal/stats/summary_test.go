package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/tuireact/internal/model"
)

func TestMeanMs(t *testing.T) {
	trials := []model.Trial{
		{Letter: 'b', Elapsed: 150 * time.Millisecond},
		{Letter: 'a', Elapsed: 300 * time.Millisecond},
		{Letter: 'c', Elapsed: 301 * time.Millisecond},
	}
	got := MeanMs(trials)
	want := (150.0 + 300.0 + 301.0) / 3.0
	if got != want {
		t.Fatalf("expected mean %v, got %v", want, got)
	}
	if Total(trials) != 751*time.Millisecond {
		t.Fatalf("unexpected total: %v", Total(trials))
	}
}

func TestMeanMsEmpty(t *testing.T) {
	if got := MeanMs(nil); got != 0 {
		t.Fatalf("expected 0 for no trials, got %v", got)
	}
}

func TestRenderSummary(t *testing.T) {
	trials := []model.Trial{
		{Letter: 'b', Elapsed: 150 * time.Millisecond},
		{Letter: 'a', Elapsed: 300 * time.Millisecond},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, trials); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	want := []string{
		"",
		"=== Results ===",
		"B : 150 ms",
		"A : 300 ms",
		"",
		"Average reaction time: 225.0 ms",
		"================================",
		"",
	}
	if diff := cmp.Diff(want, strings.Split(buf.String(), "\n")); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSummaryNoTrials(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No trials recorded.") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}
}

func TestTrialLineRoundsToWholeMs(t *testing.T) {
	line := TrialLine(model.Trial{Letter: 'q', Elapsed: 212600 * time.Microsecond})
	if line != "Q : 213 ms" {
		t.Fatalf("unexpected line: %q", line)
	}
}
