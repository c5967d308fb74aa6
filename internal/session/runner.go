// Package session runs a reaction-time calibration in a plain console.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/verte-zerg/tuireact/internal/console"
	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/stats"
)

// ErrInterrupted reports that the user aborted the session.
var ErrInterrupted = console.ErrInterrupted

// ExitNotice is printed once when a session is interrupted.
const ExitNotice = "Exiting..."

// StartDelay is the fixed pause before the first trial.
const StartDelay = time.Second

// Source supplies the letter order and the delay before each prompt.
type Source interface {
	Letters() []rune
	ReadyDelay() time.Duration
}

// Clock abstracts time for trials.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Runner drives one calibration session.
type Runner struct {
	keys   console.Keyboard
	out    io.Writer
	source Source
	clock  Clock
	logger *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(r *Runner) {
		r.clock = clock
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner constructs a Runner.
func NewRunner(keys console.Keyboard, out io.Writer, source Source, opts ...Option) *Runner {
	r := &Runner{
		keys:   keys,
		out:    out,
		source: source,
		clock:  realClock{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run shuffles the letters, runs one trial per letter and prints the
// summary. On interrupt it returns ErrInterrupted and prints no summary.
func (r *Runner) Run(ctx context.Context) ([]model.Trial, error) {
	letters := r.source.Letters()
	r.logger.Debug("session started", zap.String("order", string(letters)))

	r.printf("\n=== Reaction Time Calibration ===\n")
	r.printf("When a letter appears, press it as fast as you can!\n\n")
	r.printf("Press Enter to begin...")
	if err := r.waitForEnter(ctx); err != nil {
		return nil, mapErr(err)
	}

	r.printf("\n\nStarting...\n\n")
	if err := r.clock.Sleep(ctx, StartDelay); err != nil {
		return nil, mapErr(err)
	}

	results := make([]model.Trial, 0, len(letters))
	for _, letter := range letters {
		trial, err := r.RunTrial(ctx, letter)
		if err != nil {
			r.logger.Debug("session aborted", zap.Int("completed", len(results)), zap.Error(err))
			return results, err
		}
		results = append(results, trial)
	}

	if err := stats.RenderSummary(r.out, results); err != nil {
		return results, fmt.Errorf("failed to write summary: %w", err)
	}
	r.logger.Debug("session finished",
		zap.Int("trials", len(results)),
		zap.Float64("mean_ms", stats.MeanMs(results)))
	return results, nil
}

// RunTrial prompts for one letter and waits for it. Wrong keys do not reset
// the timer.
func (r *Runner) RunTrial(ctx context.Context, letter rune) (model.Trial, error) {
	letter = unicode.ToLower(letter)
	r.printf("\nGet ready for next letter...\n")
	if err := r.clock.Sleep(ctx, r.source.ReadyDelay()); err != nil {
		return model.Trial{}, mapErr(err)
	}
	if err := r.drainEarlyKeys(); err != nil {
		return model.Trial{}, mapErr(err)
	}

	r.printf("\n>>> %c <<<\n", unicode.ToUpper(letter))
	start := r.clock.Now()

	wrong := 0
	for {
		key, err := r.keys.ReadKey(ctx)
		if err != nil {
			return model.Trial{}, mapErr(err)
		}
		if unicode.ToLower(key) == letter {
			trial := model.Trial{Letter: letter, Elapsed: r.clock.Now().Sub(start)}
			r.printf("Good! %s ms\n", stats.FormatMs(trial.Elapsed))
			r.logger.Debug("trial complete",
				zap.String("letter", string(letter)),
				zap.Duration("elapsed", trial.Elapsed),
				zap.Int("wrong", wrong))
			return trial, nil
		}
		wrong++
		r.printf("Wrong key! Try again.\n")
	}
}

func (r *Runner) waitForEnter(ctx context.Context) error {
	for {
		key, err := r.keys.ReadKey(ctx)
		if err != nil {
			return err
		}
		if key == '\r' || key == '\n' {
			return nil
		}
	}
}

// drainEarlyKeys drops keys pressed before the prompt was shown. It reports
// a read error seen while draining so no prompt is shown for closed input.
func (r *Runner) drainEarlyKeys() error {
	for {
		key, ok := r.keys.Poll()
		if !ok {
			return r.keys.Err()
		}
		r.logger.Debug("dropped early key", zap.String("key", string(key)))
	}
}

func (r *Runner) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		r.logger.Debug("failed to write output", zap.Error(err))
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, ErrInterrupted), errors.Is(err, context.Canceled):
		return ErrInterrupted
	case errors.Is(err, io.EOF):
		return fmt.Errorf("keyboard input closed: %w", err)
	default:
		return err
	}
}
