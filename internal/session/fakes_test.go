package session

import (
	"context"
	"time"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.now = c.now.Add(d)
	return nil
}

// press is a scripted keypress arriving after a delay.
type press struct {
	key   rune
	after time.Duration
	err   error
}

type fakeKeyboard struct {
	clock    *fakeClock
	script   []press
	buffered []rune
	polled   []rune
	err      error
	// pollErr becomes the sticky error once buffered keys are drained.
	pollErr error
}

func (k *fakeKeyboard) Poll() (rune, bool) {
	if len(k.buffered) == 0 {
		if k.pollErr != nil {
			k.err = k.pollErr
		}
		return 0, false
	}
	key := k.buffered[0]
	k.buffered = k.buffered[1:]
	k.polled = append(k.polled, key)
	return key, true
}

func (k *fakeKeyboard) Err() error { return k.err }

func (k *fakeKeyboard) ReadKey(ctx context.Context) (rune, error) {
	if k.err != nil {
		return 0, k.err
	}
	if len(k.script) == 0 {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	p := k.script[0]
	k.script = k.script[1:]
	if p.err != nil {
		return 0, p.err
	}
	k.clock.now = k.clock.now.Add(p.after)
	return p.key, nil
}

type fixedSource struct {
	letters []rune
	delay   time.Duration
}

func (s fixedSource) Letters() []rune {
	return append([]rune(nil), s.letters...)
}

func (s fixedSource) ReadyDelay() time.Duration { return s.delay }
