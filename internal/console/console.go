// Package console provides raw single-key keyboard input.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/cancelreader"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// ErrInterrupted is returned once the user presses Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// Keyboard reads single keys.
type Keyboard interface {
	// Poll returns a buffered key without blocking.
	Poll() (rune, bool)
	// ReadKey blocks until a key is available or ctx is done.
	ReadKey(ctx context.Context) (rune, error)
	// Err returns the sticky read error seen by Poll or ReadKey, if any.
	Err() error
}

type event struct {
	r   rune
	err error
}

// Console owns the terminal for the duration of a session.
type Console struct {
	reader      cancelreader.CancelReader
	out         io.Writer
	restore     func() error
	onInterrupt func()
	logger      *zap.Logger

	events chan event
	done   chan struct{}
	wg     sync.WaitGroup
	err    error

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInterrupt registers fn to run from the reader as soon as Ctrl-C is read.
func WithInterrupt(fn func()) Option {
	return func(c *Console) {
		c.onInterrupt = fn
	}
}

// Open puts the terminal behind in into raw mode when it is a TTY and starts
// reading keys from it. Close must be called to restore the terminal.
func Open(in, out *os.File, opts ...Option) (*Console, error) {
	fd := int(in.Fd())
	restore := func() error { return nil }
	var w io.Writer = out
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		restore = func() error { return term.Restore(fd, state) }
		w = NewCRLFWriter(out)
	}
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, setupError(fmt.Errorf("failed to open key reader: %w", err), restore)
	}
	c := newConsole(reader, w, restore, opts...)
	c.logger.Debug("console opened", zap.Bool("raw", term.IsTerminal(fd)))
	return c, nil
}

// setupError restores the terminal after a failed Open and reports both
// failures when the restore fails too.
func setupError(err error, restore func() error) error {
	if rerr := restore(); rerr != nil {
		return errors.Join(err, fmt.Errorf("failed to restore terminal: %w", rerr))
	}
	return err
}

// New reads keys from r and writes to w without touching terminal modes.
func New(r io.Reader, w io.Writer, opts ...Option) (*Console, error) {
	reader, err := cancelreader.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open key reader: %w", err)
	}
	return newConsole(reader, w, func() error { return nil }, opts...), nil
}

func newConsole(reader cancelreader.CancelReader, w io.Writer, restore func() error, opts ...Option) *Console {
	c := &Console{
		reader:  reader,
		out:     w,
		restore: restore,
		logger:  zap.NewNop(),
		events:  make(chan event, 64),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.wg.Add(1)
	go c.readLoop()
	return c
}

// Out returns the writer for session output.
func (c *Console) Out() io.Writer {
	return c.out
}

func (c *Console) readLoop() {
	defer c.wg.Done()
	br := bufio.NewReader(c.reader)
	for {
		r, _, err := br.ReadRune()
		if err != nil {
			if errors.Is(err, cancelreader.ErrCanceled) {
				return
			}
			c.send(event{err: err})
			return
		}
		if r == keyCtrlC {
			c.logger.Debug("interrupt key read")
			if c.onInterrupt != nil {
				c.onInterrupt()
			}
			c.send(event{err: ErrInterrupted})
			return
		}
		if r == keyEscape {
			skipEscapeSequence(br)
		}
		if !c.send(event{r: r}) {
			return
		}
	}
}

// skipEscapeSequence consumes the rest of a CSI or SS3 sequence that arrived
// together with ESC, so an arrow or function key reads as a single ESC key.
func skipEscapeSequence(br *bufio.Reader) {
	if br.Buffered() == 0 {
		return
	}
	next, err := br.Peek(1)
	if err != nil {
		return
	}
	switch next[0] {
	case '[':
		_, _ = br.ReadByte()
		for br.Buffered() > 0 {
			b, err := br.ReadByte()
			if err != nil || (b >= 0x40 && b <= 0x7e) {
				return
			}
		}
	case 'O':
		_, _ = br.ReadByte()
		if br.Buffered() > 0 {
			_, _ = br.ReadByte()
		}
	}
}

func (c *Console) send(ev event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// Poll implements Keyboard.
func (c *Console) Poll() (rune, bool) {
	if c.err != nil {
		return 0, false
	}
	select {
	case ev := <-c.events:
		if ev.err != nil {
			c.err = ev.err
			return 0, false
		}
		return ev.r, true
	default:
		return 0, false
	}
}

// Err implements Keyboard.
func (c *Console) Err() error {
	return c.err
}

// ReadKey implements Keyboard. A read error is sticky.
func (c *Console) ReadKey(ctx context.Context) (rune, error) {
	if c.err != nil {
		return 0, c.err
	}
	select {
	case ev := <-c.events:
		if ev.err != nil {
			c.err = ev.err
			return 0, ev.err
		}
		return ev.r, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Close stops the reader and restores the terminal. It is safe to call more
// than once.
func (c *Console) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.reader.Cancel() {
			c.wg.Wait()
		}
		if err := c.reader.Close(); err != nil {
			c.logger.Debug("failed to close key reader", zap.Error(err))
		}
		if err := c.restore(); err != nil {
			c.closeErr = fmt.Errorf("failed to restore terminal: %w", err)
			return
		}
		c.logger.Debug("console closed")
	})
	return c.closeErr
}
