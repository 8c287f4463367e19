package serial

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aligator/vsplayer/checkpoint"
	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("not a terminal")

// Option configures a link.
type Option func(o *options)

type options struct {
	wait   time.Duration
	log    *slog.Logger
	echo   bool
	crToLF bool
}

func newOptions(opts []Option) options {
	o := options{wait: DefaultWait}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithWait sets how long Poll waits for input, 0 makes it return immediately.
func WithWait(wait time.Duration) Option {
	return func(o *options) {
		o.wait = wait
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithEcho writes every received byte back.
func WithEcho(echo bool) Option {
	return func(o *options) {
		o.echo = echo
	}
}

// WithCRToLF turns carriage returns into line feeds, raw terminals send '\r' for Enter.
func WithCRToLF(crToLF bool) Option {
	return func(o *options) {
		o.crToLF = crToLF
	}
}

// Stream is a link over a byte stream, e.g. stdin and stdout, a pipe or a network connection.
type Stream struct {
	link
	opts options

	mu sync.Mutex
	w  io.Writer

	restore func() error

	done chan struct{}
	err  error
}

// NewStream starts reading r. Lines are printed to w.
func NewStream(r io.Reader, w io.Writer, opts ...Option) *Stream {
	o := newOptions(opts)
	s := &Stream{
		link: newLink(o.wait, o.log),
		opts: o,
		w:    w,
		done: make(chan struct{}),
	}

	go s.read(r)
	return s
}

// NewTerminal puts the terminal f into raw mode and reads it byte by byte with echo.
// Close restores the terminal.
func NewTerminal(f *os.File, w io.Writer, opts ...Option) (*Stream, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, checkpoint.From(ErrNotTerminal)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	s := NewStream(f, w, append([]Option{WithEcho(true), WithCRToLF(true)}, opts...)...)
	s.restore = func() error {
		return term.Restore(fd, state)
	}
	return s, nil
}

func (s *Stream) read(r io.Reader) {
	defer close(s.done)

	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := buf[:n]
			if s.opts.crToLF {
				for i, b := range data {
					if b == '\r' {
						data[i] = '\n'
					}
				}
			}
			if s.opts.echo {
				s.echo(data)
			}
			if !s.push(data) {
				return
			}
		}

		if err != nil {
			if err != io.EOF {
				s.err = checkpoint.From(err)
				s.log.Error("reading the link failed", "err", err)
			} else {
				s.log.Debug("link input ended")
			}
			return
		}
	}
}

func (s *Stream) echo(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range data {
		if b == '\n' {
			_, _ = io.WriteString(s.w, lineEnd)
			continue
		}
		_, _ = s.w.Write([]byte{b})
	}
}

// Println writes one line.
func (s *Stream) Println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, line+lineEnd); err != nil {
		s.log.Debug("writing the link failed", "err", err)
	}
}

// Done is closed when the input ended.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Err returns the read error which ended the input, if any.
// It is only valid after Done is closed.
func (s *Stream) Err() error {
	return s.err
}

// Close stops delivering input and restores the terminal.
func (s *Stream) Close() error {
	s.close()
	if s.restore != nil {
		return checkpoint.From(s.restore())
	}
	return nil
}
