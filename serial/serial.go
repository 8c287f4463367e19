// Package serial provides host side control links for the player: a raw byte stream (a pipe, a
// socket or a terminal), an interactive line console and Lua scripted sessions.
// All of them deliver the received bytes one at a time through Poll and print lines like the
// serial port of the appliance does.
package serial

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultWait is how long Poll waits for input before it gives up.
// It keeps the idle run loop from spinning at full speed.
const DefaultWait = time.Millisecond

// lineEnd terminates every printed line.
const lineEnd = "\r\n"

var ErrClosed = errors.New("link is closed")

// link is the receive side shared by all links: a producer goroutine fills in,
// the run loop drains it through Poll.
type link struct {
	in   chan byte
	wait time.Duration
	log  *slog.Logger

	timer *time.Timer

	closeOnce sync.Once
	closed    chan struct{}
}

func newLink(wait time.Duration, log *slog.Logger) link {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if wait < 0 {
		wait = 0
	}
	return link{
		in:     make(chan byte, 256),
		wait:   wait,
		log:    log,
		closed: make(chan struct{}),
	}
}

// Poll returns the next received byte. Without input it waits up to the configured time.
func (l *link) Poll() (byte, bool) {
	select {
	case b := <-l.in:
		return b, true
	default:
	}

	if l.wait == 0 {
		return 0, false
	}

	if l.timer == nil {
		l.timer = time.NewTimer(l.wait)
	} else {
		l.timer.Reset(l.wait)
	}

	select {
	case b := <-l.in:
		l.timer.Stop()
		return b, true
	case <-l.timer.C:
		return 0, false
	}
}

// push hands received bytes to Poll. It returns false if the link was closed meanwhile.
func (l *link) push(data []byte) bool {
	for _, b := range data {
		select {
		case l.in <- b:
		case <-l.closed:
			return false
		}
	}
	return true
}

func (l *link) close() {
	l.closeOnce.Do(func() {
		close(l.closed)
	})
}
