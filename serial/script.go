package serial

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aligator/vsplayer/checkpoint"
	lua "github.com/yuin/gopher-lua"
)

// Script drives the player from a Lua script. The script gets these globals:
//
//	send(frame)            sends the bytes of frame
//	sleep(ms)              waits
//	log(msg)               logs msg
//	wait(text [, ms])      waits until a printed line contains text, returns false on timeout
//
// Printed lines also go to the writer, which may be nil.
type Script struct {
	link
	w  io.Writer
	mu sync.Mutex

	lines  chan string
	ctx    context.Context
	cancel context.CancelFunc

	done chan struct{}
	err  error
}

// NewScript starts running source. name is only used for error messages.
func NewScript(name, source string, w io.Writer, opts ...Option) *Script {
	o := newOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Script{
		link:   newLink(o.wait, o.log),
		w:      w,
		lines:  make(chan string, 64),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.run(name, source)
	return s
}

func (s *Script) run(name, source string) {
	defer close(s.done)

	L := lua.NewState()
	defer L.Close()
	L.SetContext(s.ctx)

	L.SetGlobal("send", L.NewFunction(s.send))
	L.SetGlobal("sleep", L.NewFunction(s.sleep))
	L.SetGlobal("log", L.NewFunction(s.logLine))
	L.SetGlobal("wait", L.NewFunction(s.wait))

	s.log.Debug("running script", "name", name)
	if err := L.DoString(source); err != nil {
		if s.ctx.Err() != nil {
			s.log.Debug("script stopped", "name", name)
			return
		}
		s.err = checkpoint.Errorf(err, "script %v failed", name)
		s.log.Error("script failed", "name", name, "err", err)
		return
	}
	s.log.Debug("script finished", "name", name)
}

func (s *Script) send(L *lua.LState) int {
	data := L.CheckString(1)
	if !s.push([]byte(data)) {
		L.RaiseError("%v", ErrClosed)
	}
	return 0
}

func (s *Script) sleep(L *lua.LState) int {
	d := time.Duration(L.CheckInt(1)) * time.Millisecond

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-s.closed:
		L.RaiseError("%v", ErrClosed)
	}
	return 0
}

func (s *Script) logLine(L *lua.LState) int {
	s.log.Info(L.CheckString(1))
	return 0
}

func (s *Script) wait(L *lua.LState) int {
	text := L.CheckString(1)
	d := time.Duration(L.OptInt(2, 1000)) * time.Millisecond

	t := time.NewTimer(d)
	defer t.Stop()

	for {
		select {
		case line := <-s.lines:
			if strings.Contains(line, text) {
				L.Push(lua.LTrue)
				return 1
			}
		case <-t.C:
			L.Push(lua.LFalse)
			return 1
		case <-s.closed:
			L.RaiseError("%v", ErrClosed)
			return 0
		}
	}
}

// Println writes the line and hands it to a waiting script.
func (s *Script) Println(line string) {
	if s.w != nil {
		s.mu.Lock()
		_, _ = io.WriteString(s.w, line+lineEnd)
		s.mu.Unlock()
	}

	select {
	case s.lines <- line:
	default:
		s.log.Debug("script is not reading, dropped line", "line", line)
	}
}

// Done is closed when the script ended.
func (s *Script) Done() <-chan struct{} {
	return s.done
}

// Err returns the error the script failed with, if any.
// It is only valid after Done is closed.
func (s *Script) Err() error {
	return s.err
}

// Close stops the script and waits for it.
func (s *Script) Close() error {
	s.cancel()
	s.close()
	<-s.done
	return nil
}
