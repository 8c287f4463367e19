package serial

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"
)

type poller interface {
	Poll() (byte, bool)
}

// drain returns everything Poll delivers until it runs dry.
func drain(p poller) string {
	var got []byte
	for {
		b, ok := p.Poll()
		if !ok {
			return string(got)
		}
		got = append(got, b)
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
}

func Test_link_Poll(t *testing.T) {
	l := newLink(0, nil)

	if _, ok := l.Poll(); ok {
		t.Error("Poll() on an empty link returned a byte")
	}

	l.push([]byte("ab"))
	if got := drain(&l); got != "ab" {
		t.Errorf("Poll() = %q, want %q", got, "ab")
	}
}

func Test_link_PollWaits(t *testing.T) {
	l := newLink(5*time.Millisecond, nil)

	start := time.Now()
	if _, ok := l.Poll(); ok {
		t.Error("Poll() on an empty link returned a byte")
	}
	if d := time.Since(start); d < 5*time.Millisecond {
		t.Errorf("Poll() returned after %v", d)
	}

	go l.push([]byte{'x'})
	if b, ok := l.Poll(); !ok || b != 'x' {
		// The push may come late, give it one more try.
		if b, ok = l.Poll(); !ok || b != 'x' {
			t.Errorf("Poll() = (%q, %v), want ('x', true)", b, ok)
		}
	}
}

func Test_link_pushAfterClose(t *testing.T) {
	l := newLink(0, nil)
	l.push(make([]byte, cap(l.in)))
	l.close()
	l.close()

	if l.push([]byte{1}) {
		t.Error("push() into a full closed link succeeded")
	}
}

func TestStream(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     []Option
		want     string
		wantEcho string
	}{
		{
			name:  "verbatim",
			input: ":Ptrack1\r\n",
			want:  ":Ptrack1\r\n",
		},
		{
			name:     "raw terminal",
			input:    ":V10\r:S\r",
			opts:     []Option{WithEcho(true), WithCRToLF(true)},
			want:     ":V10\n:S\n",
			wantEcho: ":V10\r\n:S\r\n",
		},
		{
			name:     "echo without translation",
			input:    "ab\n",
			opts:     []Option{WithEcho(true)},
			want:     "ab\n",
			wantEcho: "ab\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := NewStream(strings.NewReader(tt.input), &out, append(tt.opts, WithWait(0))...)
			waitDone(t, s.Done())

			if got := drain(s); got != tt.want {
				t.Errorf("received %q, want %q", got, tt.want)
			}
			if out.String() != tt.wantEcho {
				t.Errorf("echo = %q, want %q", out.String(), tt.wantEcho)
			}
			if s.Err() != nil {
				t.Errorf("Err() = %v", s.Err())
			}
			if err := s.Close(); err != nil {
				t.Errorf("Close() = %v", err)
			}
		})
	}
}

func TestStream_Println(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader(""), &out, WithWait(0))
	waitDone(t, s.Done())

	s.Println("run")
	s.Println(":rpno file")

	if want := "run\r\n:rpno file\r\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestStream_ReadError(t *testing.T) {
	errBroken := errors.New("broken")
	s := NewStream(iotest.ErrReader(errBroken), &bytes.Buffer{}, WithWait(0))
	waitDone(t, s.Done())

	if !errors.Is(s.Err(), errBroken) {
		t.Errorf("Err() = %v, want %v", s.Err(), errBroken)
	}
}

func TestStream_CloseUnblocksReader(t *testing.T) {
	s := NewStream(bytes.NewReader(make([]byte, 4096)), &bytes.Buffer{}, WithWait(0))

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	waitDone(t, s.Done())
}

func Test_frame(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		wantOk bool
	}{
		{name: "full frame", line: ":Ptrack1", want: ":Ptrack1\n", wantOk: true},
		{name: "without colon", line: "V10", want: ":V10\n", wantOk: true},
		{name: "trimmed", line: "  S \t", want: ":S\n", wantOk: true},
		{name: "empty", line: "", wantOk: false},
		{name: "blank", line: "   ", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := frame(tt.line)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("frame() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestScript(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		printed []string
		want    string
		wantErr string
	}{
		{
			name:   "send",
			source: `send(":V10\n") send(":Ptrack\n")`,
			want:   ":V10\n:Ptrack\n",
		},
		{
			name: "wait for a line",
			source: `
				if not wait("TRACK1", 2000) then error("not played") end
				send(":S\n")`,
			printed: []string{"run", "TRACK1.MP3"},
			want:    ":S\n",
		},
		{
			name: "wait times out",
			source: `
				if wait("never", 10) then error("matched") end
				sleep(1)
				log("done")
				send("x")`,
			printed: []string{"run"},
			want:    "x",
		},
		{
			name:    "script error",
			source:  `send("a") error("boom")`,
			want:    "a",
			wantErr: "boom",
		},
		{
			name:    "syntax error",
			source:  `send(`,
			wantErr: "script.lua",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := NewScript("script.lua", tt.source, &out, WithWait(0))
			for _, line := range tt.printed {
				s.Println(line)
			}
			waitDone(t, s.Done())

			if got := drain(s); got != tt.want {
				t.Errorf("received %q, want %q", got, tt.want)
			}

			if tt.wantErr == "" && s.Err() != nil {
				t.Errorf("Err() = %v", s.Err())
			}
			if tt.wantErr != "" && (s.Err() == nil || !strings.Contains(s.Err().Error(), tt.wantErr)) {
				t.Errorf("Err() = %v, want it to contain %q", s.Err(), tt.wantErr)
			}

			if want := strings.Join(append(tt.printed, ""), lineEnd); len(tt.printed) > 0 && out.String() != want {
				t.Errorf("output = %q, want %q", out.String(), want)
			}

			if err := s.Close(); err != nil {
				t.Errorf("Close() = %v", err)
			}
		})
	}
}

func TestScript_Close(t *testing.T) {
	s := NewScript("forever.lua", `while true do sleep(1) end`, nil, WithWait(0))

	closed := make(chan struct{})
	go func() {
		_ = s.Close()
		close(closed)
	}()
	waitDone(t, closed)

	if s.Err() != nil {
		t.Errorf("Err() after Close = %v", s.Err())
	}
}
