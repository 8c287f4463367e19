package serial

import (
	"errors"
	"io"
	"strings"

	"github.com/aligator/vsplayer/checkpoint"
	"github.com/chzyer/readline"
)

// Console is an interactive line editor link. Each entered line is sent as one command frame,
// the leading ':' may be left out.
type Console struct {
	link
	rl *readline.Instance

	done chan struct{}
	err  error
}

// NewConsole starts the line editor on the terminal. history may be empty.
func NewConsole(prompt, history string, opts ...Option) (*Console, error) {
	o := newOptions(opts)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, checkpoint.From(err)
	}

	c := &Console{
		link: newLink(o.wait, o.log),
		rl:   rl,
		done: make(chan struct{}),
	}

	go c.read()
	return c, nil
}

func (c *Console) read() {
	defer close(c.done)

	for {
		line, err := c.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return
			}
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			c.err = checkpoint.From(err)
			c.log.Error("reading the console failed", "err", err)
			return
		}

		f, ok := frame(line)
		if !ok {
			continue
		}
		if !c.push([]byte(f)) {
			return
		}
	}
}

// frame turns a typed line into a command frame.
func frame(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	if !strings.HasPrefix(line, ":") {
		line = ":" + line
	}
	return line + "\n", true
}

// Println writes one line above the prompt.
func (c *Console) Println(line string) {
	if _, err := c.rl.Write([]byte(line + "\n")); err != nil {
		c.log.Debug("writing the console failed", "err", err)
	}
}

// Done is closed when the user quit the console with Ctrl-C or Ctrl-D.
func (c *Console) Done() <-chan struct{} {
	return c.done
}

// Err returns the error which ended the console, if any.
// It is only valid after Done is closed.
func (c *Console) Err() error {
	return c.err
}

func (c *Console) Close() error {
	c.close()
	return checkpoint.From(c.rl.Close())
}
