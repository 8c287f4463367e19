// Package checkpoint decorates errors with the place they passed through, so a failure deep inside
// the volume or decoder layers still tells where it surfaced.
// Every error attached to a checkpoint stays reachable through errors.Is and errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
)

// From marks err with the location of the caller.
// It returns nil if err is nil. io.EOF and io.ErrUnexpectedEOF are returned unchanged
// because callers compare them with ==.
func From(err error) error {
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		return err
	}

	return newCheckpoint(err, nil)
}

// Wrap marks prev with the location of the caller and attaches err as the description
// of what failed there. Usually err is a package sentinel:
//  return checkpoint.Wrap(volume.Read(buf), ErrReadFile)
// Both errors.Is(result, ErrReadFile) and errors.Is(result, <cause>) hold afterwards.
// It returns nil if prev is nil and io.EOF if prev is io.EOF.
func Wrap(prev, err error) error {
	if prev == nil || prev == io.EOF {
		return prev
	}

	return newCheckpoint(err, prev)
}

// Errorf works like Wrap but builds the description with fmt.Errorf, so %w can be used to
// attach a sentinel together with some context.
func Errorf(prev error, format string, a ...interface{}) error {
	if prev == nil || prev == io.EOF {
		return prev
	}

	return newCheckpoint(fmt.Errorf(format, a...), prev)
}

type checkpoint struct {
	err  error
	prev error

	file string
	line int
}

func newCheckpoint(err, prev error) *checkpoint {
	// Skip newCheckpoint and the exported constructor.
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file = "unknown"
	}

	return &checkpoint{
		err:  err,
		prev: prev,
		file: filepath.Base(file),
		line: line,
	}
}

func (c *checkpoint) location() string {
	if c.line == 0 {
		return c.file
	}
	return fmt.Sprintf("%s:%d", c.file, c.line)
}

func (c *checkpoint) Error() string {
	var b strings.Builder
	b.WriteString(c.location())

	if c.err != nil {
		b.WriteString(": ")
		b.WriteString(c.err.Error())
	}

	if c.prev != nil {
		if prev, ok := c.prev.(*checkpoint); ok {
			b.WriteString("\n\t")
			b.WriteString(strings.ReplaceAll(prev.Error(), "\n", "\n\t"))
		} else {
			b.WriteString("\n\tcaused by: ")
			b.WriteString(c.prev.Error())
		}
	}

	return b.String()
}

func (c *checkpoint) Unwrap() error {
	return c.prev
}

func (c *checkpoint) Is(target error) bool {
	return c.err != nil && errors.Is(c.err, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.err != nil && errors.As(c.err, target)
}
