// Package emulator emulates a VS1003B decoder on the host, so the player can run without the
// hardware. Chip implements vs1003.Bus: the registers live in memory, SDI bytes go through a FIFO
// which drains in real time to drive DREQ, sine tests are detected in the stream and every song
// is captured and handed to an Output.
package emulator

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aligator/vsplayer/checkpoint"
	"github.com/aligator/vsplayer/vs1003"
	"github.com/spf13/afero"
)

var (
	ErrInvalidWAV = errors.New("invalid wav stream")
	ErrCapture    = errors.New("could not write the captured song")
)

const (
	// DefaultFIFOSize is the size of the chip's stream buffer.
	DefaultFIFOSize = 2048
	// DefaultRate drains the FIFO like a 128 kbit/s MP3.
	DefaultRate = 16000

	// dreqThreshold is the free space DREQ guarantees.
	dreqThreshold = 32
)

// Config holds the settings of a Chip.
type Config struct {
	// Rate is the number of bytes per second the FIFO drains. WAV songs drain with the
	// byte rate of their header instead. 0 drains immediately.
	Rate     int
	FIFOSize int
	// Now is the clock of the drain.
	Now    func() time.Time
	Output Output
	// Capture receives every song as a file if set.
	Capture afero.Fs
	Logger  *slog.Logger
}

// DefaultConfig returns a configuration draining like an MP3 stream into a silent output.
func DefaultConfig() Config {
	return Config{
		Rate:     DefaultRate,
		FIFOSize: DefaultFIFOSize,
		Now:      time.Now,
	}
}

// Chip is an emulated VS1003B. It is not safe for concurrent use, just like the bus it replaces.
type Chip struct {
	cfg Config
	log *slog.Logger
	out Output

	regs  [16]uint16
	reset bool
	fast  bool

	// fifo state, level is the number of buffered bytes at time last.
	level int
	rate  int
	last  time.Time

	// window keeps the last SDI bytes to detect the sine test sequences.
	window []byte
	tone   bool

	song bytes.Buffer
	// lead counts the zero bytes the song starts with.
	lead     int
	songs    int
	overflow int
}

// New creates a chip which is held in reset until SetReset(false).
func New(cfg Config) *Chip {
	def := DefaultConfig()
	if cfg.FIFOSize <= 0 {
		cfg.FIFOSize = def.FIFOSize
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	if cfg.Output == nil {
		cfg.Output = nopOutput{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Chip{
		cfg:   cfg,
		log:   cfg.Logger,
		out:   cfg.Output,
		reset: true,
	}
	c.powerOn()
	return c
}

func (c *Chip) powerOn() {
	c.regs = [16]uint16{}
	c.regs[vs1003.RegMode] = vs1003.ModeSDINew
	c.regs[vs1003.RegStatus] = vs1003.VersionVS1003 << 4
	c.flush()
}

// flush empties the FIFO and resets the stream state.
func (c *Chip) flush() {
	c.level = 0
	c.rate = c.cfg.Rate
	c.last = c.cfg.Now()
	c.window = c.window[:0]
}

// drain removes what the decoder consumed since the last call.
func (c *Chip) drain() {
	now := c.cfg.Now()
	if c.level == 0 || c.rate <= 0 {
		c.level = 0
		c.last = now
		return
	}

	elapsed := now.Sub(c.last)
	n := int(int64(elapsed) * int64(c.rate) / int64(time.Second))
	if n <= 0 {
		return
	}

	if n >= c.level {
		c.level = 0
		c.last = now
		return
	}

	c.level -= n
	// Keep the remainder for the next call.
	c.last = c.last.Add(time.Duration(int64(n) * int64(time.Second) / int64(c.rate)))
}

// Level returns the number of bytes in the FIFO.
func (c *Chip) Level() int {
	c.drain()
	return c.level
}

// Overflows returns how many bytes were dropped because they were sent without DREQ.
func (c *Chip) Overflows() int {
	return c.overflow
}

// Songs returns the number of songs finished so far.
func (c *Chip) Songs() int {
	return c.songs
}

// Fast reports the bus speed set last.
func (c *Chip) Fast() bool {
	return c.fast
}

// Register returns a register value without side effects.
func (c *Chip) Register(addr byte) uint16 {
	return c.regs[addr&0x0F]
}

func (c *Chip) WriteRegister(addr byte, value uint16) {
	if c.reset {
		return
	}
	addr &= 0x0F

	switch addr {
	case vs1003.RegStatus:
		// The version bits are read only.
		value = value&^0x0070 | c.regs[addr]&0x0070

	case vs1003.RegMode:
		if value&vs1003.ModeReset != 0 {
			c.softReset()
			value &^= vs1003.ModeReset
		}
		if c.tone && value&vs1003.ModeTests == 0 {
			c.stopTone()
		}

	case vs1003.RegVolume:
		c.out.SetVolume(byte(value>>8), byte(value))
	}

	c.regs[addr] = value
}

func (c *Chip) ReadRegister(addr byte) uint16 {
	if c.reset {
		return 0
	}
	return c.regs[addr&0x0F]
}

func (c *Chip) SendData(b byte) {
	if c.reset {
		return
	}

	c.drain()
	if c.level >= c.cfg.FIFOSize {
		c.overflow++
		if c.overflow == 1 {
			c.log.Warn("fifo overflow, data sent without DREQ")
		}
		return
	}
	c.level++

	if c.regs[vs1003.RegMode]&vs1003.ModeTests != 0 {
		c.detectTest(b)
		return
	}

	if b == 0 && c.song.Len() == c.lead {
		c.lead++
	}
	c.song.WriteByte(b)

	if c.cfg.Rate > 0 && c.song.Len()-c.lead == 44 {
		c.adaptRate()
	}
}

// adaptRate drains WAV songs at their real speed.
func (c *Chip) adaptRate() {
	data := c.song.Bytes()[c.lead:]
	if Sniff(data) != FormatWAV {
		return
	}
	if rate := wavByteRate(data); rate > 0 {
		c.rate = rate
		c.log.Debug("wav stream detected", "byteRate", rate)
	}
}

func (c *Chip) DREQ() bool {
	if c.reset {
		return false
	}
	c.drain()
	return c.level <= c.cfg.FIFOSize-dreqThreshold
}

// SetReset drives XRESET. Releasing it powers the chip up again.
func (c *Chip) SetReset(active bool) {
	if active == c.reset {
		return
	}

	c.reset = active
	if active {
		c.finishSong()
		c.stopTone()
		return
	}

	c.log.Debug("chip out of reset")
	c.powerOn()
}

func (c *Chip) SetFast(fast bool) {
	c.fast = fast
}

func (c *Chip) softReset() {
	c.log.Debug("soft reset")
	c.finishSong()
	c.stopTone()
	c.flush()
}

var (
	sineStart = []byte{0x53, 0xEF, 0x6E}
	sineStop  = []byte{0x45, 0x78, 0x69, 0x74, 0x00, 0x00, 0x00, 0x00}
)

// detectTest looks for the sine test sequences in the last 8 SDI bytes.
func (c *Chip) detectTest(b byte) {
	c.window = append(c.window, b)
	if len(c.window) > 8 {
		c.window = c.window[1:]
	}
	if len(c.window) < 8 {
		return
	}

	switch {
	case bytes.Equal(c.window, sineStop):
		c.stopTone()
		c.window = c.window[:0]

	case bytes.HasPrefix(c.window, sineStart) && bytes.Equal(c.window[4:], []byte{0, 0, 0, 0}):
		n := c.window[3]
		freq := vs1003.SineFrequency(n)
		c.log.Debug("sine test", "n", n, "freq", freq)
		c.tone = true
		c.out.Tone(freq)
		c.window = c.window[:0]
	}
}

func (c *Chip) stopTone() {
	if !c.tone {
		return
	}
	c.tone = false
	c.out.Silence()
}

// finishSong hands the captured stream to the output. Streams of only zeros are no song,
// e.g. the padding around a reset.
func (c *Chip) finishSong() {
	defer func() {
		c.song.Reset()
		c.lead = 0
	}()

	data := c.song.Bytes()[c.lead:]
	if len(data) == 0 {
		return
	}

	c.songs++
	song := Song{
		Index:  c.songs,
		Format: Sniff(data),
	}

	if song.Format == FormatWAV {
		if n := wavLength(data); n > 0 && n <= len(data) {
			data = data[:n]
		}
		pcm, err := decodeWAV(data)
		if err != nil {
			c.log.Warn("could not decode song", "index", song.Index, "err", err)
		}
		song.PCM = pcm
	} else {
		data = bytes.TrimRight(data, "\x00")
	}

	song.Data = append([]byte(nil), data...)
	c.log.Info("song finished", "index", song.Index, "format", song.Format, "size", len(song.Data))

	if err := c.capture(song); err != nil {
		c.log.Error("capture failed", "index", song.Index, "err", err)
	}
	c.out.Song(song)
}

// wavLength returns the size of a RIFF stream from its header.
func wavLength(data []byte) int {
	if len(data) < 8 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(data[4:8])) + 8
}

func (c *Chip) capture(song Song) error {
	if c.cfg.Capture == nil {
		return nil
	}

	name := fmt.Sprintf("/song-%03d%s", song.Index, song.Format.Ext())
	if err := afero.WriteFile(c.cfg.Capture, name, song.Data, 0644); err != nil {
		return checkpoint.Wrap(err, ErrCapture)
	}
	return nil
}

// Close finishes the running song.
func (c *Chip) Close() error {
	c.finishSong()
	c.stopTone()
	return nil
}
