// Package vs1003 drives a VS1003B audio decoder through two byte-level channels: the serial
// control interface (SCI) for registers and the serial data interface (SDI) for the audio stream.
//
// The chip signals with its DREQ line whether it can take more data. Everything in here polls
// that line, no interrupts are involved. A chip that never raises DREQ blocks the caller forever;
// that is part of the hardware contract and is not guarded against.
package vs1003

import "time"

// EndSongLength is the number of zero bytes sent after a file to flush the decoder's buffers.
const EndSongLength = 2048

// Magic SDI sequences understood while ModeTests is set.
var (
	sineStart = [...]byte{0x53, 0xEF, 0x6E}
	sineStop  = [...]byte{0x45, 0x78, 0x69, 0x74, 0x00, 0x00, 0x00, 0x00}
)

// Bus is the raw transport to the chip. Implementations are expected to complete each call
// atomically, there is no partial-byte state.
// Generated mock using mockgen:
//  mockgen -source=decoder.go -destination=bus_mock.go -package vs1003
type Bus interface {
	// WriteRegister performs one SCI write cycle.
	WriteRegister(addr byte, value uint16)
	// ReadRegister performs one SCI read cycle.
	ReadRegister(addr byte) uint16
	// SendData clocks one byte into the SDI.
	SendData(b byte)
	// DREQ reports the data request line. High means at least 32 bytes fit into the chip's FIFO.
	DREQ() bool
	// SetReset drives XRESET, true holds the chip in reset.
	SetReset(active bool)
	// SetFast switches the bus clock. The chip needs a slow clock until its clock multiplier is set.
	SetFast(fast bool)
}

// Gate is consulted by Stream whenever a byte cannot be sent right away.
type Gate interface {
	// Paused holds back data even if the chip is ready.
	Paused() bool
	// Abort makes Stream give up on the remaining data.
	Abort() bool
	// Idle is called once per wait iteration so the caller can do other work.
	Idle()
}

// Option configures a Decoder.
type Option func(d *Decoder)

// WithSleep replaces time.Sleep for the fixed delays of the reset sequences.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Decoder) {
		d.sleep = sleep
	}
}

// Decoder is the driver for one chip.
type Decoder struct {
	bus   Bus
	sleep func(time.Duration)
}

// New creates a Decoder on top of the given bus.
func New(bus Bus, opts ...Option) *Decoder {
	d := &Decoder{
		bus:   bus,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Init holds the chip in reset until Reset is called.
func (d *Decoder) Init() {
	d.bus.SetReset(true)
}

// Ready reports if the chip accepts data.
func (d *Decoder) Ready() bool {
	return d.bus.DREQ()
}

// Send writes one byte of audio data without checking Ready.
func (d *Decoder) Send(b byte) {
	d.bus.SendData(b)
}

func (d *Decoder) waitReady() {
	for !d.bus.DREQ() {
	}
}

// WriteRegister writes an SCI register and waits until the chip has processed it.
func (d *Decoder) WriteRegister(addr byte, value uint16) {
	d.bus.WriteRegister(addr, value)
	d.waitReady()
}

// ReadRegister reads an SCI register.
func (d *Decoder) ReadRegister(addr byte) uint16 {
	return d.bus.ReadRegister(addr)
}

// Version reads the chip version from the status register.
func (d *Decoder) Version() int {
	return StatusVersion(d.bus.ReadRegister(RegStatus))
}

// SetVolume sets the attenuation of both channels, 0 is loudest.
func (d *Decoder) SetVolume(left, right byte) {
	d.WriteRegister(RegVolume, Volume(left, right))
}

// Reset pulses the hardware reset line and then performs a soft reset.
func (d *Decoder) Reset(left, right byte) {
	d.bus.SetFast(false)
	d.bus.SetReset(true)
	d.bus.SetReset(false)
	d.sleep(2 * time.Millisecond)

	d.waitReady()
	d.SoftReset(left, right)
}

// SoftReset restarts the decoder firmware and restores normal decode mode: native SDI mode,
// 4x clock, 44.1 kHz stereo, mild bass boost and the given volume.
func (d *Decoder) SoftReset(left, right byte) {
	d.WriteRegister(RegMode, ModeSDINew|ModeReset)
	d.sleep(time.Millisecond)
	d.waitReady()

	d.WriteRegister(RegClockF, ClockF(0, ClockAdd0, ClockMult4_0))
	d.WriteRegister(RegAuData, AuData(44100, true))
	d.WriteRegister(RegBass, 0x0055)
	d.SetVolume(left, right)

	d.bus.SetFast(true)

	for i := 0; i < 4; i++ {
		d.bus.SendData(0)
	}
}

// SineTestStart makes the chip output a sine wave. n selects the frequency, see SineFrequency.
func (d *Decoder) SineTestStart(n byte) {
	d.WriteRegister(RegMode, ModeSDINew|ModeTests)

	for _, b := range sineStart {
		d.bus.SendData(b)
	}
	d.bus.SendData(n)
	for i := 0; i < 4; i++ {
		d.bus.SendData(0)
	}
}

// SineTestStop ends a sine test and returns to normal decode mode.
func (d *Decoder) SineTestStop() {
	for _, b := range sineStop {
		d.bus.SendData(b)
	}
	d.WriteRegister(RegMode, ModeSDINew)
}

// EndSong flushes the decoder after the last byte of a file by sending EndSongLength zero bytes.
// Each byte waits for DREQ, nothing else is serviced meanwhile.
func (d *Decoder) EndSong() {
	d.waitReady()
	for i := 0; i < EndSongLength; i++ {
		d.waitReady()
		d.bus.SendData(0)
	}
}

// Stream sends data byte by byte. A byte is only sent while the chip is ready and the gate is not
// paused; otherwise the gate is asked whether to abort and, if not, gets an Idle call before the
// next check. Pause therefore takes effect at the next byte boundary.
//
// It returns the number of bytes sent and false if the gate aborted. Bytes after an abort are
// dropped, Stream never resumes them.
func (d *Decoder) Stream(data []byte, gate Gate) (int, bool) {
	sent := 0
	for sent < len(data) {
		if d.bus.DREQ() && !gate.Paused() {
			d.bus.SendData(data[sent])
			sent++
			continue
		}

		if gate.Abort() {
			return sent, false
		}
		gate.Idle()
	}
	return sent, true
}
