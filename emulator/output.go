package emulator

import (
	"bytes"

	"github.com/aligator/vsplayer/checkpoint"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Song is everything the chip received between two resets.
type Song struct {
	// Index counts the songs since the chip was created, starting at 1.
	Index  int
	Format Format
	// Data is the stream without the zero padding around it.
	Data []byte
	// PCM holds the decoded samples of WAV songs.
	PCM *audio.IntBuffer
}

// Output is where the emulated chip sends its sound.
type Output interface {
	// Tone starts a sine wave, replacing anything playing.
	Tone(freq float64)
	// Silence stops any sound.
	Silence()
	// SetVolume applies a volume register value, 0 is loudest in 0.5 dB steps.
	SetVolume(left, right byte)
	// Song is called when a song ended.
	Song(s Song)
}

// nopOutput drops everything.
type nopOutput struct{}

func (nopOutput) Tone(float64)         {}
func (nopOutput) Silence()             {}
func (nopOutput) SetVolume(byte, byte) {}
func (nopOutput) Song(Song)            {}

// decodeWAV decodes a complete WAV stream.
func decodeWAV(data []byte) (*audio.IntBuffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, checkpoint.From(ErrInvalidWAV)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrInvalidWAV)
	}
	return buf, nil
}
