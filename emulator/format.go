package emulator

import (
	"bytes"
	"encoding/binary"
)

// Format is the kind of stream the decoder detected.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatMP3
	FormatWAV
	FormatMIDI
	FormatWMA
)

func (f Format) String() string {
	switch f {
	case FormatMP3:
		return "MP3"
	case FormatWAV:
		return "WAV"
	case FormatMIDI:
		return "MIDI"
	case FormatWMA:
		return "WMA"
	default:
		return "unknown"
	}
}

// Ext returns the file extension used for captured songs.
func (f Format) Ext() string {
	switch f {
	case FormatMP3:
		return ".mp3"
	case FormatWAV:
		return ".wav"
	case FormatMIDI:
		return ".mid"
	case FormatWMA:
		return ".wma"
	default:
		return ".bin"
	}
}

var asfHeader = []byte{0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11}

// Sniff detects the format from the first bytes of a stream, the way the decoder does.
func Sniff(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG audio frame sync.
		return FormatMP3
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("MThd")):
		return FormatMIDI
	case bytes.HasPrefix(data, asfHeader):
		return FormatWMA
	default:
		return FormatUnknown
	}
}

// wavByteRate reads the byte rate from the fmt chunk of a canonical WAV header.
// It returns 0 if the header is too short or not canonical.
func wavByteRate(data []byte) int {
	if len(data) < 32 || !bytes.Equal(data[12:16], []byte("fmt ")) {
		return 0
	}
	return int(binary.LittleEndian.Uint32(data[28:32]))
}
