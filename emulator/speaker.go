package emulator

import (
	"log/slog"
	"math"
	"time"

	"github.com/aligator/vsplayer/checkpoint"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/go-audio/audio"
)

// SpeakerRate is the sample rate the speaker output runs at.
const SpeakerRate = beep.SampleRate(44100)

// toneAmplitude keeps the test tone from being painfully loud at volume 0.
const toneAmplitude = 0.3

// Speaker plays the chip's sound on the host's audio device.
type Speaker struct {
	rate beep.SampleRate
	log  *slog.Logger

	// gain is read by the speaker goroutine, guard it with speaker.Lock.
	gain *[2]float64
}

// NewSpeaker opens the audio device.
func NewSpeaker(log *slog.Logger) (*Speaker, error) {
	if err := speaker.Init(SpeakerRate, SpeakerRate.N(100*time.Millisecond)); err != nil {
		return nil, checkpoint.From(err)
	}
	return &Speaker{
		rate: SpeakerRate,
		log:  log,
		gain: &[2]float64{1, 1},
	}, nil
}

func (s *Speaker) Tone(freq float64) {
	s.log.Debug("speaker tone", "freq", freq)
	speaker.Clear()
	speaker.Play(withGain(ToneStreamer(s.rate, freq), s.gain))
}

func (s *Speaker) Silence() {
	speaker.Clear()
}

func (s *Speaker) SetVolume(left, right byte) {
	speaker.Lock()
	s.gain[0], s.gain[1] = Gain(left), Gain(right)
	speaker.Unlock()
}

func (s *Speaker) Song(song Song) {
	if song.PCM == nil {
		s.log.Info("no playback for this format", "index", song.Index, "format", song.Format)
		return
	}

	streamer := beep.Streamer(PCMStreamer(song.PCM))
	if rate := beep.SampleRate(song.PCM.Format.SampleRate); rate != s.rate {
		streamer = beep.Resample(4, rate, s.rate, streamer)
	}

	speaker.Clear()
	speaker.Play(withGain(streamer, s.gain))
}

// Gain converts a volume register value into an amplitude factor.
// Each step attenuates by 0.5 dB, 0xFE is silent.
func Gain(attenuation byte) float64 {
	if attenuation >= 0xFE {
		return 0
	}
	return math.Pow(10, -float64(attenuation)/2/20)
}

// ToneStreamer generates an endless sine wave.
func ToneStreamer(rate beep.SampleRate, freq float64) beep.Streamer {
	var phase float64
	step := 2 * math.Pi * freq / float64(rate)

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			v := toneAmplitude * math.Sin(phase)
			samples[i][0], samples[i][1] = v, v
			phase = math.Mod(phase+step, 2*math.Pi)
		}
		return len(samples), true
	})
}

// PCMStreamer plays decoded samples. Mono is played on both channels.
func PCMStreamer(buf *audio.IntBuffer) beep.Streamer {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := math.Pow(2, float64(buf.SourceBitDepth-1))
	if buf.SourceBitDepth <= 0 {
		scale = math.Pow(2, 15)
	}
	// 8 bit WAV samples are unsigned.
	var offset float64
	if buf.SourceBitDepth == 8 {
		offset = 128
	}

	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for n < len(samples) && pos+channels <= len(buf.Data) {
			left := (float64(buf.Data[pos]) - offset) / scale
			right := left
			if channels > 1 {
				right = (float64(buf.Data[pos+1]) - offset) / scale
			}
			samples[n][0], samples[n][1] = left, right
			pos += channels
			n++
		}
		return n, n > 0
	})
}

type gainStreamer struct {
	s    beep.Streamer
	gain *[2]float64
}

func withGain(s beep.Streamer, gain *[2]float64) beep.Streamer {
	return gainStreamer{s: s, gain: gain}
}

func (g gainStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.s.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] *= g.gain[0]
		samples[i][1] *= g.gain[1]
	}
	return n, ok
}

func (g gainStreamer) Err() error {
	return g.s.Err()
}
