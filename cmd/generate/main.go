package main

import (
	"fmt"
	"math"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aligator/vsplayer/fat"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
)

// tone is a sine wave gliding from one frequency to another.
type tone struct {
	name     string
	from, to float64
}

var tones = []tone{
	{name: "TONE440.WAV", from: 440, to: 440},
	{name: "TONE880.WAV", from: 880, to: 880},
	{name: "CHIRP.WAV", from: 220, to: 1760},
	{name: "SWEEPS/UP.WAV", from: 100, to: 4000},
	{name: "SWEEPS/DOWN.WAV", from: 4000, to: 100},
}

// main writes a sample volume of WAV files to play with vsplayer, either into a directory or
// as a FAT image.
func main() {
	var (
		out      = flag.StringP("out", "o", "testdata/volume", "directory to write the files to")
		image    = flag.StringP("image", "i", "", "write a FAT image to this file instead of a directory")
		fsType   = flag.String("type", "fat16", "FAT type of the image: fat12, fat16 or fat32")
		label    = flag.String("label", "VSPLAYER", "volume label of the image")
		minSize  = flag.Int64("min-size", 0, "minimal size of the image in bytes")
		rate     = flag.Int("rate", 22050, "sample rate")
		duration = flag.Duration("duration", 2*time.Second, "length of every file")
	)
	flag.Parse()

	var fs afero.Fs
	if *image != "" {
		fs = afero.NewMemMapFs()
	} else {
		if err := os.MkdirAll(*out, 0o755); err != nil {
			panic(err)
		}
		fs = afero.NewBasePathFs(afero.NewOsFs(), *out)
	}

	for _, t := range tones {
		if err := write(fs, t, *rate, *duration); err != nil {
			panic(fmt.Errorf("%s: %w", t.name, err))
		}
		if *image == "" {
			fmt.Println(path.Join(*out, t.name))
		}
	}

	if *image == "" {
		return
	}

	typ, err := parseType(*fsType)
	if err != nil {
		panic(err)
	}
	err = fat.CreateImage(afero.NewOsFs(), *image, fs, fat.ImageConfig{
		Type:    typ,
		Label:   *label,
		MinSize: *minSize,
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(*image)
}

func parseType(s string) (fat.Type, error) {
	for _, typ := range []fat.Type{fat.FAT12, fat.FAT16, fat.FAT32} {
		if strings.EqualFold(typ.String(), s) {
			return typ, nil
		}
	}
	return 0, fmt.Errorf("unknown FAT type %q", s)
}

func write(fs afero.Fs, t tone, rate int, duration time.Duration) error {
	if err := fs.MkdirAll(path.Dir("/"+t.name), 0o755); err != nil {
		return err
	}

	f, err := fs.Create("/" + t.name)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	err = enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           samples(t, rate, duration),
		SourceBitDepth: 16,
	})
	if err == nil {
		err = enc.Close()
	}

	// Close the file without defer to close before the next one is written.
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// samples renders the tone with a linear frequency glide at half amplitude.
func samples(t tone, rate int, duration time.Duration) []int {
	n := int(duration.Seconds() * float64(rate))
	data := make([]int, n)

	phase := 0.0
	for i := range data {
		freq := t.from + (t.to-t.from)*float64(i)/float64(n)
		phase += 2 * math.Pi * freq / float64(rate)
		data[i] = int(math.Sin(phase) * math.MaxInt16 / 2)
	}
	return data
}
