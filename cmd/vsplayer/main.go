package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aligator/vsplayer"
	"github.com/aligator/vsplayer/emulator"
	"github.com/aligator/vsplayer/fat"
	"github.com/aligator/vsplayer/serial"
	"github.com/aligator/vsplayer/vs1003"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

// link is a control link which may run out of input.
type link interface {
	vsplayer.Serial
	Done() <-chan struct{}
	Close() error
}

// untilDone ends the run loop once the link input ended and the player went idle.
type untilDone struct {
	link
	cancel context.CancelFunc
	player *vsplayer.Player
}

func (u *untilDone) Poll() (byte, bool) {
	b, ok := u.link.Poll()
	if ok {
		return b, true
	}

	select {
	case <-u.Done():
		if u.player != nil && u.player.Current().Kind == vsplayer.CmdIdle {
			u.cancel()
		}
	default:
	}
	return 0, false
}

// main runs the player on a host directory or a FAT image with an emulated decoder.
func main() {
	var (
		dir      = flag.StringP("dir", "d", ".", "directory used as the volume")
		image    = flag.StringP("image", "i", "", "FAT image used as the volume instead of --dir")
		writable = flag.Bool("writable", false, "do not wrap the volume read only")
		volume   = flag.Uint8P("volume", "v", vsplayer.DefaultConfig().Volume, "initial attenuation, 0 is loudest")
		rate     = flag.Int("rate", emulator.DefaultRate, "bytes per second the emulated decoder consumes, 0 for no limit")
		speaker  = flag.Bool("speaker", false, "play tones and WAV songs on the audio device")
		capture  = flag.String("capture", "", "directory to store every received song in")
		mode     = flag.StringP("link", "l", "auto", "control link: auto, stdio, terminal or console")
		script   = flag.StringP("script", "s", "", "Lua script driving the player instead of stdin")
		history  = flag.String("history", "", "history file of the console")
		level    = flag.String("log-level", "info", "debug, info, warn or error")
	)
	flag.Parse()

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(*level)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if err := run(log, options{
		dir:      *dir,
		image:    *image,
		writable: *writable,
		volume:   *volume,
		rate:     *rate,
		speaker:  *speaker,
		capture:  *capture,
		link:     *mode,
		script:   *script,
		history:  *history,
	}); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("player failed", "err", err)
		os.Exit(1)
	}
}

type options struct {
	dir      string
	image    string
	writable bool
	volume   byte
	rate     int
	speaker  bool
	capture  string
	link     string
	script   string
	history  string
}

// openVolume returns the filesystem the player reads from and a function closing it.
func openVolume(log *slog.Logger, opts options) (afero.Fs, func() error, error) {
	if opts.image != "" {
		f, err := os.Open(opts.image)
		if err != nil {
			return nil, nil, err
		}
		fs, err := fat.New(f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		log.Info("volume image opened", "type", fs.FSType(), "label", fs.Label(), "clusters", fs.Info().ClusterCount)
		return fs, f.Close, nil
	}

	info, err := os.Stat(opts.dir)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%v is not a directory", opts.dir)
	}

	var fs afero.Fs = afero.NewBasePathFs(afero.NewOsFs(), opts.dir)
	if !opts.writable {
		fs = afero.NewReadOnlyFs(fs)
	}
	return fs, func() error { return nil }, nil
}

func run(log *slog.Logger, opts options) error {
	fs, closeFs, err := openVolume(log, opts)
	if err != nil {
		return err
	}
	defer closeFs()

	chipCfg := emulator.DefaultConfig()
	chipCfg.Rate = opts.rate
	chipCfg.Logger = log.With("component", "emulator")
	if opts.speaker {
		out, err := emulator.NewSpeaker(chipCfg.Logger)
		if err != nil {
			return err
		}
		chipCfg.Output = out
	}
	if opts.capture != "" {
		if err := os.MkdirAll(opts.capture, 0o755); err != nil {
			return err
		}
		chipCfg.Capture = afero.NewBasePathFs(afero.NewOsFs(), opts.capture)
	}
	chip := emulator.New(chipCfg)
	defer func() {
		if err := chip.Close(); err != nil {
			log.Error("closing the decoder failed", "err", err)
		}
	}()

	l, err := openLink(log, opts)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctl := &untilDone{link: l, cancel: cancel}

	cfg := vsplayer.DefaultConfig()
	cfg.Volume = opts.volume
	cfg.Logger = log.With("component", "player")
	p := vsplayer.New(cfg, ctl, vsplayer.NewFileVolume(fs), vs1003.New(chip))
	ctl.player = p

	err = p.Run(ctx)
	log.Info("player stopped", "songs", chip.Songs(), "overflows", chip.Overflows())
	return err
}

func openLink(log *slog.Logger, opts options) (link, error) {
	linkLog := serial.WithLogger(log.With("component", "link"))

	if opts.script != "" {
		source, err := os.ReadFile(opts.script)
		if err != nil {
			return nil, err
		}
		return serial.NewScript(opts.script, string(source), os.Stdout, linkLog), nil
	}

	mode := opts.link
	if mode == "auto" {
		mode = "stdio"
		if term.IsTerminal(int(os.Stdin.Fd())) {
			mode = "console"
		}
	}

	switch mode {
	case "stdio":
		return serial.NewStream(os.Stdin, os.Stdout, linkLog), nil
	case "terminal":
		return serial.NewTerminal(os.Stdin, os.Stdout, linkLog)
	case "console":
		return serial.NewConsole("vsplayer> ", opts.history, linkLog)
	default:
		return nil, fmt.Errorf("unknown link %q", mode)
	}
}
