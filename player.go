// Package vsplayer is the control core of a serial controlled audio player: it reads commands
// from a control channel, finds audio files on a FAT volume and streams them to a VS1003 decoder.
//
// Everything runs on the goroutine calling Player.Run. While a file is streamed, the player
// keeps reading the control channel whenever the decoder is busy, so volume, pause and play
// mode changes apply immediately and a new play, beep, chdir or stop command interrupts the
// running one.
package vsplayer

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aligator/vsplayer/vs1003"
)

// Lines sent on the control channel besides the echoed arguments and directory entries.
const (
	ResponseRun         = "run"
	ResponseNoFile      = ":rpno file"
	ResponseMountFailed = ":risd mount failed"
	ResponseChDirFailed = ":rc0"
)

// Serial is the control channel.
// Generated mock using mockgen:
//  mockgen -source=player.go -destination=player_mock.go -package vsplayer
type Serial interface {
	// Poll returns the next received byte. ok is false if nothing is waiting.
	// It must not block for long.
	Poll() (b byte, ok bool)
	// Println sends one line of text.
	Println(line string)
}

// Codec is the part of the decoder driver the player uses. *vs1003.Decoder implements it.
type Codec interface {
	Init()
	Reset(left, right byte)
	SoftReset(left, right byte)
	SetVolume(left, right byte)
	Version() int
	Stream(data []byte, gate vs1003.Gate) (int, bool)
	SineTestStart(n byte)
	SineTestStop()
	EndSong()
}

// Config holds the startup settings of a Player.
type Config struct {
	// Volume is the initial attenuation, 0 is loudest.
	Volume byte
	// Dir is opened after mounting.
	Dir string
	// BlockSize is the number of bytes read from a file at once.
	BlockSize int
	// BeepTone is the sine test parameter of the beep command, see vs1003.SineFrequency.
	BeepTone     byte
	BeepDuration time.Duration
	// Sleep waits during the beep.
	Sleep  func(time.Duration)
	Logger *slog.Logger
}

// DefaultConfig returns the factory settings.
func DefaultConfig() Config {
	return Config{
		Volume:       20,
		Dir:          "/",
		BlockSize:    512,
		BeepTone:     0x7E,
		BeepDuration: time.Second,
		Sleep:        time.Sleep,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Player owns all mutable state of the appliance. It is not safe for concurrent use,
// everything has to happen on the goroutine running it.
type Player struct {
	cfg    Config
	serial Serial
	volume Volume
	codec  Codec
	log    *slog.Logger

	receiver Receiver
	walker   *Walker
	settings Settings

	// current is the command the run loop executes. Only one is active at a time.
	current Command
	// exit tells a running play action that a new command replaced it.
	exit bool

	block []byte
	done  <-chan struct{}
}

// New creates a Player. Zero values in cfg are replaced by their defaults.
func New(cfg Config, serial Serial, volume Volume, codec Codec) *Player {
	def := DefaultConfig()
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = def.BlockSize
	}
	if cfg.Sleep == nil {
		cfg.Sleep = def.Sleep
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}

	p := &Player{
		cfg:    cfg,
		serial: serial,
		volume: volume,
		codec:  codec,
		log:    cfg.Logger,
		settings: Settings{
			Volume: cfg.Volume,
			Mode:   OneShot,
		},
		block: make([]byte, cfg.BlockSize),
	}
	p.walker = NewWalker(volume, serial.Println, cfg.Logger)
	return p
}

// Settings returns a copy of the current settings.
func (p *Player) Settings() Settings {
	return p.settings
}

// Current returns the command the run loop executes next or is executing.
func (p *Player) Current() Command {
	return p.current
}

// Receiver gives access to the framing state.
func (p *Player) Receiver() *Receiver {
	return &p.receiver
}

// Setup brings up the decoder and mounts the volume. A failed mount is reported on the control
// channel and returned, but the player stays usable: play and chdir then simply fail.
func (p *Player) Setup() error {
	p.codec.Init()

	err := p.volume.Mount()
	if err == nil {
		err = p.volume.OpenDir(p.cfg.Dir)
	} else {
		p.serial.Println(ResponseMountFailed)
	}

	p.codec.Reset(p.settings.Volume, p.settings.Volume)
	p.log.Info("decoder ready", "version", p.codec.Version(), "volume", p.settings.Volume)

	if err != nil {
		p.log.Error("volume unavailable", "err", err)
	}
	return err
}

// Run sets the player up and runs the command loop until ctx is done.
func (p *Player) Run(ctx context.Context) error {
	_ = p.Setup()
	p.serial.Println(ResponseRun)

	p.done = ctx.Done()
	defer func() { p.done = nil }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p.Step()
	}
}

// Step runs one iteration of the command loop: the current command, or a single input poll
// if there is none.
func (p *Player) Step() {
	cmd := p.current

	switch cmd.Kind {
	case CmdPlay:
		p.serial.Println(cmd.Arg)
		p.play(cmd.Arg)
		p.codec.EndSong()
		p.codec.SoftReset(p.settings.Volume, p.settings.Volume)

	case CmdBeep:
		p.serial.Println(cmd.Arg)
		p.beep()
		p.codec.Reset(p.settings.Volume, p.settings.Volume)

	case CmdChDir:
		p.serial.Println(cmd.Arg)
		if err := p.changeDir(cmd.Arg); err != nil {
			p.log.Debug("chdir failed", "path", cmd.Arg, "err", err)
			p.serial.Println(ResponseChDirFailed)
		}

	default:
		p.poll()
	}
}

// poll feeds at most one waiting input byte to the receiver.
func (p *Player) poll() {
	if b, ok := p.serial.Poll(); ok {
		p.HandleInput(b)
	}
}

// HandleInput feeds one byte of the control channel to the receiver and carries out the
// command it completes. Volume, play mode and pause are applied right here; any other command
// becomes the current command and interrupts the running one.
func (p *Player) HandleInput(b byte) {
	cmd, ok := p.receiver.Feed(b)
	if !ok {
		return
	}

	p.log.Debug("command received", "kind", cmd.Kind, "arg", cmd.Arg)

	switch cmd.Kind {
	case CmdVolume:
		if volume, ok := VolumeFromLevel(atoi(cmd.Arg)); ok {
			p.settings.Volume = volume
			p.codec.SetVolume(volume, volume)
		}

	case CmdPlayMode:
		if atoi(cmd.Arg) != 0 {
			p.settings.Mode = Continuous
		} else {
			p.settings.Mode = OneShot
		}

	case CmdPause:
		p.settings.Paused = !p.settings.Paused

	default:
		p.current = cmd
		p.exit = true
	}
}

// finish ends the current command unless a new one arrived while it ran.
func (p *Player) finish() {
	if p.exit {
		return
	}
	p.current = Command{}
}

func (p *Player) play(filter string) {
	p.exit = false
	p.settings.Paused = false

	entry, ok := p.walker.FindFirst(filter)
	if !ok {
		p.serial.Println(ResponseNoFile)
		p.finish()
		return
	}

	for {
		if err := p.volume.Open(entry.Name); err != nil {
			p.log.Debug("open failed", "name", entry.Name, "err", err)
		} else {
			p.log.Info("playing", "name", entry.Name, "type", entry.MediaType(), "size", entry.Size,
				"modified", entry.ModTime())
			if !p.stream() {
				p.log.Debug("playback interrupted", "name", entry.Name, "next", p.current.Kind)
				return
			}
		}

		if p.settings.Mode != Continuous {
			break
		}
		if entry, ok = p.walker.FindNext(); !ok {
			break
		}
	}

	p.finish()
}

// stream sends the open file to the decoder block by block. It returns false if a new command
// interrupted it.
func (p *Player) stream() bool {
	gate := playGate{p}

	for {
		n, err := p.volume.Read(p.block)
		if err != nil {
			p.log.Debug("read failed", "err", err)
			return true
		}

		if _, ok := p.codec.Stream(p.block[:n], gate); !ok {
			return false
		}

		if n < len(p.block) {
			return true
		}
	}
}

func (p *Player) beep() {
	p.codec.SineTestStart(p.cfg.BeepTone)
	p.cfg.Sleep(p.cfg.BeepDuration)
	p.codec.SineTestStop()
	p.current = Command{}
}

func (p *Player) changeDir(path string) error {
	defer func() { p.current = Command{} }()

	if err := p.volume.ChDir(path); err != nil {
		return err
	}
	return p.volume.OpenDir(".")
}

// playGate lets the decoder driver pause, interrupt and poll input through the player.
type playGate struct {
	p *Player
}

func (g playGate) Paused() bool {
	return g.p.settings.Paused
}

func (g playGate) Abort() bool {
	select {
	case <-g.p.done:
		return true
	default:
		return g.p.exit
	}
}

func (g playGate) Idle() {
	g.p.poll()
}
