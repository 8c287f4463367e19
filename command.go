package vsplayer

// Kind selects what a command does.
type Kind uint8

const (
	// CmdIdle lets the run loop poll for input. The stop command selects it.
	CmdIdle Kind = iota
	CmdPlay
	CmdBeep
	CmdVolume
	CmdChDir
	CmdPlayMode
	CmdPause
)

func (k Kind) String() string {
	switch k {
	case CmdIdle:
		return "idle"
	case CmdPlay:
		return "play"
	case CmdBeep:
		return "beep"
	case CmdVolume:
		return "volume"
	case CmdChDir:
		return "chdir"
	case CmdPlayMode:
		return "playmode"
	case CmdPause:
		return "pause"
	default:
		return "unknown"
	}
}

// Immediate reports whether the command is applied right when it is received instead of
// being handed to the run loop.
func (k Kind) Immediate() bool {
	return k == CmdVolume || k == CmdPlayMode || k == CmdPause
}

// commandLetters maps the upper case command letter of a frame to its kind.
var commandLetters = map[byte]Kind{
	'P': CmdPlay,
	'S': CmdIdle,
	'V': CmdVolume,
	'B': CmdBeep,
	'C': CmdChDir,
	'M': CmdPlayMode,
	'U': CmdPause,
}

// Command is one completed frame.
type Command struct {
	Kind Kind
	Arg  string
}

// PlayMode decides what happens after a file ended.
type PlayMode uint8

const (
	// OneShot stops after the file.
	OneShot PlayMode = iota
	// Continuous goes on with the next playable file of the directory, wrapping around at the end.
	Continuous
)

func (m PlayMode) String() string {
	if m == Continuous {
		return "continuous"
	}
	return "oneshot"
}

// Settings are changed by immediate commands only.
type Settings struct {
	// Volume is the attenuation in 0.5 dB steps, 0 is loudest.
	Volume byte
	Mode   PlayMode
	Paused bool
}

// VolumeFromLevel converts the level of a volume command (1 quietest, 255 loudest) into the
// attenuation written to the decoder. Levels outside of 1..255 are rejected.
func VolumeFromLevel(level int) (byte, bool) {
	if level < 1 || level > 255 {
		return 0, false
	}
	return byte(254 - (level - 1)), true
}

// atoi parses the leading decimal number of s the way the C library does: leading blanks are
// skipped, an optional sign is accepted and parsing stops at the first non-digit.
// Anything without digits yields 0.
func atoi(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] >= '\t' && s[i] <= '\r') {
		i++
	}

	negative := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		negative = s[i] == '-'
		i++
	}

	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}

	if negative {
		return -n
	}
	return n
}
