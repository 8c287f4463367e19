package vsplayer

// ArgMax is the maximum number of argument characters of a frame.
const ArgMax = 12

// ReceiverState is the framing state of a Receiver.
type ReceiverState uint8

const (
	AwaitingStart ReceiverState = iota
	AwaitingCommandLetter
	AwaitingArgument
)

func (s ReceiverState) String() string {
	switch s {
	case AwaitingStart:
		return "awaiting start"
	case AwaitingCommandLetter:
		return "awaiting command letter"
	case AwaitingArgument:
		return "awaiting argument"
	default:
		return "unknown"
	}
}

// Receiver parses the control protocol one byte at a time. A frame looks like
//  :<letter><argument>\n
// Bytes before the ':' are discarded, the letter is case insensitive, '\r' is ignored everywhere
// in the argument. Malformed frames are dropped silently and the receiver waits for the next ':'.
//
// The zero value is ready to use.
type Receiver struct {
	state   ReceiverState
	pending Kind

	// arg always keeps room for the terminating zero.
	arg    [ArgMax + 1]byte
	argLen int
}

// State returns the current framing state.
func (r *Receiver) State() ReceiverState {
	return r.state
}

// Pending returns the kind selected by the last command letter.
func (r *Receiver) Pending() Kind {
	return r.pending
}

// Reset drops any partial frame.
func (r *Receiver) Reset() {
	r.state = AwaitingStart
	r.argLen = 0
	r.arg[0] = 0
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// Feed consumes one byte. It returns the command and true when b completed a frame.
func (r *Receiver) Feed(b byte) (Command, bool) {
	switch r.state {
	case AwaitingStart:
		if b == ':' {
			r.state = AwaitingCommandLetter
		}

	case AwaitingCommandLetter:
		kind, ok := commandLetters[upper(b)]
		if !ok {
			r.state = AwaitingStart
			break
		}
		r.pending = kind
		r.state = AwaitingArgument

	case AwaitingArgument:
		switch {
		case b == '\r':
		case b == '\n':
			r.arg[r.argLen] = 0
			cmd := Command{
				Kind: r.pending,
				Arg:  string(r.arg[:r.argLen]),
			}
			r.argLen = 0
			r.state = AwaitingStart
			return cmd, true
		case r.argLen < ArgMax:
			r.arg[r.argLen] = b
			r.argLen++
		default:
			// Too long, the whole frame is dropped.
			r.Reset()
		}
	}

	return Command{}, false
}
