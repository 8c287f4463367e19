package vs1003

// Serial control interface opcodes.
const (
	OpWrite = 0x02
	OpRead  = 0x03
)

// SCI registers.
const (
	RegMode       = 0x0 // Mode control
	RegStatus     = 0x1 // Status
	RegBass       = 0x2 // Built-in bass/treble enhancer
	RegClockF     = 0x3 // Clock frequency + multiplier
	RegDecodeTime = 0x4 // Decode time in seconds
	RegAuData     = 0x5 // Misc. audio data
	RegWRAM       = 0x6 // RAM write/read
	RegWRAMAddr   = 0x7 // Base address for RAM write/read
	RegHDat0      = 0x8 // Stream header data 0
	RegHDat1      = 0x9 // Stream header data 1
	RegAIAddr     = 0xA // Start address of application
	RegVolume     = 0xB // Volume control
	RegAICtrl0    = 0xC
	RegAICtrl1    = 0xD
	RegAICtrl2    = 0xE
	RegAICtrl3    = 0xF
)

// Bits of RegMode.
const (
	ModeDiff     = 0x0001 // Differential
	ModeJump     = 0x0002
	ModeReset    = 0x0004 // Soft reset
	ModeOutOfWav = 0x0008 // Jump out of WAV decoding
	ModePowDown  = 0x0010
	ModeTests    = 0x0020 // Allow SDI tests
	ModeStream   = 0x0040
	ModeDAct     = 0x0100
	ModeSDIOrd   = 0x0200
	ModeSDIShare = 0x0400
	ModeSDINew   = 0x0800 // VS1002 native SPI modes
	ModeADPCM    = 0x1000
	ModeADPCMHP  = 0x2000
	ModeLineIn   = 0x4000
)

// Clock multipliers for RegClockF.
const (
	ClockMult1_0 = 0x0000
	ClockMult1_5 = 0x2000
	ClockMult2_0 = 0x4000
	ClockMult2_5 = 0x6000
	ClockMult3_0 = 0x8000
	ClockMult3_5 = 0xA000
	ClockMult4_0 = 0xC000
	ClockMult4_5 = 0xE000
)

// Allowed multiplier additions for RegClockF.
const (
	ClockAdd0   = 0x0000
	ClockAdd0_5 = 0x0800
	ClockAdd1_0 = 0x1000
	ClockAdd1_5 = 0x1800
)

// Chip versions found in bits 6:4 of RegStatus.
const (
	VersionVS1001 = 0
	VersionVS1011 = 1
	VersionVS1002 = 2
	VersionVS1003 = 3
	VersionVS1053 = 4
	VersionVS1033 = 5
	VersionVS1103 = 7
)

// ClockF builds a RegClockF value from the crystal frequency field and the multiplier settings.
func ClockF(freq, add, mult uint16) uint16 {
	return freq&0x07FF | add | mult
}

// AuData builds a RegAuData value. The sample rate is rounded down to an even number.
func AuData(rate uint16, stereo bool) uint16 {
	v := rate >> 1 << 1
	if stereo {
		v |= 1
	}
	return v
}

// Volume builds a RegVolume value. 0 is loudest, each step attenuates by 0.5 dB.
func Volume(left, right byte) uint16 {
	return uint16(left)<<8 | uint16(right)
}

// StatusVersion extracts the chip version from a RegStatus value.
func StatusVersion(status uint16) int {
	return int(status>>4) & 0x7
}

// SineRates maps the sample rate index of a sine test parameter to its rate in Hz.
var SineRates = [8]float64{44100, 48000, 32000, 22050, 24000, 16000, 11025, 12000}

// SineFrequency returns the frequency in Hz the chip produces for the sine test parameter n.
// Bits 7:5 select the sample rate, bits 4:0 the skip speed: f = rate * skip / 128.
func SineFrequency(n byte) float64 {
	return SineRates[n>>5] * float64(n&0x1F) / 128
}
