package fat

import (
	"reflect"
	"testing"
)

func rawName(s string) RawName {
	var n RawName
	copy(n[:], s)
	return n
}

func TestRawName_String(t *testing.T) {
	tests := []struct {
		name string
		n    RawName
		nt   byte
		want string
	}{
		{
			name: "only 8.3 filename",
			n:    RawName{'H', 'E', 'L', 'L', 'O', ' ', ' ', ' ', 'T', 'X', 'T'},
			want: "HELLO.TXT",
		},
		{
			name: "only 8.3 short extension",
			n:    RawName{'H', 'E', 'L', 'L', 'O', ' ', ' ', ' ', 'T', 'X', ' '},
			want: "HELLO.TX",
		},
		{
			name: "only 8.3 no extension",
			n:    RawName{'H', 'E', 'L', 'L', 'O', ' ', ' ', ' ', ' ', ' ', ' '},
			want: "HELLO",
		},
		{
			name: "full body",
			n:    rawName("LONGTR~1MP3"),
			want: "LONGTR~1.MP3",
		},
		{
			name: "lower case body",
			n:    rawName("README  TXT"),
			nt:   ntLowerBody,
			want: "readme.TXT",
		},
		{
			name: "lower case body and extension",
			n:    rawName("README  TXT"),
			nt:   ntLowerBody | ntLowerExt,
			want: "readme.txt",
		},
		{
			name: "kanji lead byte",
			n:    rawName("\x05BC     TXT"),
			want: "åBC.TXT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.format(tt.nt); got != tt.want {
				t.Errorf("RawName.format() = %q, want %q", got, tt.want)
			}
			if tt.nt == 0 && tt.n.String() != tt.want {
				t.Errorf("RawName.String() = %q, want %q", tt.n.String(), tt.want)
			}
		})
	}
}

func TestRawName_Checksum(t *testing.T) {
	tests := []struct {
		n    string
		want byte
	}{
		{n: "HELLOW~1TXT", want: 0x1B},
		{n: "README  TXT", want: 0x73},
		{n: "TRACK1  MP3", want: 0xCE},
	}
	for _, tt := range tests {
		t.Run(tt.n, func(t *testing.T) {
			if got := rawName(tt.n).Checksum(); got != tt.want {
				t.Errorf("RawName.Checksum() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestMakeShortName(t *testing.T) {
	type args struct {
		long string
		seq  int
	}
	tests := []struct {
		name      string
		args      args
		want      string
		wantLossy bool
	}{
		{
			name: "already short",
			args: args{long: "TRACK1.MP3", seq: 1},
			want: "TRACK1.MP3",
		},
		{
			name: "lower case fits",
			args: args{long: "track1.mp3", seq: 1},
			want: "TRACK1.MP3",
		},
		{
			name:      "long body",
			args:      args{long: "HelloWorld.txt", seq: 1},
			want:      "HELLOW~1.TXT",
			wantLossy: true,
		},
		{
			name:      "second sequence number",
			args:      args{long: "HelloWorld.txt", seq: 2},
			want:      "HELLOW~2.TXT",
			wantLossy: true,
		},
		{
			name:      "two digit sequence number",
			args:      args{long: "HelloWorld.txt", seq: 12},
			want:      "HELLO~12.TXT",
			wantLossy: true,
		},
		{
			name:      "spaces are dropped",
			args:      args{long: "a b.mp3", seq: 1},
			want:      "AB~1.MP3",
			wantLossy: true,
		},
		{
			name:      "invalid characters are replaced",
			args:      args{long: "a+b.wav", seq: 1},
			want:      "A_B~1.WAV",
			wantLossy: true,
		},
		{
			name:      "long extension",
			args:      args{long: "song.flac", seq: 1},
			want:      "SONG~1.FLA",
			wantLossy: true,
		},
		{
			name:      "leading dot",
			args:      args{long: ".hidden", seq: 1},
			want:      "HIDDEN~1",
			wantLossy: true,
		},
		{
			name: "no extension",
			args: args{long: "README", seq: 1},
			want: "README",
		},
		{
			name: "allowed special characters",
			args: args{long: "A-B_C.MP3", seq: 1},
			want: "A-B_C.MP3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, lossy := MakeShortName(tt.args.long, tt.args.seq)
			if got.String() != tt.want {
				t.Errorf("MakeShortName() = %v, want %v", got.String(), tt.want)
			}
			if lossy != tt.wantLossy {
				t.Errorf("MakeShortName() lossy = %v, want %v", lossy, tt.wantLossy)
			}
		})
	}
}

func TestShortNames(t *testing.T) {
	tests := []struct {
		name  string
		longs []string
		want  []string
	}{
		{
			name:  "tails are counted",
			longs: []string{"Long Track 1.mp3", "Long Track 2.mp3"},
			want:  []string{"LONGTR~1.MP3", "LONGTR~2.MP3"},
		},
		{
			name:  "exact short names are kept",
			longs: []string{"HelloWorld1.txt", "HelloWorld2.txt", "HELLOW~1.TXT", "short.mp3"},
			want:  []string{"HELLOW~2.TXT", "HELLOW~3.TXT", "HELLOW~1.TXT", "SHORT.MP3"},
		},
		{
			name:  "empty",
			longs: nil,
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, n := range ShortNames(tt.longs) {
				got = append(got, n.String())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ShortNames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_caseFlags(t *testing.T) {
	tests := []struct {
		name   string
		long   string
		want   byte
		wantOk bool
	}{
		{name: "upper case", long: "TRACK1.MP3", want: 0, wantOk: true},
		{name: "lower case", long: "track1.mp3", want: ntLowerBody | ntLowerExt, wantOk: true},
		{name: "lower case body", long: "track1.MP3", want: ntLowerBody, wantOk: true},
		{name: "lower case extension", long: "README.txt", want: ntLowerExt, wantOk: true},
		{name: "digits only", long: "123", want: 0, wantOk: true},
		{name: "mixed case", long: "Track1.mp3", wantOk: false},
		{name: "too long", long: "longtrack1.mp3", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			short, _ := MakeShortName(tt.long, 1)
			got, ok := caseFlags(tt.long, short)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("caseFlags() = (%#x, %v), want (%#x, %v)", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func Test_longName(t *testing.T) {
	tests := []struct {
		name      string
		long      string
		wantSlots int
	}{
		{name: "one slot", long: "Track.mp3", wantSlots: 1},
		{name: "exactly one slot", long: "Track 01.mp3x", wantSlots: 1},
		{name: "two slots", long: "Long Track 1.mp3", wantSlots: 2},
		{name: "unicode", long: "Grüße aus Köln ♪.mp3", wantSlots: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			short, _ := MakeShortName(tt.long, 1)
			slots := longNameSlots(tt.long, short)
			if len(slots) != tt.wantSlots {
				t.Fatalf("longNameSlots() = %v slots, want %v", len(slots), tt.wantSlots)
			}
			if slots[0].Sequence&lastLongEntry == 0 {
				t.Error("first slot is not flagged as last")
			}

			var l longName
			for _, s := range slots {
				l.add(s)
			}
			got, ok := l.name(short)
			if !ok || got != tt.long {
				t.Errorf("longName.name() = (%q, %v), want (%q, true)", got, ok, tt.long)
			}

			if _, ok := l.name(rawName("OTHER   MP3")); ok {
				t.Error("longName.name() accepted another short name")
			}
		})
	}
}

func Test_longName_broken(t *testing.T) {
	short, _ := MakeShortName("Long Track 1.mp3", 1)
	slots := longNameSlots("Long Track 1.mp3", short)

	tests := []struct {
		name  string
		slots []LongFilenameEntry
	}{
		{name: "missing first slot", slots: slots[1:]},
		{name: "missing last slot", slots: slots[:1]},
		{name: "wrong order", slots: []LongFilenameEntry{slots[1], slots[0]}},
		{name: "no slots", slots: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l longName
			for _, s := range tt.slots {
				l.add(s)
			}
			if got, ok := l.name(short); ok {
				t.Errorf("longName.name() = %q, want no name", got)
			}
		})
	}
}
