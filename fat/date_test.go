package fat

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{name: "epoch", input: 1<<5 | 1, want: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "some date", input: 41<<9 | 3<<5 | 14, want: time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)},
		{name: "last date", input: 127<<9 | 12<<5 | 31, want: time.Date(2107, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "month 13", input: 13<<5 | 1, want: time.Date(1981, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "day 0", input: 1 << 5, want: time.Time{}},
		{name: "month 0", input: 1, want: time.Time{}},
		{name: "zero", input: 0, want: time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{name: "midnight", input: 0, want: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "some time", input: 13<<11 | 37<<5 | 21, want: time.Date(1, 1, 1, 13, 37, 42, 0, time.UTC)},
		{name: "last time", input: 23<<11 | 59<<5 | 29, want: time.Date(1, 1, 1, 23, 59, 58, 0, time.UTC)},
		{name: "hour 24", input: 24 << 11, want: time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTime(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "rounded to 2 seconds",
			in:   time.Date(2021, 3, 14, 13, 37, 43, 500, time.UTC),
			want: time.Date(2021, 3, 14, 13, 37, 42, 0, time.UTC),
		},
		{
			name: "other zone",
			in:   time.Date(2021, 3, 14, 13, 0, 0, 0, time.FixedZone("CET", 3600)),
			want: time.Date(2021, 3, 14, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "before 1980",
			in:   time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC),
			want: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "after 2107",
			in:   time.Date(2200, 6, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2107, 12, 31, 23, 59, 58, 0, time.UTC),
		},
		{
			name: "zero",
			in:   time.Time{},
			want: time.Time{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateTime(Stamp(tt.in)); !got.Equal(tt.want) {
				t.Errorf("DateTime(Stamp()) = %v, want %v", got, tt.want)
			}
		})
	}
}
