package fat

import (
	"time"
)

// ParseDate reads the given input as a FAT date stamp, which Microsoft documents as:
//  A FAT directory entry date stamp is a 16-bit field that is basically a date relative to the
//  MS-DOS epoch of 01/01/1980.
//   Bits 0–4: Day of month, valid value range 1-31 inclusive.
//   Bits 5–8: Month of year, 1 = January, valid value range 1–12 inclusive.
//   Bits 9–15: Count of years from 1980, valid value range 0–127 inclusive (1980–2107).
// It returns a time.Time which has always a time of 00:00:00 UTC.
//
// A day or month of 0 is invalid, time.Time{} is returned then so IsZero can be used.
// A month above 12 rolls over into the next year.
func ParseDate(input uint16) time.Time {
	dayOfMonth := input & 0x1F
	monthOfYear := input & 0x1E0 >> 5
	yearSince1980 := input & 0xFE00 >> 9

	if dayOfMonth == 0 || monthOfYear == 0 {
		return time.Time{}
	}

	return time.Date(1980+int(yearSince1980), time.Month(monthOfYear), int(dayOfMonth), 0, 0, 0, 0, time.UTC)
}

// ParseTime reads the given input as a FAT time stamp, which Microsoft documents as:
//  A FAT directory entry time stamp is a 16-bit field that has a granularity of 2 seconds.
//   Bits 0–4: 2-second count, valid value range 0–29 inclusive (0 – 58 seconds).
//   Bits 5–10: Minutes, valid value range 0–59 inclusive.
//   Bits 11–15: Hours, valid value range 0–23 inclusive.
// It returns a time.Time which has always a date of January 1, year 1.
//
// Values above the valid ranges are added to the time but capped at 23:59:59.
func ParseTime(input uint16) time.Time {
	seconds := int(input&0x1F) * 2
	minutes := input & 0x7E0 >> 5
	hours := input & 0xF800 >> 11

	result := time.Date(1, 1, 1, int(hours), int(minutes), seconds, 0, time.UTC)

	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}

	return result
}

// DateTime combines a date and a time stamp. It is zero if the date is invalid.
func DateTime(date, clock uint16) time.Time {
	d := ParseDate(date)
	if d.IsZero() {
		return time.Time{}
	}

	c := ParseTime(clock)
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.UTC)
}

// Stamp packs t into a date and a time stamp. Times outside of 1980–2107 are clamped,
// the zero time gives zero stamps.
func Stamp(t time.Time) (date, clock uint16) {
	if t.IsZero() {
		return 0, 0
	}

	t = t.UTC()
	switch {
	case t.Year() < 1980:
		t = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	case t.Year() > 2107:
		t = time.Date(2107, 12, 31, 23, 59, 58, 0, time.UTC)
	}

	date = uint16(t.Year()-1980)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	clock = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	return date, clock
}
