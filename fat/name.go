package fat

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// RawName is the 11 byte name field of a directory entry: 8 bytes body, 3 bytes extension,
// both padded with spaces.
type RawName [11]byte

// String formats the name the way FAT drivers report it, e.g. "README  TXT" becomes "README.TXT".
func (n RawName) String() string {
	return n.format(0)
}

// format applies the lower case flags of EntryHeader.NTReserved.
func (n RawName) format(nt byte) string {
	body := strings.TrimRight(string(n[:8]), " ")
	ext := strings.TrimRight(string(n[8:11]), " ")

	if body != "" && body[0] == entryKanji {
		body = string(rune(entryDeleted)) + body[1:]
	}
	if nt&ntLowerBody != 0 {
		body = strings.ToLower(body)
	}
	if nt&ntLowerExt != 0 {
		ext = strings.ToLower(ext)
	}

	if ext != "" {
		return body + "." + ext
	}
	return body
}

// Checksum is stored in every long name slot belonging to the entry with this short name.
func (n RawName) Checksum() byte {
	var sum byte
	for _, c := range n {
		sum = (sum&1)<<7 + sum>>1 + c
	}
	return sum
}

// shortNameChar maps a character of a long name to the short name character set.
// It returns 0 for characters which are dropped and '_' for characters which are replaced.
func shortNameChar(c rune) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return byte(c - 'a' + 'A')
	case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return byte(c)
	case strings.ContainsRune("!#$%&'()-@^_`{}~", c):
		return byte(c)
	case c == ' ' || c == '.':
		return 0
	default:
		return '_'
	}
}

// shortBase converts part of a long name and reports whether anything got lost on the way.
func shortBase(s string, max int) (string, bool) {
	var b strings.Builder
	lossy := false
	for _, c := range s {
		mapped := shortNameChar(c)
		if mapped == 0 || mapped == '_' && c != '_' {
			lossy = true
		}
		if mapped == 0 {
			continue
		}
		if b.Len() == max {
			lossy = true
			continue
		}
		b.WriteByte(mapped)
	}
	return b.String(), lossy
}

// MakeShortName derives the 8.3 name of a long file name. Names which do not fit get the numeric
// tail "~seq" like FAT drivers generate it. The second result reports if a tail was needed.
func MakeShortName(long string, seq int) (RawName, bool) {
	trimmed := strings.TrimLeft(long, ". ")

	body, ext := trimmed, ""
	if i := strings.LastIndexByte(trimmed, '.'); i >= 0 {
		body, ext = trimmed[:i], trimmed[i+1:]
	}

	shortBody, lossyBody := shortBase(body, 8)
	shortExt, lossyExt := shortBase(ext, 3)
	lossy := lossyBody || lossyExt || shortBody == "" || trimmed != long

	if lossy {
		tail := "~" + strconv.Itoa(seq)
		if len(shortBody) > 8-len(tail) {
			shortBody = shortBody[:8-len(tail)]
		}
		shortBody += tail
	}

	var n RawName
	copy(n[:], strings.Repeat(" ", len(n)))
	copy(n[:8], shortBody)
	copy(n[8:], shortExt)
	return n, lossy
}

// ShortNames builds the short names of all names in one directory. Names which already are valid
// short names keep them. Numeric tails are counted per body prefix so "Long Track 1.mp3" and
// "Long Track 2.mp3" become "LONGTR~1.MP3" and "LONGTR~2.MP3".
func ShortNames(longs []string) []RawName {
	names := make([]RawName, len(longs))
	taken := make(map[RawName]bool, len(longs))
	var tailed []int

	for i, long := range longs {
		name, lossy := MakeShortName(long, 1)
		names[i] = name
		if lossy {
			tailed = append(tailed, i)
			continue
		}
		taken[name] = true
	}

	for _, i := range tailed {
		name := names[i]
		for seq := 2; taken[name] && seq < 1000000; seq++ {
			name, _ = MakeShortName(longs[i], seq)
		}
		taken[name] = true
		names[i] = name
	}

	return names
}

// caseFlags returns the NTReserved flags which make short display as long. It fails if long
// needs a long name entry instead, e.g. because of mixed case.
func caseFlags(long string, short RawName) (byte, bool) {
	if strings.ToUpper(long) != short.String() {
		return 0, false
	}

	body, ext := long, ""
	if i := strings.LastIndexByte(long, '.'); i >= 0 {
		body, ext = long[:i], long[i+1:]
	}

	var flags byte
	for _, part := range []struct {
		s    string
		flag byte
	}{{body, ntLowerBody}, {ext, ntLowerExt}} {
		switch part.s {
		case strings.ToUpper(part.s):
		case strings.ToLower(part.s):
			flags |= part.flag
		default:
			return 0, false
		}
	}
	return flags, true
}

// longNameSlots splits a long name into the slots stored in front of the short entry,
// in disk order.
func longNameSlots(long string, short RawName) []LongFilenameEntry {
	units := utf16.Encode([]rune(long))
	count := (len(units) + longNameChars - 1) / longNameChars

	// The name ends with 0x0000 if there is room, the rest is padded with 0xFFFF.
	padded := make([]uint16, count*longNameChars)
	for i := range padded {
		switch {
		case i < len(units):
			padded[i] = units[i]
		case i == len(units):
			padded[i] = 0
		default:
			padded[i] = 0xFFFF
		}
	}

	slots := make([]LongFilenameEntry, count)
	sum := short.Checksum()
	for i := range slots {
		seq := count - i
		slot := LongFilenameEntry{
			Sequence:  byte(seq),
			Attribute: AttrLongName,
			Checksum:  sum,
		}
		if i == 0 {
			slot.Sequence |= lastLongEntry
		}
		slot.setChars(padded[(seq-1)*longNameChars : seq*longNameChars])
		slots[i] = slot
	}
	return slots
}

// longName collects the slots of one long name, which are read in disk order.
type longName struct {
	units    []uint16
	checksum byte
	// next is the sequence number the next slot has to have, 0 when complete.
	next int
	valid bool
}

func (l *longName) reset() {
	*l = longName{}
}

func (l *longName) add(slot LongFilenameEntry) {
	seq := int(slot.Sequence &^ lastLongEntry)

	if slot.Sequence&lastLongEntry != 0 {
		if seq == 0 || seq > 20 {
			l.reset()
			return
		}
		*l = longName{
			units:    make([]uint16, seq*longNameChars),
			checksum: slot.Checksum,
			next:     seq,
			valid:    true,
		}
	}

	if !l.valid || seq != l.next || slot.Checksum != l.checksum {
		l.reset()
		return
	}

	copy(l.units[(seq-1)*longNameChars:], slot.chars())
	l.next--
}

// name returns the long name if all slots were read and they belong to short.
func (l *longName) name(short RawName) (string, bool) {
	if !l.valid || l.next != 0 || l.checksum != short.Checksum() {
		return "", false
	}

	units := l.units
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	return string(utf16.Decode(units)), true
}
