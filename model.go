// File model contains the directory entry as the player sees it on a FAT volume.

package vsplayer

import (
	"path"
	"strings"
	"time"

	"github.com/aligator/vsplayer/fat"
)

// Attribute bits of a FAT directory entry.
const (
	AttrReadOnly  = fat.AttrReadOnly
	AttrHidden    = fat.AttrHidden
	AttrSystem    = fat.AttrSystem
	AttrVolumeID  = fat.AttrVolumeID
	AttrDirectory = fat.AttrDirectory
	AttrArchive   = fat.AttrArchive
	AttrLongName  = fat.AttrLongName
)

// ExcludedAttrs are the attribute bits which make an entry unplayable.
// As AttrLongName is a combination of bits, any of read-only, hidden or system excludes as well.
const ExcludedAttrs = AttrDirectory | AttrLongName | AttrVolumeID

// ShortNameLength is the maximum length of an 8.3 name including the dot.
const ShortNameLength = 12

// Entry is one directory entry reported by a Volume.
type Entry struct {
	// Name is the 8.3 short name in upper case, e.g. "TRACK1.MP3".
	// An empty name marks the end of the directory.
	Name      string
	Attribute byte
	Size      int64
	// Date and Time are the FAT stamps of the last modification.
	Date uint16
	Time uint16
}

// ModTime decodes Date and Time, it is zero if the entry has no valid date.
func (e Entry) ModTime() time.Time {
	return fat.DateTime(e.Date, e.Time)
}

// IsEnd reports whether the entry marks the end of the directory.
func (e Entry) IsEnd() bool {
	return e.Name == ""
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool {
	return e.Attribute&AttrDirectory == AttrDirectory
}

// Excluded reports whether the attributes rule out playing the entry.
func (e Entry) Excluded() bool {
	return e.Attribute&ExcludedAttrs != 0
}

// MediaType infers the media type from the name suffix.
func (e Entry) MediaType() MediaType {
	return MediaTypeOf(e.Name)
}

// Playable reports whether the entry can be sent to the decoder.
func (e Entry) Playable() bool {
	return !e.Excluded() && e.MediaType() != MediaUnknown
}

// MediaType is the kind of audio data a file holds, as far as the name tells.
type MediaType uint8

const (
	MediaUnknown MediaType = iota
	MediaMP3
	MediaWAV
	MediaMIDI
	MediaWMA
)

var mediaSuffixes = map[string]MediaType{
	".MP3": MediaMP3,
	".WAV": MediaWAV,
	".MID": MediaMIDI,
	".WMA": MediaWMA,
}

// MediaTypeOf maps a short name to its media type. The match is case sensitive,
// names are expected in upper case as the volume reports them.
func MediaTypeOf(name string) MediaType {
	if t, ok := mediaSuffixes[path.Ext(name)]; ok {
		return t
	}
	return MediaUnknown
}

func (t MediaType) String() string {
	switch t {
	case MediaMP3:
		return "MP3"
	case MediaWAV:
		return "WAV"
	case MediaMIDI:
		return "MIDI"
	case MediaWMA:
		return "WMA"
	default:
		return "unknown"
	}
}

// matchesFilter reports whether name starts with the filter. Only the first ShortNameLength
// characters of the filter count. The filter is brought into short name form first, so "track1"
// selects "TRACK1.MP3".
func matchesFilter(name, filter string) bool {
	filter = strings.ToUpper(filter)
	if len(filter) > ShortNameLength {
		filter = filter[:ShortNameLength]
	}
	return strings.HasPrefix(name, filter)
}
