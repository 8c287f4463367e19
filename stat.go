package vsplayer

import (
	"os"
	"strings"

	"github.com/aligator/vsplayer/fat"
)

// attributesOf maps what a host filesystem knows about a file to FAT attributes.
// Entries of a FAT volume keep the attributes stored on it.
func attributesOf(info os.FileInfo) byte {
	if entry, ok := info.Sys().(fat.ExtendedEntryHeader); ok {
		return entry.Attribute
	}

	var attr byte
	if info.IsDir() {
		attr |= AttrDirectory
	} else {
		attr |= AttrArchive
		if info.Mode().Perm()&0o222 == 0 {
			attr |= AttrReadOnly
		}
	}
	if strings.HasPrefix(info.Name(), ".") {
		attr |= AttrHidden
	}
	return attr
}

// dirEntry is a directory entry of a FileVolume with both of its names.
type dirEntry struct {
	short fat.RawName
	long  string
	info  os.FileInfo
}

func (d dirEntry) Entry() Entry {
	var size int64
	if !d.info.IsDir() {
		size = d.info.Size()
	}
	date, clock := fat.Stamp(d.info.ModTime())
	return Entry{
		Name:      d.short.String(),
		Attribute: attributesOf(d.info),
		Size:      size,
		Date:      date,
		Time:      clock,
	}
}

// matches compares a path component against both names of the entry, ignoring case.
func (d dirEntry) matches(name string) bool {
	return strings.EqualFold(d.short.String(), name) || strings.EqualFold(d.long, name)
}

// dirEntries pairs a directory listing with short names. Entries read from a FAT volume keep
// their stored short name, all others get one generated by fat.ShortNames.
func dirEntries(infos []os.FileInfo) []dirEntry {
	longs := make([]string, len(infos))
	for i, info := range infos {
		longs[i] = info.Name()
	}
	shorts := fat.ShortNames(longs)

	entries := make([]dirEntry, len(infos))
	for i, info := range infos {
		short := shorts[i]
		if entry, ok := info.Sys().(fat.ExtendedEntryHeader); ok {
			short = entry.Name
		}
		entries[i] = dirEntry{
			short: short,
			long:  info.Name(),
			info:  info,
		}
	}
	return entries
}
