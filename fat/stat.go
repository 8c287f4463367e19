package fat

import (
	"os"
	"time"
)

func (h *ExtendedEntryHeader) FileInfo() os.FileInfo {
	return entryHeaderFileInfo{*h}
}

// entryHeaderFileInfo reports a directory entry as os.FileInfo. Sys returns the
// ExtendedEntryHeader, so users can get the short name and the attributes.
type entryHeaderFileInfo struct {
	entry ExtendedEntryHeader
}

func (e entryHeaderFileInfo) Name() string {
	if e.entry.ExtendedName != "" {
		return e.entry.ExtendedName
	}
	return e.entry.Name.format(e.entry.NTReserved)
}

func (e entryHeaderFileInfo) Size() int64 {
	if e.IsDir() {
		return 0
	}
	return int64(e.entry.FileSize)
}

func (e entryHeaderFileInfo) Mode() os.FileMode {
	mode := os.FileMode(0o666)
	if e.entry.Attribute&AttrReadOnly != 0 {
		mode = 0o444
	}
	if e.IsDir() {
		return mode | 0o111 | os.ModeDir
	}
	return mode
}

func (e entryHeaderFileInfo) ModTime() time.Time {
	return DateTime(e.entry.WriteDate, e.entry.WriteTime)
}

func (e entryHeaderFileInfo) IsDir() bool {
	return e.entry.Attribute&AttrDirectory == AttrDirectory
}

func (e entryHeaderFileInfo) Sys() interface{} {
	return e.entry
}
