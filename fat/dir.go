package fat

import (
	"bytes"
	"encoding/binary"
	"os"
	"path"
	"strings"

	"github.com/aligator/vsplayer/checkpoint"
)

// rootEntry stands for the root directory, which has no entry of its own.
var rootEntry = ExtendedEntryHeader{
	EntryHeader: EntryHeader{
		Name:      RawName{'/', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '},
		Attribute: AttrDirectory,
	},
}

// rawDir returns the raw entries of the directory starting at cluster, 0 is the root.
func (fs *Fs) rawDir(cluster fatEntry) ([]byte, error) {
	if cluster == 0 {
		if fs.info.FSType == FAT32 {
			cluster = fs.info.RootCluster
		} else {
			data := make([]byte, int64(fs.info.rootDirectorySize)*int64(fs.info.SectorSize))
			err := fs.readAt(data, int64(fs.info.FirstRootSector)*int64(fs.info.SectorSize))
			return data, err
		}
	}

	clusters, err := fs.chain(cluster)
	if err != nil {
		return nil, err
	}
	return fs.readChain(cluster, 0, int64(len(clusters))*fs.info.clusterSize())
}

// parseDir decodes raw directory entries. Deleted entries, the volume label and the
// "." and ".." entries are skipped, long names are attached to their short entry.
// It also returns the volume label if there is one.
func parseDir(data []byte) ([]ExtendedEntryHeader, string, error) {
	var (
		entries []ExtendedEntryHeader
		label   string
		long    longName
	)

	for offset := 0; offset+entrySize <= len(data); offset += entrySize {
		raw := data[offset : offset+entrySize]

		switch raw[0] {
		case entryEnd:
			return entries, label, nil
		case entryDeleted:
			long.reset()
			continue
		}

		if raw[11]&0x3F == AttrLongName {
			var slot LongFilenameEntry
			if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &slot); err != nil {
				return nil, "", checkpoint.From(err)
			}
			long.add(slot)
			continue
		}

		var header EntryHeader
		if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &header); err != nil {
			return nil, "", checkpoint.From(err)
		}

		if header.Attribute&AttrVolumeID != 0 {
			label = strings.TrimRight(string(header.Name[:]), " ")
			long.reset()
			continue
		}

		if name := header.Name.String(); name == "." || name == ".." {
			long.reset()
			continue
		}

		entry := ExtendedEntryHeader{EntryHeader: header}
		if name, ok := long.name(header.Name); ok {
			entry.ExtendedName = name
		}
		long.reset()

		entries = append(entries, entry)
	}

	return entries, label, nil
}

// listDir reads the directory starting at cluster, 0 is the root. fs.mu has to be held.
func (fs *Fs) listDir(cluster fatEntry) ([]ExtendedEntryHeader, error) {
	data, err := fs.rawDir(cluster)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	entries, _, err := parseDir(data)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}
	return entries, nil
}

// rootLabel reads the volume label entry of the root directory.
func (fs *Fs) rootLabel() (string, bool, error) {
	data, err := fs.rawDir(0)
	if err != nil {
		return "", false, checkpoint.Wrap(err, ErrReadDir)
	}

	_, label, err := parseDir(data)
	if err != nil {
		return "", false, checkpoint.Wrap(err, ErrReadDir)
	}
	return label, label != "", nil
}

func (fs *Fs) readRoot() ([]ExtendedEntryHeader, error) {
	return fs.readDir(0)
}

func (fs *Fs) readDir(cluster fatEntry) ([]ExtendedEntryHeader, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.listDir(cluster)
}

// matches compares a path component against both names of the entry, ignoring case.
func (e ExtendedEntryHeader) matches(name string) bool {
	return strings.EqualFold(e.Name.String(), name) ||
		e.ExtendedName != "" && strings.EqualFold(e.ExtendedName, name)
}

// lookup finds the entry of a path, components are compared ignoring case. fs.mu has to be held.
// Missing entries give os.ErrNotExist and ErrNotDir unwrapped, so they work with os.IsNotExist.
func (fs *Fs) lookup(name string) (ExtendedEntryHeader, error) {
	current := rootEntry

	for _, part := range strings.Split(path.Clean("/"+name), "/") {
		if part == "" {
			continue
		}
		if current.Attribute&AttrDirectory == 0 {
			return ExtendedEntryHeader{}, ErrNotDir
		}

		entries, err := fs.listDir(current.FirstCluster())
		if err != nil {
			return ExtendedEntryHeader{}, err
		}

		found := false
		for _, e := range entries {
			if e.matches(part) {
				current = e
				found = true
				break
			}
		}
		if !found {
			return ExtendedEntryHeader{}, os.ErrNotExist
		}
	}

	return current, nil
}
