package vsplayer

import (
	"errors"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aligator/vsplayer/checkpoint"
	"github.com/spf13/afero"
)

// These errors may occur while accessing a volume.
var (
	ErrMount      = errors.New("could not mount the volume")
	ErrNotMounted = errors.New("volume is not mounted")
	ErrNotFound   = errors.New("no such file or directory")
	ErrNotDir     = errors.New("not a directory")
	ErrIsDir      = errors.New("is a directory")
	ErrReadDir    = errors.New("could not read the directory")
	ErrChangeDir  = errors.New("could not change the directory")
	ErrOpenFile   = errors.New("could not open the file")
	ErrReadFile   = errors.New("could not read file completely")
	ErrNoFile     = errors.New("no file is open")
)

// Volume is the storage the player reads directories and files from. It works like a small
// FAT driver: one working directory, one open directory handle and one open file at a time.
// Generated mock using mockgen:
//  mockgen -source=volume.go -destination=volume_mock.go -package vsplayer
type Volume interface {
	// Mount makes the volume usable and sets the working directory to the root.
	Mount() error
	// OpenDir opens the directory handle on path, relative to the working directory.
	OpenDir(path string) error
	// Rewind moves the directory handle back to the first entry.
	Rewind() error
	// NextEntry returns the entry at the directory handle and advances it.
	// An entry with an empty name marks the end of the directory.
	NextEntry() (Entry, error)
	// ChDir changes the working directory.
	ChDir(path string) error
	// Open opens a file relative to the working directory for reading.
	Open(name string) error
	// Read reads the next bytes of the open file. It never returns a short read on success
	// except at the end of the file.
	Read(p []byte) (int, error)
}

// dirHandle is the directory opened by OpenDir. The listing is taken once when opening
// and stays stable until the directory is opened again.
type dirHandle struct {
	path    string
	entries []dirEntry
	offset  int
}

// FileVolume is a Volume on top of any afero.Fs, e.g. a FAT image opened with fat.New, a directory
// on the host or an afero.MemMapFs. Names are presented as 8.3 short names and looked up
// ignoring case, just like on a FAT volume.
type FileVolume struct {
	fs afero.Fs

	mounted bool
	cwd     string
	dir     *dirHandle
	file    afero.File
}

// NewFileVolume creates an unmounted volume backed by fs.
func NewFileVolume(fs afero.Fs) *FileVolume {
	return &FileVolume{fs: fs}
}

func (v *FileVolume) Mount() error {
	v.closeFile()
	v.mounted = false
	v.dir = nil

	info, err := v.fs.Stat("/")
	if err != nil {
		return checkpoint.Wrap(err, ErrMount)
	}
	if !info.IsDir() {
		return checkpoint.Wrap(ErrNotDir, ErrMount)
	}

	v.mounted = true
	v.cwd = "/"
	return nil
}

// list reads a directory of the backing filesystem. afero.ReadDir sorts by name, which gives
// the stable enumeration order the player relies on.
func (v *FileVolume) list(dir string) ([]dirEntry, error) {
	infos, err := afero.ReadDir(v.fs, dir)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}
	return dirEntries(infos), nil
}

// resolve walks p component by component, starting at the root for absolute paths and at the
// working directory otherwise. It returns the path in the backing filesystem.
func (v *FileVolume) resolve(p string) (string, os.FileInfo, error) {
	if !v.mounted {
		return "", nil, checkpoint.From(ErrNotMounted)
	}

	current := v.cwd
	if strings.HasPrefix(p, "/") {
		current = "/"
	}

	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			current = path.Dir(current)
			continue
		}

		entries, err := v.list(current)
		if err != nil {
			return "", nil, err
		}

		found := false
		for _, e := range entries {
			if e.matches(part) {
				current = path.Join(current, e.long)
				found = true
				break
			}
		}
		if !found {
			return "", nil, checkpoint.Errorf(os.ErrNotExist, "%w: %v", ErrNotFound, p)
		}
	}

	info, err := v.fs.Stat(current)
	if err != nil {
		return "", nil, checkpoint.Wrap(err, ErrNotFound)
	}
	return current, info, nil
}

func (v *FileVolume) OpenDir(p string) error {
	target, info, err := v.resolve(p)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return checkpoint.Errorf(ErrNotDir, "%w: %v", ErrReadDir, p)
	}

	entries, err := v.list(target)
	if err != nil {
		return err
	}

	v.dir = &dirHandle{
		path:    target,
		entries: entries,
	}
	return nil
}

func (v *FileVolume) Rewind() error {
	if v.dir == nil {
		return checkpoint.Wrap(ErrNotMounted, ErrReadDir)
	}
	v.dir.offset = 0
	return nil
}

func (v *FileVolume) NextEntry() (Entry, error) {
	if v.dir == nil {
		return Entry{}, checkpoint.Wrap(ErrNotMounted, ErrReadDir)
	}
	if v.dir.offset >= len(v.dir.entries) {
		return Entry{}, nil
	}

	entry := v.dir.entries[v.dir.offset].Entry()
	v.dir.offset++
	return entry, nil
}

func (v *FileVolume) ChDir(p string) error {
	target, info, err := v.resolve(p)
	if err != nil {
		return checkpoint.Wrap(err, ErrChangeDir)
	}
	if !info.IsDir() {
		return checkpoint.Errorf(ErrNotDir, "%w: %v", ErrChangeDir, p)
	}

	v.cwd = target
	return nil
}

// Cwd returns the working directory in the backing filesystem.
func (v *FileVolume) Cwd() string {
	return v.cwd
}

func (v *FileVolume) Open(name string) error {
	v.closeFile()

	target, info, err := v.resolve(name)
	if err != nil {
		return checkpoint.Wrap(err, ErrOpenFile)
	}
	if info.IsDir() {
		return checkpoint.Wrap(ErrIsDir, ErrOpenFile)
	}

	file, err := v.fs.Open(target)
	if err != nil {
		return checkpoint.Wrap(err, ErrOpenFile)
	}

	v.file = file
	return nil
}

func (v *FileVolume) Read(p []byte) (int, error) {
	if v.file == nil {
		return 0, checkpoint.Wrap(ErrNoFile, ErrReadFile)
	}

	// Fill p completely unless the file ends, a short read means end of file.
	n, err := io.ReadFull(v.file, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	if err != nil {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}
	return n, nil
}

// Close closes the open file, if any.
func (v *FileVolume) Close() error {
	return v.closeFile()
}

func (v *FileVolume) closeFile() error {
	if v.file == nil {
		return nil
	}
	err := v.file.Close()
	v.file = nil
	return checkpoint.From(err)
}
