package fat

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/aligator/vsplayer/checkpoint"
	"github.com/spf13/afero"
)

// fatFileFs provides all methods needed from a fat filesystem for File.
// It mainly exists to be able to mock the Fs in tests.
// Generated mock using mockgen:
//  mockgen -source=file.go -destination=file_mock.go -package fat
type fatFileFs interface {
	readFileAt(cluster fatEntry, fileSize int64, offset int64, readSize int64) ([]byte, error)
	readRoot() ([]ExtendedEntryHeader, error)
	readDir(cluster fatEntry) ([]ExtendedEntryHeader, error)
}

// File is an open file or directory of a Fs. It is read only.
type File struct {
	fs   fatFileFs
	path string

	isDirectory bool
	isRoot      bool

	firstCluster fatEntry
	stat         os.FileInfo
	offset       int64

	// listing is read on the first Readdir call.
	listing []os.FileInfo
}

var _ afero.File = (*File)(nil)

func newFile(fs fatFileFs, path string, entry ExtendedEntryHeader) *File {
	return &File{
		fs:           fs,
		path:         path,
		isDirectory:  entry.Attribute&AttrDirectory != 0,
		isRoot:       entry.Name == rootEntry.Name,
		firstCluster: entry.FirstCluster(),
		stat:         entry.FileInfo(),
	}
}

func (f *File) Close() error {
	if f.fs == nil {
		return pathError("close", f.path, os.ErrClosed)
	}

	*f = File{}
	return nil
}

func (f *File) Read(p []byte) (n int, err error) {
	if f.fs == nil {
		return 0, pathError("read", f.path, os.ErrClosed)
	}
	if f.isDirectory {
		return 0, pathError("read", f.path, ErrIsDir)
	}
	if len(p) == 0 {
		return 0, nil
	}

	// Reading a file if the size has been already reached, makes no sense.
	if f.stat.Size() <= f.offset {
		return 0, io.EOF
	}

	data, err := f.fs.readFileAt(f.firstCluster, f.stat.Size(), f.offset, int64(len(p)))
	n = copy(p, data)
	f.offset += int64(n)

	if err != nil {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}
	return n, nil
}

func (f *File) ReadAt(p []byte, off int64) (n int, err error) {
	if f.fs == nil {
		return 0, pathError("read", f.path, os.ErrClosed)
	}
	if f.isDirectory {
		return 0, pathError("read", f.path, ErrIsDir)
	}
	if off < 0 {
		return 0, checkpoint.Wrap(errInvalidOffset, ErrReadFile)
	}

	// Reading over the end makes no sense.
	if f.stat.Size() <= off {
		return 0, io.EOF
	}

	data, err := f.fs.readFileAt(f.firstCluster, f.stat.Size(), off, int64(len(p)))
	n = copy(p, data)

	if err != nil {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}

	// Unlike Read, ReadAt has to explain a short read.
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek jumps to a specific offset in the file. This affects all Read operation except ReadAt.
// May return a syscall.EINVAL error if the whence value is invalid.
// May return an afero.ErrOutOfRange error if the offset is out of range.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.fs == nil {
		return 0, pathError("seek", f.path, os.ErrClosed)
	}

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset = f.offset + offset
	case io.SeekEnd:
		offset = f.stat.Size() + offset
	default:
		return 0, checkpoint.Wrap(ErrSeekFile, fmt.Errorf("%w, offset: %v, whence: %v", syscall.EINVAL, offset, whence))
	}

	if offset < 0 || offset > f.stat.Size() {
		return 0, checkpoint.Wrap(afero.ErrOutOfRange, fmt.Errorf("%w, offset: %v, whence: %v", ErrSeekFile, offset, whence))
	}

	f.offset = offset
	return offset, nil
}

func (f *File) Write(p []byte) (n int, err error) {
	return 0, pathError("write", f.path, ErrReadOnly)
}

func (f *File) WriteAt(p []byte, off int64) (n int, err error) {
	return 0, pathError("write", f.path, ErrReadOnly)
}

func (f *File) Name() string {
	return f.path
}

// Readdir reads the contents of a directory like os.File.Readdir does: with count > 0 at most
// count entries are returned and io.EOF at the end, otherwise all remaining ones.
// May return syscall.ENOTDIR if the current File is no directory.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if f.fs == nil {
		return nil, pathError("readdir", f.path, os.ErrClosed)
	}
	if !f.isDirectory {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
	}

	if f.listing == nil {
		var content []ExtendedEntryHeader
		var err error
		if f.isRoot {
			content, err = f.fs.readRoot()
		} else {
			content, err = f.fs.readDir(f.firstCluster)
		}
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrReadDir)
		}

		f.listing = make([]os.FileInfo, len(content))
		for i := range content {
			f.listing[i] = content[i].FileInfo()
		}
	}

	remaining := f.listing[f.offset:]
	if count <= 0 {
		f.offset = int64(len(f.listing))
		return remaining, nil
	}

	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if count > len(remaining) {
		count = len(remaining)
	}
	f.offset += int64(count)
	return remaining[:count], nil
}

func (f *File) Readdirnames(count int) ([]string, error) {
	content, err := f.Readdir(count)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(content))
	for i, entry := range content {
		names[i] = entry.Name()
	}

	return names, nil
}

func (f *File) Stat() (os.FileInfo, error) {
	if f.fs == nil {
		return nil, pathError("stat", f.path, os.ErrClosed)
	}
	return f.stat, nil
}

func (f *File) Sync() error {
	return nil
}

func (f *File) Truncate(size int64) error {
	return pathError("truncate", f.path, ErrReadOnly)
}

func (f *File) WriteString(s string) (ret int, err error) {
	return f.Write([]byte(s))
}
