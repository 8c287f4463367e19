package vsplayer

import (
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// ioFS adapts an io/fs.FS to afero. io/fs only accepts unrooted paths, so the absolute paths
// used by FileVolume are converted first.
type ioFS struct {
	afero.FromIOFS
}

func ioName(name string) string {
	name = strings.Trim(path.Clean("/"+name), "/")
	if name == "" {
		return "."
	}
	return name
}

func (f ioFS) Open(name string) (afero.File, error) {
	return f.FromIOFS.Open(ioName(name))
}

func (f ioFS) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return f.FromIOFS.OpenFile(ioName(name), flag, perm)
}

func (f ioFS) Stat(name string) (os.FileInfo, error) {
	return f.FromIOFS.Stat(ioName(name))
}

// NewIOFSVolume creates a read-only volume from an io/fs.FS, e.g. an embed.FS with built-in
// sounds or a testing/fstest.MapFS.
func NewIOFSVolume(fsys fs.FS) *FileVolume {
	return NewFileVolume(ioFS{afero.FromIOFS{FS: fsys}})
}
