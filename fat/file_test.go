package fat

import (
	"errors"
	"io"
	"os"
	"reflect"
	"syscall"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/spf13/afero"
)

// fileTestFields is essentially a copy of the File struct used to fill the
// unit under test in test cases.
type fileTestFields struct {
	path         string
	isDirectory  bool
	isRoot       bool
	firstCluster fatEntry
	stat         os.FileInfo
	offset       int64
}

func (f fileTestFields) file(fs fatFileFs) *File {
	return &File{
		fs:           fs,
		path:         f.path,
		isDirectory:  f.isDirectory,
		isRoot:       f.isRoot,
		firstCluster: f.firstCluster,
		stat:         f.stat,
		offset:       f.offset,
	}
}

// fakeFileInfo is just a fake FileInfo which does nothing and contains only
// someData to have something to check equality.
type fakeFileInfo struct {
	someData string
	fileSize int64
}

func (f fakeFileInfo) Name() string       { return "" }
func (f fakeFileInfo) Size() int64        { return f.fileSize }
func (f fakeFileInfo) Mode() os.FileMode  { return 0 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() interface{}   { return nil }

// fileTestsError is just a error used in tests for File.
var fileTestsError = errors.New("a super error")

func Test_newFile(t *testing.T) {
	entry := ExtendedEntryHeader{
		EntryHeader: EntryHeader{
			Name:           rawName("SONGS      "),
			Attribute:      AttrDirectory,
			FirstClusterHI: 1,
			FirstClusterLO: 2,
		},
		ExtendedName: "Songs",
	}

	f := newFile(nil, "/Songs", entry)
	if !f.isDirectory || f.isRoot {
		t.Errorf("newFile() isDirectory = %v, isRoot = %v, want true, false", f.isDirectory, f.isRoot)
	}
	if f.firstCluster != 0x10002 {
		t.Errorf("newFile() firstCluster = %#x, want 0x10002", f.firstCluster)
	}
	if f.stat.Name() != "Songs" {
		t.Errorf("newFile() stat name = %v, want Songs", f.stat.Name())
	}

	root := newFile(nil, "/", rootEntry)
	if !root.isDirectory || !root.isRoot {
		t.Errorf("newFile() root isDirectory = %v, isRoot = %v, want true, true", root.isDirectory, root.isRoot)
	}
}

func TestFile_Close(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	f := fileTestFields{
		path:         "any path",
		isDirectory:  true,
		firstCluster: 5,
		stat:         entryHeaderFileInfo{},
		offset:       7,
	}.file(NewMockfatFileFs(mockCtrl))

	if err := f.Close(); err != nil {
		t.Errorf("File.Close() error = %v, wantErr nil", err)
	}
	if !reflect.DeepEqual(*f, File{}) {
		t.Errorf("File.Close() did not reset the file: %+v", *f)
	}

	if err := f.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("File.Close() second call error = %v, want %v", err, os.ErrClosed)
	}
	if _, err := f.Read(make([]byte, 1)); !errors.Is(err, os.ErrClosed) {
		t.Errorf("File.Read() after close error = %v, want %v", err, os.ErrClosed)
	}
}

func TestFile_Read(t *testing.T) {
	type args struct {
		p []byte
	}
	type mock struct {
		readAtResult []byte
		readAtError  error
		noCall       bool
	}
	tests := []struct {
		name     string
		mockData mock
		fields   fileTestFields
		args     args
		wantN    int
		wantErr  error
	}{
		{
			name: "simple file",
			mockData: mock{
				readAtResult: []byte("Hello World"),
			},
			fields: fileTestFields{
				firstCluster: 2,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:  args{p: make([]byte, 11)},
			wantN: 11,
		},
		{
			name: "simple file with offset",
			mockData: mock{
				readAtResult: []byte(" World"),
			},
			fields: fileTestFields{
				firstCluster: 2,
				offset:       5,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:  args{p: make([]byte, 6)},
			wantN: 6,
		},
		{
			name: "error while reading",
			mockData: mock{
				readAtResult: []byte{'H'}, // Simulate error after some bytes are already read.
				readAtError:  fileTestsError,
			},
			fields: fileTestFields{
				firstCluster: 2,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:    args{p: make([]byte, 11)},
			wantN:   1,
			wantErr: fileTestsError,
		},
		{
			name: "file smaller than buffer",
			mockData: mock{
				readAtResult: []byte("Hello World"),
			},
			fields: fileTestFields{
				firstCluster: 2,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:  args{p: make([]byte, 20)},
			wantN: 11,
		},
		{
			name:     "at the end",
			mockData: mock{noCall: true},
			fields: fileTestFields{
				firstCluster: 2,
				offset:       11,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:    args{p: make([]byte, 20)},
			wantErr: io.EOF,
		},
		{
			name:     "directory",
			mockData: mock{noCall: true},
			fields: fileTestFields{
				isDirectory: true,
				stat:        fakeFileInfo{},
			},
			args:    args{p: make([]byte, 20)},
			wantErr: syscall.EISDIR,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			mockFs := NewMockfatFileFs(mockCtrl)
			if !tt.mockData.noCall {
				mockFs.EXPECT().
					readFileAt(tt.fields.firstCluster, tt.fields.stat.Size(), tt.fields.offset, int64(len(tt.args.p))).
					Times(1).
					Return(tt.mockData.readAtResult, tt.mockData.readAtError)
			}

			f := tt.fields.file(mockFs)
			gotN, err := f.Read(tt.args.p)

			mockCtrl.Finish()

			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil) != (err == nil) {
				t.Errorf("File.Read() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if gotN != tt.wantN {
				t.Errorf("File.Read() = %v, want %v", gotN, tt.wantN)
			}
			if f.offset != tt.fields.offset+int64(gotN) {
				t.Errorf("File.Read() offset = %v, want %v", f.offset, tt.fields.offset+int64(gotN))
			}
		})
	}
}

func TestFile_ReadAt(t *testing.T) {
	type args struct {
		p   []byte
		off int64
	}
	type mock struct {
		readAtResult []byte
		readAtError  error
		noCall       bool
	}
	tests := []struct {
		name     string
		mockData mock
		fields   fileTestFields
		args     args
		wantN    int
		wantErr  error
	}{
		{
			name:     "simple file",
			mockData: mock{readAtResult: []byte("Hello")},
			fields: fileTestFields{
				firstCluster: 3,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:  args{p: make([]byte, 5)},
			wantN: 5,
		},
		{
			name:     "offset does not depend on the file offset",
			mockData: mock{readAtResult: []byte("World")},
			fields: fileTestFields{
				firstCluster: 3,
				offset:       2,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:  args{p: make([]byte, 5), off: 6},
			wantN: 5,
		},
		{
			name:     "short read",
			mockData: mock{readAtResult: []byte("World")},
			fields: fileTestFields{
				firstCluster: 3,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:    args{p: make([]byte, 10), off: 6},
			wantN:   5,
			wantErr: io.EOF,
		},
		{
			name: "error while reading",
			mockData: mock{
				readAtResult: []byte("Wo"),
				readAtError:  fileTestsError,
			},
			fields: fileTestFields{
				firstCluster: 3,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:    args{p: make([]byte, 5), off: 6},
			wantN:   2,
			wantErr: fileTestsError,
		},
		{
			name:     "behind the end",
			mockData: mock{noCall: true},
			fields: fileTestFields{
				firstCluster: 3,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:    args{p: make([]byte, 5), off: 11},
			wantErr: io.EOF,
		},
		{
			name:     "negative offset",
			mockData: mock{noCall: true},
			fields: fileTestFields{
				firstCluster: 3,
				stat:         fakeFileInfo{fileSize: 11},
			},
			args:    args{p: make([]byte, 5), off: -1},
			wantErr: ErrReadFile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			mockFs := NewMockfatFileFs(mockCtrl)
			if !tt.mockData.noCall {
				mockFs.EXPECT().
					readFileAt(tt.fields.firstCluster, tt.fields.stat.Size(), tt.args.off, int64(len(tt.args.p))).
					Times(1).
					Return(tt.mockData.readAtResult, tt.mockData.readAtError)
			}

			f := tt.fields.file(mockFs)
			gotN, err := f.ReadAt(tt.args.p, tt.args.off)

			mockCtrl.Finish()

			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil) != (err == nil) {
				t.Errorf("File.ReadAt() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if gotN != tt.wantN {
				t.Errorf("File.ReadAt() = %v, want %v", gotN, tt.wantN)
			}
			if f.offset != tt.fields.offset {
				t.Errorf("File.ReadAt() changed the offset to %v", f.offset)
			}
		})
	}
}

func TestFile_Seek(t *testing.T) {
	type args struct {
		offset int64
		whence int
	}
	tests := []struct {
		name    string
		fields  fileTestFields
		args    args
		want    int64
		wantErr error
	}{
		{
			name:   "from start",
			fields: fileTestFields{stat: fakeFileInfo{fileSize: 11}, offset: 3},
			args:   args{offset: 5, whence: io.SeekStart},
			want:   5,
		},
		{
			name:   "from current",
			fields: fileTestFields{stat: fakeFileInfo{fileSize: 11}, offset: 3},
			args:   args{offset: 5, whence: io.SeekCurrent},
			want:   8,
		},
		{
			name:   "from end",
			fields: fileTestFields{stat: fakeFileInfo{fileSize: 11}, offset: 3},
			args:   args{offset: -5, whence: io.SeekEnd},
			want:   6,
		},
		{
			name:   "exactly the end",
			fields: fileTestFields{stat: fakeFileInfo{fileSize: 11}},
			args:   args{offset: 0, whence: io.SeekEnd},
			want:   11,
		},
		{
			name:    "behind the end",
			fields:  fileTestFields{stat: fakeFileInfo{fileSize: 11}, offset: 3},
			args:    args{offset: 12, whence: io.SeekStart},
			want:    0,
			wantErr: afero.ErrOutOfRange,
		},
		{
			name:    "before the start",
			fields:  fileTestFields{stat: fakeFileInfo{fileSize: 11}, offset: 3},
			args:    args{offset: -4, whence: io.SeekCurrent},
			want:    0,
			wantErr: afero.ErrOutOfRange,
		},
		{
			name:    "invalid whence",
			fields:  fileTestFields{stat: fakeFileInfo{fileSize: 11}, offset: 3},
			args:    args{offset: 0, whence: 42},
			want:    0,
			wantErr: syscall.EINVAL,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			defer mockCtrl.Finish()

			f := tt.fields.file(NewMockfatFileFs(mockCtrl))
			got, err := f.Seek(tt.args.offset, tt.args.whence)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil) != (err == nil) {
				t.Errorf("File.Seek() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("File.Seek() = %v, want %v", got, tt.want)
			}
			if err != nil && f.offset != tt.fields.offset {
				t.Errorf("File.Seek() changed the offset to %v on error", f.offset)
			}
		})
	}
}

func TestFile_writeOperations(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	f := fileTestFields{path: "/a", stat: fakeFileInfo{fileSize: 11}}.file(NewMockfatFileFs(mockCtrl))

	tests := []struct {
		name string
		call func() error
	}{
		{name: "Write", call: func() error { _, err := f.Write([]byte("a")); return err }},
		{name: "WriteAt", call: func() error { _, err := f.WriteAt([]byte("a"), 0); return err }},
		{name: "WriteString", call: func() error { _, err := f.WriteString("a"); return err }},
		{name: "Truncate", call: func() error { return f.Truncate(0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, syscall.EPERM) {
				t.Errorf("File.%v() error = %v, want %v", tt.name, err, syscall.EPERM)
			}
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) || pathErr.Path != "/a" {
				t.Errorf("File.%v() error = %v, want a path error for /a", tt.name, err)
			}
		})
	}

	if err := f.Sync(); err != nil {
		t.Errorf("File.Sync() error = %v, want nil", err)
	}
	if f.Name() != "/a" {
		t.Errorf("File.Name() = %v, want /a", f.Name())
	}
}

func TestFile_Readdir(t *testing.T) {
	type args struct {
		count int
	}
	type mock struct {
		readRootResult []ExtendedEntryHeader
		readRootError  error

		readDirResult []ExtendedEntryHeader
		readDirError  error
	}
	entries := []ExtendedEntryHeader{
		// Use the name to identify them in the results, they are just tested by equality.
		{ExtendedName: "1"},
		{ExtendedName: "2"},
		{ExtendedName: "3"},
	}
	infos := []os.FileInfo{
		entryHeaderFileInfo{ExtendedEntryHeader{ExtendedName: "1"}},
		entryHeaderFileInfo{ExtendedEntryHeader{ExtendedName: "2"}},
		entryHeaderFileInfo{ExtendedEntryHeader{ExtendedName: "3"}},
	}

	tests := []struct {
		name     string
		fields   fileTestFields
		args     args
		mockData mock
		want     []os.FileInfo
		wantErr  error
	}{
		{
			name:     "Read root dir",
			fields:   fileTestFields{path: "/", isDirectory: true, isRoot: true},
			args:     args{count: -1},
			mockData: mock{readRootResult: entries},
			want:     infos,
		},
		{
			name:     "Read dir",
			fields:   fileTestFields{path: "/test", isDirectory: true, firstCluster: 4},
			args:     args{count: 0},
			mockData: mock{readDirResult: entries},
			want:     infos,
		},
		{
			name:     "Read dir with count arg",
			fields:   fileTestFields{path: "/test", isDirectory: true, firstCluster: 4},
			args:     args{count: 2},
			mockData: mock{readDirResult: entries},
			want:     infos[:2],
		},
		{
			name:     "Read dir with count bigger than the content",
			fields:   fileTestFields{path: "/test", isDirectory: true, firstCluster: 4},
			args:     args{count: 5},
			mockData: mock{readDirResult: entries},
			want:     infos,
		},
		{
			name:     "Read empty dir with count arg",
			fields:   fileTestFields{path: "/test", isDirectory: true, firstCluster: 4},
			args:     args{count: 2},
			mockData: mock{readDirResult: []ExtendedEntryHeader{}},
			wantErr:  io.EOF,
		},
		{
			name:     "Read dir error",
			fields:   fileTestFields{path: "/test", isDirectory: true, firstCluster: 4},
			args:     args{count: -1},
			mockData: mock{readDirError: fileTestsError},
			wantErr:  fileTestsError,
		},
		{
			name:     "Read root error",
			fields:   fileTestFields{path: "/", isDirectory: true, isRoot: true},
			args:     args{count: -1},
			mockData: mock{readRootError: fileTestsError},
			wantErr:  ErrReadDir,
		},
		{
			name:    "Read file",
			fields:  fileTestFields{path: "/test.txt", firstCluster: 4},
			args:    args{count: -1},
			wantErr: syscall.ENOTDIR,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			mockFs := NewMockfatFileFs(mockCtrl)

			if tt.fields.isDirectory {
				if tt.fields.isRoot {
					mockFs.EXPECT().readRoot().Times(1).Return(tt.mockData.readRootResult, tt.mockData.readRootError)
				} else {
					mockFs.EXPECT().readDir(tt.fields.firstCluster).Times(1).Return(tt.mockData.readDirResult, tt.mockData.readDirError)
				}
			}

			f := tt.fields.file(mockFs)
			got, err := f.Readdir(tt.args.count)

			mockCtrl.Finish()

			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil) != (err == nil) {
				t.Errorf("File.Readdir() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("File.Readdir() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFile_Readdir_continues(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mockFs := NewMockfatFileFs(mockCtrl)
	// The listing is read only once.
	mockFs.EXPECT().readDir(fatEntry(4)).Times(1).Return([]ExtendedEntryHeader{
		{ExtendedName: "1"},
		{ExtendedName: "2"},
		{ExtendedName: "3"},
	}, nil)

	f := fileTestFields{path: "/test", isDirectory: true, firstCluster: 4}.file(mockFs)

	tests := []struct {
		count   int
		want    []string
		wantErr error
	}{
		{count: 2, want: []string{"1", "2"}},
		{count: 2, want: []string{"3"}},
		{count: 2, wantErr: io.EOF},
		{count: -1, want: []string{}},
	}
	for i, tt := range tests {
		got, err := f.Readdirnames(tt.count)
		if err != tt.wantErr {
			t.Fatalf("call %v: File.Readdirnames() error = %v, wantErr %v", i, err, tt.wantErr)
		}
		if err == nil && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("call %v: File.Readdirnames() = %v, want %v", i, got, tt.want)
		}
	}
}

func TestFile_Stat(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	stat := fakeFileInfo{someData: "the stat", fileSize: 5}
	f := fileTestFields{path: "/a", stat: stat}.file(NewMockfatFileFs(mockCtrl))

	got, err := f.Stat()
	if err != nil {
		t.Fatalf("File.Stat() error = %v", err)
	}
	if !reflect.DeepEqual(got, stat) {
		t.Errorf("File.Stat() = %v, want %v", got, stat)
	}
}
