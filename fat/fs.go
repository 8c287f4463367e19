// Package fat reads FAT12, FAT16 and FAT32 volumes, e.g. the image of an SD card, through the
// afero.Fs interface. Long file names are supported. The volume is read only.
// It can also build volume images from the content of any afero.Fs, see WriteImage.
package fat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aligator/vsplayer/checkpoint"
	"github.com/spf13/afero"
)

// Type is the FAT variant, it only depends on the number of clusters.
type Type uint8

const (
	FAT12 Type = iota
	FAT16
	FAT32
)

func (t Type) String() string {
	switch t {
	case FAT12:
		return "FAT12"
	case FAT16:
		return "FAT16"
	case FAT32:
		return "FAT32"
	default:
		return "unknown"
	}
}

// Cluster count limits which decide the Type.
const (
	maxClustersFAT12 = 4084
	maxClustersFAT16 = 65524
)

// These errors may occur while reading a volume.
var (
	ErrNoFAT         = errors.New("no FAT filesystem")
	ErrInvalidBPB    = errors.New("invalid boot parameter block")
	ErrReadSector    = errors.New("could not read the sector")
	ErrClusterChain  = errors.New("broken cluster chain")
	ErrReadDir       = errors.New("could not read the directory")
	ErrReadFile      = errors.New("could not read file completely")
	ErrSeekFile      = errors.New("could not seek inside of the file")
	ErrReadOnly      = syscall.EPERM
	ErrNotDir        = syscall.ENOTDIR
	ErrIsDir         = syscall.EISDIR
	errInvalidOffset = errors.New("invalid offset")
)

// Info contains all information about the whole filesystem.
type Info struct {
	FSType            Type
	SectorSize        uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	FATSize           uint32
	TotalSectors      uint32
	ClusterCount      uint32
	// FirstRootSector is where the fixed root directory of FAT12 and FAT16 starts.
	FirstRootSector   uint32
	rootDirectorySize uint32
	// RootCluster starts the root directory of FAT32.
	RootCluster     fatEntry
	FirstDataSector uint32
	Label           string
}

func (i Info) clusterSize() int64 {
	return int64(i.SectorSize) * int64(i.SectorsPerCluster)
}

// Sector caches the sector read last.
type Sector struct {
	current uint32
	valid   bool
	buffer  []uint8
}

// Fs is a read only FAT volume. It is safe for concurrent use.
type Fs struct {
	mu     sync.Mutex
	reader io.ReadSeeker
	info   Info
	sector Sector

	// chains caches the cluster chains of files already read, the volume never changes.
	chains map[fatEntry][]fatEntry
}

// New reads the boot sector of the volume in reader.
func New(reader io.ReadSeeker) (*Fs, error) {
	fs := &Fs{
		reader: reader,
		chains: make(map[fatEntry][]fatEntry),
	}

	if err := fs.initialize(); err != nil {
		return nil, err
	}
	return fs, nil
}

func invalidBPB(format string, a ...interface{}) error {
	return checkpoint.From(fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidBPB}, a...)...))
}

func (fs *Fs) initialize() error {
	// The boot parameter block always fits into the first 512 bytes, so use that until the
	// correct sector size is known.
	// Note that almost all FAT filesystems use 512.
	fs.info.SectorSize = 512
	fs.sector.buffer = make([]uint8, 512)

	if err := fs.fetch(0); err != nil {
		return err
	}

	bpb := BPB{}
	err := binary.Read(bytes.NewReader(fs.sector.buffer), binary.LittleEndian, &bpb)
	if err != nil {
		return checkpoint.From(err)
	}

	// Check for valid jump instructions.
	if !(bpb.BSJumpBoot[0] == 0xEB && bpb.BSJumpBoot[2] == 0x90) && bpb.BSJumpBoot[0] != 0xE9 {
		return checkpoint.Errorf(ErrNoFAT, "no valid jump instructions at the beginning")
	}

	switch bpb.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return invalidBPB("sector size %v", bpb.BytesPerSector)
	}

	// Sectors per cluster has to be a power of two and the cluster not bigger than 32K.
	spc := bpb.SectorsPerCluster
	if spc == 0 || spc&(spc-1) != 0 || uint32(bpb.BytesPerSector)*uint32(spc) > 32*1024 {
		return invalidBPB("%v sectors per cluster", spc)
	}

	if bpb.ReservedSectorCount == 0 {
		return invalidBPB("no reserved sectors")
	}
	if bpb.NumFATs == 0 {
		return invalidBPB("no allocation table")
	}
	if bpb.Media != 0xF0 && bpb.Media < 0xF8 {
		return invalidBPB("media %#x", bpb.Media)
	}

	var fat16 FAT16SpecificData
	var fat32 FAT32SpecificData
	if err := binary.Read(bytes.NewReader(bpb.FATSpecificData[:]), binary.LittleEndian, &fat16); err != nil {
		return checkpoint.From(err)
	}
	if err := binary.Read(bytes.NewReader(bpb.FATSpecificData[:]), binary.LittleEndian, &fat32); err != nil {
		return checkpoint.From(err)
	}

	info := Info{
		SectorSize:        bpb.BytesPerSector,
		SectorsPerCluster: spc,
		ReservedSectors:   bpb.ReservedSectorCount,
		NumFATs:           bpb.NumFATs,
		FATSize:           uint32(bpb.FATSize16),
		TotalSectors:      uint32(bpb.TotalSectors16),
	}
	if info.FATSize == 0 {
		info.FATSize = fat32.FatSize
	}
	if info.TotalSectors == 0 {
		info.TotalSectors = bpb.TotalSectors32
	}
	if info.FATSize == 0 || info.TotalSectors == 0 {
		return invalidBPB("FAT size %v, %v sectors", info.FATSize, info.TotalSectors)
	}

	sectorSize := uint32(info.SectorSize)
	info.rootDirectorySize = (uint32(bpb.RootEntryCount)*entrySize + sectorSize - 1) / sectorSize
	info.FirstRootSector = uint32(info.ReservedSectors) + uint32(info.NumFATs)*info.FATSize
	info.FirstDataSector = info.FirstRootSector + info.rootDirectorySize
	if info.FirstDataSector >= info.TotalSectors {
		return invalidBPB("no data sectors")
	}
	info.ClusterCount = (info.TotalSectors - info.FirstDataSector) / uint32(spc)

	label := fat16.BSVolumeLabel
	hasLabel := fat16.BSBootSignature == bootSignature
	switch {
	case info.ClusterCount <= maxClustersFAT12:
		info.FSType = FAT12
	case info.ClusterCount <= maxClustersFAT16:
		info.FSType = FAT16
	default:
		info.FSType = FAT32
		if bpb.RootEntryCount != 0 {
			return invalidBPB("FAT32 with fixed root directory")
		}
		info.RootCluster = fat32.RootCluster
		label = fat32.BSVolumeLabel
		hasLabel = fat32.BSBootSignature == bootSignature
	}

	// The FAT has to hold an entry for every cluster.
	entries := int64(info.FATSize) * int64(sectorSize)
	switch info.FSType {
	case FAT12:
		entries = entries * 2 / 3
	case FAT16:
		entries /= 2
	case FAT32:
		entries /= 4
	}
	if entries < int64(info.ClusterCount)+2 {
		return invalidBPB("FAT too small for %v clusters", info.ClusterCount)
	}

	if hasLabel {
		info.Label = strings.TrimRight(string(label[:]), " ")
	}
	if info.Label == "NO NAME" {
		info.Label = ""
	}

	fs.info = info
	fs.sector = Sector{buffer: make([]uint8, info.SectorSize)}

	if info.FSType == FAT32 && !fs.isCluster(info.RootCluster) {
		return invalidBPB("root cluster %v", info.RootCluster)
	}

	// A volume label entry in the root directory wins over the boot sector.
	if label, ok, err := fs.rootLabel(); err != nil {
		return err
	} else if ok {
		fs.info.Label = label
	}

	return nil
}

// fetch loads a specific single sector of the filesystem.
func (fs *Fs) fetch(sector uint32) error {
	// Only load it once.
	if fs.sector.valid && sector == fs.sector.current {
		return nil
	}

	if fs.info.TotalSectors != 0 && sector >= fs.info.TotalSectors {
		return checkpoint.Errorf(ErrReadSector, "sector %v out of range", sector)
	}

	fs.sector.valid = false
	_, err := fs.reader.Seek(int64(sector)*int64(fs.info.SectorSize), io.SeekStart)
	if err != nil {
		return checkpoint.Wrap(err, ErrReadSector)
	}

	_, err = io.ReadFull(fs.reader, fs.sector.buffer)
	if err != nil {
		return checkpoint.Wrap(err, ErrReadSector)
	}

	fs.sector.current = sector
	fs.sector.valid = true
	return nil
}

// readAt reads len(p) bytes at the absolute byte offset through the sector cache.
func (fs *Fs) readAt(p []byte, offset int64) error {
	sectorSize := int64(fs.info.SectorSize)
	for len(p) > 0 {
		if err := fs.fetch(uint32(offset / sectorSize)); err != nil {
			return err
		}
		n := copy(p, fs.sector.buffer[offset%sectorSize:])
		p = p[n:]
		offset += int64(n)
	}
	return nil
}

// Info returns the layout of the volume.
func (fs *Fs) Info() Info {
	return fs.info
}

// FSType returns the FAT variant of the volume.
func (fs *Fs) FSType() Type {
	return fs.info.FSType
}

// Label returns the volume label, which may be empty.
func (fs *Fs) Label() string {
	return fs.info.Label
}

func pathError(op, name string, err error) error {
	return &os.PathError{Op: op, Path: name, Err: err}
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, pathError("create", name, ErrReadOnly)
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return pathError("mkdir", name, ErrReadOnly)
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return pathError("mkdir", path, ErrReadOnly)
}

func (fs *Fs) Open(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens a file or directory. Only os.O_RDONLY is supported.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, pathError("open", name, ErrReadOnly)
	}

	fs.mu.Lock()
	entry, err := fs.lookup(name)
	fs.mu.Unlock()
	if err != nil {
		return nil, pathError("open", name, err)
	}

	return newFile(fs, name, entry), nil
}

func (fs *Fs) Remove(name string) error {
	return pathError("remove", name, ErrReadOnly)
}

func (fs *Fs) RemoveAll(path string) error {
	return pathError("remove", path, ErrReadOnly)
}

func (fs *Fs) Rename(oldname, newname string) error {
	return pathError("rename", oldname, ErrReadOnly)
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	fs.mu.Lock()
	entry, err := fs.lookup(name)
	fs.mu.Unlock()
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return entry.FileInfo(), nil
}

func (fs *Fs) Name() string {
	return "FAT"
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return pathError("chmod", name, ErrReadOnly)
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return pathError("chown", name, ErrReadOnly)
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return pathError("chtimes", name, ErrReadOnly)
}
