// File model contains the structs which match the direct structures of the FAT filesystem.

package fat

// fatEntry is a cluster number as stored in the allocation table.
type fatEntry uint32

// Attribute bits of a directory entry.
const (
	AttrReadOnly  byte = 0x01
	AttrHidden    byte = 0x02
	AttrSystem    byte = 0x04
	AttrVolumeID  byte = 0x08
	AttrDirectory byte = 0x10
	AttrArchive   byte = 0x20

	// AttrLongName marks the slots holding pieces of a long file name.
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

// Flags of EntryHeader.NTReserved which tell that the short name is displayed in lower case.
const (
	ntLowerBody byte = 0x08
	ntLowerExt  byte = 0x10
)

// Markers in the first name byte of a directory entry.
const (
	entryEnd     = 0x00
	entryDeleted = 0xE5
	// entryKanji stands for a real 0xE5 as first character.
	entryKanji = 0x05
)

// lastLongEntry flags the long name slot which comes first on disk and holds the end of the name.
const lastLongEntry = 0x40

const (
	entrySize = 32
	// longNameChars is the number of UTF-16 units each long name slot holds.
	longNameChars = 13
)

type BPB struct {
	BSJumpBoot          [3]byte
	BSOEMName           [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   byte
	ReservedSectorCount uint16
	NumFATs             byte
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               byte
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
	FATSpecificData     [54]byte
}

type FAT16SpecificData struct {
	BSDriveNumber    byte
	BSReserved1      byte
	BSBootSignature  byte
	BSVolumeId       uint32
	BSVolumeLabel    [11]byte
	BSFileSystemType [8]byte
}

type FAT32SpecificData struct {
	FatSize          uint32
	ExtFlags         uint16
	FSVersion        uint16
	RootCluster      fatEntry
	FSInfo           uint16
	BkBootSector     uint16
	Reserved         [12]byte
	BSDriveNumber    byte
	BSReserved1      byte
	BSBootSignature  byte
	BSVolumeID       uint32
	BSVolumeLabel    [11]byte
	BSFileSystemType [8]byte
}

// bootSignature in FAT16SpecificData and FAT32SpecificData tells that the label fields are valid.
const bootSignature = 0x29

type EntryHeader struct {
	Name            RawName
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// FirstCluster returns the start of the cluster chain of the entry.
func (h EntryHeader) FirstCluster() fatEntry {
	return fatEntry(h.FirstClusterHI)<<16 | fatEntry(h.FirstClusterLO)
}

func (h *EntryHeader) setFirstCluster(c fatEntry) {
	h.FirstClusterHI = uint16(c >> 16)
	h.FirstClusterLO = uint16(c)
}

type LongFilenameEntry struct {
	Sequence  byte
	First     [5]uint16
	Attribute byte
	EntryType byte
	Checksum  byte
	Second    [6]uint16
	Zero      [2]byte
	Third     [2]uint16
}

// chars returns the 13 name units of the slot in order.
func (l LongFilenameEntry) chars() []uint16 {
	chars := make([]uint16, 0, longNameChars)
	chars = append(chars, l.First[:]...)
	chars = append(chars, l.Second[:]...)
	return append(chars, l.Third[:]...)
}

func (l *LongFilenameEntry) setChars(chars []uint16) {
	copy(l.First[:], chars[:5])
	copy(l.Second[:], chars[5:11])
	copy(l.Third[:], chars[11:13])
}

// ExtendedEntryHeader is a directory entry together with its long name, if it has one.
type ExtendedEntryHeader struct {
	EntryHeader
	ExtendedName string
}
