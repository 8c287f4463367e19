package fat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"math"
	"os"
	"path"
	"strings"

	"github.com/aligator/vsplayer/checkpoint"
	"github.com/spf13/afero"
)

var (
	ErrImageTooLarge = errors.New("files do not fit into a volume of this FAT type")
	ErrFileTooLarge  = errors.New("file is too large for FAT")
)

// ImageConfig selects the layout of an image written by WriteImage.
type ImageConfig struct {
	Type Type
	// Label is the volume label, at most 11 characters.
	Label string
	// MinSize is the minimal size of the image in bytes. It grows if the files need more space.
	MinSize int64
}

const (
	imageSectorSize = 512
	imageMedia      = 0xF8
	// maxClustersFAT32 leaves room for the reserved values at the end of the 28 bit range.
	maxClustersFAT32 = 0x0FFFFFF5
)

// imageNode is a file or directory to be written.
type imageNode struct {
	header   EntryHeader
	long     string
	src      string
	children []*imageNode
}

func (n *imageNode) isDir() bool {
	return n.header.Attribute&AttrDirectory != 0
}

// slots is the number of directory entries the node takes.
func (n *imageNode) slots() int {
	if n.long == "" {
		return 1
	}
	return 1 + len(longNameSlots(n.long, n.header.Name))
}

// imageLayout is the geometry of an image.
type imageLayout struct {
	typ               Type
	sectorsPerCluster uint32
	reserved          uint32
	rootEntries       uint32
	fatSize           uint32
	clusters          uint32
}

func (l imageLayout) clusterSize() int64 {
	return int64(l.sectorsPerCluster) * imageSectorSize
}

func (l imageLayout) rootSectors() uint32 {
	return l.rootEntries * entrySize / imageSectorSize
}

func (l imageLayout) firstRootSector() uint32 {
	return l.reserved + 2*l.fatSize
}

func (l imageLayout) firstDataSector() uint32 {
	return l.firstRootSector() + l.rootSectors()
}

func (l imageLayout) totalSectors() uint32 {
	return l.firstDataSector() + l.clusters*l.sectorsPerCluster
}

// withClusters sets the cluster count and sizes the allocation tables for it.
func (l imageLayout) withClusters(clusters uint32) imageLayout {
	l.clusters = clusters
	entries := int64(clusters) + 2

	var size int64
	switch l.typ {
	case FAT12:
		size = (entries*3 + 1) / 2
	case FAT16:
		size = entries * 2
	default:
		size = entries * 4
	}
	l.fatSize = uint32((size + imageSectorSize - 1) / imageSectorSize)
	return l
}

// WriteImage writes a FAT volume holding all files and directories of src to w.
// Names which are no valid short names get a long name. w should be empty.
func WriteImage(w io.WriterAt, src afero.Fs, cfg ImageConfig) error {
	root, err := scanDir(src, "/")
	if err != nil {
		return err
	}

	layout, err := planImage(root, cfg)
	if err != nil {
		return err
	}

	img := &imageWriter{
		w:      w,
		src:    src,
		layout: layout,
		fat:    make([]uint32, layout.clusters+2),
		next:   2,
	}
	return img.write(root, cfg.Label)
}

// scanDir collects the entries of a directory of src, sorted by name.
func scanDir(src afero.Fs, dir string) ([]*imageNode, error) {
	infos, err := afero.ReadDir(src, dir)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	longs := make([]string, len(infos))
	for i, info := range infos {
		longs[i] = info.Name()
	}
	shorts := ShortNames(longs)

	nodes := make([]*imageNode, len(infos))
	for i, info := range infos {
		node := &imageNode{src: path.Join(dir, info.Name())}
		node.header.Name = shorts[i]

		if flags, ok := caseFlags(info.Name(), shorts[i]); ok {
			node.header.NTReserved = flags
		} else {
			node.long = info.Name()
		}

		date, clock := Stamp(info.ModTime())
		node.header.WriteDate, node.header.WriteTime = date, clock
		node.header.CreateDate, node.header.CreateTime = date, clock
		node.header.LastAccessDate = date

		if strings.HasPrefix(info.Name(), ".") {
			node.header.Attribute |= AttrHidden
		}

		if info.IsDir() {
			node.header.Attribute |= AttrDirectory
			if node.children, err = scanDir(src, node.src); err != nil {
				return nil, err
			}
		} else {
			node.header.Attribute |= AttrArchive
			if info.Mode().Perm()&0o222 == 0 {
				node.header.Attribute |= AttrReadOnly
			}
			if info.Size() > math.MaxUint32 {
				return nil, checkpoint.Errorf(ErrFileTooLarge, "%v has %v bytes", node.src, info.Size())
			}
			node.header.FileSize = uint32(info.Size())
		}

		nodes[i] = node
	}
	return nodes, nil
}

// dirSlots is the number of entries a directory needs.
func dirSlots(children []*imageNode) int {
	slots := 2 // "." and ".."
	for _, c := range children {
		slots += c.slots()
	}
	return slots
}

func clustersFor(size, clusterSize int64) uint32 {
	return uint32((size + clusterSize - 1) / clusterSize)
}

// clustersNeeded counts the data clusters of a tree.
func clustersNeeded(nodes []*imageNode, clusterSize int64) uint32 {
	var n uint32
	for _, node := range nodes {
		if node.isDir() {
			n += clustersFor(int64(dirSlots(node.children))*entrySize, clusterSize)
			n += clustersNeeded(node.children, clusterSize)
		} else {
			n += clustersFor(int64(node.header.FileSize), clusterSize)
		}
	}
	return n
}

// planImage picks the smallest cluster size which holds the files in a volume of the FAT type.
func planImage(root []*imageNode, cfg ImageConfig) (imageLayout, error) {
	rootSlots := 1 // label
	for _, c := range root {
		rootSlots += c.slots()
	}

	var minClusters, maxClusters uint32
	switch cfg.Type {
	case FAT12:
		minClusters, maxClusters = 1, maxClustersFAT12
	case FAT16:
		minClusters, maxClusters = maxClustersFAT12+1, maxClustersFAT16
	case FAT32:
		minClusters, maxClusters = maxClustersFAT16+1, maxClustersFAT32
	default:
		return imageLayout{}, checkpoint.Errorf(ErrImageTooLarge, "unknown type %v", cfg.Type)
	}

	for spc := uint32(1); spc <= 64; spc *= 2 {
		layout := imageLayout{typ: cfg.Type, sectorsPerCluster: spc, reserved: 1}
		clusterSize := layout.clusterSize()

		needed := clustersNeeded(root, clusterSize)
		if cfg.Type == FAT32 {
			layout.reserved = 32
			needed += clustersFor(int64(rootSlots)*entrySize, clusterSize)
		} else {
			// Full sectors of root entries, at least as many as formatters use.
			entries := uint32(224)
			if cfg.Type == FAT16 {
				entries = 512
			}
			perSector := uint32(imageSectorSize / entrySize)
			if uint32(rootSlots) > entries {
				entries = (uint32(rootSlots) + perSector - 1) / perSector * perSector
			}
			if entries > math.MaxUint16 {
				return imageLayout{}, checkpoint.Errorf(ErrImageTooLarge, "%v root entries", rootSlots)
			}
			layout.rootEntries = entries
		}

		if needed < minClusters {
			needed = minClusters
		}
		layout = layout.withClusters(needed)

		// Grow until the minimum size is reached. The allocation tables grow with it.
		for int64(layout.totalSectors())*imageSectorSize < cfg.MinSize {
			missing := cfg.MinSize/imageSectorSize - int64(layout.totalSectors()) + 1
			layout = layout.withClusters(layout.clusters + uint32((missing+int64(spc)-1)/int64(spc)))
		}

		if layout.clusters <= maxClusters {
			return layout, nil
		}
	}

	return imageLayout{}, checkpoint.From(ErrImageTooLarge)
}

// imageWriter allocates clusters sequentially and writes the tree.
type imageWriter struct {
	w      io.WriterAt
	src    afero.Fs
	layout imageLayout
	fat    []uint32
	next   uint32
}

func (img *imageWriter) endOfChain() uint32 {
	switch img.layout.typ {
	case FAT12:
		return 0xFFF
	case FAT16:
		return 0xFFFF
	default:
		return 0x0FFFFFFF
	}
}

// allocate reserves a chain of n clusters and returns its first one, 0 for n == 0.
func (img *imageWriter) allocate(n uint32) fatEntry {
	if n == 0 {
		return 0
	}

	first := img.next
	for i := uint32(0); i < n; i++ {
		img.fat[first+i] = first + i + 1
	}
	img.fat[first+n-1] = img.endOfChain()
	img.next += n
	return fatEntry(first)
}

func (img *imageWriter) clusterOffset(c fatEntry) int64 {
	sector := int64(img.layout.firstDataSector()) + int64(c-2)*int64(img.layout.sectorsPerCluster)
	return sector * imageSectorSize
}

func (img *imageWriter) writeAt(p []byte, offset int64) error {
	_, err := img.w.WriteAt(p, offset)
	return checkpoint.From(err)
}

func (img *imageWriter) write(root []*imageNode, label string) error {
	total := int64(img.layout.totalSectors()) * imageSectorSize
	// Size the image first, the gaps read as zero.
	if err := img.writeAt([]byte{0}, total-1); err != nil {
		return err
	}

	label = strings.ToUpper(label)
	if len(label) > 11 {
		label = label[:11]
	}

	rootCluster := fatEntry(0)
	if img.layout.typ == FAT32 {
		slots := 1
		for _, c := range root {
			slots += c.slots()
		}
		rootCluster = img.allocate(clustersFor(int64(slots)*entrySize, img.layout.clusterSize()))
	}

	entries, err := img.writeChildren(root, 0)
	if err != nil {
		return err
	}

	var dir bytes.Buffer
	if label != "" {
		var header EntryHeader
		copy(header.Name[:], label+strings.Repeat(" ", 11-len(label)))
		header.Attribute = AttrVolumeID
		if err := binary.Write(&dir, binary.LittleEndian, header); err != nil {
			return checkpoint.From(err)
		}
	}
	dir.Write(entries)

	if img.layout.typ == FAT32 {
		size := int64(len(img.chainOf(rootCluster))) * img.layout.clusterSize()
		if err := img.writeAt(padded(dir.Bytes(), size), img.clusterOffset(rootCluster)); err != nil {
			return err
		}
	} else {
		size := int64(img.layout.rootSectors()) * imageSectorSize
		if err := img.writeAt(padded(dir.Bytes(), size), int64(img.layout.firstRootSector())*imageSectorSize); err != nil {
			return err
		}
	}

	if err := img.writeTables(); err != nil {
		return err
	}
	return img.writeBootSector(label, rootCluster)
}

// chainOf follows a chain in the table being built.
func (img *imageWriter) chainOf(first fatEntry) []fatEntry {
	var chain []fatEntry
	for c := uint32(first); c >= 2 && c < uint32(len(img.fat)); c = img.fat[c] {
		chain = append(chain, fatEntry(c))
	}
	return chain
}

func padded(data []byte, size int64) []byte {
	if int64(len(data)) >= size {
		return data
	}
	return append(data, make([]byte, size-int64(len(data)))...)
}

// writeChildren writes the files and directories below a directory and returns their encoded
// entries. parent is the first cluster of the directory, 0 for the root.
func (img *imageWriter) writeChildren(children []*imageNode, parent fatEntry) ([]byte, error) {
	clusterSize := img.layout.clusterSize()

	// Allocate the subdirectories first, their entries need to know where they start.
	for _, c := range children {
		if c.isDir() {
			c.header.setFirstCluster(img.allocate(clustersFor(int64(dirSlots(c.children))*entrySize, clusterSize)))
		} else {
			c.header.setFirstCluster(img.allocate(clustersFor(int64(c.header.FileSize), clusterSize)))
			if err := img.writeFile(c); err != nil {
				return nil, err
			}
		}
	}

	var dir bytes.Buffer
	for _, c := range children {
		if c.long != "" {
			for _, slot := range longNameSlots(c.long, c.header.Name) {
				if err := binary.Write(&dir, binary.LittleEndian, slot); err != nil {
					return nil, checkpoint.From(err)
				}
			}
		}
		if err := binary.Write(&dir, binary.LittleEndian, c.header); err != nil {
			return nil, checkpoint.From(err)
		}
	}

	for _, c := range children {
		if !c.isDir() {
			continue
		}
		if err := img.writeDir(c, parent); err != nil {
			return nil, err
		}
	}
	return dir.Bytes(), nil
}

// writeDir writes the entries of a subdirectory into its clusters, starting with "." and "..".
func (img *imageWriter) writeDir(node *imageNode, parent fatEntry) error {
	self := node.header.FirstCluster()

	dot := node.header
	copy(dot.Name[:], ".          ")
	dot.NTReserved = 0
	dotdot := dot
	copy(dotdot.Name[:], "..         ")
	dotdot.setFirstCluster(parent)

	var dir bytes.Buffer
	for _, h := range []EntryHeader{dot, dotdot} {
		if err := binary.Write(&dir, binary.LittleEndian, h); err != nil {
			return checkpoint.From(err)
		}
	}

	entries, err := img.writeChildren(node.children, self)
	if err != nil {
		return err
	}
	dir.Write(entries)

	data := dir.Bytes()
	clusterSize := img.layout.clusterSize()
	for i, c := range img.chainOf(self) {
		start := int64(i) * clusterSize
		chunk := padded(nil, clusterSize)
		if start < int64(len(data)) {
			copy(chunk, data[start:])
		}
		if err := img.writeAt(chunk, img.clusterOffset(c)); err != nil {
			return err
		}
	}
	return nil
}

// writeFile copies a file cluster by cluster.
func (img *imageWriter) writeFile(node *imageNode) error {
	if node.header.FileSize == 0 {
		return nil
	}

	f, err := img.src.Open(node.src)
	if err != nil {
		return checkpoint.From(err)
	}
	defer f.Close()

	buf := make([]byte, img.layout.clusterSize())
	remaining := int64(node.header.FileSize)
	for _, c := range img.chainOf(node.header.FirstCluster()) {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}
		if _, err := io.ReadFull(f, buf[:n]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return checkpoint.Errorf(err, "%v changed while writing the image", node.src)
		}
		if err := img.writeAt(buf[:n], img.clusterOffset(c)); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}

// writeTables encodes the allocation table and writes both copies.
func (img *imageWriter) writeTables() error {
	img.fat[0] = img.endOfChain()&^0xFF | imageMedia
	img.fat[1] = img.endOfChain()

	table := make([]byte, int64(img.layout.fatSize)*imageSectorSize)
	for c, v := range img.fat {
		switch img.layout.typ {
		case FAT12:
			offset := c + c/2
			if c%2 == 0 {
				table[offset] = byte(v)
				table[offset+1] = table[offset+1]&0xF0 | byte(v>>8)&0x0F
			} else {
				table[offset] = table[offset]&0x0F | byte(v<<4)
				table[offset+1] = byte(v >> 4)
			}
		case FAT16:
			binary.LittleEndian.PutUint16(table[c*2:], uint16(v))
		default:
			binary.LittleEndian.PutUint32(table[c*4:], v)
		}
	}

	for i := uint32(0); i < 2; i++ {
		sector := img.layout.reserved + i*img.layout.fatSize
		if err := img.writeAt(table, int64(sector)*imageSectorSize); err != nil {
			return err
		}
	}
	return nil
}

func (img *imageWriter) writeBootSector(label string, rootCluster fatEntry) error {
	l := img.layout

	volumeLabel := [11]byte{}
	if label == "" {
		label = "NO NAME"
	}
	copy(volumeLabel[:], label+strings.Repeat(" ", 11-len(label)))
	volumeID := crc32.ChecksumIEEE(volumeLabel[:]) ^ l.totalSectors()

	bpb := BPB{
		BSJumpBoot:          [3]byte{0xEB, 0x3C, 0x90},
		BytesPerSector:      imageSectorSize,
		SectorsPerCluster:   byte(l.sectorsPerCluster),
		ReservedSectorCount: uint16(l.reserved),
		NumFATs:             2,
		RootEntryCount:      uint16(l.rootEntries),
		Media:               imageMedia,
		SectorsPerTrack:     63,
		NumberOfHeads:       255,
	}
	copy(bpb.BSOEMName[:], "VSPLAYER")

	if total := l.totalSectors(); total <= math.MaxUint16 && l.typ != FAT32 {
		bpb.TotalSectors16 = uint16(total)
	} else {
		bpb.TotalSectors32 = total
	}

	var specific bytes.Buffer
	if l.typ == FAT32 {
		bpb.BSJumpBoot[1] = 0x58
		data := FAT32SpecificData{
			FatSize:         l.fatSize,
			RootCluster:     rootCluster,
			FSInfo:          1,
			BkBootSector:    6,
			BSDriveNumber:   0x80,
			BSBootSignature: bootSignature,
			BSVolumeID:      volumeID,
			BSVolumeLabel:   volumeLabel,
		}
		copy(data.BSFileSystemType[:], "FAT32   ")
		if err := binary.Write(&specific, binary.LittleEndian, data); err != nil {
			return checkpoint.From(err)
		}
	} else {
		bpb.FATSize16 = uint16(l.fatSize)
		data := FAT16SpecificData{
			BSDriveNumber:   0x80,
			BSBootSignature: bootSignature,
			BSVolumeId:      volumeID,
			BSVolumeLabel:   volumeLabel,
		}
		copy(data.BSFileSystemType[:], l.typ.String()+"   ")
		if err := binary.Write(&specific, binary.LittleEndian, data); err != nil {
			return checkpoint.From(err)
		}
	}
	copy(bpb.FATSpecificData[:], specific.Bytes())

	var boot bytes.Buffer
	if err := binary.Write(&boot, binary.LittleEndian, bpb); err != nil {
		return checkpoint.From(err)
	}
	sector := padded(boot.Bytes(), imageSectorSize)
	sector[510], sector[511] = 0x55, 0xAA

	if err := img.writeAt(sector, 0); err != nil {
		return err
	}
	if l.typ != FAT32 {
		return nil
	}

	info := make([]byte, imageSectorSize)
	binary.LittleEndian.PutUint32(info[0:], 0x41615252)
	binary.LittleEndian.PutUint32(info[484:], 0x61417272)
	binary.LittleEndian.PutUint32(info[488:], l.clusters-(img.next-2))
	binary.LittleEndian.PutUint32(info[492:], img.next)
	binary.LittleEndian.PutUint32(info[508:], 0xAA550000)

	for _, s := range []int64{1, 7} {
		if err := img.writeAt(info, s*imageSectorSize); err != nil {
			return err
		}
	}
	return img.writeAt(sector, 6*imageSectorSize)
}

// CreateImage writes the image to a new file of fs.
func CreateImage(fs afero.Fs, name string, src afero.Fs, cfg ImageConfig) error {
	f, err := fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return checkpoint.From(err)
	}

	err = WriteImage(f, src, cfg)
	if cerr := f.Close(); err == nil {
		err = checkpoint.From(cerr)
	}
	return err
}
