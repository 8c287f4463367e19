package fat

import (
	"encoding/binary"

	"github.com/aligator/vsplayer/checkpoint"
)

// isCluster reports whether c addresses a data cluster.
func (fs *Fs) isCluster(c fatEntry) bool {
	return c >= 2 && uint32(c) < fs.info.ClusterCount+2
}

// endOfChain reports whether a FAT entry value ends a cluster chain.
func (fs *Fs) endOfChain(v fatEntry) bool {
	switch fs.info.FSType {
	case FAT12:
		return v >= 0xFF8
	case FAT16:
		return v >= 0xFFF8
	default:
		return v >= 0x0FFFFFF8
	}
}

// next reads the FAT entry of cluster c from the first allocation table.
func (fs *Fs) next(c fatEntry) (fatEntry, error) {
	base := int64(fs.info.ReservedSectors) * int64(fs.info.SectorSize)

	switch fs.info.FSType {
	case FAT12:
		// 12 bit entries are packed, two of them share three bytes.
		var buf [2]byte
		if err := fs.readAt(buf[:], base+int64(c)+int64(c)/2); err != nil {
			return 0, err
		}
		v := binary.LittleEndian.Uint16(buf[:])
		if c%2 == 1 {
			return fatEntry(v >> 4), nil
		}
		return fatEntry(v & 0xFFF), nil
	case FAT16:
		var buf [2]byte
		if err := fs.readAt(buf[:], base+int64(c)*2); err != nil {
			return 0, err
		}
		return fatEntry(binary.LittleEndian.Uint16(buf[:])), nil
	default:
		var buf [4]byte
		if err := fs.readAt(buf[:], base+int64(c)*4); err != nil {
			return 0, err
		}
		return fatEntry(binary.LittleEndian.Uint32(buf[:]) & 0x0FFFFFFF), nil
	}
}

// chain returns all clusters of the chain starting at first.
// A chain which contains free or bad clusters or loops is broken.
func (fs *Fs) chain(first fatEntry) ([]fatEntry, error) {
	if clusters, ok := fs.chains[first]; ok {
		return clusters, nil
	}

	var clusters []fatEntry
	for c := first; ; {
		if !fs.isCluster(c) {
			return nil, checkpoint.Errorf(ErrClusterChain, "cluster %v in chain of %v", c, first)
		}
		if uint32(len(clusters)) >= fs.info.ClusterCount {
			return nil, checkpoint.Errorf(ErrClusterChain, "chain of %v loops", first)
		}
		clusters = append(clusters, c)

		v, err := fs.next(c)
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrClusterChain)
		}
		if fs.endOfChain(v) {
			break
		}
		c = v
	}

	fs.chains[first] = clusters
	return clusters, nil
}

// clusterOffset is the byte offset of the start of cluster c.
func (fs *Fs) clusterOffset(c fatEntry) int64 {
	sector := int64(fs.info.FirstDataSector) + int64(c-2)*int64(fs.info.SectorsPerCluster)
	return sector * int64(fs.info.SectorSize)
}

// readChain reads size bytes at offset of the data stored in the chain starting at first.
func (fs *Fs) readChain(first fatEntry, offset, size int64) ([]byte, error) {
	clusters, err := fs.chain(first)
	if err != nil {
		return nil, err
	}

	clusterSize := fs.info.clusterSize()
	if end := int64(len(clusters)) * clusterSize; offset+size > end {
		if offset > end {
			offset = end
		}
		size = end - offset
	}

	data := make([]byte, size)
	for read := int64(0); read < size; {
		index := (offset + read) / clusterSize
		within := (offset + read) % clusterSize

		n := clusterSize - within
		if n > size-read {
			n = size - read
		}
		if err := fs.readAt(data[read:read+n], fs.clusterOffset(clusters[index])+within); err != nil {
			return data[:read], err
		}
		read += n
	}
	return data, nil
}

// readFileAt reads up to readSize bytes of a file, never past its fileSize.
func (fs *Fs) readFileAt(cluster fatEntry, fileSize int64, offset int64, readSize int64) ([]byte, error) {
	if offset < 0 || readSize < 0 {
		return nil, checkpoint.From(errInvalidOffset)
	}
	if offset >= fileSize {
		return nil, nil
	}
	if offset+readSize > fileSize {
		readSize = fileSize - offset
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := fs.readChain(cluster, offset, readSize)
	if err != nil {
		return data, err
	}
	if int64(len(data)) < readSize {
		return data, checkpoint.Errorf(ErrClusterChain, "chain of %v ends before the file size %v", cluster, fileSize)
	}
	return data, nil
}
