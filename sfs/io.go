package sfs

import (
	sfserr "github.com/EduardoPagotto/SimpleFS/errors"
)

// Read copies up to length bytes of inode inumber's contents, starting at
// offset, into buf. It walks the direct pointers and, if necessary, the
// single indirect block. It returns the number of bytes actually copied:
// 0 when offset is past the end of the file or the first addressed block
// is unallocated, and -1 when the engine is not mounted or the inode is
// absent.
func (fs *FileSystem) Read(inumber uint, buf []byte, length, offset uint) (int64, error) {
	if !fs.mounted {
		return -1, nil
	}

	node, ok, err := fs.loadInode(inumber)
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, nil
	}

	size := uint(node.Size)
	if offset >= size {
		return 0, nil
	}
	if offset+length > size {
		length = size - offset
	}
	if length == 0 {
		return 0, nil
	}
	if uint(len(buf)) < length {
		return -1, sfserr.NewDriverErrorWithMessage(
			sfserr.ErrInvalidArgument.ErrnoCode, "buffer too small for requested read length")
	}

	var copied uint
	readFrom := func(blockNum uint32, intraOffset uint) error {
		blkBuf := make([]byte, BlockSize)
		if err := fs.dev.Read(int64(blockNum), blkBuf); err != nil {
			return err
		}
		n := BlockSize - intraOffset
		if remaining := length - copied; n > remaining {
			n = remaining
		}
		copy(buf[copied:copied+n], blkBuf[intraOffset:intraOffset+n])
		copied += n
		return nil
	}

	if offset < PointersPerInode*BlockSize {
		directIdx := offset / BlockSize
		intra := offset % BlockSize

		if node.Direct[directIdx] == 0 {
			return 0, nil
		}
		if err := readFrom(node.Direct[directIdx], intra); err != nil {
			return -1, err
		}
		directIdx++

		for copied < length && directIdx < PointersPerInode && node.Direct[directIdx] != 0 {
			if err := readFrom(node.Direct[directIdx], 0); err != nil {
				return -1, err
			}
			directIdx++
		}

		if copied >= length || directIdx != PointersPerInode || node.Indirect == 0 {
			return int64(copied), nil
		}

		ptrs, err := fs.readPointerBlock(node.Indirect)
		if err != nil {
			return -1, err
		}
		for _, p := range ptrs {
			if copied >= length || p == 0 {
				break
			}
			if err := readFrom(p, 0); err != nil {
				return -1, err
			}
		}
		return int64(copied), nil
	}

	if node.Indirect == 0 {
		return 0, nil
	}

	indirectOffset := offset - PointersPerInode*BlockSize
	indirectIdx := indirectOffset / BlockSize
	intra := indirectOffset % BlockSize

	ptrs, err := fs.readPointerBlock(node.Indirect)
	if err != nil {
		return -1, err
	}
	if ptrs[indirectIdx] == 0 {
		return 0, nil
	}
	if err := readFrom(ptrs[indirectIdx], intra); err != nil {
		return -1, err
	}
	indirectIdx++

	for copied < length && indirectIdx < PointersPerBlock && ptrs[indirectIdx] != 0 {
		if err := readFrom(ptrs[indirectIdx], 0); err != nil {
			return -1, err
		}
		indirectIdx++
	}
	return int64(copied), nil
}

func (fs *FileSystem) readPointerBlock(blockNum uint32) ([PointersPerBlock]uint32, error) {
	pbuf := make([]byte, BlockSize)
	if err := fs.dev.Read(int64(blockNum), pbuf); err != nil {
		var zero [PointersPerBlock]uint32
		return zero, err
	}
	return unmarshalPointerBlock(pbuf)
}

// Write copies length bytes from data, starting at offset, into inode
// inumber, walking direct pointers and a single indirect block, allocating
// new blocks on demand. A freshly allocated indirect block is zeroed in
// memory before use. Each block touched by the write is written in full,
// starting from its intra-block offset; bytes before that offset and after
// the end of the copied range are left zero rather than preserved, so this
// is not a read-modify-write.
//
// If allocation fails partway through, Write returns the number of bytes
// successfully written so far rather than failing the whole call; size and
// any touched indirect block are still persisted for that partial result.
func (fs *FileSystem) Write(inumber uint, data []byte, length, offset uint) (int64, error) {
	if !fs.mounted {
		return -1, nil
	}
	if offset+length > AddressableCapacity {
		return -1, nil
	}
	if uint(len(data)) < length {
		return -1, sfserr.NewDriverErrorWithMessage(
			sfserr.ErrInvalidArgument.ErrnoCode, "buffer too small for requested write length")
	}
	if inumber >= uint(fs.sb.Inodes) {
		return -1, nil
	}

	node, existed, err := fs.loadInode(inumber)
	if err != nil {
		return -1, err
	}

	blockIdx, _ := inodeBlockOffsets(inumber)
	if !existed {
		node = Inode{Mode: DefaultFileMode, Bonds: 1, Size: uint32(offset + length)}
		fs.bm.incInodeCounter(blockIdx)
		fs.bm.setUsed(fs.layout.InodeStart+blockIdx, true)
	} else if newSize := offset + length; newSize > uint(node.Size) {
		node.Size = uint32(newSize)
	}

	origOffset := offset
	var written uint
	var indirectDirty bool
	var ptrs [PointersPerBlock]uint32

	finish := func() (int64, error) {
		if indirectDirty {
			ptrBuf, err := marshalPointerBlock(ptrs)
			if err != nil {
				return -1, err
			}
			if err := fs.dev.Write(int64(node.Indirect), ptrBuf); err != nil {
				return -1, err
			}
		}
		if written < length {
			node.Size = uint32(origOffset + written)
		}
		if err := fs.storeInode(inumber, node); err != nil {
			return -1, err
		}
		return int64(written), nil
	}

	writeBlock := func(blockNum uint32, intraOffset uint) error {
		blkBuf := make([]byte, BlockSize)
		n := BlockSize - intraOffset
		if remaining := length - written; n > remaining {
			n = remaining
		}
		copy(blkBuf[intraOffset:intraOffset+n], data[written:written+n])
		written += n
		return fs.dev.Write(int64(blockNum), blkBuf)
	}

	allocate := func(ptr *uint32) bool {
		if *ptr != 0 {
			return true
		}
		b := allocateBlock(fs.layout, fs.bm)
		if b == 0 {
			return false
		}
		*ptr = uint32(b)
		return true
	}

	if offset < PointersPerInode*BlockSize {
		directIdx := offset / BlockSize
		intra := offset % BlockSize

		if !allocate(&node.Direct[directIdx]) {
			return finish()
		}
		if err := writeBlock(node.Direct[directIdx], intra); err != nil {
			return -1, err
		}
		directIdx++

		for written < length && directIdx < PointersPerInode {
			if !allocate(&node.Direct[directIdx]) {
				return finish()
			}
			if err := writeBlock(node.Direct[directIdx], 0); err != nil {
				return -1, err
			}
			directIdx++
		}

		if written >= length {
			return finish()
		}

		if node.Indirect != 0 {
			ptrs, err = fs.readPointerBlock(node.Indirect)
			if err != nil {
				return -1, err
			}
		} else if !allocate(&node.Indirect) {
			return finish()
		}
		indirectDirty = true

		for i := 0; i < PointersPerBlock && written < length; i++ {
			if !allocate(&ptrs[i]) {
				return finish()
			}
			if err := writeBlock(ptrs[i], 0); err != nil {
				return -1, err
			}
		}
		return finish()
	}

	indirectOffset := offset - PointersPerInode*BlockSize
	indirectIdx := indirectOffset / BlockSize
	intra := indirectOffset % BlockSize

	if node.Indirect != 0 {
		ptrs, err = fs.readPointerBlock(node.Indirect)
		if err != nil {
			return -1, err
		}
	} else if !allocate(&node.Indirect) {
		return finish()
	}
	indirectDirty = true

	if !allocate(&ptrs[indirectIdx]) {
		return finish()
	}
	if err := writeBlock(ptrs[indirectIdx], intra); err != nil {
		return -1, err
	}
	indirectIdx++

	for indirectIdx < PointersPerBlock && written < length {
		if !allocate(&ptrs[indirectIdx]) {
			return finish()
		}
		if err := writeBlock(ptrs[indirectIdx], 0); err != nil {
			return -1, err
		}
		indirectIdx++
	}
	return finish()
}
