// Package sfs implements the Simple on-disk Filesystem's storage engine: a
// superblock, a contiguous inode region, a data region with a free-block
// bitmap, and a single flat root directory, all addressed through a
// [block.Device].
package sfs

import (
	"github.com/EduardoPagotto/SimpleFS/block"
)

// FileSystem is the mounted storage engine. It owns the underlying
// [block.Device] exclusively from Mount until Unmount; it is not safe for
// concurrent use.
type FileSystem struct {
	dev          *block.Device
	sb           Superblock
	layout       Layout
	bm           *bitmapState
	mounted      bool
	rootDirBlock uint
	dirEntries   [DirPerBlock]DirEntry
}

// NewFileSystem returns an unmounted engine, ready for Mount.
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// Format initializes a fresh image on dev: a superblock, a zeroed inode
// region, zeroed data and free-map regions, and a root directory (inode 0)
// containing "." and ".." entries. The device must not already be mounted.
func Format(dev *block.Device) (bool, error) {
	if dev.Mounted() {
		return false, nil
	}

	totalBlocks := dev.Size()
	sb := NewSuperblock(totalBlocks)

	raw, err := sb.Marshal()
	if err != nil {
		return false, err
	}
	if err := dev.Write(0, raw); err != nil {
		return false, err
	}

	zeroBlock := make([]byte, BlockSize)
	inodeBlocks := uint(sb.InodeBlocks)
	dataStart := 1 + inodeBlocks
	mapStart := totalBlocks - uint(sb.MapBlocks)

	for i := uint(1); i < dataStart; i++ {
		if err := dev.Write(int64(i), zeroBlock); err != nil {
			return false, err
		}
	}
	for i := dataStart; i < mapStart; i++ {
		if err := dev.Write(int64(i), zeroBlock); err != nil {
			return false, err
		}
	}
	for i := mapStart; i < totalBlocks; i++ {
		if err := dev.Write(int64(i), zeroBlock); err != nil {
			return false, err
		}
	}

	var dirEntries [DirPerBlock]DirEntry
	dirEntries[0] = DirEntry{Inum: 0, Name: nameToBytes(".")}
	dirEntries[1] = DirEntry{Inum: 0, Name: nameToBytes("..")}
	dirBuf, err := marshalDirBlock(dirEntries)
	if err != nil {
		return false, err
	}
	if err := dev.Write(int64(dataStart), dirBuf); err != nil {
		return false, err
	}

	rootInode := Inode{Mode: DefaultDirMode, Bonds: 1, Size: 0}
	rootInode.Direct[0] = uint32(dataStart)
	inodeRaw, err := MarshalInode(rootInode)
	if err != nil {
		return false, err
	}
	inodeBlockBuf := make([]byte, BlockSize)
	copy(inodeBlockBuf[:inodeSize], inodeRaw)
	if err := dev.Write(1, inodeBlockBuf); err != nil {
		return false, err
	}

	return true, nil
}

// Mount validates the superblock on dev, optionally checks a password
// against the stored hash, and reconstructs the in-memory free-block
// bitmap and per-inode-block counters by scanning every inode. None of
// this state is persisted between mounts, so it has to be rebuilt from the
// inode table every time. The device must not already be mounted.
func (fs *FileSystem) Mount(dev *block.Device, provider PasswordProvider, hasher Hasher) (bool, error) {
	if dev.Mounted() {
		return false, nil
	}

	buf := make([]byte, BlockSize)
	if err := dev.Read(0, buf); err != nil {
		return false, err
	}
	sb, err := UnmarshalSuperblock(buf)
	if err != nil {
		return false, err
	}
	if err := sb.Validate(); err != nil {
		return false, nil
	}

	if sb.Protected != 0 {
		if provider == nil {
			return false, nil
		}
		password, err := provider()
		if err != nil {
			return false, err
		}
		if hasher == nil {
			hasher = DefaultHasher{}
		}
		digest, err := hasher.Hash(password)
		if err != nil {
			return false, err
		}
		if !comparePasswordHash(digest, sb.PasswordHash) {
			return false, nil
		}
	}

	layout := NewLayout(sb)
	bm := newBitmapState(uint(sb.Blocks), uint(sb.InodeBlocks))
	bm.setUsed(0, true)

	for i := uint(0); i < uint(sb.InodeBlocks); i++ {
		blockNum := layout.InodeStart + i
		ibuf := make([]byte, BlockSize)
		if err := dev.Read(int64(blockNum), ibuf); err != nil {
			return false, err
		}

		blockHasValidInode := false
		for slot := uint(0); slot < InodesPerBlock; slot++ {
			node, err := UnmarshalInode(ibuf[slot*inodeSize : (slot+1)*inodeSize])
			if err != nil {
				return false, err
			}
			if !node.Allocated() {
				continue
			}
			bm.incInodeCounter(i)
			blockHasValidInode = true

			for _, d := range node.Direct {
				if d == 0 {
					continue
				}
				if uint(d) >= uint(sb.Blocks) {
					return false, nil
				}
				bm.setUsed(uint(d), true)
			}

			if node.Indirect != 0 {
				if uint(node.Indirect) >= uint(sb.Blocks) {
					return false, nil
				}
				bm.setUsed(uint(node.Indirect), true)

				pbuf := make([]byte, BlockSize)
				if err := dev.Read(int64(node.Indirect), pbuf); err != nil {
					return false, err
				}
				ptrs, err := unmarshalPointerBlock(pbuf)
				if err != nil {
					return false, err
				}
				for _, p := range ptrs {
					if p == 0 {
						continue
					}
					if uint(p) >= uint(sb.Blocks) {
						return false, nil
					}
					bm.setUsed(uint(p), true)
				}
			}
		}

		if blockHasValidInode {
			bm.setUsed(blockNum, true)
		}
	}

	rootBuf := make([]byte, BlockSize)
	if err := dev.Read(int64(layout.InodeStart), rootBuf); err != nil {
		return false, err
	}
	rootNode, err := UnmarshalInode(rootBuf[:inodeSize])
	if err != nil {
		return false, err
	}
	if !rootNode.Allocated() || !rootNode.IsDirectory() {
		return false, nil
	}

	rootDirBlock := uint(rootNode.Direct[0])
	dirBuf := make([]byte, BlockSize)
	if err := dev.Read(int64(rootDirBlock), dirBuf); err != nil {
		return false, err
	}
	entries, err := unmarshalDirBlock(dirBuf)
	if err != nil {
		return false, err
	}

	dev.Mount()
	fs.dev = dev
	fs.sb = sb
	fs.layout = layout
	fs.bm = bm
	fs.rootDirBlock = rootDirBlock
	fs.dirEntries = entries
	fs.mounted = true

	return true, nil
}

// Unmount releases the engine's ownership of its device. There is nothing
// to flush: every write already lands on dev immediately.
func (fs *FileSystem) Unmount() error {
	if !fs.mounted {
		return nil
	}
	fs.dev.Unmount()
	fs.mounted = false
	fs.dev = nil
	return nil
}

// Mounted reports whether this engine currently owns a mounted device.
func (fs *FileSystem) Mounted() bool {
	return fs.mounted
}

func (fs *FileSystem) loadInode(inumber uint) (Inode, bool, error) {
	if inumber >= uint(fs.sb.Inodes) {
		return Inode{}, false, nil
	}
	blockIdx, slot := inodeBlockOffsets(inumber)
	if fs.bm.inodeCounter[blockIdx] == 0 {
		return Inode{}, false, nil
	}
	buf := make([]byte, BlockSize)
	if err := fs.dev.Read(int64(fs.layout.InodeStart+blockIdx), buf); err != nil {
		return Inode{}, false, err
	}
	node, err := UnmarshalInode(buf[slot*inodeSize : (slot+1)*inodeSize])
	if err != nil {
		return Inode{}, false, err
	}
	if !node.Allocated() {
		return Inode{}, false, nil
	}
	return node, true, nil
}

func (fs *FileSystem) storeInode(inumber uint, node Inode) error {
	blockIdx, slot := inodeBlockOffsets(inumber)
	blockNum := fs.layout.InodeStart + blockIdx
	buf := make([]byte, BlockSize)
	if err := fs.dev.Read(int64(blockNum), buf); err != nil {
		return err
	}
	raw, err := MarshalInode(node)
	if err != nil {
		return err
	}
	copy(buf[slot*inodeSize:(slot+1)*inodeSize], raw)
	return fs.dev.Write(int64(blockNum), buf)
}

// Create allocates the first free inode slot, scanning inode blocks in
// order and skipping any whose population counter already reads
// InodesPerBlock. It returns the new inumber, or -1 if every inode block
// is full.
func (fs *FileSystem) Create() (int64, error) {
	if !fs.mounted {
		return -1, nil
	}

	for blockIdx := uint(0); blockIdx < uint(fs.sb.InodeBlocks); blockIdx++ {
		if fs.bm.inodeCounter[blockIdx] == InodesPerBlock {
			continue
		}

		blockNum := fs.layout.InodeStart + blockIdx
		buf := make([]byte, BlockSize)
		if err := fs.dev.Read(int64(blockNum), buf); err != nil {
			return -1, err
		}

		for slot := uint(0); slot < InodesPerBlock; slot++ {
			raw := buf[slot*inodeSize : (slot+1)*inodeSize]
			node, err := UnmarshalInode(raw)
			if err != nil {
				return -1, err
			}
			if node.Allocated() {
				continue
			}

			fresh := Inode{Mode: DefaultFileMode, Bonds: 1}
			freshRaw, err := MarshalInode(fresh)
			if err != nil {
				return -1, err
			}
			copy(raw, freshRaw)

			fs.bm.setUsed(blockNum, true)
			fs.bm.incInodeCounter(blockIdx)

			if err := fs.dev.Write(int64(blockNum), buf); err != nil {
				return -1, err
			}
			return int64(blockIdx*InodesPerBlock + slot), nil
		}
	}

	return -1, nil
}

// Remove decrements the inode's reference counter. Its data and indirect
// blocks are only freed once the counter actually reaches zero, so a
// second outstanding reference keeps the file's contents intact.
func (fs *FileSystem) Remove(inumber uint) (bool, error) {
	if !fs.mounted {
		return false, nil
	}

	node, ok, err := fs.loadInode(inumber)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	blockIdx, _ := inodeBlockOffsets(inumber)
	node.Bonds--

	if node.Bonds == 0 {
		node.Size = 0

		if fs.bm.decInodeCounter(blockIdx) == 0 {
			fs.bm.setUsed(fs.layout.InodeStart+blockIdx, false)
		}

		for i := range node.Direct {
			if node.Direct[i] != 0 {
				fs.bm.setUsed(uint(node.Direct[i]), false)
				node.Direct[i] = 0
			}
		}

		if node.Indirect != 0 {
			ptrBuf := make([]byte, BlockSize)
			if err := fs.dev.Read(int64(node.Indirect), ptrBuf); err != nil {
				return false, err
			}
			ptrs, err := unmarshalPointerBlock(ptrBuf)
			if err != nil {
				return false, err
			}

			fs.bm.setUsed(uint(node.Indirect), false)
			node.Indirect = 0

			for _, p := range ptrs {
				if p != 0 {
					fs.bm.setUsed(uint(p), false)
				}
			}
		}
	}

	if err := fs.storeInode(inumber, node); err != nil {
		return false, err
	}
	return true, nil
}

// Stat returns the size, in bytes, of the given inode, or -1 if it is
// absent or the engine is not mounted.
func (fs *FileSystem) Stat(inumber uint) (int64, error) {
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
	return int64(node.Size), nil
}

// Touch creates a new inode and binds name to it in the root directory. If
// the name already exists, the freshly created inode is removed and Touch
// fails.
func (fs *FileSystem) Touch(name string) (bool, error) {
	if !fs.mounted {
		return false, nil
	}

	inumber, err := fs.Create()
	if err != nil {
		return false, err
	}
	if inumber < 0 {
		return false, nil
	}

	if !addEntry(&fs.dirEntries, uint32(inumber), name) {
		if _, rmErr := fs.Remove(uint(inumber)); rmErr != nil {
			return false, rmErr
		}
		return false, nil
	}

	buf, err := marshalDirBlock(fs.dirEntries)
	if err != nil {
		return false, err
	}
	if err := fs.dev.Write(int64(fs.rootDirBlock), buf); err != nil {
		return false, err
	}
	return true, nil
}
