package sfs

import "github.com/EduardoPagotto/SimpleFS/block"

// Compile-time layout constants, derived from the fixed block size.
const (
	BlockSize        = block.Size
	InodesPerBlock   = BlockSize / 32
	PointersPerBlock = BlockSize / 4
	PointersPerInode = 5
	DirPerBlock      = BlockSize / 32
	NameSize         = 28

	// AddressableCapacity is the maximum byte offset reachable through the
	// direct pointers plus a single indirect block.
	AddressableCapacity = (PointersPerInode + PointersPerBlock) * BlockSize
)

func ceilDiv(a, b uint) uint {
	return (a + b - 1) / b
}

// InodeBlocksFor returns the number of blocks reserved for inodes on an
// image of the given total block count.
func InodeBlocksFor(totalBlocks uint) uint {
	return ceilDiv(totalBlocks, 10)
}

// MapBlocksFor returns the number of blocks reserved for the free-map
// region on an image of the given total block count.
func MapBlocksFor(totalBlocks uint) uint {
	return ceilDiv(totalBlocks, 100)
}

// Layout holds the region boundaries derived from a superblock.
type Layout struct {
	InodeStart uint // first inode block (block 1)
	DataStart  uint // first data block
	MapStart   uint // first free-map block
	Blocks     uint // total blocks
}

// NewLayout derives region boundaries from the given superblock.
func NewLayout(sb Superblock) Layout {
	return Layout{
		InodeStart: 1,
		DataStart:  1 + sb.InodeBlocks,
		MapStart:   sb.Blocks - sb.MapBlocks,
		Blocks:     sb.Blocks,
	}
}
