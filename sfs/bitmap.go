package sfs

import (
	bitmap "github.com/boljen/go-bitmap"
)

// bitmapState holds the in-memory free-block bitmap and the per-inode-block
// population counters. Neither is stored on disk; both are rebuilt from
// scratch at every mount by scanning the inode table, then kept in sync by
// every operation that allocates or frees a block or inode slot.
type bitmapState struct {
	used         bitmap.Bitmap
	inodeCounter []uint
}

func newBitmapState(totalBlocks, inodeBlocks uint) *bitmapState {
	return &bitmapState{
		used:         bitmap.New(int(totalBlocks)),
		inodeCounter: make([]uint, inodeBlocks),
	}
}

func (b *bitmapState) isUsed(block uint) bool {
	return b.used.Get(int(block))
}

func (b *bitmapState) setUsed(block uint, used bool) {
	b.used.Set(int(block), used)
}

// incInodeCounter increments the population count of inode block i.
func (b *bitmapState) incInodeCounter(i uint) {
	b.inodeCounter[i]++
}

// decInodeCounter decrements the population count of inode block i and
// returns the new value.
func (b *bitmapState) decInodeCounter(i uint) uint {
	b.inodeCounter[i]--
	return b.inodeCounter[i]
}
