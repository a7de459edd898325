package sfs

// allocateBlock performs a first-fit scan of the data region
// [layout.DataStart, layout.MapStart) for the first block not marked used
// in bm, marks it used, and returns its index. Block 0 is always the
// superblock, so it's never a valid data block; allocateBlock returns it
// as the "no block available" sentinel once the data region is exhausted.
func allocateBlock(layout Layout, bm *bitmapState) uint {
	for i := layout.DataStart; i < layout.MapStart; i++ {
		if !bm.isUsed(i) {
			bm.setUsed(i, true)
			return i
		}
	}
	return 0
}
