package sfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EduardoPagotto/SimpleFS/sfs"
	"github.com/EduardoPagotto/SimpleFS/sfstest"
)

const testImageBlocks = 100

func pattern(n uint, seed byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i) + seed
	}
	return buf
}

func TestFormatAndMountRoundTrip(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)
	assert.True(t, fs.Mounted())

	size, err := fs.Stat(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size, "freshly formatted root directory has size 0")
}

func TestCreateStatRemove(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)

	inumber, err := fs.Create()
	require.NoError(t, err)
	require.GreaterOrEqual(t, inumber, int64(0))

	size, err := fs.Stat(uint(inumber))
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	ok, err := fs.Remove(uint(inumber))
	require.NoError(t, err)
	assert.True(t, ok)

	size, err = fs.Stat(uint(inumber))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), size, "removed inode is no longer allocated")
}

func TestTouchDuplicateNameRejected(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)

	// Probe the next inumber Create would hand out, then give it back so
	// the population count is exactly as it was before this probe.
	probe, err := fs.Create()
	require.NoError(t, err)
	ok, err := fs.Remove(uint(probe))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = fs.Touch("a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fs.Touch("a")
	require.NoError(t, err)
	assert.False(t, ok, "duplicate name in the root directory must be rejected")

	// The duplicate attempt's inode must have been rolled back: the next
	// slot Create hands out is the very one the rejected Touch grabbed and
	// released, not one past it.
	next, err := fs.Create()
	require.NoError(t, err)
	assert.Equal(t, probe+1, next, "rejected Touch must release its inode slot back for reuse")

	ok, err = fs.Touch("b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteReadSmall(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)

	inumber, err := fs.Create()
	require.NoError(t, err)

	want := pattern(100, 1)
	n, err := fs.Write(uint(inumber), want, uint(len(want)), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), n)

	size, err := fs.Stat(uint(inumber))
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), size)

	got := make([]byte, len(want))
	n, err = fs.Read(uint(inumber), got, uint(len(got)), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(len(want)), n)
	assert.Equal(t, want, got)
}

func TestWriteReadCrossesBlockBoundary(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)

	inumber, err := fs.Create()
	require.NoError(t, err)

	want := pattern(700, 2)
	n, err := fs.Write(uint(inumber), want, uint(len(want)), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(700), n)

	got := make([]byte, 700)
	n, err = fs.Read(uint(inumber), got, 700, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(700), n)
	assert.Equal(t, want, got)
}

func TestWriteReadSpillsIntoIndirectBlock(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)

	inumber, err := fs.Create()
	require.NoError(t, err)

	// Five direct blocks (2560 bytes) plus 440 bytes landing in the first
	// pointer of the indirect block.
	want := pattern(3000, 3)
	n, err := fs.Write(uint(inumber), want, uint(len(want)), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), n)

	size, err := fs.Stat(uint(inumber))
	require.NoError(t, err)
	assert.Equal(t, int64(3000), size)

	got := make([]byte, 3000)
	n, err = fs.Read(uint(inumber), got, 3000, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), n)
	assert.Equal(t, want, got)

	// A read starting inside the indirect region alone.
	tail := make([]byte, 200)
	n, err = fs.Read(uint(inumber), tail, 200, 2800)
	require.NoError(t, err)
	assert.Equal(t, int64(200), n)
	assert.Equal(t, want[2800:3000], tail)
}

func TestWriteRejectsOffsetBeyondAddressableCapacity(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)

	inumber, err := fs.Create()
	require.NoError(t, err)

	n, err := fs.Write(uint(inumber), []byte{1}, 1, sfs.AddressableCapacity)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)
}

func TestRemoveReclaimsBlocksForReuse(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)

	first, err := fs.Create()
	require.NoError(t, err)

	// 49 blocks of data take 5 direct, 1 indirect and 44 pointed-to blocks:
	// 50 of the 87 free data blocks on a 100-block image, so the second
	// write only fits if Remove gave the first write's 50 blocks back.
	data := pattern(49*sfs.BlockSize, 4)
	n, err := fs.Write(uint(first), data, uint(len(data)), 0)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), n)

	ok, err := fs.Remove(uint(first))
	require.NoError(t, err)
	require.True(t, ok)

	second, err := fs.Create()
	require.NoError(t, err)
	require.GreaterOrEqual(t, second, int64(0))

	n, err = fs.Write(uint(second), data, uint(len(data)), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n, "blocks freed by Remove must be available again")
}

func TestReadPastEndOfFileReturnsZero(t *testing.T) {
	fs, _ := sfstest.FormatAndMount(t, testImageBlocks)

	inumber, err := fs.Create()
	require.NoError(t, err)

	want := pattern(50, 5)
	_, err = fs.Write(uint(inumber), want, uint(len(want)), 0)
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := fs.Read(uint(inumber), buf, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestOperationsFailWhenUnmounted(t *testing.T) {
	fs := sfs.NewFileSystem()

	created, err := fs.Create()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), created)

	size, err := fs.Stat(0)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), size)

	n, err := fs.Write(0, []byte{1}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)
}
