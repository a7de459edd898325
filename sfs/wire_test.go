package sfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EduardoPagotto/SimpleFS/sfs"
)

func TestSuperblockMarshalRoundTrip(t *testing.T) {
	sb := sfs.NewSuperblock(100)
	raw, err := sb.Marshal()
	require.NoError(t, err)
	require.Len(t, raw, sfs.BlockSize)

	got, err := sfs.UnmarshalSuperblock(raw)
	require.NoError(t, err)
	assert.Equal(t, sb, got)
	assert.NoError(t, got.Validate())
}

func TestSuperblockValidateCatchesEveryMismatch(t *testing.T) {
	sb := sfs.NewSuperblock(100)
	sb.Magic = 0
	sb.InodeBlocks = 0
	sb.Inodes = 0
	sb.MapBlocks = 0

	err := sb.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic number mismatch")
	assert.Contains(t, err.Error(), "inode_blocks mismatch")
	assert.Contains(t, err.Error(), "inodes mismatch")
	assert.Contains(t, err.Error(), "map_blocks mismatch")
}

func TestInodeMarshalRoundTrip(t *testing.T) {
	want := sfs.Inode{Mode: sfs.DefaultFileMode, Bonds: 1, Size: 1234, Indirect: 42}
	want.Direct[0] = 7
	want.Direct[4] = 11

	raw, err := sfs.MarshalInode(want)
	require.NoError(t, err)

	got, err := sfs.UnmarshalInode(raw)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.Allocated())
	assert.False(t, got.IsDirectory())
}

func TestDirEntryNameRoundTrip(t *testing.T) {
	raw, err := sfs.MarshalDirEntry(sfs.DirEntry{Inum: 5, Name: [sfs.NameSize]byte{'r', 'e', 'a', 'd', 'm', 'e'}})
	require.NoError(t, err)

	got, err := sfs.UnmarshalDirEntry(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), got.Inum)
	assert.Equal(t, "readme", got.NameString())
}
