// Package sfstest provides in-memory disk images for exercising the sfs
// engine without touching the filesystem.
package sfstest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/EduardoPagotto/SimpleFS/block"
	"github.com/EduardoPagotto/SimpleFS/sfs"
)

// NewMemoryDevice returns a [block.Device] backed by a fresh zeroed
// in-memory buffer of totalBlocks blocks. Writes never touch the
// filesystem; the buffer is discarded with the test.
func NewMemoryDevice(t *testing.T, totalBlocks uint) *block.Device {
	t.Helper()

	require.Greater(t, totalBlocks, uint(0), "totalBlocks must be positive")
	buf := make([]byte, totalBlocks*block.Size)
	stream := bytesextra.NewReadWriteSeeker(buf)
	return block.NewDevice(stream, totalBlocks)
}

// FormatAndMount formats a fresh memory device of totalBlocks blocks and
// mounts it unprotected, returning the ready-to-use engine and its
// underlying device.
func FormatAndMount(t *testing.T, totalBlocks uint) (*sfs.FileSystem, *block.Device) {
	t.Helper()

	dev := NewMemoryDevice(t, totalBlocks)
	ok, err := sfs.Format(dev)
	require.NoError(t, err)
	require.True(t, ok, "Format should succeed on a fresh device")

	fs := sfs.NewFileSystem()
	ok, err = fs.Mount(dev, nil, nil)
	require.NoError(t, err)
	require.True(t, ok, "Mount should succeed on a freshly formatted device")

	return fs, dev
}
