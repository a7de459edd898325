package block_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/EduardoPagotto/SimpleFS/block"
)

func newTestDevice(t *testing.T, totalBlocks uint) *block.Device {
	t.Helper()
	buf := make([]byte, totalBlocks*block.Size)
	return block.NewDevice(bytesextra.NewReadWriteSeeker(buf), totalBlocks)
}

func TestDeviceReadWriteRoundTrip(t *testing.T) {
	dev := newTestDevice(t, 4)

	want := bytes.Repeat([]byte{0xAB}, block.Size)
	require.NoError(t, dev.Write(2, want))

	got := make([]byte, block.Size)
	require.NoError(t, dev.Read(2, got))
	assert.Equal(t, want, got)

	reads, writes := dev.Stats()
	assert.Equal(t, uint64(1), reads)
	assert.Equal(t, uint64(1), writes)
}

func TestDeviceRejectsOutOfRangeBlock(t *testing.T) {
	dev := newTestDevice(t, 4)
	buf := make([]byte, block.Size)

	assert.Error(t, dev.Read(4, buf))
	assert.Error(t, dev.Write(-1, buf))
}

func TestDeviceRejectsWrongSizedBuffer(t *testing.T) {
	dev := newTestDevice(t, 4)
	assert.Error(t, dev.Write(0, make([]byte, block.Size-1)))
	assert.Error(t, dev.Read(0, nil))
}

func TestDeviceMountCounter(t *testing.T) {
	dev := newTestDevice(t, 1)
	assert.False(t, dev.Mounted())

	dev.Mount()
	assert.True(t, dev.Mounted())

	dev.Unmount()
	assert.False(t, dev.Mounted())

	// Unmount on an already-unmounted device is a no-op, not an underflow.
	dev.Unmount()
	assert.False(t, dev.Mounted())
}
