// Package block provides a fixed-size block-addressed view over a disk
// image stream.
package block

import (
	"fmt"
	"io"
	"os"
	"syscall"

	sfserr "github.com/EduardoPagotto/SimpleFS/errors"
)

// Size is the number of bytes in a single block. It is a compile-time
// constant for the whole filesystem.
const Size = 512

// Device is a typed view over an image stream providing fixed-size block
// read/write, a block count, and a mount counter. It tracks cumulative
// read/write counters for diagnostics, mirroring the reference Disk class
// this package is modeled on.
type Device struct {
	stream      io.ReadWriteSeeker
	closer      io.Closer
	totalBlocks uint
	mountCount  int
	reads       uint64
	writes      uint64
}

// NewDevice wraps an existing stream as a Device with the given declared
// block count. It does not validate that the stream is actually that long;
// out-of-range accesses fail at read/write time.
func NewDevice(stream io.ReadWriteSeeker, totalBlocks uint) *Device {
	return &Device{stream: stream, totalBlocks: totalBlocks}
}

// OpenDevice opens the image file at path, creating it if it does not
// already exist, and wraps it as a Device with the declared block count.
func OpenDevice(path string, totalBlocks uint) (*Device, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	dev := NewDevice(file, totalBlocks)
	dev.closer = file
	return dev, nil
}

// Close releases the underlying file, if this Device owns one.
func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Size returns the declared total number of blocks on this device.
func (d *Device) Size() uint {
	return d.totalBlocks
}

// Mounted reports whether the device currently has an active mount.
func (d *Device) Mounted() bool {
	return d.mountCount > 0
}

// Mount increments the mount counter.
func (d *Device) Mount() {
	d.mountCount++
}

// Unmount decrements the mount counter. It is a no-op when already at zero.
func (d *Device) Unmount() {
	if d.mountCount > 0 {
		d.mountCount--
	}
}

// Stats returns the cumulative number of successful block reads and writes
// performed by this device since it was created.
func (d *Device) Stats() (reads, writes uint64) {
	return d.reads, d.writes
}

func (d *Device) checkBounds(n int64, buf []byte) error {
	if n < 0 || uint(n) >= d.totalBlocks {
		return sfserr.NewDriverErrorWithMessage(
			syscall.EINVAL,
			fmt.Sprintf("block %d is not in range [0, %d)", n, d.totalBlocks),
		)
	}
	if buf == nil {
		return sfserr.NewDriverErrorWithMessage(syscall.EINVAL, "nil buffer")
	}
	if len(buf) != Size {
		return sfserr.NewDriverErrorWithMessage(
			syscall.EINVAL,
			fmt.Sprintf("buffer must be exactly %d bytes, got %d", Size, len(buf)),
		)
	}
	return nil
}

// Read fills buf (which must be exactly Size bytes) with the contents of
// block n.
func (d *Device) Read(n int64, buf []byte) error {
	if err := d.checkBounds(n, buf); err != nil {
		return err
	}
	if _, err := d.stream.Seek(n*Size, io.SeekStart); err != nil {
		return sfserr.NewDriverError(syscall.EIO).WrapError(err)
	}
	if _, err := io.ReadFull(d.stream, buf); err != nil {
		return sfserr.NewDriverError(syscall.EIO).WrapError(err)
	}
	d.reads++
	return nil
}

// Write stores buf (which must be exactly Size bytes) as the contents of
// block n.
func (d *Device) Write(n int64, buf []byte) error {
	if err := d.checkBounds(n, buf); err != nil {
		return err
	}
	if _, err := d.stream.Seek(n*Size, io.SeekStart); err != nil {
		return sfserr.NewDriverError(syscall.EIO).WrapError(err)
	}
	if _, err := d.stream.Write(buf); err != nil {
		return sfserr.NewDriverError(syscall.EIO).WrapError(err)
	}
	d.writes++
	return nil
}
