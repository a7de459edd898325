package sfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	sfserr "github.com/EduardoPagotto/SimpleFS/errors"
	"github.com/noxer/bytewriter"
)

// Mode type-nibble values. Only inode 0 (the root directory) ever carries
// ModeTypeDirectory; every inode created by Create is ModeTypeRegular. A
// directory check against the type nibble can therefore never mistake an
// ordinary file for the root.
const (
	ModeTypeMask      uint16 = 0xF000
	ModeTypeDirectory uint16 = 0x0000
	ModeTypeRegular   uint16 = 0x1000

	// DefaultFileMode is the mode a freshly created inode is given: a
	// regular file with rw-r--r-- permission bits. The bits are stored but
	// never checked against any caller identity.
	DefaultFileMode uint16 = ModeTypeRegular | 0o644
	// DefaultDirMode is the mode the root directory inode is given at
	// format time.
	DefaultDirMode uint16 = ModeTypeDirectory | 0o755
)

// inodeSize is the fixed on-disk width of one inode record.
const inodeSize = 32

// Inode is the in-memory form of one inode record.
type Inode struct {
	Mode     uint16
	Bonds    uint16
	Size     uint32
	Direct   [PointersPerInode]uint32
	Indirect uint32
}

// Allocated reports whether this inode slot is in use.
func (n Inode) Allocated() bool {
	return n.Bonds > 0
}

// IsDirectory reports whether this inode's type nibble marks it as a
// directory.
func (n Inode) IsDirectory() bool {
	return n.Mode&ModeTypeMask == ModeTypeDirectory
}

// MarshalInode encodes an inode into its fixed 32-byte wire form.
func MarshalInode(n Inode) ([]byte, error) {
	buf := make([]byte, inodeSize)
	writer := bytewriter.New(buf)
	if err := binary.Write(writer, binary.LittleEndian, &n); err != nil {
		return nil, sfserr.NewDriverError(sfserr.ErrIOFailure.ErrnoCode).WrapError(err)
	}
	return buf, nil
}

// UnmarshalInode decodes a 32-byte buffer into an Inode.
func UnmarshalInode(buf []byte) (Inode, error) {
	if len(buf) != inodeSize {
		return Inode{}, sfserr.NewDriverErrorWithMessage(
			sfserr.ErrInvalidArgument.ErrnoCode,
			fmt.Sprintf("inode buffer must be %d bytes, got %d", inodeSize, len(buf)),
		)
	}
	var n Inode
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &n); err != nil {
		return Inode{}, sfserr.NewDriverError(sfserr.ErrIOFailure.ErrnoCode).WrapError(err)
	}
	return n, nil
}

// inodeBlockOffsets splits an inumber into the index of its inode block
// (0-indexed within the inode region) and its slot within that block.
func inodeBlockOffsets(inumber uint) (blockIndex, slot uint) {
	return inumber / InodesPerBlock, inumber % InodesPerBlock
}
