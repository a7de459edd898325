package sfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	sfserr "github.com/EduardoPagotto/SimpleFS/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/noxer/bytewriter"
)

// MagicNumber is the fixed sentinel identifying an SFS image.
const MagicNumber uint32 = 0xF0F03410

// passwordHashSize is the fixed width of the NUL-terminated hex SHA-256
// digest field.
const passwordHashSize = 257

// Superblock is the on-disk header stored at block 0.
type Superblock struct {
	Magic        uint32
	Blocks       uint32
	InodeBlocks  uint32
	Inodes       uint32
	MapBlocks    uint32
	Protected    uint32
	PasswordHash [passwordHashSize]byte
}

// wireSuperblock is the exact little-endian, no-padding on-disk layout.
type wireSuperblock struct {
	Magic        uint32
	Blocks       uint32
	InodeBlocks  uint32
	Inodes       uint32
	MapBlocks    uint32
	Protected    uint32
	PasswordHash [passwordHashSize]byte
}

// NewSuperblock computes a fresh, unprotected superblock for an image with
// the given total block count, deriving the inode and free-map region
// sizes from it.
func NewSuperblock(totalBlocks uint) Superblock {
	inodeBlocks := InodeBlocksFor(totalBlocks)
	return Superblock{
		Magic:       MagicNumber,
		Blocks:      uint32(totalBlocks),
		InodeBlocks: uint32(inodeBlocks),
		Inodes:      uint32(inodeBlocks * InodesPerBlock),
		MapBlocks:   uint32(MapBlocksFor(totalBlocks)),
		Protected:   0,
	}
}

// Marshal serializes the superblock into a zero-padded, block-sized buffer.
func (sb Superblock) Marshal() ([]byte, error) {
	buf := make([]byte, BlockSize)
	writer := bytewriter.New(buf)
	wire := wireSuperblock{
		Magic:        sb.Magic,
		Blocks:       sb.Blocks,
		InodeBlocks:  sb.InodeBlocks,
		Inodes:       sb.Inodes,
		MapBlocks:    sb.MapBlocks,
		Protected:    sb.Protected,
		PasswordHash: sb.PasswordHash,
	}
	if err := binary.Write(writer, binary.LittleEndian, &wire); err != nil {
		return nil, sfserr.NewDriverError(sfserr.ErrIOFailure.ErrnoCode).WrapError(err)
	}
	return buf, nil
}

// UnmarshalSuperblock decodes a block-sized buffer into a Superblock.
func UnmarshalSuperblock(buf []byte) (Superblock, error) {
	if len(buf) != BlockSize {
		return Superblock{}, sfserr.NewDriverErrorWithMessage(
			sfserr.ErrInvalidArgument.ErrnoCode,
			fmt.Sprintf("superblock buffer must be %d bytes, got %d", BlockSize, len(buf)),
		)
	}
	var wire wireSuperblock
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &wire); err != nil {
		return Superblock{}, sfserr.NewDriverError(sfserr.ErrIOFailure.ErrnoCode).WrapError(err)
	}
	return Superblock{
		Magic:        wire.Magic,
		Blocks:       wire.Blocks,
		InodeBlocks:  wire.InodeBlocks,
		Inodes:       wire.Inodes,
		MapBlocks:    wire.MapBlocks,
		Protected:    wire.Protected,
		PasswordHash: wire.PasswordHash,
	}, nil
}

// Validate checks the superblock's stored counts against what they should
// derive to for its block count, accumulating every violation found
// rather than stopping at the first.
func (sb Superblock) Validate() error {
	var result *multierror.Error

	if sb.Magic != MagicNumber {
		result = multierror.Append(result, fmt.Errorf(
			"magic number mismatch: got 0x%08X, want 0x%08X", sb.Magic, MagicNumber))
	}

	totalBlocks := uint(sb.Blocks)
	wantInodeBlocks := InodeBlocksFor(totalBlocks)
	if sb.InodeBlocks != uint32(wantInodeBlocks) {
		result = multierror.Append(result, fmt.Errorf(
			"inode_blocks mismatch: got %d, want ceil(%d/10)=%d",
			sb.InodeBlocks, totalBlocks, wantInodeBlocks))
	}

	if wantInodes := wantInodeBlocks * InodesPerBlock; sb.Inodes != uint32(wantInodes) {
		result = multierror.Append(result, fmt.Errorf(
			"inodes mismatch: got %d, want ceil(%d/10)*%d=%d",
			sb.Inodes, totalBlocks, InodesPerBlock, wantInodes))
	}

	if wantMapBlocks := MapBlocksFor(totalBlocks); sb.MapBlocks != uint32(wantMapBlocks) {
		result = multierror.Append(result, fmt.Errorf(
			"map_blocks mismatch: got %d, want ceil(%d/100)=%d",
			sb.MapBlocks, totalBlocks, wantMapBlocks))
	}

	return result.ErrorOrNil()
}
