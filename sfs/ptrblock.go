package sfs

import (
	"bytes"
	"encoding/binary"

	sfserr "github.com/EduardoPagotto/SimpleFS/errors"
	"github.com/noxer/bytewriter"
)

// marshalPointerBlock encodes PointersPerBlock 32-bit block numbers into a
// block-sized buffer, the on-disk form of an indirect block.
func marshalPointerBlock(ptrs [PointersPerBlock]uint32) ([]byte, error) {
	buf := make([]byte, BlockSize)
	writer := bytewriter.New(buf)
	if err := binary.Write(writer, binary.LittleEndian, &ptrs); err != nil {
		return nil, sfserr.NewDriverError(sfserr.ErrIOFailure.ErrnoCode).WrapError(err)
	}
	return buf, nil
}

// unmarshalPointerBlock decodes a block-sized buffer into PointersPerBlock
// 32-bit block numbers.
func unmarshalPointerBlock(buf []byte) ([PointersPerBlock]uint32, error) {
	var ptrs [PointersPerBlock]uint32
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &ptrs); err != nil {
		return ptrs, sfserr.NewDriverError(sfserr.ErrIOFailure.ErrnoCode).WrapError(err)
	}
	return ptrs, nil
}
