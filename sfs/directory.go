package sfs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	sfserr "github.com/EduardoPagotto/SimpleFS/errors"
	"github.com/noxer/bytewriter"
)

const dirEntrySize = 32

// DirEntry is one slot of the root directory block.
type DirEntry struct {
	Inum uint32
	Name [NameSize]byte
}

// NameString returns the entry's name with trailing NUL padding stripped.
func (e DirEntry) NameString() string {
	n := bytes.IndexByte(e.Name[:], 0)
	if n < 0 {
		n = len(e.Name)
	}
	return string(e.Name[:n])
}

func nameToBytes(name string) [NameSize]byte {
	var out [NameSize]byte
	copy(out[:], name)
	return out
}

// MarshalDirEntry encodes a directory entry into its fixed 32-byte wire
// form.
func MarshalDirEntry(e DirEntry) ([]byte, error) {
	buf := make([]byte, dirEntrySize)
	writer := bytewriter.New(buf)
	if err := binary.Write(writer, binary.LittleEndian, &e); err != nil {
		return nil, sfserr.NewDriverError(sfserr.ErrIOFailure.ErrnoCode).WrapError(err)
	}
	return buf, nil
}

// UnmarshalDirEntry decodes a 32-byte buffer into a DirEntry.
func UnmarshalDirEntry(buf []byte) (DirEntry, error) {
	if len(buf) != dirEntrySize {
		return DirEntry{}, sfserr.NewDriverErrorWithMessage(
			sfserr.ErrInvalidArgument.ErrnoCode,
			fmt.Sprintf("dirent buffer must be %d bytes, got %d", dirEntrySize, len(buf)),
		)
	}
	var e DirEntry
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &e); err != nil {
		return DirEntry{}, sfserr.NewDriverError(sfserr.ErrIOFailure.ErrnoCode).WrapError(err)
	}
	return e, nil
}

// marshalDirBlock encodes DirPerBlock entries into one block-sized buffer.
func marshalDirBlock(entries [DirPerBlock]DirEntry) ([]byte, error) {
	buf := make([]byte, 0, BlockSize)
	for _, e := range entries {
		raw, err := MarshalDirEntry(e)
		if err != nil {
			return nil, err
		}
		buf = append(buf, raw...)
	}
	return buf, nil
}

// unmarshalDirBlock decodes a block-sized buffer into DirPerBlock entries.
func unmarshalDirBlock(buf []byte) ([DirPerBlock]DirEntry, error) {
	var entries [DirPerBlock]DirEntry
	if len(buf) != BlockSize {
		return entries, sfserr.NewDriverErrorWithMessage(
			sfserr.ErrInvalidArgument.ErrnoCode,
			fmt.Sprintf("directory block buffer must be %d bytes, got %d", BlockSize, len(buf)),
		)
	}
	for i := 0; i < DirPerBlock; i++ {
		e, err := UnmarshalDirEntry(buf[i*dirEntrySize : (i+1)*dirEntrySize])
		if err != nil {
			return entries, err
		}
		entries[i] = e
	}
	return entries, nil
}

// addEntry binds inum to name in the root directory block. Entries 0 and 1
// are reserved for "." and ".." and are filled in only by Format; ordinary
// names start at index 2 and take the first entry whose inum is 0, unless
// the name is already in use, in which case the call fails.
func addEntry(entries *[DirPerBlock]DirEntry, inum uint32, name string) bool {
	for i := 2; i < DirPerBlock; i++ {
		if entries[i].Inum == 0 {
			entries[i] = DirEntry{Inum: inum, Name: nameToBytes(name)}
			return true
		}
		if entries[i].NameString() == name {
			return false
		}
	}
	return false
}
