package sfs

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// PasswordProvider is the external collaborator that prompts the user (or
// otherwise sources) a plaintext password. This package does no console
// I/O itself; callers supply their own implementation.
type PasswordProvider func() (string, error)

// Hasher is the external collaborator that turns a plaintext password into
// a hex digest. The SHA-256 algorithm itself is treated as out of scope to
// reimplement; DefaultHasher wires in the standard library's
// implementation as the default collaborator.
type Hasher interface {
	Hash(password string) (string, error)
}

// DefaultHasher hashes with crypto/sha256 and hex-encodes the digest.
type DefaultHasher struct{}

// Hash implements Hasher.
func (DefaultHasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// comparePasswordHash compares a computed hex digest against the stored,
// NUL-padded 257-byte field in constant time, so a mismatching password
// can't be brute-forced faster by timing where the comparison diverges.
func comparePasswordHash(computedHex string, stored [passwordHashSize]byte) bool {
	var want [passwordHashSize]byte
	copy(want[:], computedHex)
	return subtle.ConstantTimeCompare(want[:], stored[:]) == 1
}
