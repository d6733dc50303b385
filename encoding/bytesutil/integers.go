// Package bytesutil defines helper methods for converting integers to byte slices
// and handling byte slice keys.
package bytesutil

import (
	"encoding/binary"
)

// Uint64ToBytesBigEndian conversion.
func Uint64ToBytesBigEndian(i uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, i)
	return buf
}

// BytesToUint64BigEndian conversion. Returns 0 if empty bytes or byte slice with length less
// than 8.
func BytesToUint64BigEndian(b []byte) uint64 {
	if len(b) < 8 { // This will panic otherwise.
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// SafeCopyBytes will copy and return a non-nil byte slice, otherwise it returns nil.
func SafeCopyBytes(cp []byte) []byte {
	if cp != nil {
		copied := make([]byte, len(cp))
		copy(copied, cp)
		return copied
	}
	return nil
}

// PrefixSuccessor returns the smallest key greater than every key starting with
// prefix, or nil when no such key exists (prefix is empty or all 0xff).
func PrefixSuccessor(prefix []byte) []byte {
	succ := SafeCopyBytes(prefix)
	for i := len(succ) - 1; i >= 0; i-- {
		if succ[i] != 0xff {
			succ[i]++
			return succ[:i+1]
		}
	}
	return nil
}
