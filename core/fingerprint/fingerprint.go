// Package fingerprint computes stable content fingerprints over compile
// inputs. Fingerprints key the compile result cache and let a project loader
// detect that annotations were authored against a different source version.
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Sum returns the hex BLAKE3 hash of data.
func Sum(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumString returns the hex BLAKE3 hash of a string.
func SumString(s string) string {
	return Sum([]byte(s))
}

// Combine hashes several input sections into one fingerprint. Sections are
// length-prefixed so distinct section splits can never collide.
func Combine(sections ...[]byte) string {
	h := blake3.New()
	var n [8]byte
	for _, sec := range sections {
		binary.BigEndian.PutUint64(n[:], uint64(len(sec)))
		h.Write(n[:])
		h.Write(sec)
	}
	return hex.EncodeToString(h.Sum(nil))
}
