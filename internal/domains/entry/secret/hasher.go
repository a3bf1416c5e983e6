// Package secret turns edit codes into the digest stored next to an entry.
package secret

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hasher transforms an edit code into a storable, comparable digest.
// Hash must be deterministic: the digest is used as an equality filter
// inside the atomic edit/delete operations.
type Hasher interface {
	Hash(code string) string
}

// Blake2bHasher hex-encodes the unkeyed BLAKE2b-256 of the edit code.
//
// Known weakness: there is no salt, so two entries sharing an edit code
// share a digest. That correlates entries but does not reveal the code.
type Blake2bHasher struct{}

// NewBlake2bHasher creates the default hasher
func NewBlake2bHasher() Blake2bHasher {
	return Blake2bHasher{}
}

func (Blake2bHasher) Hash(code string) string {
	sum := blake2b.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
