// Package smkeccak provides a legacy Keccak-256 [smhash.Hasher].
//
// This is the pre-standard Keccak padding used by Ethereum,
// not the NIST SHA3-256 function,
// so roots built with it can be checked by EVM contracts using keccak256.
package smkeccak

import (
	"github.com/gordian-engine/sortmerkle/smhash"
	"golang.org/x/crypto/sha3"
)

const HashSize = 32

var _ smhash.Hasher = Hasher{}

// Hasher is a [smhash.Hasher] backed by legacy Keccak-256.
type Hasher struct{}

func (Hasher) Hash(dst []byte, parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum(dst)
}

func (Hasher) Size() int { return HashSize }
