package smblake3

import (
	"github.com/gordian-engine/sortmerkle/smhash"
	"github.com/zeebo/blake3"
)

const HashSize = 32

var _ smhash.Hasher = Hasher{}

// Hasher is a [smhash.Hasher] backed by 256-bit BLAKE3 hashes.
type Hasher struct{}

func (Hasher) Hash(dst []byte, parts ...[]byte) []byte {
	h := blake3.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum(dst)
}

func (Hasher) Size() int { return HashSize }
