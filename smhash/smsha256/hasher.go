package smsha256

import (
	"crypto/sha256"

	"github.com/gordian-engine/sortmerkle/smhash"
)

const HashSize = sha256.Size

var _ smhash.Hasher = Hasher{}

// Hasher is a [smhash.Hasher] backed by SHA256 hashes.
type Hasher struct{}

func (Hasher) Hash(dst []byte, parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum(dst)
}

func (Hasher) Size() int { return HashSize }
