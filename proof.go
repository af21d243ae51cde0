package sortmerkle

import (
	"strconv"

	"github.com/gordian-engine/sortmerkle/smhash"
)

// Position indicates on which side of the proven node a sibling sits.
type Position uint8

const (
	// InvalidPosition is the zero value.
	// Proofs containing it never validate.
	InvalidPosition Position = iota

	// Left means the sibling is hashed before the current node.
	Left

	// Right means the sibling is hashed after the current node.
	Right
)

func (p Position) String() string {
	switch p {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "Position(" + strconv.Itoa(int(p)) + ")"
	}
}

// Sibling is a single proof entry.
type Sibling struct {
	Position Position
	Digest   Digest
}

// Proof is an inclusion proof, ordered from the leaf level toward the root.
// Entries must be replayed in order.
type Proof []Sibling

// ValidateProof reports whether proof shows that target is included
// in the tree with the given root.
//
// An empty proof is valid only if target equals root,
// which is the single-leaf tree case.
// A proof entry with a position other than [Left] or [Right]
// makes the proof invalid.
//
// ValidateProof depends only on its arguments
// and is safe to call concurrently.
func ValidateProof(h smhash.Hasher, proof Proof, target, root Digest) bool {
	if len(proof) == 0 {
		return target.Equal(root)
	}

	// Alternate between two scratch buffers,
	// so that each step reads the previous digest while writing the next.
	sz := h.Size()
	scratch := [2][]byte{
		make([]byte, 0, sz),
		make([]byte, 0, sz),
	}

	cur := []byte(target)
	for i, s := range proof {
		dst := scratch[i&1][:0]
		switch s.Position {
		case Left:
			cur = h.Hash(dst, s.Digest, cur)
		case Right:
			cur = h.Hash(dst, cur, s.Digest)
		default:
			return false
		}
	}

	return root.Equal(cur)
}

// ValidateProofHex is like [ValidateProof],
// but it accepts the target leaf and root as hex text.
// Malformed hex is reported as an [*InvalidEncodingError];
// any other problem is reported as an invalid proof.
func ValidateProofHex(h smhash.Hasher, proof Proof, targetHex, rootHex string) (bool, error) {
	target, err := ParseHex(targetHex)
	if err != nil {
		return false, err
	}

	root, err := ParseHex(rootHex)
	if err != nil {
		return false, err
	}

	return ValidateProof(h, proof, target, root), nil
}
