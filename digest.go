package sortmerkle

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Digest is a hash output, used for leaves, interior nodes, and roots.
type Digest []byte

// ParseHex converts hex text into a Digest.
// Upper and lower case are both accepted.
// The text must contain at least one byte (two hex characters)
// and must have an even length.
//
// ParseHex is the single conversion point for textual input,
// whether it is a leaf, a proof sibling, a target leaf, or a root.
// Failures are always reported as [*InvalidEncodingError].
func ParseHex(s string) (Digest, error) {
	if len(s) < 2 {
		return nil, &InvalidEncodingError{
			Input:  s,
			Reason: "need at least two hex characters",
		}
	}
	if len(s)%2 != 0 {
		return nil, &InvalidEncodingError{
			Input:  s,
			Reason: fmt.Sprintf("odd length %d", len(s)),
		}
	}

	for i := 0; i < len(s); i++ {
		if !isHexChar(s[i]) {
			return nil, &InvalidEncodingError{
				Input:  s,
				Reason: fmt.Sprintf("non-hex character %q at offset %d", s[i], i),
			}
		}
	}

	d := make(Digest, len(s)/2)
	if _, err := hex.Decode(d, []byte(s)); err != nil {
		// Already validated, so this should not be reachable.
		panic(fmt.Errorf("BUG: failed to decode validated hex %q: %w", s, err))
	}

	return d, nil
}

// MustParseHex is like [ParseHex] but panics on invalid input.
// It is intended for constants and tests.
func MustParseHex(s string) Digest {
	d, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return d
}

func isHexChar(c byte) bool {
	return ('0' <= c && c <= '9') ||
		('a' <= c && c <= 'f') ||
		('A' <= c && c <= 'F')
}

// Hex returns the lowercase hex encoding of d.
func (d Digest) Hex() string {
	return hex.EncodeToString(d)
}

func (d Digest) String() string {
	return d.Hex()
}

// Equal reports whether d and other contain the same bytes.
func (d Digest) Equal(other Digest) bool {
	return bytes.Equal(d, other)
}

// Clone returns a copy of d that does not share its backing array.
func (d Digest) Clone() Digest {
	if d == nil {
		return nil
	}
	return bytes.Clone(d)
}

// Compare orders digests by raw byte value,
// which is the order of the leaf level in a built tree.
func Compare(a, b Digest) int {
	return bytes.Compare(a, b)
}
