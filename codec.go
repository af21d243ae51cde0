package sortmerkle

import (
	"encoding/json"
	"errors"
	"fmt"
)

// siblingJSON is the wire form of a [Sibling]:
// an object with exactly one of "left" or "right" set to a hex digest.
type siblingJSON struct {
	Left  *string `json:"left,omitempty"`
	Right *string `json:"right,omitempty"`
}

// MarshalJSON encodes s as {"left":"<hex>"} or {"right":"<hex>"}.
// A sibling with an invalid position encodes as {},
// which decodes back to an invalid position.
func (s Sibling) MarshalJSON() ([]byte, error) {
	var sj siblingJSON
	h := s.Digest.Hex()
	switch s.Position {
	case Left:
		sj.Left = &h
	case Right:
		sj.Right = &h
	}
	return json.Marshal(sj)
}

// UnmarshalJSON decodes the form written by [Sibling.MarshalJSON].
//
// An entry with neither key or with both keys decodes without error
// to a Sibling with [InvalidPosition],
// so that [ValidateProof] reports the proof invalid
// instead of the caller handling a decode failure.
// A digest that is not valid hex is an [*InvalidEncodingError].
func (s *Sibling) UnmarshalJSON(b []byte) error {
	var sj siblingJSON
	if err := json.Unmarshal(b, &sj); err != nil {
		return err
	}

	switch {
	case sj.Left != nil && sj.Right == nil:
		d, err := ParseHex(*sj.Left)
		if err != nil {
			return err
		}
		*s = Sibling{Position: Left, Digest: d}

	case sj.Right != nil && sj.Left == nil:
		d, err := ParseHex(*sj.Right)
		if err != nil {
			return err
		}
		*s = Sibling{Position: Right, Digest: d}

	default:
		*s = Sibling{}
	}

	return nil
}

// MarshalJSON encodes p as a JSON array of siblings.
// A nil proof encodes as an empty array.
func (p Proof) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Sibling(p))
}

// Binary proof layout:
//
//	count:uint8
//	count times: position:uint8 len:uint8 digest[len]
//
// The position byte is carried through verbatim,
// so an unknown position survives a round trip and fails validation.
const maxBinaryProofEntries = 255

// MarshalBinary encodes p in its binary form.
func (p Proof) MarshalBinary() ([]byte, error) {
	return p.AppendBinary(nil)
}

// AppendBinary appends the binary form of p to b.
func (p Proof) AppendBinary(b []byte) ([]byte, error) {
	if len(p) > maxBinaryProofEntries {
		return nil, fmt.Errorf(
			"proof has %d entries; binary form allows at most %d",
			len(p), maxBinaryProofEntries,
		)
	}

	b = append(b, byte(len(p)))
	for i, s := range p {
		if len(s.Digest) > 255 {
			return nil, fmt.Errorf(
				"proof entry %d has %d-byte digest; binary form allows at most 255",
				i, len(s.Digest),
			)
		}

		b = append(b, byte(s.Position), byte(len(s.Digest)))
		b = append(b, s.Digest...)
	}

	return b, nil
}

var errShortProof = errors.New("binary proof truncated")

// DecodeProof decodes a binary proof from the front of b,
// returning the proof and the number of bytes consumed.
// The returned digests do not alias b.
func DecodeProof(b []byte) (Proof, int, error) {
	if len(b) < 1 {
		return nil, 0, errShortProof
	}

	count := int(b[0])
	off := 1

	p := make(Proof, count)
	for i := range count {
		if len(b) < off+2 {
			return nil, 0, fmt.Errorf("entry %d: %w", i, errShortProof)
		}

		pos := Position(b[off])
		sz := int(b[off+1])
		off += 2

		if len(b) < off+sz {
			return nil, 0, fmt.Errorf("entry %d digest: %w", i, errShortProof)
		}

		p[i] = Sibling{
			Position: pos,
			Digest:   Digest(b[off : off+sz]).Clone(),
		}
		off += sz
	}

	return p, off, nil
}

// UnmarshalBinary decodes the form written by [Proof.MarshalBinary].
// Trailing bytes are an error.
func (p *Proof) UnmarshalBinary(b []byte) error {
	decoded, n, err := DecodeProof(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("binary proof has %d trailing bytes", len(b)-n)
	}

	*p = decoded
	return nil
}
