package smshard

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/golang/snappy"
)

// Header bytes for the have-set encoding.
const (
	rawHaveSet    byte = 0
	snappyHaveSet byte = 1
)

// AppendHaveSet appends a compact encoding of bs to dst.
//
// The encoding is a header byte followed by either
// the bitset's words as little endian uint64s,
// or a big endian uint16 length and the snappy-compressed words,
// whichever is smaller.
// The decoder must know the bitset length up front.
func AppendHaveSet(dst []byte, bs *bitset.BitSet) []byte {
	words := bs.Words()
	wordBuf := make([]byte, 8*len(words))
	for i, w := range words {
		// Little endian, as it most likely matches the machine's word layout.
		binary.LittleEndian.PutUint64(wordBuf[i*8:], w)
	}

	enc := snappy.Encode(nil, wordBuf)

	// Snappy has a two-byte length overhead,
	// since the decoder cannot otherwise know the encoded size.
	if len(wordBuf) <= len(enc)+2 {
		dst = append(dst, rawHaveSet)
		return append(dst, wordBuf...)
	}

	dst = append(dst, snappyHaveSet)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(enc)))
	return append(dst, enc...)
}

// DecodeHaveSet decodes a bitset of length n written by [AppendHaveSet],
// returning the bitset and the number of bytes consumed.
func DecodeHaveSet(b []byte, n uint) (*bitset.BitSet, int, error) {
	if len(b) < 1 {
		return nil, 0, errors.New("missing have-set header")
	}

	bs := bitset.MustNew(n)
	words := bs.Words()
	wantSz := 8 * len(words)

	var wordBuf []byte
	var consumed int

	switch b[0] {
	case rawHaveSet:
		if len(b) < 1+wantSz {
			return nil, 0, fmt.Errorf(
				"raw have-set truncated: need %d bytes, have %d", wantSz, len(b)-1,
			)
		}
		wordBuf = b[1 : 1+wantSz]
		consumed = 1 + wantSz

	case snappyHaveSet:
		if len(b) < 3 {
			return nil, 0, errors.New("missing snappy have-set length")
		}
		encSz := int(binary.BigEndian.Uint16(b[1:3]))
		if len(b) < 3+encSz {
			return nil, 0, fmt.Errorf(
				"snappy have-set truncated: need %d bytes, have %d", encSz, len(b)-3,
			)
		}
		enc := b[3 : 3+encSz]

		decSz, err := snappy.DecodedLen(enc)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to calculate snappy-decoded have-set length: %w", err)
		}
		if decSz != wantSz {
			return nil, 0, fmt.Errorf(
				"calculated decoded size of %d bytes but expected %d", decSz, wantSz,
			)
		}

		wordBuf, err = snappy.Decode(nil, enc)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decode snappy have-set: %w", err)
		}
		consumed = 3 + encSz

	default:
		return nil, 0, fmt.Errorf("unknown have-set header byte 0x%x", b[0])
	}

	for i := range words {
		words[i] = binary.LittleEndian.Uint64(wordBuf[i*8:])
	}

	// Bits beyond n would claim shards that do not exist.
	if extra, ok := bs.NextSet(n); ok {
		return nil, 0, fmt.Errorf("have-set marks shard %d beyond length %d", extra, n)
	}

	return bs, consumed, nil
}
