package smshard

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/gordian-engine/sortmerkle"
	"github.com/gordian-engine/sortmerkle/smhash"
	"github.com/klauspost/reedsolomon"
)

// MaxShards is the largest total shard count,
// bounded by the two-byte shard index in each leaf.
const MaxShards = (1 << 16) - 1

// Config is the configuration shared by [Commit] and [NewReassembler].
// Both sides must use identical values.
type Config struct {
	DataShards   int
	ParityShards int

	Hasher smhash.Hasher
}

// validate panics if there are any illegal settings in the configuration.
func (c Config) validate() {
	// If there are multiple reasons we could panic,
	// collect them all in one go
	// so we can give a maximally helpful error.
	var panicErrs error

	if c.DataShards <= 0 {
		panicErrs = errors.Join(
			panicErrs,
			fmt.Errorf("Config.DataShards must be positive (got %d)", c.DataShards),
		)
	}

	if c.ParityShards <= 0 {
		panicErrs = errors.Join(
			panicErrs,
			fmt.Errorf("Config.ParityShards must be positive (got %d)", c.ParityShards),
		)
	}

	if c.DataShards+c.ParityShards > MaxShards {
		panicErrs = errors.Join(
			panicErrs,
			fmt.Errorf(
				"total shard count must be at most %d (got %d)",
				MaxShards, c.DataShards+c.ParityShards,
			),
		)
	}

	if c.Hasher == nil {
		panicErrs = errors.Join(
			panicErrs,
			errors.New("Config.Hasher may not be nil"),
		)
	}

	if panicErrs != nil {
		panic(fmt.Errorf("BUG: invalid smshard.Config: %w", panicErrs))
	}
}

func (c Config) totalShards() int {
	return c.DataShards + c.ParityShards
}

// ShardLeaf returns the tree leaf for the shard at the given index:
// the hash of the big-endian two-byte index followed by the shard bytes.
//
// Including the index means two identical shards still have distinct leaves,
// and a shard cannot be replayed at a different index.
func ShardLeaf(h smhash.Hasher, idx int, shard []byte) sortmerkle.Digest {
	var idxBytes [2]byte
	binary.BigEndian.PutUint16(idxBytes[:], uint16(idx))
	return smhash.Sum(h, idxBytes[:], shard)
}

// Commitment is the result of [Commit].
//
// Shards, Leaves, and Proofs are aligned one-to-one by shard index,
// where the first DataShards entries are data and the rest are parity.
type Commitment struct {
	Root sortmerkle.Digest

	// Size of the original payload,
	// needed to strip padding when reassembling.
	Size int

	Shards [][]byte
	Leaves []sortmerkle.Digest
	Proofs []sortmerkle.Proof
}

// Piece returns the shard at idx packaged for transmission.
func (c Commitment) Piece(idx int) Piece {
	return Piece{
		Index: idx,
		Data:  c.Shards[idx],
		Proof: c.Proofs[idx],
	}
}

// Commit erasure-codes data and builds the tree over the resulting shards.
// The data slice is not modified, and the returned shards do not alias it.
func Commit(data []byte, cfg Config) (Commitment, error) {
	cfg.validate()

	if len(data) == 0 {
		return Commitment{}, errors.New("cannot commit to empty data")
	}

	enc, err := reedsolomon.New(cfg.DataShards, cfg.ParityShards)
	if err != nil {
		return Commitment{}, fmt.Errorf(
			"failed to build Reed-Solomon encoder: %w", err,
		)
	}

	// Split may use spare capacity in its input for parity shards,
	// so hand it a clipped copy.
	shards, err := enc.Split(slices.Clip(bytes.Clone(data)))
	if err != nil {
		return Commitment{}, fmt.Errorf(
			"failed to split data for sharding: %w", err,
		)
	}

	if err := enc.Encode(shards); err != nil {
		return Commitment{}, fmt.Errorf(
			"failed to erasure-code data: %w", err,
		)
	}

	h := cfg.Hasher
	leaves := make([]sortmerkle.Digest, len(shards))
	for i, s := range shards {
		leaves[i] = ShardLeaf(h, i, s)
	}

	tree := sortmerkle.Build(h, leaves)
	root, ok := tree.Root()
	if !ok {
		panic(errors.New("BUG: tree over non-empty shard set has no root"))
	}

	// The tree is sorted by leaf value,
	// so map each shard back to its sorted position for its proof.
	proofs := make([]sortmerkle.Proof, len(shards))
	for i, l := range leaves {
		_, p, ok := tree.ProofFor(l)
		if !ok {
			panic(fmt.Errorf("BUG: shard %d leaf missing from its own tree", i))
		}
		proofs[i] = p
	}

	return Commitment{
		Root:   root,
		Size:   len(data),
		Shards: shards,
		Leaves: leaves,
		Proofs: proofs,
	}, nil
}
