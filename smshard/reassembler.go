package smshard

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/sortmerkle"
	"github.com/klauspost/reedsolomon"
)

// Piece is a single shard with its inclusion proof.
type Piece struct {
	Index int
	Data  []byte
	Proof sortmerkle.Proof
}

// Reassembler collects verified shards for a committed payload
// and reconstructs the payload once enough have arrived.
//
// A Reassembler is not safe for concurrent use.
type Reassembler struct {
	log *slog.Logger

	cfg Config

	root sortmerkle.Digest
	size int

	enc reedsolomon.Encoder

	// Indexed by shard; nil until a verified shard arrives.
	shards [][]byte

	// Which shards have been verified and stored.
	have *bitset.BitSet

	// Size of every shard, learned from the first verified shard.
	shardSize int
}

// NewReassembler returns a Reassembler expecting shards
// that prove against root, for a payload of the given size.
func NewReassembler(
	log *slog.Logger, cfg Config, root sortmerkle.Digest, size int,
) (*Reassembler, error) {
	cfg.validate()

	if size <= 0 {
		return nil, fmt.Errorf("payload size must be positive (got %d)", size)
	}
	if len(root) != cfg.Hasher.Size() {
		return nil, fmt.Errorf(
			"root is %d bytes but digest size is %d", len(root), cfg.Hasher.Size(),
		)
	}

	enc, err := reedsolomon.New(cfg.DataShards, cfg.ParityShards)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to build Reed-Solomon encoder: %w", err,
		)
	}

	return &Reassembler{
		log: log,
		cfg: cfg,

		root: root.Clone(),
		size: size,

		enc: enc,

		shards: make([][]byte, cfg.totalShards()),
		have:   bitset.MustNew(uint(cfg.totalShards())),
	}, nil
}

// Add verifies p against the root and stores its shard.
//
// It reports true only if the shard was newly accepted.
// A piece that fails verification, has the wrong shard size,
// or duplicates an already accepted shard is ignored and reported false.
// An index outside the configured shard range is an error.
func (r *Reassembler) Add(p Piece) (bool, error) {
	if p.Index < 0 || p.Index >= len(r.shards) {
		return false, fmt.Errorf(
			"shard index %d out of range [0, %d)", p.Index, len(r.shards),
		)
	}

	if r.have.Test(uint(p.Index)) {
		return false, nil
	}

	if r.shardSize > 0 && len(p.Data) != r.shardSize {
		r.log.Debug(
			"Rejected shard with wrong size",
			"idx", p.Index, "got", len(p.Data), "want", r.shardSize,
		)
		return false, nil
	}

	leaf := ShardLeaf(r.cfg.Hasher, p.Index, p.Data)
	if !sortmerkle.ValidateProof(r.cfg.Hasher, p.Proof, leaf, r.root) {
		r.log.Debug("Rejected shard with invalid proof", "idx", p.Index)
		return false, nil
	}

	r.shards[p.Index] = bytes.Clone(p.Data)
	r.have.Set(uint(p.Index))
	r.shardSize = len(p.Data)

	return true, nil
}

// Have returns the number of accepted shards.
func (r *Reassembler) Have() uint {
	return r.have.Count()
}

// HaveShard reports whether the shard at idx has been accepted.
func (r *Reassembler) HaveShard(idx int) bool {
	if idx < 0 || idx >= len(r.shards) {
		return false
	}
	return r.have.Test(uint(idx))
}

// HaveSet returns a copy of the set of accepted shard indices,
// suitable for [AppendHaveSet].
func (r *Reassembler) HaveSet() *bitset.BitSet {
	return r.have.Clone()
}

// Missing returns the indices of shards not yet accepted, in ascending order.
func (r *Reassembler) Missing() []int {
	missing := make([]int, 0, uint(len(r.shards))-r.have.Count())
	for i := range len(r.shards) {
		if !r.have.Test(uint(i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

// CanReconstruct reports whether enough shards have been accepted
// to reconstruct the payload.
func (r *Reassembler) CanReconstruct() bool {
	return r.have.Count() >= uint(r.cfg.DataShards)
}

// Data reconstructs and returns the original payload.
// It fails if [*Reassembler.CanReconstruct] would report false.
func (r *Reassembler) Data() ([]byte, error) {
	if !r.CanReconstruct() {
		return nil, fmt.Errorf(
			"need %d shards to reconstruct but only have %d",
			r.cfg.DataShards, r.have.Count(),
		)
	}

	// Reconstruction fills in the missing entries,
	// so work on a copy to keep r.shards as only verified input.
	shards := slices.Clone(r.shards)
	if err := r.enc.ReconstructData(shards); err != nil {
		return nil, fmt.Errorf("failed to reconstruct data shards: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(r.size)
	if err := r.enc.Join(&buf, shards, r.size); err != nil {
		return nil, fmt.Errorf("failed to join data shards: %w", err)
	}

	r.log.Debug("Reconstructed payload", "size", r.size, "shards", r.have.Count())

	return buf.Bytes(), nil
}
