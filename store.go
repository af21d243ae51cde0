package sortmerkle

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/gordian-engine/sortmerkle/smhash"
)

// Store accumulates leaves and builds a [*Tree] from them.
//
// A Store is "ready" only between a call to [*Store.Build]
// and the next mutation.
// While the store is not ready, [*Store.Root] and [*Store.Proof] report absent,
// rather than answering from a stale tree.
//
// Store methods are safe to call concurrently,
// but callers interleaving mutations and builds from multiple goroutines
// cannot predict which leaves a particular build includes.
type Store struct {
	log *slog.Logger

	hasher smhash.Hasher

	mu sync.Mutex

	leaves []Digest

	// Nil while the store is not ready.
	tree *Tree
}

// StoreConfig is the configuration for [NewStore].
type StoreConfig struct {
	// Hasher is used to hash leaves added with hashFirst set,
	// and to build the tree.
	Hasher smhash.Hasher
}

// validate panics if there are any illegal settings in the configuration.
func (c StoreConfig) validate() {
	if c.Hasher == nil {
		panic(errors.New("BUG: StoreConfig.Hasher may not be nil"))
	}
	if c.Hasher.Size() <= 0 {
		panic(fmt.Errorf(
			"BUG: StoreConfig.Hasher size must be positive (got %d)", c.Hasher.Size(),
		))
	}
}

// NewStore returns an empty, not-ready Store.
func NewStore(log *slog.Logger, cfg StoreConfig) *Store {
	cfg.validate()

	return &Store{
		log:    log,
		hasher: cfg.Hasher,
	}
}

// AddLeaf appends a leaf to the store and marks the store not ready.
//
// If hashFirst is set, the stored leaf is the hash of value,
// and value may be any byte sequence.
// Otherwise value must already be a digest of the hasher's size,
// or an [*InvalidEncodingError] is returned.
func (s *Store) AddLeaf(value []byte, hashFirst bool) error {
	d, err := s.leafDigest(value, hashFirst)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaves = append(s.leaves, d)
	s.tree = nil
	return nil
}

// AddLeafHex is like [*Store.AddLeaf] but value is hex text.
// The text is decoded with [ParseHex] before any hashing.
func (s *Store) AddLeafHex(value string, hashFirst bool) error {
	raw, err := ParseHex(value)
	if err != nil {
		return err
	}

	return s.AddLeaf(raw, hashFirst)
}

// AddLeaves appends all values, in order, under the same rules as [*Store.AddLeaf].
// The batch is all-or-nothing:
// if any value is rejected, the store is left unchanged.
func (s *Store) AddLeaves(values [][]byte, hashFirst bool) error {
	ds := make([]Digest, len(values))
	for i, v := range values {
		d, err := s.leafDigest(v, hashFirst)
		if err != nil {
			return fmt.Errorf("leaf %d: %w", i, err)
		}
		ds[i] = d
	}

	s.appendLeaves(ds)
	return nil
}

// AddLeavesHex is like [*Store.AddLeaves] but every value is hex text.
func (s *Store) AddLeavesHex(values []string, hashFirst bool) error {
	ds := make([]Digest, len(values))
	for i, v := range values {
		raw, err := ParseHex(v)
		if err != nil {
			return fmt.Errorf("leaf %d: %w", i, err)
		}

		d, err := s.leafDigest(raw, hashFirst)
		if err != nil {
			return fmt.Errorf("leaf %d: %w", i, err)
		}
		ds[i] = d
	}

	s.appendLeaves(ds)
	return nil
}

func (s *Store) appendLeaves(ds []Digest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaves = append(s.leaves, ds...)
	s.tree = nil
}

// leafDigest converts value into the digest that is stored as a leaf.
// The returned digest never aliases value.
func (s *Store) leafDigest(value []byte, hashFirst bool) (Digest, error) {
	if hashFirst {
		return smhash.Sum(s.hasher, value), nil
	}

	if len(value) != s.hasher.Size() {
		return nil, &InvalidEncodingError{
			Input: hex.EncodeToString(value),
			Reason: fmt.Sprintf(
				"leaf is %d bytes but digest size is %d", len(value), s.hasher.Size(),
			),
		}
	}

	return Digest(bytes.Clone(value)), nil
}

// Reset removes all leaves and the built tree,
// leaving the store empty and not ready.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaves = nil
	s.tree = nil
}

// Build sorts the stored leaves, builds the tree over them,
// and marks the store ready.
//
// After Build, [*Store.Leaf] reports leaves in sorted order.
// The returned tree remains valid after later mutations of the store.
func (s *Store) Build() *Tree {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := Build(s.hasher, s.leaves)
	s.leaves = t.Leaves()
	s.tree = t

	if root, ok := t.Root(); ok {
		s.log.Debug(
			"Built tree",
			"leaves", t.LeafCount(),
			"height", t.Height(),
			"root", root.Hex(),
		)
	} else {
		s.log.Debug("Built empty tree")
	}

	return t
}

// Ready reports whether the store has been built since its last mutation.
func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree != nil
}

// Tree returns the most recently built tree,
// reporting false if the store is not ready.
func (s *Store) Tree() (*Tree, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tree, s.tree != nil
}

// Root returns the root of the built tree.
// It reports false if the store is not ready or has no leaves.
func (s *Store) Root() (Digest, bool) {
	t, ok := s.Tree()
	if !ok {
		return nil, false
	}
	return t.Root()
}

// Proof returns the inclusion proof for the leaf at idx in sorted order.
// It reports false if the store is not ready or idx is out of range.
func (s *Store) Proof(idx int) (Proof, bool) {
	t, ok := s.Tree()
	if !ok {
		return nil, false
	}
	return t.Proof(idx)
}

// LeafCount returns the number of leaves currently in the store.
func (s *Store) LeafCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.leaves)
}

// Leaf returns the leaf at idx.
// Before the first build, leaves are in insertion order;
// after a build they are in sorted order.
// It reports false if idx is out of range.
func (s *Store) Leaf(idx int) (Digest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx < 0 || idx >= len(s.leaves) {
		return nil, false
	}
	return s.leaves[idx], true
}

// Leaves returns a copy of the current leaf sequence.
func (s *Store) Leaves() []Digest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.leaves)
}
