package sortmerkle

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gordian-engine/sortmerkle/smhash"
)

// Tree is an immutable sorted binary Merkle tree.
//
// The leaf level is sorted by byte value.
// Each higher level pairs adjacent nodes left to right,
// hashing the concatenation of each pair.
// If a level has an odd count, its last node has no partner
// and is promoted into the next level unchanged.
//
// Create a Tree with [Build] or [*Store.Build].
// A Tree is safe for concurrent use.
// Digests returned by its methods reference the tree's memory
// and must not be modified.
type Tree struct {
	hasher smhash.Hasher

	// levels[0] is the sorted leaf level,
	// and the final level holds only the root.
	// There are no levels at all when the tree has no leaves.
	levels [][]Digest
}

// Build sorts a copy of leaves and builds the full tree over them.
//
// With zero leaves the tree has no root.
// With one leaf, that leaf is the root and no hashing occurs.
//
// Build does not validate leaf sizes;
// use [*Store] to have leaves checked against the hasher's digest size.
func Build(h smhash.Hasher, leaves []Digest) *Tree {
	if h == nil {
		panic(errors.New("BUG: Build requires a non-nil Hasher"))
	}

	sorted := make([]Digest, len(leaves))
	for i, l := range leaves {
		sorted[i] = l.Clone()
	}
	slices.SortStableFunc(sorted, Compare)

	t := &Tree{hasher: h}
	if len(sorted) == 0 {
		return t
	}

	// Height of the tree is known up front:
	// each level halves, rounding up.
	height := 1
	for n := len(sorted); n > 1; n = (n + 1) / 2 {
		height++
	}
	t.levels = make([][]Digest, 0, height)

	t.levels = append(t.levels, sorted)
	for cur := sorted; len(cur) > 1; {
		cur = nextLevel(h, cur)
		t.levels = append(t.levels, cur)
	}

	return t
}

// nextLevel derives the parent level of cur.
func nextLevel(h smhash.Hasher, cur []Digest) []Digest {
	next := make([]Digest, (len(cur)+1)/2)

	// Every hashed node in this level is backed by one allocation.
	sz := h.Size()
	mem := make([]byte, 0, (len(cur)/2)*sz)

	for i := 0; i+1 < len(cur); i += 2 {
		start := len(mem)
		mem = h.Hash(mem, cur[i], cur[i+1])
		if got := len(mem) - start; got != sz {
			panic(fmt.Errorf(
				"BUG: hasher reported size %d but produced %d bytes", sz, got,
			))
		}

		// Cap the subslice so appends on the returned digest cannot clobber its neighbor.
		next[i/2] = Digest(mem[start:len(mem):len(mem)])
	}

	if len(cur)%2 == 1 {
		// Odd end node is promoted as-is.
		next[len(next)-1] = cur[len(cur)-1]
	}

	return next
}

// Hasher returns the hasher used to build t.
func (t *Tree) Hasher() smhash.Hasher {
	return t.hasher
}

// LeafCount returns the number of leaves in t.
func (t *Tree) LeafCount() int {
	if len(t.levels) == 0 {
		return 0
	}
	return len(t.levels[0])
}

// Height returns the number of levels in t,
// counting both the leaf level and the root level.
// A single-leaf tree has height 1 and an empty tree has height 0.
func (t *Tree) Height() int {
	return len(t.levels)
}

// Leaf returns the leaf at the given index in sorted order.
// It reports false if idx is out of range.
func (t *Tree) Leaf(idx int) (Digest, bool) {
	if idx < 0 || idx >= t.LeafCount() {
		return nil, false
	}
	return t.levels[0][idx], true
}

// Leaves returns the sorted leaf level.
// The returned slice is a copy but the digests are shared with t.
func (t *Tree) Leaves() []Digest {
	if len(t.levels) == 0 {
		return nil
	}
	return slices.Clone(t.levels[0])
}

// Level returns a copy of the level at the given height,
// where 0 is the leaf level and Height()-1 is the root level.
func (t *Tree) Level(height int) ([]Digest, bool) {
	if height < 0 || height >= len(t.levels) {
		return nil, false
	}
	return slices.Clone(t.levels[height]), true
}

// Root returns the root digest of t.
// It reports false if t has no leaves.
func (t *Tree) Root() (Digest, bool) {
	if len(t.levels) == 0 {
		return nil, false
	}
	return t.levels[len(t.levels)-1][0], true
}

// Index returns the sorted index of the given leaf.
// If the leaf occurs more than once, the lowest index is returned.
func (t *Tree) Index(leaf Digest) (int, bool) {
	if len(t.levels) == 0 {
		return 0, false
	}
	return slices.BinarySearchFunc(t.levels[0], leaf, Compare)
}

// Proof returns the inclusion proof for the leaf at idx,
// ordered from the leaf level upward.
// It reports false if idx is out of range.
//
// A level's unpaired end node has no sibling,
// so no entry is emitted for that level.
// The proof for a single-leaf tree is empty.
func (t *Tree) Proof(idx int) (Proof, bool) {
	if idx < 0 || idx >= t.LeafCount() {
		return nil, false
	}

	proof := make(Proof, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		n := len(level)
		if idx == n-1 && n%2 == 1 {
			idx /= 2
			continue
		}

		if idx&1 == 1 {
			proof = append(proof, Sibling{Position: Left, Digest: level[idx-1]})
		} else {
			proof = append(proof, Sibling{Position: Right, Digest: level[idx+1]})
		}

		idx /= 2
	}

	return proof, true
}

// ProofFor looks up leaf in the sorted leaf level
// and returns its index and inclusion proof.
// It reports false if the leaf is not in t.
func (t *Tree) ProofFor(leaf Digest) (int, Proof, bool) {
	idx, ok := t.Index(leaf)
	if !ok {
		return 0, nil, false
	}

	p, _ := t.Proof(idx)
	return idx, p, true
}
