// Package sortmerkle builds sorted binary Merkle trees
// over a set of fixed-size leaf digests,
// and produces and verifies inclusion proofs against the tree root.
//
// Leaves are sorted by byte value before the tree is built,
// so the root is a commitment to the leaf set
// regardless of the order in which leaves were added.
// When a level has an odd number of nodes,
// the last node is promoted to the next level unchanged, not rehashed.
//
// Load leaves into a [Store] and call [*Store.Build],
// or call [Build] directly with a slice of leaves.
// Either way the result is an immutable [*Tree]
// which is safe for concurrent reads.
//
// Proofs are a sequence of [Sibling] values ordered from the leaf level upward.
// [ValidateProof] replays them without any tree instance,
// so a proof may be checked against a root obtained out of band.
//
// The hash function is supplied by the caller through [smhash.Hasher];
// see the smkeccak, smsha256, and smblake3 packages for implementations.
package sortmerkle
