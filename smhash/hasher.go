// Package smhash defines the hash function plugged into a sortmerkle tree.
//
// The tree never hashes anything itself.
// Leaves hashed on insertion, interior nodes, and proof replay
// all go through the same [Hasher],
// so the proving side and the verifying side must agree on it.
package smhash

// Hasher is the user-supplied hash function.
//
// Hash writes the digest of the concatenation of parts,
// appending it to dst and returning the extended slice,
// in the same manner as [hash.Hash.Sum].
// The tree passes a single part for leaves,
// and the left and right child digests for interior nodes.
// To be allocation-efficient, callers may pass a dst with spare capacity.
// Hasher must not retain references to dst or to any part.
//
// Every digest produced by a Hasher must be exactly Size bytes.
//
// Furthermore, Hasher methods must be safe to call concurrently.
type Hasher interface {
	Hash(dst []byte, parts ...[]byte) []byte
	Size() int
}

// Sum is a convenience wrapper around h.Hash
// that always returns a newly allocated digest.
func Sum(h Hasher, parts ...[]byte) []byte {
	return h.Hash(make([]byte, 0, h.Size()), parts...)
}
