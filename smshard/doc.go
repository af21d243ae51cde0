// Package smshard commits to an erasure-coded payload with a sorted Merkle tree.
//
// [Commit] splits a payload into Reed-Solomon data and parity shards
// and builds a tree whose leaves bind each shard to its index.
// Shards can then be handed out individually, each with its own proof,
// and a [Reassembler] on the receiving side accepts only shards
// that prove against the committed root.
// Once any DataShards valid shards have arrived,
// the original payload can be reconstructed.
package smshard
