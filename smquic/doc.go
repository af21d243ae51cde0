// Package smquic serves roots and inclusion proofs of a sortmerkle tree over QUIC.
//
// Each request uses its own bidirectional stream.
// The client writes a request and closes its send side;
// the server writes one response and closes the stream.
//
// Request layout:
//
//	kind:uint8            0x01 root, 0x02 proof
//	index:uint32 (BE)     proof requests only
//
// Response layout:
//
//	status:uint8          0x00 ok, 0x01 absent, 0x02 bad request
//	root:   len:uint8 digest[len]
//	proof:  len:uint8 leaf[len] proof(binary)
//
// The binary proof layout is that of [sortmerkle.Proof.MarshalBinary].
// A server with no tree, or asked for an index out of range,
// responds absent.
package smquic
