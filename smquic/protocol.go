package smquic

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gordian-engine/sortmerkle"
)

// ALPN is the TLS application protocol negotiated by client and server.
const ALPN = "sortmerkle/1"

const (
	requestRoot  byte = 0x01
	requestProof byte = 0x02
)

const (
	statusOK         byte = 0x00
	statusAbsent     byte = 0x01
	statusBadRequest byte = 0x02
)

// Upper bound on any response the client will read:
// a status byte, a 255-byte leaf with its length,
// and a 255-entry proof of 255-byte digests.
const maxResponseSize = 1 + 1 + 255 + 1 + 255*(2+255)

// ErrBadRequest is returned by the client when the server
// rejected the request as malformed.
var ErrBadRequest = errors.New("server rejected request as malformed")

func appendRootResponse(b []byte, root sortmerkle.Digest) []byte {
	b = append(b, statusOK, byte(len(root)))
	return append(b, root...)
}

func appendProofResponse(b []byte, leaf sortmerkle.Digest, proof sortmerkle.Proof) ([]byte, error) {
	b = append(b, statusOK, byte(len(leaf)))
	b = append(b, leaf...)
	return proof.AppendBinary(b)
}

func proofRequest(idx uint32) []byte {
	b := make([]byte, 5)
	b[0] = requestProof
	binary.BigEndian.PutUint32(b[1:], idx)
	return b
}

// parseStatus consumes the status byte of a response.
// It reports false for an absent result.
func parseStatus(resp []byte) ([]byte, bool, error) {
	if len(resp) == 0 {
		return nil, false, errors.New("empty response")
	}

	switch resp[0] {
	case statusOK:
		return resp[1:], true, nil
	case statusAbsent:
		if len(resp) != 1 {
			return nil, false, fmt.Errorf("absent response has %d trailing bytes", len(resp)-1)
		}
		return nil, false, nil
	case statusBadRequest:
		return nil, false, ErrBadRequest
	default:
		return nil, false, fmt.Errorf("unknown response status 0x%x", resp[0])
	}
}

// readDigest consumes a length-prefixed digest.
func readDigest(b []byte) (sortmerkle.Digest, []byte, error) {
	if len(b) < 1 {
		return nil, nil, errors.New("missing digest length")
	}

	sz := int(b[0])
	if sz == 0 {
		return nil, nil, errors.New("zero-length digest")
	}
	if len(b) < 1+sz {
		return nil, nil, fmt.Errorf("digest truncated: need %d bytes, have %d", sz, len(b)-1)
	}

	return sortmerkle.Digest(b[1 : 1+sz]).Clone(), b[1+sz:], nil
}
