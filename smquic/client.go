package smquic

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"github.com/gordian-engine/sortmerkle"
	"github.com/quic-go/quic-go"
)

// Client requests roots and proofs from a [Server].
//
// Every call dials a fresh connection, so a Client is safe for concurrent use.
type Client struct {
	tlsConf  *tls.Config
	quicConf *quic.Config
}

// ClientConfig is the configuration for a [Client].
type ClientConfig struct {
	// The base TLS configuration.
	// The Client clones it and sets NextProtos to [ALPN].
	TLS *tls.Config

	// Optional QUIC configuration.
	QUIC *quic.Config
}

// NewClient returns a new Client.
// It panics if cfg.TLS is nil.
func NewClient(cfg ClientConfig) *Client {
	if cfg.TLS == nil {
		panic(errors.New("BUG: ClientConfig.TLS may not be nil"))
	}

	tlsConf := cfg.TLS.Clone()
	tlsConf.NextProtos = []string{ALPN}

	return &Client{
		tlsConf:  tlsConf,
		quicConf: cfg.QUIC,
	}
}

// Root fetches the root of the tree served at addr.
// The boolean result is false if the server has no tree
// or its tree has no leaves.
func (c *Client) Root(ctx context.Context, addr string) (sortmerkle.Digest, bool, error) {
	resp, err := c.roundTrip(ctx, addr, []byte{requestRoot})
	if err != nil {
		return nil, false, err
	}

	body, ok, err := parseStatus(resp)
	if err != nil || !ok {
		return nil, false, err
	}

	root, rest, err := readDigest(body)
	if err != nil {
		return nil, false, fmt.Errorf("malformed root response: %w", err)
	}
	if len(rest) != 0 {
		return nil, false, fmt.Errorf("malformed root response: %d trailing bytes", len(rest))
	}

	return root, true, nil
}

// Proof fetches the leaf at sorted index idx and its inclusion proof
// from the tree served at addr.
// The boolean result is false if the server has no tree
// or idx is out of range.
func (c *Client) Proof(ctx context.Context, addr string, idx int) (
	sortmerkle.Digest, sortmerkle.Proof, bool, error,
) {
	if idx < 0 || uint64(idx) > uint64(^uint32(0)) {
		return nil, nil, false, fmt.Errorf("proof index %d out of range", idx)
	}

	resp, err := c.roundTrip(ctx, addr, proofRequest(uint32(idx)))
	if err != nil {
		return nil, nil, false, err
	}

	body, ok, err := parseStatus(resp)
	if err != nil || !ok {
		return nil, nil, false, err
	}

	leaf, rest, err := readDigest(body)
	if err != nil {
		return nil, nil, false, fmt.Errorf("malformed proof response: %w", err)
	}

	var proof sortmerkle.Proof
	if err := proof.UnmarshalBinary(rest); err != nil {
		return nil, nil, false, fmt.Errorf("malformed proof response: %w", err)
	}

	return leaf, proof, true, nil
}

func (c *Client) roundTrip(ctx context.Context, addr string, req []byte) ([]byte, error) {
	conn, err := quic.DialAddr(ctx, addr, c.tlsConf, c.quicConf)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	defer func() {
		_ = conn.CloseWithError(0, "")
	}()

	st, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	if dl, ok := ctx.Deadline(); ok {
		if err := st.SetDeadline(dl); err != nil {
			return nil, fmt.Errorf("failed to set stream deadline: %w", err)
		}
	}

	return exchange(st, req)
}

// exchange writes req, closes the write side of rw,
// and reads the full response.
func exchange(rw io.ReadWriteCloser, req []byte) ([]byte, error) {
	if _, err := rw.Write(req); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	// On a QUIC stream, Close only closes the send direction.
	if err := rw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close request stream: %w", err)
	}

	resp, err := io.ReadAll(io.LimitReader(rw, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(resp) > maxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", maxResponseSize)
	}

	return resp, nil
}
