package smquic

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordian-engine/sortmerkle"
	"github.com/quic-go/quic-go"
)

// Server answers root and proof requests for the tree set with [*Server.SetTree].
type Server struct {
	log *slog.Logger

	tree atomic.Pointer[sortmerkle.Tree]

	addr net.Addr

	streamTimeout time.Duration

	wg sync.WaitGroup
}

// ServerConfig is the configuration for a [Server].
type ServerConfig struct {
	// UDP address to listen on, such as "127.0.0.1:0".
	Addr string

	// The base TLS configuration.
	// The Server clones it and sets NextProtos to [ALPN].
	TLS *tls.Config

	// Optional QUIC configuration.
	QUIC *quic.Config

	// Deadline for reading a request and writing its response.
	// If zero, a reasonable default is used.
	StreamTimeout time.Duration
}

// validate panics if there are any illegal settings in the configuration.
func (c ServerConfig) validate() {
	var panicErrs error

	if c.Addr == "" {
		panicErrs = errors.Join(
			panicErrs,
			errors.New("ServerConfig.Addr must not be empty"),
		)
	}

	if c.TLS == nil {
		panicErrs = errors.Join(
			panicErrs,
			errors.New("ServerConfig.TLS may not be nil"),
		)
	} else if len(c.TLS.Certificates) == 0 && c.TLS.GetCertificate == nil {
		panicErrs = errors.Join(
			panicErrs,
			errors.New("ServerConfig.TLS must provide a certificate"),
		)
	}

	if c.StreamTimeout < 0 {
		panicErrs = errors.Join(
			panicErrs,
			fmt.Errorf("ServerConfig.StreamTimeout must not be negative (got %s)", c.StreamTimeout),
		)
	}

	if panicErrs != nil {
		panic(fmt.Errorf("BUG: invalid smquic.ServerConfig: %w", panicErrs))
	}
}

const defaultStreamTimeout = 5 * time.Second

// NewServer starts listening on cfg.Addr.
// The server runs until ctx is cancelled;
// use [*Server.Wait] to block until it has fully stopped.
//
// Until [*Server.SetTree] is called, every request is answered absent.
func NewServer(ctx context.Context, log *slog.Logger, cfg ServerConfig) (*Server, error) {
	cfg.validate()

	tlsConf := cfg.TLS.Clone()
	tlsConf.NextProtos = []string{ALPN}

	ln, err := quic.ListenAddr(cfg.Addr, tlsConf, cfg.QUIC)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	timeout := cfg.StreamTimeout
	if timeout == 0 {
		timeout = defaultStreamTimeout
	}

	s := &Server{
		log: log,

		addr: ln.Addr(),

		streamTimeout: timeout,
	}

	s.wg.Add(1)
	go s.acceptConnections(ctx, ln)

	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// SetTree replaces the tree being served.
// In-flight requests finish against whichever tree they loaded.
// A nil tree makes every request answer absent.
func (s *Server) SetTree(t *sortmerkle.Tree) {
	s.tree.Store(t)

	if t == nil {
		s.log.Debug("Cleared served tree")
		return
	}

	if root, ok := t.Root(); ok {
		s.log.Debug("Serving tree", "leaves", t.LeafCount(), "root", root.Hex())
	} else {
		s.log.Debug("Serving empty tree")
	}
}

// Wait blocks until the server's listener and all its connections are closed.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) acceptConnections(ctx context.Context, ln *quic.Listener) {
	defer s.wg.Done()
	defer func() {
		if err := ln.Close(); err != nil {
			s.log.Debug("Error closing listener", "err", err)
		}
	}()

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Info("Stopped accepting connections", "err", err)
			}
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				_ = conn.CloseWithError(0, "")
			}()

			for {
				st, err := conn.AcceptStream(ctx)
				if err != nil {
					// Peer closed the connection, or we are shutting down.
					return
				}

				s.wg.Add(1)
				go func() {
					defer s.wg.Done()
					s.handleStream(st)
				}()
			}
		}()
	}
}

// deadliner is the subset of a QUIC stream for setting a deadline
// on both directions.
type deadliner interface {
	SetDeadline(time.Time) error
}

func (s *Server) handleStream(rw io.ReadWriteCloser) {
	defer rw.Close()

	if d, ok := rw.(deadliner); ok {
		if err := d.SetDeadline(time.Now().Add(s.streamTimeout)); err != nil {
			s.log.Debug("Failed to set stream deadline", "err", err)
			return
		}
	}

	resp, err := s.respond(rw)
	if err != nil {
		s.log.Debug("Failed to read request", "err", err)
		return
	}

	if _, err := rw.Write(resp); err != nil {
		s.log.Debug("Failed to write response", "err", err)
	}
}

// respond reads one request from r and builds the response.
func (s *Server) respond(r io.Reader) ([]byte, error) {
	var kind [1]byte
	if _, err := io.ReadFull(r, kind[:]); err != nil {
		return nil, fmt.Errorf("failed to read request kind: %w", err)
	}

	tree := s.tree.Load()

	switch kind[0] {
	case requestRoot:
		if tree == nil {
			return []byte{statusAbsent}, nil
		}
		root, ok := tree.Root()
		if !ok {
			return []byte{statusAbsent}, nil
		}
		return appendRootResponse(nil, root), nil

	case requestProof:
		var idxBytes [4]byte
		if _, err := io.ReadFull(r, idxBytes[:]); err != nil {
			return nil, fmt.Errorf("failed to read proof index: %w", err)
		}
		if tree == nil {
			return []byte{statusAbsent}, nil
		}

		idx := int(binary.BigEndian.Uint32(idxBytes[:]))
		proof, ok := tree.Proof(idx)
		if !ok {
			return []byte{statusAbsent}, nil
		}
		leaf, _ := tree.Leaf(idx)

		resp, err := appendProofResponse(nil, leaf, proof)
		if err != nil {
			// The tree's own proofs always fit the binary form.
			panic(fmt.Errorf("BUG: failed to encode proof for leaf %d: %w", idx, err))
		}
		return resp, nil

	default:
		return []byte{statusBadRequest}, nil
	}
}
