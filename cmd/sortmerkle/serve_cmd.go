package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordian-engine/sortmerkle"
	"github.com/gordian-engine/sortmerkle/smquic"
)

// runServeCmd implements `sortmerkle serve`.
// It builds a tree like the build command and serves it until interrupted.
func runServeCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("serve", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		tf       treeFlags
		addr     string
		certPath string
		keyPath  string
	)
	tf.register(cmd)
	cmd.StringVar(&addr, "addr", "127.0.0.1:4433", "UDP address to listen on")
	cmd.StringVar(&certPath, "cert", "", "PEM certificate file (REQUIRED)")
	cmd.StringVar(&keyPath, "key", "", "PEM private key file (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	if certPath == "" || keyPath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: -cert and -key are required")
		return 2
	}

	cfg, err := tf.resolve(cmd)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	log := newLogger(stderr, tf.verbose)
	tree, err := buildTree(log, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: failed to load key pair: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := smquic.NewServer(ctx, log.With("sys", "server"), smquic.ServerConfig{
		Addr: addr,
		TLS: &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS13,
		},
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	s.SetTree(tree)

	log.Info("Serving", "addr", s.Addr().String(), "leaves", tree.LeafCount())
	_, _ = fmt.Fprintln(stdout, s.Addr().String())

	s.Wait()
	return 0
}

// fetchOutput is the JSON document printed by the fetch command.
type fetchOutput struct {
	Root  string           `json:"root"`
	Index *int             `json:"index,omitempty"`
	Leaf  string           `json:"leaf,omitempty"`
	Proof sortmerkle.Proof `json:"proof,omitempty"`
	Valid *bool            `json:"valid,omitempty"`
}

// runFetchCmd implements `sortmerkle fetch`.
// Without -index it fetches only the root.
// With -index it also fetches that leaf's proof and validates it against the root.
func runFetchCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("fetch", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		addr       string
		caPath     string
		serverName string
		hashName   string
		index      int
		timeout    time.Duration
	)
	cmd.StringVar(&addr, "addr", "127.0.0.1:4433", "Server UDP address")
	cmd.StringVar(&caPath, "ca", "", "PEM file of the CA that signed the server certificate (REQUIRED)")
	cmd.StringVar(&serverName, "server-name", "localhost", "Expected server certificate name")
	cmd.StringVar(&hashName, "hash", defaultHash, "Hash function the server's tree uses")
	cmd.IntVar(&index, "index", -1, "Sorted leaf index to fetch a proof for; negative fetches only the root")
	cmd.DurationVar(&timeout, "timeout", 10*time.Second, "Overall request timeout")

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	if caPath == "" {
		_, _ = fmt.Fprintln(stderr, "Error: -ca is required")
		return 2
	}

	h, err := hasherByName(hashName)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	pool, err := loadCAPool(caPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c := smquic.NewClient(smquic.ClientConfig{
		TLS: &tls.Config{
			RootCAs:    pool,
			ServerName: serverName,
			MinVersion: tls.VersionTLS13,
		},
	})

	root, ok, err := c.Root(ctx, addr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if !ok {
		_, _ = fmt.Fprintln(stderr, "Error: server has no root")
		return 2
	}

	out := fetchOutput{Root: root.Hex()}
	exit := 0

	if index >= 0 {
		leaf, proof, ok, err := c.Proof(ctx, addr, index)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		if !ok {
			_, _ = fmt.Fprintf(stderr, "Error: server has no leaf at index %d\n", index)
			return 2
		}

		valid := sortmerkle.ValidateProof(h, proof, leaf, root)
		out.Index = &index
		out.Leaf = leaf.Hex()
		out.Proof = proof
		out.Valid = &valid
		if !valid {
			exit = 1
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: failed to write output: %v\n", err)
		return 2
	}
	return exit
}

func loadCAPool(path string) (*x509.CertPool, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pemBytes) {
		return nil, errors.New("no certificates found in CA file")
	}
	return pool, nil
}
