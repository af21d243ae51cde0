package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/gordian-engine/sortmerkle"
	"github.com/gordian-engine/sortmerkle/smhash"
)

// buildOutput is the JSON document printed by the build command.
type buildOutput struct {
	Hash   string            `json:"hash"`
	Root   string            `json:"root,omitempty"`
	Leaves []leafWithProofJS `json:"leaves"`
}

type leafWithProofJS struct {
	Index int              `json:"index"`
	Leaf  string           `json:"leaf"`
	Proof sortmerkle.Proof `json:"proof"`
}

// runBuildCmd implements `sortmerkle build`.
func runBuildCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("build", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var tf treeFlags
	tf.register(cmd)

	if err := cmd.Parse(args); err != nil {
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

	out := buildOutput{
		Hash:   cfg.Hash,
		Leaves: make([]leafWithProofJS, tree.LeafCount()),
	}
	if root, ok := tree.Root(); ok {
		out.Root = root.Hex()
	}
	for i := range out.Leaves {
		leaf, _ := tree.Leaf(i)
		proof, _ := tree.Proof(i)
		out.Leaves[i] = leafWithProofJS{
			Index: i,
			Leaf:  leaf.Hex(),
			Proof: proof,
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: failed to write output: %v\n", err)
		return 2
	}
	return 0
}

// buildTree adds every configured leaf to a store and builds it.
func buildTree(log *slog.Logger, cfg treeConfig) (*sortmerkle.Tree, error) {
	h, err := hasherByName(cfg.Hash)
	if err != nil {
		return nil, err
	}

	s := sortmerkle.NewStore(log, sortmerkle.StoreConfig{Hasher: h})
	if err := addConfiguredLeaves(s, h, cfg); err != nil {
		return nil, err
	}

	return s.Build(), nil
}

func addConfiguredLeaves(s *sortmerkle.Store, h smhash.Hasher, cfg treeConfig) error {
	if cfg.Text {
		raw := make([][]byte, len(cfg.Leaves))
		for i, l := range cfg.Leaves {
			raw[i] = []byte(l)
		}
		return s.AddLeaves(raw, true)
	}

	if err := s.AddLeavesHex(cfg.Leaves, cfg.HashLeaves); err != nil {
		if !cfg.HashLeaves {
			return fmt.Errorf("%w (leaves must be %d-byte hex digests unless -hash-leaves or -text is set)", err, h.Size())
		}
		return err
	}
	return nil
}
