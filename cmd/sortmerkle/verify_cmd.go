package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/gordian-engine/sortmerkle"
)

// runVerifyCmd implements `sortmerkle verify`.
// It prints true or false and exits 1 when the proof does not validate.
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		hashName  string
		leafHex   string
		rootHex   string
		proofJSON string
	)

	cmd.StringVar(&hashName, "hash", defaultHash, "Hash function: keccak256, sha256, or blake3")
	cmd.StringVar(&leafHex, "leaf", "", "Hex leaf digest (REQUIRED)")
	cmd.StringVar(&rootHex, "root", "", "Hex root digest (REQUIRED)")
	cmd.StringVar(&proofJSON, "proof", "[]", `Proof as JSON, e.g. '[{"right":"ab.."},{"left":"cd.."}]'`)

	if err := cmd.Parse(args); err != nil {
		return 2
	}

	if leafHex == "" || rootHex == "" {
		_, _ = fmt.Fprintln(stderr, "Error: -leaf and -root are required")
		return 2
	}

	h, err := hasherByName(hashName)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	var proof sortmerkle.Proof
	if err := json.Unmarshal([]byte(proofJSON), &proof); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: invalid proof: %v\n", err)
		return 2
	}

	ok, err := sortmerkle.ValidateProofHex(h, proof, leafHex, rootHex)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	_, _ = fmt.Fprintln(stdout, ok)
	if !ok {
		return 1
	}
	return 0
}
