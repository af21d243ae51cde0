// Command sortmerkle builds sorted Merkle trees, validates inclusion proofs,
// and serves or fetches proofs over QUIC.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run dispatches to a subcommand and returns the process exit code.
//
// Exit codes:
//
//	0 = success
//	1 = a proof failed validation
//	2 = usage or runtime error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "build":
		return runBuildCmd(args[2:], stdout, stderr)
	case "verify":
		return runVerifyCmd(args[2:], stdout, stderr)
	case "demo":
		return runDemoCmd(args[2:], stdout, stderr)
	case "serve":
		return runServeCmd(args[2:], stdout, stderr)
	case "fetch":
		return runFetchCmd(args[2:], stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `Usage: sortmerkle <command> [flags]

Commands:
  build    Build a tree and print its root and every proof as JSON
  verify   Validate a JSON proof for a leaf against a root
  demo     Build the five-leaf a..e tree and show good and bad validations
  serve    Serve a tree's root and proofs over QUIC
  fetch    Fetch a root or proof from a running server

Run 'sortmerkle <command> -h' for command flags.
`)
}

// newLogger returns a text logger on w, at debug level if verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
