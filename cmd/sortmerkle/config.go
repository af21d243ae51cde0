package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// treeConfig describes the leaves of a tree and how they are interpreted.
// It can be loaded from a YAML file and overridden by flags.
type treeConfig struct {
	Hash       string   `yaml:"hash"`
	HashLeaves bool     `yaml:"hash_leaves"`
	Text       bool     `yaml:"text"`
	Leaves     []string `yaml:"leaves"`
}

func loadTreeConfig(path string) (treeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return treeConfig{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg treeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return treeConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// treeFlags registers the flags shared by commands that build a tree.
type treeFlags struct {
	configPath string
	hash       string
	hashLeaves bool
	text       bool
	verbose    bool
}

func (f *treeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML file with hash, hash_leaves, text, and leaves")
	fs.StringVar(&f.hash, "hash", defaultHash, "Hash function: keccak256, sha256, or blake3")
	fs.BoolVar(&f.hashLeaves, "hash-leaves", false, "Hash each leaf before inserting it")
	fs.BoolVar(&f.text, "text", false, "Treat leaves as UTF-8 text and hash them (implies -hash-leaves)")
	fs.BoolVar(&f.verbose, "v", false, "Enable debug logging")
}

// resolve merges the config file, if any, with the flags that were set explicitly
// and the remaining positional leaves.
func (f *treeFlags) resolve(fs *flag.FlagSet) (treeConfig, error) {
	cfg := treeConfig{Hash: defaultHash}
	if f.configPath != "" {
		loaded, err := loadTreeConfig(f.configPath)
		if err != nil {
			return treeConfig{}, err
		}
		cfg = loaded
		if cfg.Hash == "" {
			cfg.Hash = defaultHash
		}
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "hash":
			cfg.Hash = f.hash
		case "hash-leaves":
			cfg.HashLeaves = f.hashLeaves
		case "text":
			cfg.Text = f.text
		}
	})

	cfg.Leaves = append(cfg.Leaves, fs.Args()...)
	return cfg, nil
}
