package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gordian-engine/sortmerkle/smhash"
	"github.com/gordian-engine/sortmerkle/smhash/smblake3"
	"github.com/gordian-engine/sortmerkle/smhash/smkeccak"
	"github.com/gordian-engine/sortmerkle/smhash/smsha256"
)

const defaultHash = "keccak256"

var hashers = map[string]smhash.Hasher{
	"keccak256": smkeccak.Hasher{},
	"sha256":    smsha256.Hasher{},
	"blake3":    smblake3.Hasher{},
}

func hasherByName(name string) (smhash.Hasher, error) {
	h, ok := hashers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown hash %q (want one of %s)", name, strings.Join(hashNames(), ", "))
	}
	return h, nil
}

func hashNames() []string {
	names := make([]string, 0, len(hashers))
	for n := range hashers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
