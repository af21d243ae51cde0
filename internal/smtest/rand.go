package smtest

import (
	"crypto/sha256"
	"math/rand/v2"
	"testing"
)

// RandomDataForTest returns a byte slice of size sz
// containing pseudorandom data, derived from a seed based on the test name.
func RandomDataForTest(t *testing.T, sz int) []byte {
	// Sha256 happens to be the right size for the chacha8 seed,
	// and this fits well anyway since that means
	// we are not limited by the length of any particular test name.
	seed := sha256.Sum256([]byte(t.Name()))
	chacha := rand.NewChaCha8(seed)

	out := make([]byte, sz)

	if _, err := chacha.Read(out); err != nil {
		panic(err)
	}

	return out
}

// RandomLeavesForTest returns n distinct pseudorandom leaves of size sz,
// seeded from the test name like [RandomDataForTest].
//
// Distinctness matters for tests that substitute one leaf for another
// and expect the substitution to be detected.
func RandomLeavesForTest(t *testing.T, n, sz int) [][]byte {
	data := RandomDataForTest(t, n*sz)

	out := make([][]byte, n)
	seen := make(map[string]struct{}, n)
	for i := range n {
		leaf := data[i*sz : (i+1)*sz]
		if _, ok := seen[string(leaf)]; ok {
			t.Fatalf("BUG: pseudorandom leaf %d collided; choose a larger size", i)
		}
		seen[string(leaf)] = struct{}{}
		out[i] = leaf
	}

	return out
}
