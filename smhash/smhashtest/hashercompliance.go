package smhashtest

import (
	"bytes"
	"sync"
	"testing"

	"github.com/gordian-engine/sortmerkle/smhash"
	"github.com/stretchr/testify/require"
)

type HasherFactory func() smhash.Hasher

// TestHasherCompliance runs the behaviors every [smhash.Hasher]
// must satisfy for trees and proofs to agree across processes.
func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("size is positive", func(t *testing.T) {
		t.Parallel()

		require.Positive(t, f().Size())
	})

	t.Run("hash is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()

		a := smhash.Sum(h, []byte("deterministic_data"))
		b := smhash.Sum(h, []byte("deterministic_data"))

		require.Equal(t, a, b)
		require.Len(t, a, h.Size())
	})

	t.Run("parts are concatenated", func(t *testing.T) {
		t.Parallel()

		h := f()

		split := smhash.Sum(h, []byte("left"), []byte("right"))
		joined := smhash.Sum(h, []byte("leftright"))

		require.Equal(t, joined, split)
	})

	t.Run("order of parts matters", func(t *testing.T) {
		t.Parallel()

		h := f()

		lr := smhash.Sum(h, []byte("left"), []byte("right"))
		rl := smhash.Sum(h, []byte("right"), []byte("left"))

		require.NotEqual(t, lr, rl)
	})

	t.Run("appends to dst", func(t *testing.T) {
		t.Parallel()

		h := f()

		prefix := []byte("prefix")
		dst := make([]byte, len(prefix), len(prefix)+h.Size())
		copy(dst, prefix)

		out := h.Hash(dst, []byte("data"))

		require.Len(t, out, len(prefix)+h.Size())
		require.True(t, bytes.HasPrefix(out, prefix))
		require.Equal(t, smhash.Sum(h, []byte("data")), out[len(prefix):])
	})

	t.Run("safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		h := f()
		want := smhash.Sum(h, []byte("concurrent"))

		const n = 16
		got := make([][]byte, n)

		var wg sync.WaitGroup
		wg.Add(n)
		for i := range n {
			go func() {
				defer wg.Done()
				got[i] = smhash.Sum(h, []byte("concurrent"))
			}()
		}
		wg.Wait()

		for i := range n {
			require.Equal(t, want, got[i])
		}
	})
}
