package sortmerkle

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/gordian-engine/sortmerkle/smhash"
)

// BatchItem is a single leaf and its proof, for [ValidateBatch].
type BatchItem struct {
	Leaf  Digest
	Proof Proof
}

// ValidateBatch validates every item against root,
// spreading the work across the given number of goroutines.
// If workers is zero, runtime.GOMAXPROCS(0) is used.
//
// The returned bitset has length len(items),
// and bit i is set if and only if items[i] is a valid proof.
//
// If ctx is cancelled before every item has been dispatched,
// ValidateBatch returns the context's cause and a nil bitset.
func ValidateBatch(
	ctx context.Context,
	h smhash.Hasher,
	root Digest,
	items []BatchItem,
	workers int,
) (*bitset.BitSet, error) {
	if workers < 0 {
		panic(fmt.Errorf("BUG: workers must not be negative (got %d)", workers))
	}
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(items))

	valid := bitset.MustNew(uint(len(items)))
	if len(items) == 0 {
		return valid, nil
	}

	// Each worker writes only to the indices it receives,
	// so the plain slice needs no extra synchronization.
	// The bitset is not safe for concurrent writes,
	// so it is populated after all workers finish.
	results := make([]bool, len(items))

	idxs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range idxs {
				results[i] = ValidateProof(h, items[i].Proof, items[i].Leaf, root)
			}
		}()
	}

	var err error
FEED:
	for i := range items {
		select {
		case <-ctx.Done():
			err = context.Cause(ctx)
			break FEED
		case idxs <- i:
		}
	}
	close(idxs)
	wg.Wait()

	if err != nil {
		return nil, err
	}

	for i, ok := range results {
		if ok {
			valid.Set(uint(i))
		}
	}

	return valid, nil
}
