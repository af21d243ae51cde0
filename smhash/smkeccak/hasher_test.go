package smkeccak_test

import (
	"encoding/hex"
	"testing"

	"github.com/gordian-engine/sortmerkle/smhash"
	"github.com/gordian-engine/sortmerkle/smhash/smkeccak"
	"github.com/gordian-engine/sortmerkle/smhash/smhashtest"
	"github.com/stretchr/testify/require"
)

func TestCompliance(t *testing.T) {
	t.Parallel()

	smhashtest.TestHasherCompliance(t, func() smhash.Hasher {
		return smkeccak.Hasher{}
	})
}

func TestHasher_emptyInput(t *testing.T) {
	t.Parallel()

	got := smhash.Sum(smkeccak.Hasher{})
	require.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(got))
}

func TestHasher_singleByte(t *testing.T) {
	t.Parallel()

	got := smhash.Sum(smkeccak.Hasher{}, []byte("a"))
	require.Equal(
		t,
		"3ac225168df54212a25c1c01fd35bebfea408fdac2e31ddd6f80a4bbf9a5f1cb",
		hex.EncodeToString(got),
	)
}
