package smsha256_test

import (
	"encoding/hex"
	"testing"

	"github.com/gordian-engine/sortmerkle/smhash"
	"github.com/gordian-engine/sortmerkle/smhash/smsha256"
	"github.com/gordian-engine/sortmerkle/smhash/smhashtest"
	"github.com/stretchr/testify/require"
)

func TestCompliance(t *testing.T) {
	t.Parallel()

	smhashtest.TestHasherCompliance(t, func() smhash.Hasher {
		return smsha256.Hasher{}
	})
}

func TestHasher_emptyInput(t *testing.T) {
	t.Parallel()

	got := smhash.Sum(smsha256.Hasher{})
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hex.EncodeToString(got))
}
