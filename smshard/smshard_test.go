package smshard_test

import (
	"testing"

	"github.com/gordian-engine/sortmerkle"
	"github.com/gordian-engine/sortmerkle/internal/smtest"
	"github.com/gordian-engine/sortmerkle/smhash/smblake3"
	"github.com/gordian-engine/sortmerkle/smhash/smsha256"
	"github.com/gordian-engine/sortmerkle/smshard"
	"github.com/stretchr/testify/require"
)

func testConfig() smshard.Config {
	return smshard.Config{
		DataShards:   4,
		ParityShards: 2,
		Hasher:       smsha256.Hasher{},
	}
}

func TestCommit_proofsValidate(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	data := smtest.RandomDataForTest(t, 1000)

	c, err := smshard.Commit(data, cfg)
	require.NoError(t, err)

	require.Equal(t, 1000, c.Size)
	require.Len(t, c.Shards, 6)
	require.Len(t, c.Leaves, 6)
	require.Len(t, c.Proofs, 6)

	for i, s := range c.Shards {
		leaf := smshard.ShardLeaf(cfg.Hasher, i, s)
		require.Equal(t, c.Leaves[i], leaf)
		require.True(t, sortmerkle.ValidateProof(cfg.Hasher, c.Proofs[i], leaf, c.Root), "shard %d", i)
	}

	// The root matches a plain sorted tree over the same leaves.
	root, ok := sortmerkle.Build(cfg.Hasher, c.Leaves).Root()
	require.True(t, ok)
	require.Equal(t, c.Root, root)
}

func TestCommit_doesNotModifyInput(t *testing.T) {
	t.Parallel()

	data := make([]byte, 10, 100)
	copy(data, "0123456789")
	full := data[:100]
	for i := 10; i < 100; i++ {
		full[i] = 0xee
	}

	_, err := smshard.Commit(data, testConfig())
	require.NoError(t, err)

	require.Equal(t, "0123456789", string(data))
	for i := 10; i < 100; i++ {
		require.Equal(t, byte(0xee), full[i])
	}
}

func TestCommit_emptyData(t *testing.T) {
	t.Parallel()

	_, err := smshard.Commit(nil, testConfig())
	require.Error(t, err)
}

func TestCommit_invalidConfigPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_, _ = smshard.Commit([]byte("x"), smshard.Config{})
	})
}

func TestReassembler_roundTrip(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	data := smtest.RandomDataForTest(t, 1001)

	c, err := smshard.Commit(data, cfg)
	require.NoError(t, err)

	r, err := smshard.NewReassembler(smtest.NewLogger(t), cfg, c.Root, c.Size)
	require.NoError(t, err)

	// Skip the first two data shards entirely,
	// forcing reconstruction from parity.
	for _, idx := range []int{2, 3, 4} {
		ok, err := r.Add(c.Piece(idx))
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.False(t, r.CanReconstruct())

	_, err = r.Data()
	require.Error(t, err)

	ok, err := r.Add(c.Piece(5))
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, r.CanReconstruct())
	require.Equal(t, uint(4), r.Have())
	require.True(t, r.HaveShard(5))
	require.False(t, r.HaveShard(0))

	got, err := r.Data()
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestReassembler_rejectsBadPieces(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	data := smtest.RandomDataForTest(t, 512)

	c, err := smshard.Commit(data, cfg)
	require.NoError(t, err)

	r, err := smshard.NewReassembler(smtest.NewLogger(t), cfg, c.Root, c.Size)
	require.NoError(t, err)

	t.Run("corrupted data", func(t *testing.T) {
		p := c.Piece(0)
		p.Data = append([]byte(nil), p.Data...)
		p.Data[0] ^= 0xff

		ok, err := r.Add(p)
		require.NoError(t, err)
		require.False(t, ok)
		require.False(t, r.HaveShard(0))
	})

	t.Run("shard replayed at another index", func(t *testing.T) {
		p := c.Piece(1)
		p.Index = 2

		ok, err := r.Add(p)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("out of range index", func(t *testing.T) {
		p := c.Piece(1)
		p.Index = 6

		_, err := r.Add(p)
		require.Error(t, err)

		p.Index = -1
		_, err = r.Add(p)
		require.Error(t, err)
	})

	t.Run("duplicate", func(t *testing.T) {
		ok, err := r.Add(c.Piece(3))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = r.Add(c.Piece(3))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("wrong size after first accepted", func(t *testing.T) {
		p := c.Piece(4)
		p.Data = append(append([]byte(nil), p.Data...), 0)

		ok, err := r.Add(p)
		require.NoError(t, err)
		require.False(t, ok)
	})

	require.Equal(t, uint(1), r.Have())
}

func TestReassembler_differentRoot(t *testing.T) {
	t.Parallel()

	cfg := smshard.Config{
		DataShards:   3,
		ParityShards: 3,
		Hasher:       smblake3.Hasher{},
	}

	c1, err := smshard.Commit([]byte("first payload"), cfg)
	require.NoError(t, err)
	c2, err := smshard.Commit([]byte("other payload"), cfg)
	require.NoError(t, err)

	r, err := smshard.NewReassembler(smtest.NewLogger(t), cfg, c1.Root, c1.Size)
	require.NoError(t, err)

	for i := range c2.Shards {
		ok, err := r.Add(c2.Piece(i))
		require.NoError(t, err)
		require.False(t, ok, "shard %d from another payload accepted", i)
	}

	for i := range c1.Shards {
		ok, err := r.Add(c1.Piece(i))
		require.NoError(t, err)
		require.True(t, ok)
	}

	got, err := r.Data()
	require.NoError(t, err)
	require.Equal(t, "first payload", string(got))
}

func TestNewReassembler_invalidArgs(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	root := make([]byte, smsha256.HashSize)

	_, err := smshard.NewReassembler(smtest.NewLogger(t), cfg, root, 0)
	require.Error(t, err)

	_, err = smshard.NewReassembler(smtest.NewLogger(t), cfg, root[:5], 10)
	require.Error(t, err)
}
