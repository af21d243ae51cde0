package smquic

import (
	"bytes"
	"testing"

	"github.com/gordian-engine/sortmerkle"
	"github.com/gordian-engine/sortmerkle/internal/smtest"
	"github.com/gordian-engine/sortmerkle/smhash/smsha256"
	"github.com/stretchr/testify/require"
)

func TestRespond_badRequest(t *testing.T) {
	t.Parallel()

	s := &Server{log: smtest.NewLogger(t)}

	resp, err := s.respond(bytes.NewReader([]byte{0x7f}))
	require.NoError(t, err)
	require.Equal(t, []byte{statusBadRequest}, resp)

	_, _, err = parseStatus(resp)
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestRespond_truncatedRequest(t *testing.T) {
	t.Parallel()

	s := &Server{log: smtest.NewLogger(t)}

	_, err := s.respond(bytes.NewReader(nil))
	require.Error(t, err)

	// Proof kind without a full index.
	_, err = s.respond(bytes.NewReader([]byte{requestProof, 0, 0}))
	require.Error(t, err)
}

func TestRespond_proofLayout(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	tree := sortmerkle.Build(h, []sortmerkle.Digest{
		h.Hash(nil, []byte("x")),
		h.Hash(nil, []byte("y")),
	})

	s := &Server{log: smtest.NewLogger(t)}
	s.tree.Store(tree)

	resp, err := s.respond(bytes.NewReader(proofRequest(1)))
	require.NoError(t, err)

	body, ok, err := parseStatus(resp)
	require.NoError(t, err)
	require.True(t, ok)

	leaf, rest, err := readDigest(body)
	require.NoError(t, err)

	wantLeaf, _ := tree.Leaf(1)
	require.Equal(t, wantLeaf, leaf)

	wantProof, _ := tree.Proof(1)
	wantBin, err := wantProof.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, wantBin, rest)
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	_, _, err := parseStatus(nil)
	require.Error(t, err)

	_, ok, err := parseStatus([]byte{statusAbsent})
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = parseStatus([]byte{statusAbsent, 1})
	require.Error(t, err)

	_, _, err = parseStatus([]byte{0x09})
	require.Error(t, err)
}

func TestReadDigest(t *testing.T) {
	t.Parallel()

	_, _, err := readDigest(nil)
	require.Error(t, err)

	_, _, err = readDigest([]byte{0})
	require.Error(t, err)

	_, _, err = readDigest([]byte{3, 1, 2})
	require.Error(t, err)

	d, rest, err := readDigest([]byte{2, 0xab, 0xcd, 0xef})
	require.NoError(t, err)
	require.Equal(t, sortmerkle.Digest{0xab, 0xcd}, d)
	require.Equal(t, []byte{0xef}, rest)
}
