package sortmerkle_test

import (
	"encoding/json"
	"testing"

	"github.com/gordian-engine/sortmerkle"
	"github.com/gordian-engine/sortmerkle/smhash/smsha256"
	"github.com/stretchr/testify/require"
)

func TestProof_JSON(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	tree := sortmerkle.Build(h, randomLeaves(t, 5))
	root, _ := tree.Root()

	for i := range tree.LeafCount() {
		proof, _ := tree.Proof(i)

		b, err := json.Marshal(proof)
		require.NoError(t, err)

		var decoded sortmerkle.Proof
		require.NoError(t, json.Unmarshal(b, &decoded))
		require.Equal(t, proof, decoded)

		leaf, _ := tree.Leaf(i)
		require.True(t, sortmerkle.ValidateProof(h, decoded, leaf, root))
	}
}

func TestProof_JSON_format(t *testing.T) {
	t.Parallel()

	p := sortmerkle.Proof{
		{Position: sortmerkle.Right, Digest: sortmerkle.MustParseHex("aa")},
		{Position: sortmerkle.Left, Digest: sortmerkle.MustParseHex("bbcc")},
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `[{"right":"aa"},{"left":"bbcc"}]`, string(b))

	b, err = json.Marshal(sortmerkle.Proof(nil))
	require.NoError(t, err)
	require.Equal(t, "[]", string(b))
}

func TestProof_JSON_malformedEntries(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	tree := sortmerkle.Build(h, randomLeaves(t, 2))
	root, _ := tree.Root()
	leaf, _ := tree.Leaf(0)
	sib, _ := tree.Leaf(1)

	for name, in := range map[string]string{
		"neither key": `[{}]`,
		"both keys":   `[{"left":"` + sib.Hex() + `","right":"` + sib.Hex() + `"}]`,
		"other key":   `[{"up":"` + sib.Hex() + `"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var p sortmerkle.Proof
			require.NoError(t, json.Unmarshal([]byte(in), &p))
			require.Len(t, p, 1)
			require.Equal(t, sortmerkle.InvalidPosition, p[0].Position)

			require.False(t, sortmerkle.ValidateProof(h, p, leaf, root))

			// And it survives re-encoding as malformed.
			b, err := json.Marshal(p)
			require.NoError(t, err)
			require.JSONEq(t, `[{}]`, string(b))
		})
	}
}

func TestProof_JSON_badHex(t *testing.T) {
	t.Parallel()

	var p sortmerkle.Proof
	err := json.Unmarshal([]byte(`[{"left":"abc"}]`), &p)

	var encErr *sortmerkle.InvalidEncodingError
	require.ErrorAs(t, err, &encErr)
	require.Equal(t, "abc", encErr.Input)
}

func TestProof_Binary(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	tree := sortmerkle.Build(h, randomLeaves(t, 9))

	for i := range tree.LeafCount() {
		proof, _ := tree.Proof(i)

		b, err := proof.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, b, 1+len(proof)*(2+smsha256.HashSize))

		var decoded sortmerkle.Proof
		require.NoError(t, decoded.UnmarshalBinary(b))
		require.Equal(t, proof, decoded)
	}
}

func TestProof_Binary_preservesUnknownPosition(t *testing.T) {
	t.Parallel()

	p := sortmerkle.Proof{
		{Position: 7, Digest: sortmerkle.MustParseHex("0102")},
	}

	b, err := p.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 7, 2, 1, 2}, b)

	var decoded sortmerkle.Proof
	require.NoError(t, decoded.UnmarshalBinary(b))
	require.Equal(t, sortmerkle.Position(7), decoded[0].Position)
}

func TestProof_Binary_truncated(t *testing.T) {
	t.Parallel()

	p := sortmerkle.Proof{
		{Position: sortmerkle.Left, Digest: sortmerkle.MustParseHex("01020304")},
	}
	b, err := p.MarshalBinary()
	require.NoError(t, err)

	for n := 0; n < len(b); n++ {
		var decoded sortmerkle.Proof
		require.Error(t, decoded.UnmarshalBinary(b[:n]), "length %d", n)
	}

	var decoded sortmerkle.Proof
	require.Error(t, decoded.UnmarshalBinary(append(b, 0)))
}

func TestDecodeProof_consumed(t *testing.T) {
	t.Parallel()

	p := sortmerkle.Proof{
		{Position: sortmerkle.Right, Digest: sortmerkle.MustParseHex("aabb")},
	}
	b, err := p.AppendBinary([]byte{})
	require.NoError(t, err)

	b = append(b, "trailer"...)

	decoded, n, err := sortmerkle.DecodeProof(b)
	require.NoError(t, err)
	require.Equal(t, p, decoded)
	require.Equal(t, "trailer", string(b[n:]))
}

func TestParseHex(t *testing.T) {
	t.Parallel()

	d, err := sortmerkle.ParseHex("00FFaB")
	require.NoError(t, err)
	require.Equal(t, sortmerkle.Digest{0x00, 0xff, 0xab}, d)
	require.Equal(t, "00ffab", d.Hex())
	require.Equal(t, "00ffab", d.String())

	for _, in := range []string{"", "0", "000", "0g", " 00"} {
		_, err := sortmerkle.ParseHex(in)
		var encErr *sortmerkle.InvalidEncodingError
		require.ErrorAs(t, err, &encErr, "input %q", in)
	}

	require.Panics(t, func() { sortmerkle.MustParseHex("x") })
}
