package sortmerkle_test

import (
	"testing"

	"github.com/gordian-engine/sortmerkle"
	"github.com/gordian-engine/sortmerkle/smhash/smsha256"
	"github.com/stretchr/testify/require"
)

func TestValidateProof_emptyProof(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	leaves := hashedLeaves(h, "a", "b")

	require.True(t, sortmerkle.ValidateProof(h, nil, leaves[0], leaves[0]))
	require.False(t, sortmerkle.ValidateProof(h, nil, leaves[0], leaves[1]))
	require.False(t, sortmerkle.ValidateProof(h, sortmerkle.Proof{}, leaves[0], leaves[1]))
}

func TestValidateProof_malformedPosition(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	tree := sortmerkle.Build(h, randomLeaves(t, 4))
	root, _ := tree.Root()
	leaf, _ := tree.Leaf(1)

	proof, ok := tree.Proof(1)
	require.True(t, ok)
	require.True(t, sortmerkle.ValidateProof(h, proof, leaf, root))

	for _, pos := range []sortmerkle.Position{sortmerkle.InvalidPosition, 3, 255} {
		bad := append(sortmerkle.Proof(nil), proof...)
		bad[1].Position = pos

		require.False(t, sortmerkle.ValidateProof(h, bad, leaf, root), "position %v", pos)
	}
}

func TestValidateProof_swappedPosition(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	tree := sortmerkle.Build(h, randomLeaves(t, 4))
	root, _ := tree.Root()
	leaf, _ := tree.Leaf(0)

	proof, _ := tree.Proof(0)
	bad := append(sortmerkle.Proof(nil), proof...)
	bad[0].Position = sortmerkle.Left

	require.False(t, sortmerkle.ValidateProof(h, bad, leaf, root))
}

func TestValidateProof_doesNotModifyInputs(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	tree := sortmerkle.Build(h, randomLeaves(t, 5))
	root, _ := tree.Root()
	leaf, _ := tree.Leaf(2)
	proof, _ := tree.Proof(2)

	leafCopy := leaf.Clone()
	rootCopy := root.Clone()

	require.True(t, sortmerkle.ValidateProof(h, proof, leaf, root))
	require.Equal(t, leafCopy, leaf)
	require.Equal(t, rootCopy, root)

	// Validating twice gives the same answer.
	require.True(t, sortmerkle.ValidateProof(h, proof, leaf, root))
}

func TestValidateProofHex_encodingErrors(t *testing.T) {
	t.Parallel()

	h := smsha256.Hasher{}
	leaf := hashedLeaves(h, "a")[0]

	_, err := sortmerkle.ValidateProofHex(h, nil, "abc", leaf.Hex())
	var encErr *sortmerkle.InvalidEncodingError
	require.ErrorAs(t, err, &encErr)

	_, err = sortmerkle.ValidateProofHex(h, nil, leaf.Hex(), "not hex!")
	require.ErrorAs(t, err, &encErr)

	ok, err := sortmerkle.ValidateProofHex(h, nil, leaf.Hex(), leaf.Hex())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPosition_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "left", sortmerkle.Left.String())
	require.Equal(t, "right", sortmerkle.Right.String())
	require.Equal(t, "Position(0)", sortmerkle.InvalidPosition.String())
}
