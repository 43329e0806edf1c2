package merkle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProofEncoding(t *testing.T) {
	tree, err := Build(genLeaves(11))
	require.NoError(t, err)
	leaf := []byte("leaf-9")
	proof, err := tree.Prove(leaf)
	require.NoError(t, err)

	buf, err := proof.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, proof.EncodedLen())
	require.Equal(t, byte(len(proof)), buf[0])

	decoded, err := DecodeProof(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, proof, decoded)
	require.True(t, Verify(tree.Root(), leaf, decoded))
}

func TestDecodeProofMalformed(t *testing.T) {
	for _, tc := range []struct {
		desc string
		buf  []byte
	}{
		{desc: "empty", buf: nil},
		{desc: "truncated node", buf: append([]byte{1, 0}, make([]byte, 10)...)},
		{desc: "missing node", buf: append([]byte{2, 1}, make([]byte, 20)...)},
		{desc: "bad side", buf: append([]byte{1, 2}, make([]byte, 20)...)},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := DecodeProof(bytes.NewReader(tc.buf))
			require.ErrorIs(t, err, ErrMalformedProof)
		})
	}
}

func TestSideString(t *testing.T) {
	require.Equal(t, "left", Left.String())
	require.Equal(t, "right", Right.String())
	require.Equal(t, "side(3)", Side(3).String())
}
