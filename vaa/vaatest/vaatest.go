// Package vaatest provides deterministic guardians and signing helpers for tests.
package vaatest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/signing"
	"github.com/attestlabs/go-attest/vaa"
)

// DefaultGuardians is the size of the usual test set.
const DefaultGuardians = 19

// DummyGuardians returns n signers whose secret key is i+1 in the first byte.
func DummyGuardians(tb testing.TB, n int) []*signing.GuardianSigner {
	tb.Helper()
	require.LessOrEqual(tb, n, types.MaxGuardians)
	signers := make([]*signing.GuardianSigner, n)
	for i := range signers {
		secret := make([]byte, signing.PrivateKeySize)
		secret[0] = byte(i + 1)
		signer, err := signing.NewGuardianSigner(signing.WithPrivateKey(secret))
		require.NoError(tb, err)
		signers[i] = signer
	}
	return signers
}

// GuardianSet returns the set formed by signers in order.
func GuardianSet(index uint32, signers []*signing.GuardianSigner) *types.GuardianSet {
	set := &types.GuardianSet{Index: index, Keys: make([]types.GuardianKey, len(signers))}
	for i, signer := range signers {
		set.Keys[i] = signer.GuardianKey()
	}
	return set
}

// First returns the indices 0..n-1.
func First(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// Sign replaces the signatures of v with signatures from signers at indices, in the
// given order.
func Sign(tb testing.TB, v *vaa.VAA, signers []*signing.GuardianSigner, indices ...int) {
	tb.Helper()
	digest := v.Digest()
	v.Signatures = make([]vaa.Signature, 0, len(indices))
	for _, i := range indices {
		sig, err := signers[i].Sign(digest)
		require.NoError(tb, err)
		v.Signatures = append(v.Signatures, vaa.Signature{Index: uint8(i), Signature: sig})
	}
}

// New returns a version 1 envelope for set carrying payload.
func New(set uint32, body vaa.Body) *vaa.VAA {
	return &vaa.VAA{
		Header: vaa.Header{Version: vaa.SupportedVersion, GuardianSetIndex: set},
		Body:   body,
	}
}

// Encode signs v with signers at indices and returns the wire bytes.
func Encode(tb testing.TB, v *vaa.VAA, signers []*signing.GuardianSigner, indices ...int) []byte {
	tb.Helper()
	Sign(tb, v, signers, indices...)
	buf, err := v.Encode()
	require.NoError(tb, err)
	return buf
}
