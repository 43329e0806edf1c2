package derive

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
)

var program = types.Address{0xb0}

func TestDeriveLayout(t *testing.T) {
	key := Key{Purpose: "p", Seeds: [][]byte{{1, 2}, {}}}
	msg := []byte{1, 'p', 2, 1, 2, 0}
	msg = append(msg, program[:]...)
	msg = append(msg, "ProgramDerivedAddress"...)
	require.Equal(t, types.Address(sha256.Sum256(msg)), Derive(key, program))
}

func TestDeriveConsistency(t *testing.T) {
	emitter := types.Address{0xe1}
	first := Derive(Endpoint(types.ChainEthereum, emitter), program)
	require.Equal(t, first, Derive(Endpoint(types.ChainEthereum, emitter), program))
	require.NoError(t, Verify(first, Endpoint(types.ChainEthereum, emitter), program))

	distinct := map[types.Address]string{first: "endpoint"}
	for name, addr := range map[string]types.Address{
		"other chain":    Derive(Endpoint(types.ChainSolana, emitter), program),
		"other emitter":  Derive(Endpoint(types.ChainEthereum, types.Address{0xe2}), program),
		"other program":  Derive(Endpoint(types.ChainEthereum, emitter), types.Address{0xb1}),
		"custody":        Derive(Custody(emitter), program),
		"meta":           Derive(WrappedMeta(emitter), program),
		"custody signer": Derive(CustodySigner(), program),
		"mint signer":    Derive(MintSigner(), program),
	} {
		prev, exists := distinct[addr]
		require.False(t, exists, "%s collides with %s", name, prev)
		distinct[addr] = name
	}
}

func TestSeedBoundariesAreUnambiguous(t *testing.T) {
	a := Key{Purpose: "x", Seeds: [][]byte{{1, 2}, {3}}}
	b := Key{Purpose: "x", Seeds: [][]byte{{1}, {2, 3}}}
	require.NotEqual(t, Derive(a, program), Derive(b, program))
}

func TestClaimKey(t *testing.T) {
	key := types.ClaimKey{EmitterChain: types.ChainPythnet, EmitterAddress: types.Address{1}, Sequence: 5}
	addr := Derive(Claim(key), program)
	next := key
	next.Sequence++
	require.NotEqual(t, addr, Derive(Claim(next), program))
}

func TestWrapped(t *testing.T) {
	mint := Derive(Wrapped(types.ChainEthereum, types.Address{1}, types.Hash32{2}), program)
	require.NotEqual(t, mint, Derive(Wrapped(types.ChainEthereum, types.Address{1}, types.Hash32{3}), program))
	require.NoError(t, Verify(mint, Wrapped(types.ChainEthereum, types.Address{1}, types.Hash32{2}), program))
}

func TestVerifyMismatch(t *testing.T) {
	owner, mint := types.Address{1}, types.Address{2}
	associated := types.Address{0xa7}
	addr := Derive(Associated(owner, mint), associated)
	require.NoError(t, Verify(addr, Associated(owner, mint), associated))

	require.ErrorIs(t, Verify(addr, Associated(owner, mint), program), ErrAccountDerivationMismatch)
	require.ErrorIs(t, Verify(addr, Associated(mint, owner), associated), ErrAccountDerivationMismatch)
	require.ErrorIs(t, Verify(types.Address{}, Associated(owner, mint), associated), ErrAccountDerivationMismatch)
}

func TestOversizedSeedPanics(t *testing.T) {
	require.Panics(t, func() {
		Derive(Key{Purpose: "x", Seeds: [][]byte{make([]byte, MaxSeedLength+1)}}, program)
	})
}
