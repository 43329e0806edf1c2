package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/derive"
	"github.com/attestlabs/go-attest/log/logtest"
	"github.com/attestlabs/go-attest/sql"
	"github.com/attestlabs/go-attest/sql/claims"
	"github.com/attestlabs/go-attest/sql/tokenaccounts"
	"github.com/attestlabs/go-attest/vaa"
)

var program = types.Address{0xb0}

func testVAA(sequence uint64) *vaa.VAA {
	return &vaa.VAA{
		Header: vaa.Header{Version: vaa.SupportedVersion},
		Body: vaa.Body{
			EmitterChain:   types.ChainEthereum,
			EmitterAddress: types.Address{0xe1},
			Sequence:       sequence,
			Payload:        []byte{1, 2, 3},
		},
	}
}

func newTestLedger(tb testing.TB) (*Ledger, *sql.Database) {
	db := sql.InMemory()
	tb.Cleanup(func() { require.NoError(tb, db.Close()) })
	return New(db, program, WithLogger(logtest.New(tb))), db
}

func credit(address types.Address) Effect {
	return func(tx *sql.Tx) error {
		return tokenaccounts.Credit(tx, address, 1)
	}
}

func TestConsumeOnce(t *testing.T) {
	l, db := newTestLedger(t)
	ctx := context.Background()
	holder := types.Address{0xaa}
	require.NoError(t, tokenaccounts.Add(db, types.TokenAccount{Address: holder}))

	v := testVAA(1)
	claimedBefore, err := l.IsClaimed(v.ClaimKey())
	require.NoError(t, err)
	require.False(t, claimedBefore)

	require.NoError(t, l.Consume(ctx, v, credit(holder)))
	require.ErrorIs(t, l.Consume(ctx, v, credit(holder)), ErrReplay)

	claimedAfter, err := l.IsClaimed(v.ClaimKey())
	require.NoError(t, err)
	require.True(t, claimedAfter)

	account, err := tokenaccounts.Get(db, holder)
	require.NoError(t, err)
	require.Equal(t, uint64(1), account.Amount)

	claim, err := claims.Get(db, derive.Derive(derive.Claim(v.ClaimKey()), program))
	require.NoError(t, err)
	require.Equal(t, v.Digest(), claim.Digest)
}

func TestReplayIgnoresSignatures(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	v := testVAA(2)
	require.NoError(t, l.Consume(ctx, v, nil))

	resigned := testVAA(2)
	resigned.GuardianSetIndex = 1
	resigned.Signatures = []vaa.Signature{{Index: 3}}
	require.ErrorIs(t, l.Consume(ctx, resigned, nil), ErrReplay)
}

func TestEffectFailureRollsBackClaim(t *testing.T) {
	l, db := newTestLedger(t)
	ctx := context.Background()
	v := testVAA(3)

	failure := errors.New("effect failed")
	require.ErrorIs(t, l.Consume(ctx, v, func(tx *sql.Tx) error {
		require.NoError(t, tokenaccounts.Add(tx, types.TokenAccount{Address: types.Address{1}}))
		return failure
	}), failure)

	claimed, err := l.IsClaimed(v.ClaimKey())
	require.NoError(t, err)
	require.False(t, claimed)
	_, err = tokenaccounts.Get(db, types.Address{1})
	require.ErrorIs(t, err, sql.ErrNotFound)

	require.NoError(t, l.Consume(ctx, v, nil))
}

func TestDistinctMessages(t *testing.T) {
	l, db := newTestLedger(t)
	ctx := context.Background()
	for seq := uint64(0); seq < 5; seq++ {
		require.NoError(t, l.Consume(ctx, testVAA(seq), nil))
	}
	other := testVAA(0)
	other.EmitterChain = types.ChainSolana
	require.NoError(t, l.Consume(ctx, other, nil))

	count, err := claims.Count(db)
	require.NoError(t, err)
	require.Equal(t, 6, count)
}

func TestClaimInCallerTx(t *testing.T) {
	_, db := newTestLedger(t)
	key := testVAA(9).ClaimKey()
	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		address, err := Claim(tx, program, key, types.Hash32{1})
		require.NoError(t, err)
		require.Equal(t, derive.Derive(derive.Claim(key), program), address)
		_, err = Claim(tx, program, key, types.Hash32{2})
		return err
	})
	require.ErrorIs(t, err, ErrReplay)

	claimed, err := IsClaimed(db, program, key)
	require.NoError(t, err)
	require.False(t, claimed)
}

func TestClaimsArePerProgram(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	ctx := context.Background()
	accumulator := New(db, types.Address{0xc0}, WithLogger(logtest.New(t)))
	bridge := New(db, types.Address{0xb0}, WithLogger(logtest.New(t)))

	v := testVAA(7)
	require.NoError(t, accumulator.Consume(ctx, v, nil))

	claimed, err := bridge.IsClaimed(v.ClaimKey())
	require.NoError(t, err)
	require.False(t, claimed)
	require.NoError(t, bridge.Consume(ctx, v, nil))

	for _, l := range []*Ledger{accumulator, bridge} {
		claimed, err := l.IsClaimed(v.ClaimKey())
		require.NoError(t, err)
		require.True(t, claimed)
		require.ErrorIs(t, l.Consume(ctx, v, nil), ErrReplay)
	}
	count, err := claims.Count(db)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
