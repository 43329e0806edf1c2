package claims

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

func TestClaims(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	claim := Claim{
		Address: types.Address{1},
		Key: types.ClaimKey{
			EmitterChain:   types.ChainEthereum,
			EmitterAddress: types.Address{2},
			Sequence:       math.MaxUint64,
		},
		Digest: types.Hash32{3},
	}
	has, err := Has(db, claim.Address)
	require.NoError(t, err)
	require.False(t, has)
	_, err = Get(db, claim.Address)
	require.ErrorIs(t, err, sql.ErrNotFound)

	require.NoError(t, Add(db, claim))
	has, err = Has(db, claim.Address)
	require.NoError(t, err)
	require.True(t, has)
	got, err := Get(db, claim.Address)
	require.NoError(t, err)
	require.Equal(t, claim, got)

	require.ErrorIs(t, Add(db, claim), sql.ErrObjectExists)
	sameMessage := claim
	sameMessage.Address = types.Address{4}
	require.NoError(t, Add(db, sameMessage))

	count, err := Count(db)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
