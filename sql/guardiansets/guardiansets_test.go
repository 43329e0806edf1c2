package guardiansets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

func TestAddGet(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	_, err := Latest(db)
	require.ErrorIs(t, err, sql.ErrNotFound)
	_, err = Get(db, 0)
	require.ErrorIs(t, err, sql.ErrNotFound)

	sets := []*types.GuardianSet{
		{Index: 0, Keys: []types.GuardianKey{{1}, {2}}, ExpirationTime: 1_700_000_000},
		{Index: 1, Keys: []types.GuardianKey{{3}, {4}, {5}}},
	}
	for _, set := range sets {
		require.NoError(t, Add(db, set))
	}
	for _, set := range sets {
		got, err := Get(db, set.Index)
		require.NoError(t, err)
		require.Equal(t, set, got)
	}
	latest, err := Latest(db)
	require.NoError(t, err)
	require.Equal(t, uint32(1), latest)
}

func TestImmutable(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	set := &types.GuardianSet{Index: 7, Keys: []types.GuardianKey{{1}}}
	require.NoError(t, Add(db, set))
	require.ErrorIs(t, Add(db, &types.GuardianSet{Index: 7, Keys: []types.GuardianKey{{9}}}), sql.ErrObjectExists)

	got, err := Get(db, 7)
	require.NoError(t, err)
	require.Equal(t, set, got)
}
