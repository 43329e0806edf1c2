package pricefeeds

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

func TestUpsert(t *testing.T) {
	db := sql.InMemory()
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	feed := types.PriceFeed{
		ID:              types.Hash32{1},
		Price:           -12,
		Conf:            3,
		Exponent:        -8,
		PublishTime:     100,
		PrevPublishTime: 99,
		EMAPrice:        11,
		EMAConf:         2,
		Slot:            7,
	}
	_, err := Get(db, feed.ID)
	require.ErrorIs(t, err, sql.ErrNotFound)

	updated, err := Upsert(db, feed)
	require.NoError(t, err)
	require.True(t, updated)

	older := feed
	older.Price = 1
	older.PublishTime = 50
	updated, err = Upsert(db, older)
	require.NoError(t, err)
	require.False(t, updated)

	same := feed
	same.Price = 2
	updated, err = Upsert(db, same)
	require.NoError(t, err)
	require.False(t, updated)

	got, err := Get(db, feed.ID)
	require.NoError(t, err)
	require.Equal(t, feed, got)

	newer := feed
	newer.Price = 5
	newer.PublishTime = 101
	newer.PrevPublishTime = 100
	updated, err = Upsert(db, newer)
	require.NoError(t, err)
	require.True(t, updated)
	got, err = Get(db, feed.ID)
	require.NoError(t, err)
	require.Equal(t, newer, got)
}
