// Package pricefeeds stores the newest accepted price per feed.
package pricefeeds

import (
	"fmt"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

// Upsert stores feed unless the stored price has the same or a later publish time.
// It returns true if the stored price was replaced.
func Upsert(db sql.Executor, feed types.PriceFeed) (bool, error) {
	rows, err := db.Exec(`insert into price_feeds
		(feed_id, price, conf, exponent, publish_time, prev_publish_time, ema_price, ema_conf, slot)
		values (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9)
		on conflict (feed_id) do update set
			price = ?2, conf = ?3, exponent = ?4, publish_time = ?5,
			prev_publish_time = ?6, ema_price = ?7, ema_conf = ?8, slot = ?9
		where publish_time < ?5
		returning feed_id;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, feed.ID[:])
			stmt.BindInt64(2, feed.Price)
			stmt.BindInt64(3, int64(feed.Conf))
			stmt.BindInt64(4, int64(feed.Exponent))
			stmt.BindInt64(5, feed.PublishTime)
			stmt.BindInt64(6, feed.PrevPublishTime)
			stmt.BindInt64(7, feed.EMAPrice)
			stmt.BindInt64(8, int64(feed.EMAConf))
			stmt.BindInt64(9, int64(feed.Slot))
		}, nil)
	if err != nil {
		return false, fmt.Errorf("upsert feed %s: %w", feed.ID.ShortString(), err)
	}
	return rows > 0, nil
}

// Get loads the stored price of a feed.
func Get(db sql.Executor, id types.Hash32) (types.PriceFeed, error) {
	feed := types.PriceFeed{ID: id}
	rows, err := db.Exec(`select price, conf, exponent, publish_time, prev_publish_time, ema_price, ema_conf, slot
		from price_feeds where feed_id = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, id[:])
		}, func(stmt *sql.Statement) bool {
			feed.Price = stmt.ColumnInt64(0)
			feed.Conf = uint64(stmt.ColumnInt64(1))
			feed.Exponent = int32(stmt.ColumnInt64(2))
			feed.PublishTime = stmt.ColumnInt64(3)
			feed.PrevPublishTime = stmt.ColumnInt64(4)
			feed.EMAPrice = stmt.ColumnInt64(5)
			feed.EMAConf = uint64(stmt.ColumnInt64(6))
			feed.Slot = uint64(stmt.ColumnInt64(7))
			return false
		})
	if err != nil {
		return types.PriceFeed{}, fmt.Errorf("get feed %s: %w", id.ShortString(), err)
	}
	if rows == 0 {
		return types.PriceFeed{}, fmt.Errorf("%w: feed %s", sql.ErrNotFound, id.ShortString())
	}
	return feed, nil
}
