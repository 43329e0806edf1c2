// Package guardiansets stores published guardian sets.
package guardiansets

import (
	"fmt"

	"github.com/attestlabs/go-attest/codec"
	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

// Add stores a guardian set. Sets are immutable: adding an index twice fails with
// sql.ErrObjectExists.
func Add(db sql.Executor, set *types.GuardianSet) error {
	data, err := codec.Encode(set)
	if err != nil {
		return fmt.Errorf("encode set %d: %w", set.Index, err)
	}
	if _, err := db.Exec(`insert into guardian_sets (idx, expiration, data) values (?1, ?2, ?3);`,
		func(stmt *sql.Statement) {
			stmt.BindInt64(1, int64(set.Index))
			stmt.BindInt64(2, int64(set.ExpirationTime))
			stmt.BindBytes(3, data)
		}, nil); err != nil {
		return fmt.Errorf("insert set %d: %w", set.Index, err)
	}
	return nil
}

// Get returns the set stored under index.
func Get(db sql.Executor, index uint32) (*types.GuardianSet, error) {
	var (
		set    types.GuardianSet
		decErr error
	)
	rows, err := db.Exec("select data from guardian_sets where idx = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindInt64(1, int64(index))
		}, func(stmt *sql.Statement) bool {
			_, decErr = codec.DecodeFrom(stmt.ColumnReader(0), &set)
			return false
		})
	switch {
	case err != nil:
		return nil, fmt.Errorf("get set %d: %w", index, err)
	case rows == 0:
		return nil, fmt.Errorf("%w: guardian set %d", sql.ErrNotFound, index)
	case decErr != nil:
		return nil, fmt.Errorf("decode set %d: %w", index, decErr)
	}
	return &set, nil
}

// Latest returns the highest stored set index.
func Latest(db sql.Executor) (uint32, error) {
	var (
		latest uint32
		found  bool
	)
	if _, err := db.Exec("select max(idx) from guardian_sets;", nil,
		func(stmt *sql.Statement) bool {
			if !sql.IsNull(stmt, 0) {
				latest = uint32(stmt.ColumnInt64(0))
				found = true
			}
			return false
		}); err != nil {
		return 0, fmt.Errorf("latest set: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: no guardian sets", sql.ErrNotFound)
	}
	return latest, nil
}
