// Package mints stores token mints together with wrapped asset and display metadata.
package mints

import (
	"fmt"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

// Add creates a mint.
func Add(db sql.Executor, mint types.Mint) error {
	if _, err := db.Exec(`insert into mints (address, authority, decimals, supply) values (?1, ?2, ?3, ?4);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, mint.Address[:])
			stmt.BindBytes(2, mint.Authority[:])
			stmt.BindInt64(3, int64(mint.Decimals))
			stmt.BindInt64(4, int64(mint.Supply))
		}, nil); err != nil {
		return fmt.Errorf("insert mint %s: %w", mint.Address.ShortString(), err)
	}
	return nil
}

// Get loads the mint at address.
func Get(db sql.Executor, address types.Address) (types.Mint, error) {
	mint := types.Mint{Address: address}
	rows, err := db.Exec("select authority, decimals, supply from mints where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
		}, func(stmt *sql.Statement) bool {
			stmt.ColumnBytes(0, mint.Authority[:])
			mint.Decimals = uint8(stmt.ColumnInt64(1))
			mint.Supply = uint64(stmt.ColumnInt64(2))
			return false
		})
	if err != nil {
		return types.Mint{}, fmt.Errorf("get mint %s: %w", address.ShortString(), err)
	}
	if rows == 0 {
		return types.Mint{}, fmt.Errorf("%w: mint %s", sql.ErrNotFound, address.ShortString())
	}
	return mint, nil
}

// Has returns true if a mint exists at address.
func Has(db sql.Executor, address types.Address) (bool, error) {
	rows, err := db.Exec("select 1 from mints where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
		}, nil)
	if err != nil {
		return false, fmt.Errorf("has mint %s: %w", address.ShortString(), err)
	}
	return rows > 0, nil
}

// AddSupply increases the supply of a mint.
func AddSupply(db sql.Executor, address types.Address, amount uint64) error {
	rows, err := db.Exec("update mints set supply = supply + ?2 where address = ?1 returning supply;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
			stmt.BindInt64(2, int64(amount))
		}, nil)
	if err != nil {
		return fmt.Errorf("add supply to %s: %w", address.ShortString(), err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: mint %s", sql.ErrNotFound, address.ShortString())
	}
	return nil
}

// AddWrappedMeta records the origin of a wrapped mint.
func AddWrappedMeta(db sql.Executor, meta types.WrappedMeta) error {
	if _, err := db.Exec(`insert into wrapped_meta (address, mint, token_chain, token_address, token_id)
		values (?1, ?2, ?3, ?4, ?5);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, meta.Address[:])
			stmt.BindBytes(2, meta.Mint[:])
			stmt.BindInt64(3, int64(meta.TokenChain))
			stmt.BindBytes(4, meta.TokenAddress[:])
			stmt.BindBytes(5, meta.TokenID[:])
		}, nil); err != nil {
		return fmt.Errorf("insert wrapped meta %s: %w", meta.Mint.ShortString(), err)
	}
	return nil
}

// GetWrappedMeta loads the wrapped meta record stored at address.
func GetWrappedMeta(db sql.Executor, address types.Address) (types.WrappedMeta, error) {
	meta := types.WrappedMeta{Address: address}
	rows, err := db.Exec(`select mint, token_chain, token_address, token_id from wrapped_meta where address = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
		}, func(stmt *sql.Statement) bool {
			stmt.ColumnBytes(0, meta.Mint[:])
			meta.TokenChain = types.ChainID(stmt.ColumnInt64(1))
			stmt.ColumnBytes(2, meta.TokenAddress[:])
			stmt.ColumnBytes(3, meta.TokenID[:])
			return false
		})
	if err != nil {
		return types.WrappedMeta{}, fmt.Errorf("get wrapped meta %s: %w", address.ShortString(), err)
	}
	if rows == 0 {
		return types.WrappedMeta{}, fmt.Errorf("%w: wrapped meta %s", sql.ErrNotFound, address.ShortString())
	}
	return meta, nil
}

// AddMetadata stores display metadata for a mint.
func AddMetadata(db sql.Executor, md types.TokenMetadata) error {
	if _, err := db.Exec(`insert into token_metadata (mint, name, symbol, uri) values (?1, ?2, ?3, ?4);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, md.Mint[:])
			stmt.BindText(2, md.Name)
			stmt.BindText(3, md.Symbol)
			stmt.BindText(4, md.URI)
		}, nil); err != nil {
		return fmt.Errorf("insert metadata %s: %w", md.Mint.ShortString(), err)
	}
	return nil
}

// GetMetadata loads display metadata for a mint.
func GetMetadata(db sql.Executor, mint types.Address) (types.TokenMetadata, error) {
	md := types.TokenMetadata{Mint: mint}
	rows, err := db.Exec("select name, symbol, uri from token_metadata where mint = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, mint[:])
		}, func(stmt *sql.Statement) bool {
			md.Name = stmt.ColumnText(0)
			md.Symbol = stmt.ColumnText(1)
			md.URI = stmt.ColumnText(2)
			return false
		})
	if err != nil {
		return types.TokenMetadata{}, fmt.Errorf("get metadata %s: %w", mint.ShortString(), err)
	}
	if rows == 0 {
		return types.TokenMetadata{}, fmt.Errorf("%w: metadata %s", sql.ErrNotFound, mint.ShortString())
	}
	return md, nil
}
