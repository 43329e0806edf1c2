// Package endpoints stores registered foreign emitters.
package endpoints

import (
	"fmt"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

// Endpoint is a registered emitter, stored at its derived address.
type Endpoint struct {
	Address types.Address
	Chain   types.ChainID
	Emitter types.Address
}

// Add stores the endpoint. Re-registering a chain or address fails with sql.ErrObjectExists.
func Add(db sql.Executor, ep Endpoint) error {
	if _, err := db.Exec(`insert into endpoints (address, chain, emitter) values (?1, ?2, ?3);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, ep.Address[:])
			stmt.BindInt64(2, int64(ep.Chain))
			stmt.BindBytes(3, ep.Emitter[:])
		}, nil); err != nil {
		return fmt.Errorf("insert endpoint %s: %w", ep.Address.ShortString(), err)
	}
	return nil
}

// Get loads the endpoint stored at address.
func Get(db sql.Executor, address types.Address) (Endpoint, error) {
	ep := Endpoint{Address: address}
	rows, err := db.Exec("select chain, emitter from endpoints where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
		}, func(stmt *sql.Statement) bool {
			ep.Chain = types.ChainID(stmt.ColumnInt64(0))
			stmt.ColumnBytes(1, ep.Emitter[:])
			return false
		})
	if err != nil {
		return Endpoint{}, fmt.Errorf("get endpoint %s: %w", address.ShortString(), err)
	}
	if rows == 0 {
		return Endpoint{}, fmt.Errorf("%w: endpoint %s", sql.ErrNotFound, address.ShortString())
	}
	return ep, nil
}
