// Package claims stores consumed attestations.
package claims

import (
	"fmt"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

// Claim records that a message was consumed.
type Claim struct {
	Address types.Address
	Key     types.ClaimKey
	Digest  types.Hash32
}

// Add stores the claim. A second claim at the same address fails with
// sql.ErrObjectExists. The same message may be claimed at different addresses.
func Add(db sql.Executor, claim Claim) error {
	if _, err := db.Exec(`insert into claims (address, emitter_chain, emitter, sequence, digest)
		values (?1, ?2, ?3, ?4, ?5);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, claim.Address[:])
			stmt.BindInt64(2, int64(claim.Key.EmitterChain))
			stmt.BindBytes(3, claim.Key.EmitterAddress[:])
			stmt.BindInt64(4, int64(claim.Key.Sequence))
			stmt.BindBytes(5, claim.Digest[:])
		}, nil); err != nil {
		return fmt.Errorf("insert claim %s: %w", claim.Key, err)
	}
	return nil
}

// Has returns true if a claim is stored at address.
func Has(db sql.Executor, address types.Address) (bool, error) {
	rows, err := db.Exec("select 1 from claims where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
		}, nil)
	if err != nil {
		return false, fmt.Errorf("has claim %s: %w", address.ShortString(), err)
	}
	return rows > 0, nil
}

// Get loads the claim stored at address.
func Get(db sql.Executor, address types.Address) (Claim, error) {
	claim := Claim{Address: address}
	rows, err := db.Exec(`select emitter_chain, emitter, sequence, digest from claims where address = ?1;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
		}, func(stmt *sql.Statement) bool {
			claim.Key.EmitterChain = types.ChainID(stmt.ColumnInt64(0))
			stmt.ColumnBytes(1, claim.Key.EmitterAddress[:])
			claim.Key.Sequence = uint64(stmt.ColumnInt64(2))
			stmt.ColumnBytes(3, claim.Digest[:])
			return false
		})
	if err != nil {
		return Claim{}, fmt.Errorf("get claim %s: %w", address.ShortString(), err)
	}
	if rows == 0 {
		return Claim{}, fmt.Errorf("%w: claim %s", sql.ErrNotFound, address.ShortString())
	}
	return claim, nil
}

// Count returns the number of stored claims.
func Count(db sql.Executor) (int, error) {
	var count int
	if _, err := db.Exec("select count(*) from claims;", nil, func(stmt *sql.Statement) bool {
		count = stmt.ColumnInt(0)
		return false
	}); err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}
	return count, nil
}
