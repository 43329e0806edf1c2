// Package tokenaccounts stores token balances.
package tokenaccounts

import (
	"errors"
	"fmt"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/sql"
)

// ErrInsufficientBalance is returned when debiting more than an account holds.
var ErrInsufficientBalance = errors.New("tokenaccounts: insufficient balance")

// Add creates a token account.
func Add(db sql.Executor, account types.TokenAccount) error {
	if _, err := db.Exec(`insert into token_accounts (address, mint, owner, amount) values (?1, ?2, ?3, ?4);`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, account.Address[:])
			stmt.BindBytes(2, account.Mint[:])
			stmt.BindBytes(3, account.Owner[:])
			stmt.BindInt64(4, int64(account.Amount))
		}, nil); err != nil {
		return fmt.Errorf("insert token account %s: %w", account.Address.ShortString(), err)
	}
	return nil
}

// Get loads the token account at address.
func Get(db sql.Executor, address types.Address) (types.TokenAccount, error) {
	account := types.TokenAccount{Address: address}
	rows, err := db.Exec("select mint, owner, amount from token_accounts where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
		}, func(stmt *sql.Statement) bool {
			stmt.ColumnBytes(0, account.Mint[:])
			stmt.ColumnBytes(1, account.Owner[:])
			account.Amount = uint64(stmt.ColumnInt64(2))
			return false
		})
	if err != nil {
		return types.TokenAccount{}, fmt.Errorf("get token account %s: %w", address.ShortString(), err)
	}
	if rows == 0 {
		return types.TokenAccount{}, fmt.Errorf("%w: token account %s", sql.ErrNotFound, address.ShortString())
	}
	return account, nil
}

// Credit adds amount to the account balance.
func Credit(db sql.Executor, address types.Address, amount uint64) error {
	rows, err := db.Exec("update token_accounts set amount = amount + ?2 where address = ?1 returning amount;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
			stmt.BindInt64(2, int64(amount))
		}, nil)
	if err != nil {
		return fmt.Errorf("credit %s: %w", address.ShortString(), err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: token account %s", sql.ErrNotFound, address.ShortString())
	}
	return nil
}

// Debit subtracts amount from the account balance. The balance never goes below zero.
func Debit(db sql.Executor, address types.Address, amount uint64) error {
	rows, err := db.Exec(`update token_accounts set amount = amount - ?2
		where address = ?1 and amount >= ?2 returning amount;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address[:])
			stmt.BindInt64(2, int64(amount))
		}, nil)
	if err != nil {
		return fmt.Errorf("debit %s: %w", address.ShortString(), err)
	}
	if rows > 0 {
		return nil
	}
	if _, err := Get(db, address); err != nil {
		return err
	}
	return fmt.Errorf("%w: debit %d from %s", ErrInsufficientBalance, amount, address.ShortString())
}

// ByOwner returns every account held by owner.
func ByOwner(db sql.Executor, owner types.Address) ([]types.TokenAccount, error) {
	var accounts []types.TokenAccount
	if _, err := db.Exec("select address, mint, amount from token_accounts where owner = ?1 order by mint;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, owner[:])
		}, func(stmt *sql.Statement) bool {
			account := types.TokenAccount{Owner: owner}
			stmt.ColumnBytes(0, account.Address[:])
			stmt.ColumnBytes(1, account.Mint[:])
			account.Amount = uint64(stmt.ColumnInt64(2))
			accounts = append(accounts, account)
			return true
		}); err != nil {
		return nil, fmt.Errorf("accounts of %s: %w", owner.ShortString(), err)
	}
	return accounts, nil
}
