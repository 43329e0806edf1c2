// Package ledger consumes verified attestations exactly once.
//
// A message moves from unclaimed to claimed and never back. The claim record is
// written in the same database transaction as the effect the message authorizes,
// so either both are visible or neither is.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/derive"
	"github.com/attestlabs/go-attest/log"
	"github.com/attestlabs/go-attest/sql"
	"github.com/attestlabs/go-attest/sql/claims"
	"github.com/attestlabs/go-attest/vaa"
)

// ErrReplay is returned when a message was already claimed.
var ErrReplay = errors.New("ledger: message already claimed")

// Effect applies what a claimed message authorizes. It runs inside the claiming transaction.
type Effect func(tx *sql.Tx) error

// Claim records the message identified by key at its derived claim address inside tx.
// It fails with ErrReplay if the message was claimed before.
func Claim(tx sql.Executor, program types.Address, key types.ClaimKey, digest types.Hash32) (types.Address, error) {
	address := derive.Derive(derive.Claim(key), program)
	err := claims.Add(tx, claims.Claim{Address: address, Key: key, Digest: digest})
	switch {
	case errors.Is(err, sql.ErrObjectExists):
		return address, fmt.Errorf("%w: %s", ErrReplay, key)
	case err != nil:
		return address, err
	}
	return address, nil
}

// IsClaimed returns true if the message identified by key was claimed.
func IsClaimed(db sql.Executor, program types.Address, key types.ClaimKey) (bool, error) {
	return claims.Has(db, derive.Derive(derive.Claim(key), program))
}

// Opt is for configuring Ledger.
type Opt func(*Ledger)

// WithLogger configures logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// Ledger claims messages on behalf of one program.
type Ledger struct {
	logger  *zap.Logger
	db      *sql.Database
	program types.Address
}

// New creates a Ledger storing claims in db under program.
func New(db *sql.Database, program types.Address, opts ...Opt) *Ledger {
	l := &Ledger{
		logger:  zap.NewNop(),
		db:      db,
		program: program,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Program returns the program the claims are derived under.
func (l *Ledger) Program() types.Address {
	return l.program
}

// Consume claims a verified attestation and applies effect in one transaction.
// Any error from effect rolls the claim back. Verification is the caller's job.
func (l *Ledger) Consume(ctx context.Context, v *vaa.VAA, effect Effect) error {
	key := v.ClaimKey()
	err := l.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := Claim(tx, l.program, key, v.Digest()); err != nil {
			return err
		}
		if effect == nil {
			return nil
		}
		return effect(tx)
	})
	reportClaim(err)
	if err != nil {
		l.logger.Debug("claim rejected", log.ZContext(ctx), zap.Stringer("message", key), zap.Error(err))
		return err
	}
	l.logger.Debug("message claimed", log.ZContext(ctx), zap.Stringer("message", key))
	return nil
}

// IsClaimed returns true if the message identified by key was claimed.
func (l *Ledger) IsClaimed(key types.ClaimKey) (bool, error) {
	return IsClaimed(l.db, l.program, key)
}
