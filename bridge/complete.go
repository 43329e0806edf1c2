package bridge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/derive"
	"github.com/attestlabs/go-attest/ledger"
	"github.com/attestlabs/go-attest/log"
	"github.com/attestlabs/go-attest/sql"
	"github.com/attestlabs/go-attest/sql/mints"
	"github.com/attestlabs/go-attest/sql/tokenaccounts"
)

func (b *Bridge) completeNative(t *Transfer, asset NativeAsset, accounts Accounts) (ledger.Effect, error) {
	if err := derive.Verify(accounts.Custody, derive.Custody(accounts.Mint), b.program); err != nil {
		return nil, err
	}
	if asset.Mint != accounts.Mint {
		return nil, fmt.Errorf("%w: transfer of %s, supplied mint %s",
			ErrInvalidAsset, asset.Mint.ShortString(), accounts.Mint.ShortString())
	}
	if t.TokenChain != b.chain {
		return nil, fmt.Errorf("%w: native token from %s", ErrInvalidChain, t.TokenChain)
	}
	return func(tx *sql.Tx) error {
		custody, err := tokenaccounts.Get(tx, accounts.Custody)
		switch {
		case errors.Is(err, sql.ErrNotFound):
			return fmt.Errorf("%w: no custody for %s", ErrInvalidAsset, accounts.Mint.ShortString())
		case err != nil:
			return err
		}
		if custody.Mint != accounts.Mint {
			return fmt.Errorf("%w: custody holds %s", ErrInvalidAsset, custody.Mint.ShortString())
		}
		if custody.Owner != b.CustodySigner() {
			return fmt.Errorf("%w: custody owned by %s", ErrInvalidAsset, custody.Owner.ShortString())
		}
		if err := b.ensureDestination(tx, accounts); err != nil {
			return err
		}
		err = tokenaccounts.Debit(tx, accounts.Custody, TransferAmount)
		switch {
		case errors.Is(err, tokenaccounts.ErrInsufficientBalance):
			return fmt.Errorf("%w: %w", ErrInsufficientCustody, err)
		case err != nil:
			return err
		}
		return tokenaccounts.Credit(tx, accounts.Destination, TransferAmount)
	}, nil
}

func (b *Bridge) completeWrapped(t *Transfer, asset WrappedAsset, accounts Accounts) (ledger.Effect, error) {
	if err := derive.Verify(accounts.Mint, derive.Wrapped(asset.Chain, asset.Address, asset.TokenID), b.program); err != nil {
		return nil, err
	}
	if err := derive.Verify(accounts.Meta, derive.WrappedMeta(accounts.Mint), b.program); err != nil {
		return nil, err
	}
	return func(tx *sql.Tx) error {
		exists, err := mints.Has(tx, accounts.Mint)
		if err != nil {
			return err
		}
		if exists {
			meta, err := mints.GetWrappedMeta(tx, accounts.Meta)
			if err != nil {
				return err
			}
			if meta.Mint != accounts.Mint || meta.TokenChain != asset.Chain ||
				meta.TokenAddress != asset.Address || meta.TokenID != asset.TokenID {
				return fmt.Errorf("%w: wrapped meta %s describes another token", ErrInvalidAsset, accounts.Meta.ShortString())
			}
		} else if err := b.createWrapped(tx, t, asset, accounts); err != nil {
			return err
		}
		if err := b.ensureDestination(tx, accounts); err != nil {
			return err
		}
		if err := mints.AddSupply(tx, accounts.Mint, TransferAmount); err != nil {
			return err
		}
		return tokenaccounts.Credit(tx, accounts.Destination, TransferAmount)
	}, nil
}

// createWrapped initializes the mint, origin record and metadata of a wrapped token
// seen for the first time.
func (b *Bridge) createWrapped(tx *sql.Tx, t *Transfer, asset WrappedAsset, accounts Accounts) error {
	if err := mints.Add(tx, types.Mint{Address: accounts.Mint, Authority: b.MintSigner()}); err != nil {
		return err
	}
	if err := mints.AddWrappedMeta(tx, types.WrappedMeta{
		Address:      accounts.Meta,
		Mint:         accounts.Mint,
		TokenChain:   asset.Chain,
		TokenAddress: asset.Address,
		TokenID:      asset.TokenID,
	}); err != nil {
		return err
	}
	if err := mints.AddMetadata(tx, types.TokenMetadata{
		Mint:   accounts.Mint,
		Name:   t.DisplayName(),
		Symbol: t.DisplaySymbol(),
		URI:    t.URI,
	}); err != nil {
		return err
	}
	b.logger.Debug("wrapped mint created",
		log.ZShortStringer("mint", accounts.Mint),
		zap.Stringer("origin_chain", asset.Chain),
		log.ZShortStringer("origin", asset.Address),
	)
	return nil
}

// LockNative moves amount of mint from the from account into custody, creating the
// custody account on first use. It returns the custody address.
func (b *Bridge) LockNative(ctx context.Context, mint, from types.Address, amount uint64) (types.Address, error) {
	custody := derive.Derive(derive.Custody(mint), b.program)
	err := b.db.WithTx(ctx, func(tx *sql.Tx) error {
		if exists, err := mints.Has(tx, mint); err != nil {
			return err
		} else if !exists {
			return fmt.Errorf("%w: unknown mint %s", ErrInvalidAsset, mint.ShortString())
		}
		source, err := tokenaccounts.Get(tx, from)
		if err != nil {
			return err
		}
		if source.Mint != mint {
			return fmt.Errorf("%w: %s holds %s", ErrInvalidAsset, from.ShortString(), source.Mint.ShortString())
		}
		_, err = tokenaccounts.Get(tx, custody)
		switch {
		case errors.Is(err, sql.ErrNotFound):
			if err := tokenaccounts.Add(tx, types.TokenAccount{
				Address: custody,
				Mint:    mint,
				Owner:   b.CustodySigner(),
			}); err != nil {
				return err
			}
		case err != nil:
			return err
		}
		if err := tokenaccounts.Debit(tx, from, amount); err != nil {
			return err
		}
		return tokenaccounts.Credit(tx, custody, amount)
	})
	if err != nil {
		return types.Address{}, err
	}
	b.logger.Debug("native tokens locked",
		log.ZContext(ctx),
		log.ZShortStringer("mint", mint),
		zap.Uint64("amount", amount),
	)
	return custody, nil
}
