// Package bridge completes token transfers attested by the guardian network.
//
// A transfer either releases a native token from custody or mints a wrapped
// representation of a foreign token. Every account the caller supplies is checked
// against its derivation before it is trusted.
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
	"github.com/attestlabs/go-attest/sql/endpoints"
	"github.com/attestlabs/go-attest/sql/tokenaccounts"
	"github.com/attestlabs/go-attest/vaa"
)

var (
	// ErrInvalidChain is returned when a transfer targets another chain or names the
	// wrong origin chain for the asset path.
	ErrInvalidChain = errors.New("bridge: invalid chain")
	// ErrInvalidAsset is returned when the supplied mint or custody does not match the transfer.
	ErrInvalidAsset = errors.New("bridge: invalid asset")
	// ErrInvalidDestinationAccount is returned when the receiving account is not the
	// holder's account for the mint.
	ErrInvalidDestinationAccount = errors.New("bridge: invalid destination account")
	// ErrUnregisteredEmitter is returned when the attestation comes from an emitter
	// that was never registered.
	ErrUnregisteredEmitter = errors.New("bridge: unregistered emitter")
	// ErrInsufficientCustody is returned when custody can't cover a release.
	ErrInsufficientCustody = errors.New("bridge: insufficient custody")
)

// TransferAmount is the quantity moved by every completed transfer.
const TransferAmount = 1

// Accounts are the addresses a caller supplies to complete a transfer.
type Accounts struct {
	// Endpoint is the registration record of the emitter.
	Endpoint types.Address
	// Mint is the local mint: the native token or the derived wrapped mint.
	Mint types.Address
	// Custody holds locked native tokens. Native transfers only.
	Custody types.Address
	// Meta is the origin record of a wrapped mint. Wrapped transfers only.
	Meta types.Address
	// Destination is the token account that receives the transfer.
	Destination types.Address
	// Holder owns Destination and must be the transfer recipient.
	Holder types.Address
}

// Opt is for configuring Bridge.
type Opt func(*Bridge)

// WithLogger configures logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithAssociatedProgram sets the program conventional holder accounts are derived under.
// Defaults to the ledger program.
func WithAssociatedProgram(program types.Address) Opt {
	return func(b *Bridge) {
		b.associated = program
	}
}

// Bridge completes transfers on the local chain.
type Bridge struct {
	logger     *zap.Logger
	db         *sql.Database
	verifier   attestationVerifier
	ledger     *ledger.Ledger
	chain      types.ChainID
	program    types.Address
	associated types.Address
}

// New creates a Bridge for chain. Claims and derived accounts use the ledger program.
func New(db *sql.Database, verifier attestationVerifier, l *ledger.Ledger, chain types.ChainID, opts ...Opt) *Bridge {
	b := &Bridge{
		logger:     zap.NewNop(),
		db:         db,
		verifier:   verifier,
		ledger:     l,
		chain:      chain,
		program:    l.Program(),
		associated: l.Program(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Chain returns the local chain.
func (b *Bridge) Chain() types.ChainID {
	return b.chain
}

// RegisterEmitter records emitter as the trusted bridge on chain and returns the
// address of the registration record.
func (b *Bridge) RegisterEmitter(ctx context.Context, chain types.ChainID, emitter types.Address) (types.Address, error) {
	if chain == b.chain {
		return types.Address{}, fmt.Errorf("%w: can't register local chain %s", ErrInvalidChain, chain)
	}
	address := derive.Derive(derive.Endpoint(chain, emitter), b.program)
	if err := endpoints.Add(b.db, endpoints.Endpoint{Address: address, Chain: chain, Emitter: emitter}); err != nil {
		return types.Address{}, err
	}
	b.logger.Info("emitter registered",
		log.ZContext(ctx),
		zap.Stringer("chain", chain),
		log.ZShortStringer("emitter", emitter),
	)
	return address, nil
}

// Associated returns the conventional account of holder for mint.
func (b *Bridge) Associated(holder, mint types.Address) types.Address {
	return derive.Derive(derive.Associated(holder, mint), b.associated)
}

// CustodySigner returns the authority owning custody accounts.
func (b *Bridge) CustodySigner() types.Address {
	return derive.Derive(derive.CustodySigner(), b.program)
}

// MintSigner returns the authority of wrapped mints.
func (b *Bridge) MintSigner() types.Address {
	return derive.Derive(derive.MintSigner(), b.program)
}

// AccountsFor returns the accounts that complete transfer t from emitter using the
// holder's conventional destination account.
func (b *Bridge) AccountsFor(emitter types.ClaimKey, t *Transfer) Accounts {
	accounts := Accounts{
		Endpoint: derive.Derive(derive.Endpoint(emitter.EmitterChain, emitter.EmitterAddress), b.program),
		Holder:   t.To,
	}
	switch asset := t.Asset(b.chain).(type) {
	case NativeAsset:
		accounts.Mint = asset.Mint
		accounts.Custody = derive.Derive(derive.Custody(asset.Mint), b.program)
	case WrappedAsset:
		accounts.Mint = derive.Derive(derive.Wrapped(asset.Chain, asset.Address, asset.TokenID), b.program)
		accounts.Meta = derive.Derive(derive.WrappedMeta(accounts.Mint), b.program)
	}
	accounts.Destination = b.Associated(t.To, accounts.Mint)
	return accounts
}

// Complete verifies the attestation in raw and completes the transfer it carries.
// Either the claim and the asset movement are both stored or nothing is.
func (b *Bridge) Complete(ctx context.Context, raw []byte, accounts Accounts) error {
	path, err := b.complete(ctx, raw, accounts)
	reportCompletion(path, err)
	return err
}

func (b *Bridge) complete(ctx context.Context, raw []byte, accounts Accounts) (string, error) {
	v, err := vaa.Decode(raw)
	if err != nil {
		return pathUnknown, err
	}
	if _, err := b.verifier.VerifyVAA(ctx, v); err != nil {
		return pathUnknown, err
	}
	transfer, err := DecodeTransfer(v.Payload)
	if err != nil {
		return pathUnknown, err
	}
	if err := derive.Verify(accounts.Endpoint, derive.Endpoint(v.EmitterChain, v.EmitterAddress), b.program); err != nil {
		return pathUnknown, err
	}
	if transfer.ToChain != b.chain {
		return pathUnknown, fmt.Errorf("%w: transfer to %s, local chain is %s", ErrInvalidChain, transfer.ToChain, b.chain)
	}
	if transfer.To != accounts.Holder {
		return pathUnknown, fmt.Errorf("%w: holder %s is not the recipient %s",
			ErrInvalidDestinationAccount, accounts.Holder.ShortString(), transfer.To.ShortString())
	}

	var (
		path   string
		effect ledger.Effect
	)
	switch asset := transfer.Asset(b.chain).(type) {
	case NativeAsset:
		path = pathNative
		effect, err = b.completeNative(transfer, asset, accounts)
	case WrappedAsset:
		path = pathWrapped
		effect, err = b.completeWrapped(transfer, asset, accounts)
	}
	if err != nil {
		return path, err
	}

	err = b.ledger.Consume(ctx, v, func(tx *sql.Tx) error {
		if err := b.checkEndpoint(tx, accounts.Endpoint, v); err != nil {
			return err
		}
		return effect(tx)
	})
	if err != nil {
		return path, err
	}
	b.logger.Info("transfer completed",
		log.ZContext(ctx),
		zap.String("path", path),
		zap.Inline(v),
		log.ZShortStringer("mint", accounts.Mint),
		log.ZShortStringer("destination", accounts.Destination),
	)
	return path, nil
}

func (b *Bridge) checkEndpoint(tx *sql.Tx, address types.Address, v *vaa.VAA) error {
	ep, err := endpoints.Get(tx, address)
	switch {
	case errors.Is(err, sql.ErrNotFound):
		return fmt.Errorf("%w: %s on %s", ErrUnregisteredEmitter, v.EmitterAddress.ShortString(), v.EmitterChain)
	case err != nil:
		return err
	}
	if ep.Chain != v.EmitterChain || ep.Emitter != v.EmitterAddress {
		return fmt.Errorf("%w: registration %s belongs to another emitter", ErrUnregisteredEmitter, address.ShortString())
	}
	return nil
}

// ensureDestination returns nil if destination is an account of holder for mint,
// creating it first if it is absent and has the conventional address.
func (b *Bridge) ensureDestination(tx *sql.Tx, accounts Accounts) error {
	account, err := tokenaccounts.Get(tx, accounts.Destination)
	switch {
	case errors.Is(err, sql.ErrNotFound):
		if expected := b.Associated(accounts.Holder, accounts.Mint); expected != accounts.Destination {
			return fmt.Errorf("%w: %s is not the associated account %s",
				ErrInvalidDestinationAccount, accounts.Destination.ShortString(), expected.ShortString())
		}
		return tokenaccounts.Add(tx, types.TokenAccount{
			Address: accounts.Destination,
			Mint:    accounts.Mint,
			Owner:   accounts.Holder,
		})
	case err != nil:
		return err
	}
	if account.Mint != accounts.Mint {
		return fmt.Errorf("%w: %s holds mint %s",
			ErrInvalidDestinationAccount, accounts.Destination.ShortString(), account.Mint.ShortString())
	}
	if account.Owner != accounts.Holder {
		return fmt.Errorf("%w: %s is owned by %s",
			ErrInvalidDestinationAccount, accounts.Destination.ShortString(), account.Owner.ShortString())
	}
	return nil
}
