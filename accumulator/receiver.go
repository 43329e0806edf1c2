package accumulator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/ledger"
	"github.com/attestlabs/go-attest/log"
	"github.com/attestlabs/go-attest/merkle"
	"github.com/attestlabs/go-attest/sql"
	"github.com/attestlabs/go-attest/sql/pricefeeds"
	"github.com/attestlabs/go-attest/vaa"
)

var (
	// ErrInvalidDataSource is returned when the attestation comes from an emitter
	// that is not an accepted data source.
	ErrInvalidDataSource = errors.New("accumulator: invalid data source")
	// ErrUnsupportedPayload is returned when the attestation does not carry a merkle root.
	ErrUnsupportedPayload = errors.New("accumulator: unsupported payload")
	// ErrInvalidProof is returned when a message is not included under the attested root.
	ErrInvalidProof = errors.New("accumulator: invalid proof")
)

// DataSource is an emitter whose roots are accepted.
type DataSource struct {
	Chain   types.ChainID `mapstructure:"chain"`
	Emitter types.Address `mapstructure:"emitter"`
}

type attestationVerifier interface {
	VerifyVAA(ctx context.Context, v *vaa.VAA) (*types.GuardianSet, error)
}

// Opt is for configuring Receiver.
type Opt func(*Receiver)

// WithLogger configures logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(r *Receiver) {
		r.logger = logger
	}
}

// WithDataSources adds accepted data sources.
func WithDataSources(sources ...DataSource) Opt {
	return func(r *Receiver) {
		for _, source := range sources {
			r.sources[source] = struct{}{}
		}
	}
}

// Receiver accepts proven messages from attested batches.
type Receiver struct {
	logger   *zap.Logger
	db       *sql.Database
	verifier attestationVerifier
	ledger   *ledger.Ledger
	sources  map[DataSource]struct{}
}

// NewReceiver creates a Receiver. Without data sources every update is rejected.
func NewReceiver(db *sql.Database, verifier attestationVerifier, l *ledger.Ledger, opts ...Opt) *Receiver {
	r := &Receiver{
		logger:   zap.NewNop(),
		db:       db,
		verifier: verifier,
		ledger:   l,
		sources:  make(map[DataSource]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Verified is update data whose attestation and proofs were checked.
type Verified struct {
	VAA      *vaa.VAA
	Root     *MerkleRootPayload
	Messages []*PriceFeedMessage
}

// Verify checks the attestation, its source and every inclusion proof in data.
func (r *Receiver) Verify(ctx context.Context, data []byte) (*Verified, error) {
	update, err := DecodeUpdateData(data)
	if err != nil {
		return nil, err
	}
	v, err := vaa.Decode(update.VAA)
	if err != nil {
		return nil, err
	}
	if _, err := r.verifier.VerifyVAA(ctx, v); err != nil {
		return nil, err
	}
	source := DataSource{Chain: v.EmitterChain, Emitter: v.EmitterAddress}
	if _, ok := r.sources[source]; !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrInvalidDataSource, source.Emitter.ShortString(), source.Chain)
	}
	payload, err := DecodePayload(v.Payload)
	if err != nil {
		return nil, err
	}
	root, ok := payload.(*MerkleRootPayload)
	if !ok {
		return nil, fmt.Errorf("%w: attestation carries no merkle root", ErrUnsupportedPayload)
	}
	verified := &Verified{VAA: v, Root: root, Messages: make([]*PriceFeedMessage, 0, len(update.Updates))}
	for i, u := range update.Updates {
		if !merkle.Verify(root.Root, u.Message, u.Proof) {
			proofs.WithLabelValues("invalid").Inc()
			return nil, fmt.Errorf("%w: update %d against root %s", ErrInvalidProof, i, root.Root.ShortString())
		}
		proofs.WithLabelValues("valid").Inc()
		msg, err := DecodeMessage(u.Message)
		if err != nil {
			return nil, fmt.Errorf("update %d: %w", i, err)
		}
		verified.Messages = append(verified.Messages, msg)
	}
	return verified, nil
}

// Post verifies data, claims its attestation and stores every message newer than
// the stored price of its feed, all in one transaction. It returns the number of
// feeds that changed. Posting the same attestation twice fails with ledger.ErrReplay.
func (r *Receiver) Post(ctx context.Context, data []byte) (int, error) {
	verified, err := r.Verify(ctx, data)
	if err != nil {
		return 0, err
	}
	changed := 0
	err = r.ledger.Consume(ctx, verified.VAA, func(tx *sql.Tx) error {
		for _, msg := range verified.Messages {
			ok, err := pricefeeds.Upsert(tx, msg.Feed(verified.Root.Slot))
			if err != nil {
				return err
			}
			if ok {
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	storedFeeds.Add(float64(changed))
	r.logger.Debug("accumulator update posted",
		log.ZContext(ctx),
		zap.Inline(verified.VAA),
		zap.Uint64("slot", verified.Root.Slot),
		zap.Int("messages", len(verified.Messages)),
		zap.Int("changed", changed),
	)
	return changed, nil
}

// PriceFeed returns the stored price of feed.
func (r *Receiver) PriceFeed(feed types.Hash32) (types.PriceFeed, error) {
	return pricefeeds.Get(r.db, feed)
}
