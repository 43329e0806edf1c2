package vaa

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/attestlabs/go-attest/common/types"
	"github.com/attestlabs/go-attest/signing"
)

var (
	// ErrStaleGuardianSet is returned when signatures are checked against a set that
	// is not the one named in the header, is unknown or has expired.
	ErrStaleGuardianSet = errors.New("vaa: stale guardian set")
	// ErrQuorumNotMet is returned when there are fewer signatures than the quorum.
	ErrQuorumNotMet = errors.New("vaa: quorum not met")
	// ErrUnsortedSignatures is returned when guardian indices are not strictly increasing.
	ErrUnsortedSignatures = errors.New("vaa: signatures not sorted by guardian index")
	// ErrInvalidSignature is returned when a signature was not produced by the guardian at its index.
	ErrInvalidSignature = errors.New("vaa: invalid signature")
)

// Opt is for configuring Verifier.
type Opt func(*Verifier)

// WithLogger configures logger.
func WithLogger(logger *zap.Logger) Opt {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// WithClock configures the clock used for guardian set expiry.
func WithClock(clock clockwork.Clock) Opt {
	return func(v *Verifier) {
		v.clock = clock
	}
}

// WithQuorum sets the number of signatures VerifyVAA requires. Non-positive values
// select 2/3+1 of the set.
func WithQuorum(quorum int) Opt {
	return func(v *Verifier) {
		v.quorum = quorum
	}
}

// Verifier checks that a quorum of guardians signed an attestation.
type Verifier struct {
	logger   *zap.Logger
	clock    clockwork.Clock
	provider GuardianSetProvider
	quorum   int
}

// NewVerifier creates a Verifier reading guardian sets from provider.
func NewVerifier(provider GuardianSetProvider, opts ...Opt) *Verifier {
	v := &Verifier{
		logger:   zap.NewNop(),
		clock:    clockwork.NewRealClock(),
		provider: provider,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the signatures in header against digest. The digest must be computed
// locally from the body, never taken from the sender.
func (v *Verifier) Verify(header *Header, digest types.Hash32, set *types.GuardianSet, quorum int) error {
	start := time.Now()
	err := v.verify(header, digest, set, quorum)
	verifyDuration.Observe(time.Since(start).Seconds())
	reportVerification(err)
	return err
}

func (v *Verifier) verify(header *Header, digest types.Hash32, set *types.GuardianSet, quorum int) error {
	if header.GuardianSetIndex != set.Index {
		return fmt.Errorf("%w: header references set %d, have %d",
			ErrStaleGuardianSet, header.GuardianSetIndex, set.Index)
	}
	if set.Expired(v.clock.Now()) {
		return fmt.Errorf("%w: set %d expired at %d", ErrStaleGuardianSet, set.Index, set.ExpirationTime)
	}
	if quorum <= 0 {
		quorum = set.Quorum()
	}
	if len(header.Signatures) < quorum {
		return fmt.Errorf("%w: %d signatures, need %d", ErrQuorumNotMet, len(header.Signatures), quorum)
	}
	for i := 1; i < len(header.Signatures); i++ {
		if header.Signatures[i].Index <= header.Signatures[i-1].Index {
			return fmt.Errorf("%w: index %d at position %d follows %d",
				ErrUnsortedSignatures, header.Signatures[i].Index, i, header.Signatures[i-1].Index)
		}
	}
	for _, sig := range header.Signatures {
		expected, ok := set.KeyAt(int(sig.Index))
		if !ok {
			return fmt.Errorf("%w: guardian index %d out of range for %d guardians",
				ErrInvalidSignature, sig.Index, len(set.Keys))
		}
		signer, err := signing.RecoverGuardian(digest, sig.Signature)
		if err != nil {
			return fmt.Errorf("%w: guardian %d: %w", ErrInvalidSignature, sig.Index, err)
		}
		if signer != expected {
			return fmt.Errorf("%w: guardian %d signer mismatch", ErrInvalidSignature, sig.Index)
		}
	}
	return nil
}

// VerifyVAA loads the guardian set named in the header and verifies the envelope with
// the configured quorum. The returned set is the one signatures were checked against.
func (v *Verifier) VerifyVAA(ctx context.Context, vaa *VAA) (*types.GuardianSet, error) {
	set, err := v.provider.GuardianSet(ctx, vaa.GuardianSetIndex)
	if err != nil {
		reportVerification(ErrStaleGuardianSet)
		return nil, fmt.Errorf("%w: load set %d: %w", ErrStaleGuardianSet, vaa.GuardianSetIndex, err)
	}
	if err := v.Verify(&vaa.Header, vaa.Digest(), set, v.quorum); err != nil {
		v.logger.Debug("attestation rejected", zap.Inline(vaa), zap.Error(err))
		return nil, err
	}
	v.logger.Debug("attestation verified", zap.Inline(vaa))
	return set, nil
}
