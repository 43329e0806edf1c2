package vaa

import (
	"errors"

	"github.com/attestlabs/go-attest/metrics"
)

const subsystem = "vaa"

var (
	verifications = metrics.NewCounter(
		"verifications",
		subsystem,
		"number of attestation verifications by outcome",
		[]string{"outcome"},
	)
	verified          = verifications.WithLabelValues("ok")
	staleSet          = verifications.WithLabelValues("stale_set")
	quorumNotMet      = verifications.WithLabelValues("quorum")
	unsorted          = verifications.WithLabelValues("unsorted")
	invalidSignature  = verifications.WithLabelValues("signature")
	otherVerification = verifications.WithLabelValues("other")

	verifyDuration = metrics.NewHistogram(
		"verify_duration",
		subsystem,
		"time spent checking signatures in seconds",
		[]string{},
	).WithLabelValues()
)

func reportVerification(err error) {
	switch {
	case err == nil:
		verified.Inc()
	case errors.Is(err, ErrStaleGuardianSet):
		staleSet.Inc()
	case errors.Is(err, ErrQuorumNotMet):
		quorumNotMet.Inc()
	case errors.Is(err, ErrUnsortedSignatures):
		unsorted.Inc()
	case errors.Is(err, ErrInvalidSignature):
		invalidSignature.Inc()
	default:
		otherVerification.Inc()
	}
}
