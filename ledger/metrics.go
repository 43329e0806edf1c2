package ledger

import (
	"errors"

	"github.com/attestlabs/go-attest/metrics"
)

const subsystem = "ledger"

var (
	claimOutcomes = metrics.NewCounter(
		"claims",
		subsystem,
		"number of claim attempts by outcome",
		[]string{"outcome"},
	)
	claimed       = claimOutcomes.WithLabelValues("claimed")
	replayed      = claimOutcomes.WithLabelValues("replay")
	effectFailure = claimOutcomes.WithLabelValues("failed")
)

func reportClaim(err error) {
	switch {
	case err == nil:
		claimed.Inc()
	case errors.Is(err, ErrReplay):
		replayed.Inc()
	default:
		effectFailure.Inc()
	}
}
