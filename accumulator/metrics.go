package accumulator

import "github.com/attestlabs/go-attest/metrics"

const subsystem = "accumulator"

var (
	proofs = metrics.NewCounter(
		"proofs",
		subsystem,
		"number of inclusion proofs checked by result",
		[]string{"result"},
	)
	storedFeeds = metrics.NewCounter(
		"stored_feeds",
		subsystem,
		"number of feed prices replaced by posted updates",
		[]string{},
	).WithLabelValues()
)
