package bridge

import (
	"errors"

	"github.com/attestlabs/go-attest/ledger"
	"github.com/attestlabs/go-attest/metrics"
)

const subsystem = "bridge"

const (
	pathNative  = "native"
	pathWrapped = "wrapped"
	pathUnknown = "unknown"
)

var completions = metrics.NewCounter(
	"completions",
	subsystem,
	"number of transfer completions by asset path and outcome",
	[]string{"path", "outcome"},
)

func reportCompletion(path string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrReplay):
		outcome = "replay"
	default:
		outcome = "rejected"
	}
	completions.WithLabelValues(path, outcome).Inc()
}
