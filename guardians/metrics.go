package guardians

import "github.com/attestlabs/go-attest/metrics"

const subsystem = "guardians"

var (
	cacheLookups = metrics.NewCounter(
		"cache_lookups",
		subsystem,
		"guardian set cache lookups",
		[]string{"result"},
	)
	cacheHits   = cacheLookups.WithLabelValues("hit")
	cacheMisses = cacheLookups.WithLabelValues("miss")

	cachedSets = metrics.NewGauge(
		"cached_sets",
		subsystem,
		"guardian sets held in the cache",
		[]string{},
	).WithLabelValues()
)
