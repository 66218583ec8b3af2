package dd

import "expvar"

var (
	metricCacheHits   = expvar.NewInt("dd_cache_hits_total")
	metricCacheMisses = expvar.NewInt("dd_cache_misses_total")
	metricFetches     = expvar.NewInt("dd_fetch_total")
	metricFetchErrors = expvar.NewInt("dd_fetch_errors_total")
	metricSquelched   = expvar.NewInt("dd_squelched_total")
	metricPending     = expvar.NewInt("dd_pending")
)
