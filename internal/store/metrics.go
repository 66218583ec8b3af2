package store

import "expvar"

var (
	metricGetTotal  = expvar.NewInt("kv_get_total")
	metricGetMisses = expvar.NewInt("kv_get_misses_total")
	metricSetTotal  = expvar.NewInt("kv_set_total")
	metricErrors    = expvar.NewInt("kv_errors_total")
)
