package httptransport

import "expvar"

var (
	metricDDRequests     = expvar.NewInt("api_dd_requests_total")
	metricDDErrors       = expvar.NewInt("api_dd_errors_total")
	metricTimingRequests = expvar.NewInt("api_timing_requests_total")
)
