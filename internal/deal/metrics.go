package deal

import "expvar"

var (
	metricDealsStarted  = expvar.NewInt("deals_started_total")
	metricCalls         = expvar.NewInt("deal_calls_total")
	metricCards         = expvar.NewInt("deal_cards_total")
	metricRejected      = expvar.NewInt("deal_actions_rejected_total")
	metricUndos         = expvar.NewInt("deal_undos_total")
	metricUndosRejected = expvar.NewInt("deal_undos_rejected_total")
	metricTimingSaved   = expvar.NewInt("timing_saved_total")
	metricTimingErrors  = expvar.NewInt("timing_errors_total")
	metricDDApplied     = expvar.NewInt("dd_results_applied_total")
	metricDDStale       = expvar.NewInt("dd_results_stale_total")
)
