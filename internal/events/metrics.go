package events

import "expvar"

var (
	metricPublished = expvar.NewInt("events_published_total")
	metricDropped   = expvar.NewInt("events_dropped_total")
	metricStreams   = expvar.NewInt("events_streams_active")
)
