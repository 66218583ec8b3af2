package ws

import "expvar"

var (
	metricConnections    = expvar.NewInt("ws_feed_connections")
	metricFrames         = expvar.NewInt("ws_feed_frames_total")
	metricFramesRejected = expvar.NewInt("ws_feed_frames_rejected_total")
)
