package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var prometheusWSConnTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_conn_total",
	Help: "Total number of opened websocket connections",
})

var prometheusWSConnActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "ws_conn_active",
	Help: "Total number of active websocket connections",
})

var prometheusWSConnErrTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_conn_err_total",
	Help: "Total number of errored out websocket connections",
})

var prometheusWSConnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "ws_conn_duration_seconds",
	Help: "Duration of websocket connections",
})

var prometheusWSMessagesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_messages_received_total",
	Help: "Total number of frames received from websocket clients",
})

var prometheusWSMessagesIgnoredTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_messages_ignored_total",
	Help: "Total number of non-text frames ignored",
})

var prometheusWSMessagesInvalidTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_messages_invalid_total",
	Help: "Total number of text frames dropped because they were not valid UTF-8",
})

var prometheusWSMessagesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "ws_messages_dropped_total",
	Help: "Total number of text frames dropped because the relay queue was full",
})

var prometheusSessionQueueFullTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "session_queue_full_total",
	Help: "Total number of messages dropped because a session send queue was full",
})

var prometheusHealthChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "health_checks_total",
	Help: "Total number of health probe requests by result",
}, []string{"transport"})
