package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var prometheusMessagesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "transport_messages_received_total",
	Help: "Total number of unsolicited messages received from the peer",
})

var prometheusRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "transport_requests_total",
	Help: "Total number of requests sent to the peer",
})

var prometheusRequestsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "transport_requests_dropped_total",
	Help: "Total number of requests dropped because the link was busy or closed",
})

var prometheusErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "transport_errors_total",
	Help: "Total number of transport errors by operation",
}, []string{"op"})

var prometheusRoundTripDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "transport_round_trip_duration_seconds",
	Help: "Duration of request/reply round trips to the peer",
})
