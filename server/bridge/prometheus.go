package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var prometheusRelaysTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bridge_relays_total",
	Help: "Total number of client messages relayed to the peer",
})

var prometheusRelayErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bridge_relay_errors_total",
	Help: "Total number of client messages that failed to reach the peer",
})

var prometheusBroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bridge_broadcasts_total",
	Help: "Total number of peer messages broadcast to clients",
})
