package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var prometheusMembersActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "registry_members_active",
	Help: "Number of sessions receiving broadcasts",
})

var prometheusDeliveriesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "registry_deliveries_dropped_total",
	Help: "Total number of broadcast deliveries refused by a session",
})
