// Package metrics declares the prometheus collectors of the name server.
// Collectors register with the default registry on package init and are
// served by the controller's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Route lookup results.
const (
	RouteFound    = "found"
	RouteNotFound = "not_found"
)

var (
	BrokersRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "namesrv_brokers_registered",
			Help: "Number of brokers currently in the route table",
		},
	)

	BrokerRegistrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "namesrv_broker_registrations_total",
			Help: "Total number of broker registrations and heartbeats",
		},
	)

	BrokerUnregistrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "namesrv_broker_unregistrations_total",
			Help: "Total number of explicit broker unregistrations",
		},
	)

	BrokersExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "namesrv_brokers_expired_total",
			Help: "Total number of brokers dropped for inactivity",
		},
	)

	RouteLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namesrv_route_lookups_total",
			Help: "Total number of topic route lookups",
		},
		[]string{"result"},
	)

	KVConfigEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "namesrv_kvconfig_entries",
			Help: "Number of entries in the KV config store",
		},
	)

	ShutdownInvocations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "namesrv_shutdown_hook_invocations_total",
			Help: "Total number of shutdown hook invocations",
		},
	)

	ShutdownDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "namesrv_shutdown_duration_seconds",
			Help:    "Time taken to shut the controller down",
			Buckets: prometheus.DefBuckets,
		},
	)
)
