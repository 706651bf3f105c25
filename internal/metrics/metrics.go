// Package metrics holds the service's prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "funnel_upstream_requests_total",
		Help: "Analytics API requests by outcome.",
	}, []string{"outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funnel_cache_hits_total",
		Help: "Renders served from the response cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funnel_cache_misses_total",
		Help: "Renders that went to the network.",
	})

	Renders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "funnel_renders_total",
		Help: "Dashboard renders by result.",
	}, []string{"result"})
)
