// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package delivery

import "github.com/prometheus/client_golang/prometheus"

var (
	metricsRegistry = prometheus.NewRegistry()

	resolvedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zapdeliver",
		Subsystem: "delivery",
		Name:      "resolved_total",
		Help:      "References resolved into signed artifacts",
	})

	unresolvedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zapdeliver",
		Subsystem: "delivery",
		Name:      "unresolved_total",
		Help:      "References returned on the unprocessed list",
	})

	indexQuerySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zapdeliver",
		Subsystem: "delivery",
		Name:      "index_query_seconds",
		Help:      "External index round trip duration",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	metricsRegistry.MustRegister(resolvedTotal, unresolvedTotal, indexQuerySeconds)
}

// Registry exposes the delivery metrics for scraping by the surrounding
// process.
func Registry() *prometheus.Registry {
	return metricsRegistry
}
