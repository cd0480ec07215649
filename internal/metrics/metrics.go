// Package metrics defines Prometheus metrics for the Magento API client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "magento"

// API traffic metrics.
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of Magento API requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of Magento API requests.",
	}, []string{"method", "status"})

	APIRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_retries_total",
		Help:      "Total number of retried API requests.",
	})
)

// Search metrics.
var (
	SearchPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_pages_total",
		Help:      "Total number of search result pages fetched.",
	})

	SearchCountMismatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_count_mismatch_total",
		Help:      "Searches whose total_count disagreed with the items returned.",
	})
)

// Auth and throttling metrics.
var (
	TokenRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of admin token refreshes.",
	})

	QuotaExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_exhausted_total",
		Help:      "Requests rejected because the rate limit quota was spent.",
	})
)
