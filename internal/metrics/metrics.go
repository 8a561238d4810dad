// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts analyses served entirely from the local cache.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channeldash_cache_hits_total",
		Help: "Analyses served from the local cache, by mode.",
	}, []string{"mode"})

	// CacheMisses counts analyses that required a full upstream fetch.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channeldash_cache_misses_total",
		Help: "Analyses that required an upstream fetch, by mode.",
	}, []string{"mode"})

	// APICalls counts upstream YouTube Data API calls by endpoint shape.
	APICalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channeldash_youtube_api_calls_total",
		Help: "Upstream API calls, by endpoint.",
	}, []string{"endpoint"})

	// PagesFetched counts playlist pages consumed during pagination.
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channeldash_playlist_pages_fetched_total",
		Help: "Playlist pages fetched during ingestion.",
	})

	// EnrichmentBatchesSkipped counts detail batches dropped after a failure.
	EnrichmentBatchesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channeldash_enrichment_batches_skipped_total",
		Help: "Enrichment batches skipped due to upstream failures.",
	})

	// RateLimitRejections counts demo analyses refused by a usage ceiling.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channeldash_rate_limit_rejections_total",
		Help: "Demo-mode analyses rejected, by ceiling.",
	}, []string{"reason"})
)
