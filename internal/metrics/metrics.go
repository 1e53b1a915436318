package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_engine_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"route_kind", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quote_engine_quote_duration_seconds",
			Help:    "Quote request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route_kind"},
	)

	// Router phase metrics
	DirectQuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_engine_direct_quote_duration_seconds",
		Help:    "Direct getAmountsOut duration in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	MultiHopDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_engine_multihop_duration_seconds",
		Help:    "Multi-hop candidate fan-out duration in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	CalculateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_engine_calculate_duration_seconds",
		Help:    "Reserve, price impact and fee calculation duration in seconds",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	CandidatesEvaluated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_engine_candidates_evaluated",
		Help:    "Number of multi-hop candidates quoted per request",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	CandidateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_engine_candidate_failures_total",
		Help: "Total number of multi-hop candidates whose router quote failed",
	})

	PriceImpact = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quote_engine_price_impact_bps",
			Help:    "Absolute price impact in basis points",
			Buckets: []float64{0, 10, 50, 100, 300, 500, 1000, 5000, 10000},
		},
		[]string{"severity"},
	)

	OracleFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_engine_oracle_failures_total",
		Help: "Total number of quotes returned without a USD fee because the oracle was unavailable",
	})

	// Quote cache metrics
	QuoteCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_engine_quote_cache_hits_total",
		Help: "Total number of quote cache hits",
	})

	QuoteCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_engine_quote_cache_misses_total",
		Help: "Total number of quote cache misses",
	})

	QuoteCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quote_engine_quote_cache_size",
		Help: "Current number of entries in quote cache",
	})

	Token0CacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quote_engine_token0_cache_size",
		Help: "Current number of entries in pair token0 cache",
	})

	// Chain reader metrics
	ReaderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_engine_reader_calls_total",
			Help: "Total number of contract read calls",
		},
		[]string{"method", "status"},
	)

	ReaderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quote_engine_reader_duration_seconds",
			Help:    "Contract read call duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method"},
	)

	// Session metrics
	SessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_engine_session_transitions_total",
			Help: "Total number of quote session state transitions",
		},
		[]string{"status"},
	)

	SessionDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_engine_session_discarded_total",
		Help: "Total number of quote results discarded because a newer request superseded them",
	})

	SessionSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_engine_session_skipped_total",
		Help: "Total number of quote requests skipped because the fingerprint was unchanged",
	})

	// Swap metrics
	SwapRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_engine_swap_requests_total",
			Help: "Total number of swap plan build requests",
		},
		[]string{"needs_approval", "status"},
	)

	SwapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_engine_swap_duration_seconds",
		Help:    "Swap plan build duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// History metrics
	HistoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_engine_history_writes_total",
			Help: "Total number of quote history writes",
		},
		[]string{"status"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_engine_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quote_engine_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_engine_http_rate_limited_total",
		Help: "Total number of HTTP requests rejected by the rate limiter",
	})
)
