// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label names
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelKind   = "kind"
	LabelOp     = "op"
	LabelResult = "result"
)

// HTTPLatencyBuckets covers fast cache hits up to slow cross-document writes.
var HTTPLatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Inventory Metrics
var (
	ItemsEquipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_equipped_total",
			Help: "Total number of items moved from inventory to equipped",
		},
		[]string{LabelKind},
	)

	ItemsUnequipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_unequipped_total",
			Help: "Total number of items moved from equipped to inventory",
		},
		[]string{LabelKind},
	)

	ItemsTransferred = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "items_transferred_total",
			Help: "Total number of items moved between players, including won items",
		},
		[]string{LabelKind},
	)

	RewardsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_applied_total",
			Help: "Total number of reward requests by outcome",
		},
		[]string{LabelResult},
	)

	CreditsGranted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_granted_total",
			Help: "Sum of positive credit deltas written",
		},
	)

	HeroLevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hero_level_ups_total",
			Help: "Total number of hero levels gained from rewards",
		},
	)

	BatchStatements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_batch_statements_total",
			Help: "Statements sent to the player store by op and whether they modified a document",
		},
		[]string{LabelOp, LabelResult},
	)

	MutationLogsBuffered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mutation_logs_buffered",
			Help: "Mutation logs waiting in the write-behind buffer",
		},
	)
)
