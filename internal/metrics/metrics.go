package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchasesTotal counts purchase attempts by terminal outcome.
	PurchasesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory_ledger",
		Name:      "purchases_total",
		Help:      "Purchase attempts by outcome.",
	}, []string{"outcome"})

	// StockAdjustmentsTotal counts direct inventory adjustments (restocks and corrections).
	StockAdjustmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory_ledger",
		Name:      "stock_adjustments_total",
		Help:      "Direct inventory adjustments applied.",
	})

	// UpstreamRequestDuration observes products-service round trips, including retries.
	UpstreamRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "inventory_ledger",
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of product lookups against the products service.",
		Buckets:   prometheus.DefBuckets,
	})
)

const (
	OutcomeSuccess           = "success"
	OutcomeInvalidQuantity   = "invalid_quantity"
	OutcomeProductNotFound   = "product_not_found"
	OutcomeUpstreamError     = "upstream_unavailable"
	OutcomeMalformedUpstream = "malformed_upstream"
	OutcomeInventoryNotFound = "inventory_not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeStorageError      = "storage_error"
)
