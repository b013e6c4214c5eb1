// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzeria_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pizzeria_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	PaymentIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzeria_payment_intents_total",
			Help: "Payment intents requested from the gateway",
		},
		[]string{"status"},
	)

	PaymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzeria_payment_verifications_total",
			Help: "Payment confirmations by outcome",
		},
		[]string{"outcome"},
	)

	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pizzeria_orders_created_total",
			Help: "Pizza orders persisted, by source",
		},
		[]string{"source"},
	)

	Revenue = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pizzeria_revenue_rupees_total",
			Help: "Sum of order totals at creation",
		},
	)

	LowStockAlerts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pizzeria_low_stock_alerts_total",
			Help: "Low stock alert emails attempted",
		},
	)

	InventoryDeductionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pizzeria_inventory_deduction_failures_total",
			Help: "Checkouts whose inventory deduction failed after the orders were saved",
		},
	)

	LiveFeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pizzeria_live_feed_clients",
			Help: "Connected admin live order feed clients",
		},
	)
)
