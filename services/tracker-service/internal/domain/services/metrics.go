package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncEmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_sync_emissions_total",
		Help: "Number of product list updates by outcome",
	}, []string{"outcome"})

	syncProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_sync_products",
		Help: "Number of products in the current list state",
	})

	syncRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_sync_refreshes_total",
		Help: "Number of product list subscriptions started",
	})

	draftSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_draft_saves_total",
		Help: "Number of draft save attempts by status",
	}, []string{"status"})

	draftSaveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_draft_save_duration_seconds",
		Help:    "Duration of product writes from drafts",
		Buckets: prometheus.DefBuckets,
	})
)
