package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LinkOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joebookmarks_link_operations_total",
		Help: "Link service operations by operation and outcome kind.",
	}, []string{"op", "outcome"})

	TxConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joebookmarks_tx_conflicts_total",
		Help: "Transaction attempts aborted by a write conflict.",
	}, []string{"op"})

	TxDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "joebookmarks_tx_duration_seconds",
		Help:    "Wall time of transactional store operations, retries included.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
	}, []string{"op"})

	RedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joebookmarks_redirects_total",
		Help: "Total short code resolution attempts.",
	}, []string{"status"})

	LinksTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "joebookmarks_links_total",
		Help: "Total number of links in the database.",
	})

	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "joebookmarks_users_total",
		Help: "Total number of registered users in the database.",
	})
)
