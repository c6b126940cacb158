package quiz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	txsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizstake_txs_submitted_total",
		Help: "Transactions submitted to the ledger.",
	}, []string{"method"})

	txsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizstake_txs_confirmed_total",
		Help: "Transactions confirmed on chain.",
	}, []string{"method"})

	txsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizstake_txs_failed_total",
		Help: "Transactions that failed to submit or reverted.",
	}, []string{"method", "reason"})

	cacheRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizstake_cache_refreshes_total",
		Help: "Status cache refresh attempts.",
	}, []string{"outcome"})
)
