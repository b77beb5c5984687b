package devnet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

const namespace = "devchain"

var (
	metricBlocksMined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_mined_total",
		Help:      "Number of blocks mined by the development node.",
	})
	metricChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "chain_height",
		Help:      "Number of the latest block.",
	})
	metricTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Transactions executed, by receipt status.",
	}, []string{"status"})
	metricCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calls_total",
		Help:      "Read-only contract calls, by outcome.",
	}, []string{"outcome"})
)

func statusLabel(status uint64) string {
	if status == domain.ReceiptStatusSuccessful {
		return "success"
	}
	return "reverted"
}
