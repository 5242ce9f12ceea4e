package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storageOpsTotal) }

var storageOpsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dialog_storage_ops_total",
		Help: "Dialog storage operations per backend and outcome.",
	},
	[]string{"backend", "op", "result"}, // e.g. backend="redis", op="get", result="miss"
)

func IncStorageOp(backend, op, result string) {
	storageOpsTotal.WithLabelValues(backend, op, result).Inc()
}
