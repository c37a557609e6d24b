package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	OperationsTotal     *prometheus.CounterVec
	ConfirmationLatency prometheus.Histogram
	LastGasEstimate     prometheus.Gauge
	WalletConnected     prometheus.Gauge
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "console_operations_total",
			Help: "Controller operations by kind and outcome",
		}, []string{"operation", "outcome"}),
		ConfirmationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "console_tx_confirmation_seconds",
			Help:    "Time from submission to block inclusion",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
		}),
		LastGasEstimate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "console_last_gas_estimate_units",
			Help: "Most recent gas estimate for the configured call",
		}),
		WalletConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "console_wallet_connected",
			Help: "1 when a wallet account is connected",
		}),
	}
}

// ObserveOperation 记录一次操作结果; 未初始化时忽略
func ObserveOperation(operation, outcome string) {
	if Business == nil {
		return
	}
	Business.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func ObserveConfirmation(d time.Duration) {
	if Business == nil {
		return
	}
	Business.ConfirmationLatency.Observe(d.Seconds())
}

func SetGasEstimate(units float64) {
	if Business == nil {
		return
	}
	Business.LastGasEstimate.Set(units)
}

func SetWalletConnected(connected bool) {
	if Business == nil {
		return
	}
	if connected {
		Business.WalletConnected.Set(1)
	} else {
		Business.WalletConnected.Set(0)
	}
}
