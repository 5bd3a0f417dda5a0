// Package metrics exposes Prometheus instrumentation for the trading
// daemon. Collectors are package-level and registered once; callers use
// the helper functions so call sites stay terse.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daytrader_orders_total",
		Help: "Orders placed, by execution mode and side.",
	}, []string{"mode", "side"})

	exitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daytrader_exits_total",
		Help: "Position exits, by reason.",
	}, []string{"reason"})

	equityGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "daytrader_equity_dollars",
		Help: "Current account equity.",
	})

	monitorSteps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daytrader_monitor_steps_total",
		Help: "Monitor loop iterations completed.",
	})

	monitorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daytrader_monitor_errors_total",
		Help: "Monitor loop iterations that returned an error.",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daytrader_commands_total",
		Help: "Lifecycle commands received, by command and outcome.",
	}, []string{"command", "outcome"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordOrder(mode, side string) {
	ordersTotal.WithLabelValues(mode, side).Inc()
}

func RecordExit(reason string) {
	exitsTotal.WithLabelValues(reason).Inc()
}

func SetEquity(v float64) {
	equityGauge.Set(v)
}

func RecordStep(err error) {
	monitorSteps.Inc()
	if err != nil {
		monitorErrors.Inc()
	}
}

func RecordCommand(command string, ok bool) {
	outcome := "accepted"
	if !ok {
		outcome = "rejected"
	}
	commandsTotal.WithLabelValues(command, outcome).Inc()
}
