package stats

import "github.com/prometheus/client_golang/prometheus"

var (
	// PollCounter counts status fetches against the gateway by outcome.
	PollCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paytracker_status_polls_total",
			Help: "Number of payment status fetches, labelled by outcome.",
		},
		[]string{"outcome"},
	)
	// StaleEstimateCounter counts estimate responses dropped because a newer
	// request superseded them.
	StaleEstimateCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "paytracker_stale_estimates_total",
			Help: "Number of conversion estimates discarded as stale.",
		},
	)
	// TerminalCounter counts payments entering a terminal status.
	TerminalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paytracker_terminal_payments_total",
			Help: "Number of payments reaching a terminal status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(PollCounter, StaleEstimateCounter, TerminalCounter)
}
