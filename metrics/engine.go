/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		engineTurns,
		engineTokens,
		engineLatencyMs,
	)
}

var (
	engineTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twentyq_engine_turns_total",
			Help: "Engine turns by success.",
		},
		[]string{"success"},
	)

	engineTokens = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "twentyq_engine_tokens_total",
			Help: "Tokens accrued across all sessions, reported or estimated.",
		},
	)

	engineLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twentyq_engine_latency_ms",
			Help:    "Engine call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 20000},
		},
		[]string{"success"},
	)
)

func ObserveTurn(success bool, tokens int, latency time.Duration) {
	lbl := strconv.FormatBool(success)
	engineTurns.WithLabelValues(lbl).Inc()
	if tokens > 0 {
		engineTokens.Add(float64(tokens))
	}
	engineLatencyMs.WithLabelValues(lbl).Observe(float64(latency.Milliseconds()))
}
