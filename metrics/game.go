/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		gamesFinished,
		gameQuestions,
		sessionsActive,
		sessionsTotal,
	)
}

var (
	gamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twentyq_games_finished_total",
			Help: "Finished games by result (won/lost).",
		},
		[]string{"result"},
	)

	gameQuestions = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "twentyq_game_questions",
			Help:    "Questions asked before a game finished.",
			Buckets: []float64{1, 3, 5, 8, 10, 12, 15, 18, 20},
		},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "twentyq_sessions_active",
			Help: "Player sessions currently held in memory.",
		},
	)

	sessionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "twentyq_sessions_total",
			Help: "Player sessions created since start.",
		},
	)
)

func GameFinished(result string, questions int) {
	gamesFinished.WithLabelValues(strings.ToLower(result)).Inc()
	gameQuestions.Observe(float64(questions))
}

func SessionOpened() {
	sessionsActive.Inc()
	sessionsTotal.Inc()
}

func SessionClosed() {
	sessionsActive.Dec()
}
