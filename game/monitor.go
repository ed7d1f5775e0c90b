/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// UnknownSession is used when the host cannot supply a session id.
const UnknownSession = "unknown_session"

// UsageMonitor accumulates the tokens consumed by one player session and
// logs the total once, when the host tears the session down.
type UsageMonitor struct {
	sessionID string
	total     atomic.Int64
	log       zerolog.Logger
	once      sync.Once
}

func NewUsageMonitor(sessionID string, log zerolog.Logger) *UsageMonitor {
	if sessionID == "" {
		sessionID = UnknownSession
	}

	m := &UsageMonitor{
		sessionID: sessionID,
		log:       log,
	}

	m.log.Info().Str("session_id", sessionID).Msg("session started")

	return m
}

func (m *UsageMonitor) SessionID() string {
	return m.sessionID
}

// Accrue adds n tokens. Negative amounts are dropped so the total never decreases.
func (m *UsageMonitor) Accrue(n int) {
	if n <= 0 {
		return
	}
	m.total.Add(int64(n))
}

func (m *UsageMonitor) Total() int64 {
	return m.total.Load()
}

// Finalize emits the closing summary. Only the first call logs.
func (m *UsageMonitor) Finalize() {
	m.once.Do(func() {
		m.log.Info().
			Str("session_id", m.sessionID).
			Int64("total_tokens", m.total.Load()).
			Msg("session disconnected")
	})
}
