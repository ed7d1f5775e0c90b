/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Seednode/twentyq/metrics"
)

var (
	// ErrIgnored is returned for empty input or an event the current state
	// does not accept. Nothing changes and the UI should stay silent.
	ErrIgnored = errors.New("event ignored")

	// ErrEngineUnavailable means no engine was configured, so a game cannot start.
	ErrEngineUnavailable = errors.New("conversation engine unavailable")
)

type Answer string

const (
	Yes Answer = "Yes"
	No  Answer = "No"
)

// ParseAnswer accepts "yes" or "no" in any case.
func ParseAnswer(s string) (Answer, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return Yes, true
	case "no":
		return No, true
	}
	return "", false
}

// Gate decides whether an invitation code admits the player.
type Gate interface {
	Admit(code string) bool
}

type Options struct {
	Engine    Engine
	Gate      Gate
	Estimator Estimator
	Logger    zerolog.Logger
}

// Session is one player's game. It is not safe for concurrent use; the
// Store hands it out under a per-session lock.
type Session struct {
	id      string
	state   State
	player  string
	history []Turn
	count   int
	last    string

	engine  Engine
	gate    Gate
	est     Estimator
	monitor *UsageMonitor
	log     zerolog.Logger
}

func NewSession(id string, monitor *UsageMonitor, opts Options) *Session {
	s := &Session{
		id:      id,
		state:   AwaitingName,
		engine:  opts.Engine,
		gate:    opts.Gate,
		est:     opts.Estimator,
		monitor: monitor,
		log:     opts.Logger.With().Str("session_id", id).Logger(),
	}
	if s.gate != nil {
		s.state = AwaitingInvitation
	}
	if s.est == nil {
		s.est = CharEstimator{Divisor: CharsPerToken}
	}
	return s
}

func (s *Session) ID() string { return s.id }
func (s *Session) State() State { return s.state }
func (s *Session) PlayerName() string { return s.player }
func (s *Session) QuestionCount() int { return s.count }
func (s *Session) LastMessage() string { return s.last }
func (s *Session) Monitor() *UsageMonitor { return s.monitor }

// DisplayMessage is the last AI message as the player may see it.
func (s *Session) DisplayMessage() string {
	return Display(s.last)
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) SubmitInvitation(code string) error {
	code = strings.TrimSpace(code)
	if s.state != AwaitingInvitation || code == "" {
		return ErrIgnored
	}
	if s.gate != nil && !s.gate.Admit(code) {
		s.log.Debug().Msg("invitation code rejected")
		return ErrIgnored
	}

	s.state = AwaitingName

	return nil
}

func (s *Session) SubmitName(name string) error {
	name = strings.TrimSpace(name)
	if s.state != AwaitingName || name == "" {
		return ErrIgnored
	}

	s.player = name
	s.state = ReadyToStart

	return nil
}

// Start opens a new game and fetches the first question.
func (s *Session) Start(ctx context.Context) error {
	if s.state != ReadyToStart {
		return ErrIgnored
	}
	if s.engine == nil {
		return ErrEngineUnavailable
	}

	s.state = Playing
	s.history = s.history[:0]
	s.count = 0

	reply := s.converse(ctx, []Turn{{Speaker: System, Text: kickoffPrompt}})
	s.last = reply
	s.history = append(s.history, Turn{Speaker: AI, Text: reply})
	s.count++

	s.log.Debug().Str("player", s.player).Msg("game started")

	return nil
}

func (s *Session) Answer(ctx context.Context, a Answer) error {
	if s.state != Playing || (a != Yes && a != No) {
		return ErrIgnored
	}

	s.history = append(s.history, Turn{Speaker: Player, Text: string(a)})

	reply := s.converse(ctx, s.history)
	s.last = reply
	s.history = append(s.history, Turn{Speaker: AI, Text: reply})
	s.count++

	switch {
	case HasWon(reply):
		s.state = FinishedWin
		metrics.GameFinished("won", s.count)
		s.log.Info().Int("questions", s.count).Msg("game won")
	case s.count >= MaxQuestions:
		s.state = AwaitingReveal
	}

	return nil
}

// Reveal tells the engine what the item was after it ran out of questions.
func (s *Session) Reveal(ctx context.Context, item string) error {
	item = strings.TrimSpace(item)
	if s.state != AwaitingReveal || item == "" {
		return ErrIgnored
	}

	s.history = append(s.history, Turn{Speaker: System, Text: revealPrompt(item)})

	reply := s.converse(ctx, s.history)
	s.last = reply
	s.history = append(s.history, Turn{Speaker: AI, Text: reply})
	s.state = FinishedLoss

	metrics.GameFinished("lost", s.count)
	s.log.Info().Int("questions", s.count).Str("item", item).Msg("game lost")

	return nil
}

// PlayAgain returns a finished game to the start screen, keeping the player's name.
func (s *Session) PlayAgain() error {
	if !s.state.Finished() {
		return ErrIgnored
	}

	s.state = ReadyToStart
	s.history = nil
	s.count = 0
	s.last = ""

	return nil
}

// converse runs one turn against the engine. Failures are replaced by the
// fallback message and accrue nothing.
func (s *Session) converse(ctx context.Context, history []Turn) string {
	transcript := Transcript(history)

	if s.engine == nil {
		metrics.ObserveTurn(false, 0, 0)
		return FallbackMessage
	}

	start := time.Now()

	reply, err := s.engine.Converse(ctx, transcript)
	if err != nil {
		metrics.ObserveTurn(false, 0, time.Since(start))
		s.log.Error().Err(err).Msg("engine call failed")
		return FallbackMessage
	}

	cost := Cost(s.est, transcript, reply)
	if s.monitor != nil {
		s.monitor.Accrue(cost)
	}
	metrics.ObserveTurn(true, cost, time.Since(start))

	s.log.Debug().
		Int("tokens", cost).
		Bool("reported", reply.Usage != nil).
		Int("length", len(reply.Text)).
		Msg("engine replied")

	return reply.Text
}
