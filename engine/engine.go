/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package engine adapts hosted language-model APIs to game.Engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Seednode/twentyq/game"
)

var (
	ErrMissingCredential = errors.New("missing api key")
	ErrUnknownProvider   = errors.New("unknown engine provider")
	ErrEmptyReply        = errors.New("engine returned no text")
)

const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
	Gemini    = "gemini"
	Ark       = "ark"
	Noop      = "noop"
)

// Providers lists the accepted values of Config.Provider.
var Providers = []string{Anthropic, OpenAI, Gemini, Ark, Noop}

type Config struct {
	Provider     string
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	Concurrency  int
}

func (c Config) prompt() string {
	if c.SystemPrompt != "" {
		return c.SystemPrompt
	}
	return game.SystemPrompt
}

// New builds the engine named by cfg.Provider, wrapped in a concurrency
// limit when cfg.Concurrency is positive.
func New(ctx context.Context, cfg Config) (game.Engine, error) {
	var (
		e   game.Engine
		err error
	)

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	if provider != Noop && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrMissingCredential)
	}

	switch provider {
	case Anthropic:
		e, err = NewAnthropic(cfg)
	case OpenAI:
		e, err = NewOpenAI(cfg)
	case Gemini:
		e, err = NewGemini(ctx, cfg)
	case Ark:
		e, err = NewArk(ctx, cfg)
	case Noop:
		e = NewNoop()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return Limit(e, cfg.Concurrency), nil
}
