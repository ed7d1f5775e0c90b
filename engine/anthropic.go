/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Seednode/twentyq/game"
)

const (
	defaultAnthropicModel = "claude-haiku-4-5"

	// The Messages API rejects requests without a token ceiling.
	defaultAnthropicMaxTokens = 1024
)

var _ game.Engine = (*AnthropicEngine)(nil)

// AnthropicEngine talks to the Anthropic Messages API.
type AnthropicEngine struct {
	client      anthropic.Client
	model       string
	system      string
	maxTokens   int64
	temperature float64
}

func NewAnthropic(cfg Config) (*AnthropicEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingCredential)
	}

	model := cfg.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicEngine{
		client:      anthropic.NewClient(opts...),
		model:       model,
		system:      cfg.prompt(),
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (a *AnthropicEngine) Converse(ctx context.Context, transcript string) (game.Reply, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: a.system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(transcript)),
		},
		Temperature: anthropic.Float(a.temperature),
	})
	if err != nil {
		return game.Reply{}, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return game.Reply{}, ErrEmptyReply
	}

	reply := game.Reply{Text: text.String()}
	if resp.Usage.InputTokens > 0 || resp.Usage.OutputTokens > 0 {
		reply.Usage = &game.Usage{
			Input:  int(resp.Usage.InputTokens),
			Output: int(resp.Usage.OutputTokens),
		}
	}

	return reply, nil
}
