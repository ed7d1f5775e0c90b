/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package engine

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/Seednode/twentyq/game"
)

const defaultOpenAIModel = "gpt-4o-mini"

var _ game.Engine = (*OpenAIEngine)(nil)

// OpenAIEngine talks to any OpenAI-compatible Chat Completions endpoint.
type OpenAIEngine struct {
	client      openai.Client
	model       string
	system      string
	maxTokens   int
	temperature float64
}

func NewOpenAI(cfg Config) (*OpenAIEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingCredential)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIEngine{
		client:      openai.NewClient(opts...),
		model:       model,
		system:      cfg.prompt(),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (o *OpenAIEngine) Converse(ctx context.Context, transcript string) (game.Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.system),
			openai.UserMessage(transcript),
		},
		Temperature: openai.Float(o.temperature),
	}
	if o.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.maxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return game.Reply{}, fmt.Errorf("openai chat completion: %w", err)
	}

	var text string
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			text = c.Message.Content
			break
		}
	}
	if text == "" {
		return game.Reply{}, ErrEmptyReply
	}

	reply := game.Reply{Text: text}
	if resp.Usage.TotalTokens > 0 {
		reply.Usage = &game.Usage{
			Input:  int(resp.Usage.PromptTokens),
			Output: int(resp.Usage.CompletionTokens),
		}
	}

	return reply, nil
}
