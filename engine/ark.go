/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package engine

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/Seednode/twentyq/game"
)

const defaultArkBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

var _ game.Engine = (*ArkEngine)(nil)

// ArkEngine calls a Volcengine Ark model through an eino ChatModel.
type ArkEngine struct {
	chatModel model.ChatModel
	system    string
}

func NewArk(ctx context.Context, cfg Config) (*ArkEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ark: %w", ErrMissingCredential)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ark: model is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultArkBaseURL
	}

	temperature := float32(cfg.Temperature)

	var maxTokens *int
	if cfg.MaxTokens > 0 {
		val := cfg.MaxTokens
		maxTokens = &val
	}

	cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     baseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &ArkEngine{chatModel: cm, system: cfg.prompt()}, nil
}

func (a *ArkEngine) Converse(ctx context.Context, transcript string) (game.Reply, error) {
	messages := []*schema.Message{
		schema.SystemMessage(a.system),
		schema.UserMessage(transcript),
	}

	resp, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		return game.Reply{}, fmt.Errorf("ark generate: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return game.Reply{}, ErrEmptyReply
	}

	reply := game.Reply{Text: resp.Content}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		reply.Usage = &game.Usage{
			Input:  resp.ResponseMeta.Usage.PromptTokens,
			Output: resp.ResponseMeta.Usage.CompletionTokens,
		}
	}

	return reply, nil
}
