/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package engine

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Seednode/twentyq/game"
)

const defaultGeminiModel = "gemini-2.0-flash"

var _ game.Engine = (*GeminiEngine)(nil)

type GeminiEngine struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGemini creates a Gemini engine using the official SDK.
func NewGemini(ctx context.Context, cfg Config) (*GeminiEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingCredential)
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(cfg.prompt(), genai.RoleUser),
		Temperature:       genai.Ptr(float32(cfg.Temperature)),
	}
	if cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(cfg.MaxTokens)
	}

	return &GeminiEngine{client: c, model: model, config: gc}, nil
}

func (g *GeminiEngine) Converse(ctx context.Context, transcript string) (game.Reply, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(transcript), g.config)
	if err != nil {
		return game.Reply{}, fmt.Errorf("gemini generate: %w", err)
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p != nil && p.Text != "" {
				text += p.Text
			}
		}
	}
	if text == "" {
		return game.Reply{}, ErrEmptyReply
	}

	reply := game.Reply{Text: text}
	if resp.UsageMetadata != nil {
		reply.Usage = &game.Usage{
			Input:  int(resp.UsageMetadata.PromptTokenCount),
			Output: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	return reply, nil
}
