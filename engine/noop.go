/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package engine

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/Seednode/twentyq/game"
)

var _ game.Engine = (*NoopEngine)(nil)

// NoopEngine walks through a fixed list of questions without calling any
// API, for local development. It never wins.
type NoopEngine struct {
	next atomic.Int64
}

var noopQuestions = []string{
	"Is it alive?",
	"Is it bigger than a shoebox?",
	"Can you find it in a kitchen?",
	"Is it soft?",
	"Does it make a sound?",
	"Can you eat it?",
	"Is it something you play with?",
	"Does it use electricity?",
}

func NewNoop() *NoopEngine {
	return &NoopEngine{}
}

func (n *NoopEngine) Converse(ctx context.Context, transcript string) (game.Reply, error) {
	if err := ctx.Err(); err != nil {
		return game.Reply{}, err
	}

	if strings.Contains(transcript, "has revealed the item was") {
		return game.Reply{Text: "No way! Really? I never would have guessed that!"}, nil
	}

	i := n.next.Add(1) - 1

	return game.Reply{Text: noopQuestions[int(i)%len(noopQuestions)]}, nil
}
