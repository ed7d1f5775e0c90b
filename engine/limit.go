/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package engine

import (
	"context"

	"github.com/Seednode/twentyq/game"
)

var _ game.Engine = (*limited)(nil)

type limited struct {
	inner game.Engine
	sem   chan struct{}
}

// Limit caps the number of concurrent calls into inner across all sessions.
func Limit(inner game.Engine, maxConcurrent int) game.Engine {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limited{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limited) Converse(ctx context.Context, transcript string) (game.Reply, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return game.Reply{}, ctx.Err()
	}
	defer func() { <-l.sem }()

	return l.inner.Converse(ctx, transcript)
}
