/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "context"

// Usage is the token count an engine reports for one exchange.
type Usage struct {
	Input  int
	Output int
}

// Reply is the engine's answer to one transcript. Usage is nil when the
// provider did not report structured counts.
type Reply struct {
	Text  string
	Usage *Usage
}

// Engine produces the next AI turn for a flattened transcript. The system
// prompt is fixed when the engine is constructed.
type Engine interface {
	Converse(ctx context.Context, transcript string) (Reply, error)
}
