/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// CharsPerToken is the average number of characters per token for English text.
const CharsPerToken = 4

// Estimator guesses the token cost of one request/response exchange.
type Estimator interface {
	Estimate(request, response string) int
}

// CharEstimator divides the combined character count by a fixed divisor.
type CharEstimator struct {
	Divisor int
}

func (e CharEstimator) Estimate(request, response string) int {
	d := e.Divisor
	if d <= 0 {
		d = CharsPerToken
	}
	return (utf8.RuneCountInString(request) + utf8.RuneCountInString(response)) / d
}

// TiktokenEstimator counts BPE tokens with a tiktoken encoding.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenEstimator loads the named encoding, e.g. "cl100k_base".
func NewTiktokenEstimator(encoding string) (*TiktokenEstimator, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &TiktokenEstimator{enc: enc}, nil
}

func (e *TiktokenEstimator) Estimate(request, response string) int {
	return len(e.enc.Encode(request, nil, nil)) + len(e.enc.Encode(response, nil, nil))
}

// Cost returns the tokens to accrue for one exchange. Structured usage wins;
// otherwise both sides are estimated.
func Cost(est Estimator, request string, reply Reply) int {
	if reply.Usage != nil {
		n := reply.Usage.Input + reply.Usage.Output
		if n < 0 {
			return 0
		}
		return n
	}
	if est == nil {
		est = CharEstimator{}
	}
	return est.Estimate(request, reply.Text)
}
