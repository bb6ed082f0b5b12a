// Package llmclient wraps the language-model backends behind one small
// interface. Clients stay focused on the API call itself; cross-cutting
// concerns (logging, metrics) layer on through Middleware.
package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// LLMClient is the generator collaborator: it takes a prompt plus an input
// payload and returns the model's JSON, structurally untrusted.
type LLMClient interface {
	Name() string
	Close() error
	CountTokens(text string) int
	TokenCapacity() int
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
}

// ErrInvalidJSON reports that the model answered with something that is
// not JSON at all.
var ErrInvalidJSON = errors.New("llmclient: invalid json from model")

// PermanentError marks a failure that will not resolve with retries, such
// as a prompt that exceeds the model's context window.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

// CountTokens is a cheap local estimate: whichever is larger of the word
// count and a four-bytes-per-token guess, so unspaced text still counts.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	n := len(strings.Fields(text))
	if byBytes := len(text) / 4; byBytes > n {
		n = byBytes
	}
	return n
}
