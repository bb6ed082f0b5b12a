// Package resolve drives the generate/validate/retry loop that turns a
// word into an accepted decomposition. The generator is any
// llmclient.LLMClient; validation feedback from rejected attempts is fed
// back into the next prompt so the model can self-correct.
package resolve

import (
	"context"
	"fmt"
	"log/slog"

	"etymograph/internal/layering"
	"etymograph/internal/llmclient"
	"etymograph/internal/morph"
	"etymograph/internal/prompt"
	"etymograph/internal/validate"
)

// DefaultMaxAttempts bounds the generation calls per word when the
// Resolver is not configured otherwise.
const DefaultMaxAttempts = 3

// TransportError reports that the generator itself failed: provider
// unreachable, provider-side error, or output that is not JSON. It aborts
// the resolution immediately and is never retried or converted into a
// validation violation.
type TransportError struct {
	Attempt int
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("resolve: attempt %d: generator failure: %v", e.Attempt, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Trace receives progress callbacks during a resolution. All hooks are
// optional and invoked synchronously from Resolve.
type Trace struct {
	OnAttempt   func(prompt.Attempt)
	OnAccepted  func(Outcome)
	OnExhausted func(Outcome)
}

// Outcome is the terminal state of a resolution. Accepted outcomes carry
// the document in canonical layered form; exhausted outcomes carry the
// last attempt's document as the model produced it, plus its violations.
// Attempts always holds the full history, final attempt included.
type Outcome struct {
	Word       string               `json:"word"`
	Accepted   bool                 `json:"accepted"`
	Document   morph.Document       `json:"document"`
	Violations []validate.Violation `json:"violations,omitempty"`
	Attempts   []prompt.Attempt     `json:"attempts"`
}

// Resolver runs decompositions against a generator until one passes
// structural validation or the attempt budget runs out.
type Resolver struct {
	LLM         llmclient.LLMClient
	MaxAttempts int // <= 0 means DefaultMaxAttempts
	Trace       Trace
	Logger      *slog.Logger
}

// Resolve asks the generator for a decomposition of word, validates it,
// and retries with accumulated feedback until acceptance or exhaustion.
// Exhaustion is a terminal state, not an error; only generator failures
// return a non-nil error.
func (r *Resolver) Resolve(ctx context.Context, word string) (Outcome, error) {
	max := r.MaxAttempts
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	input := struct {
		Word string `json:"word"`
	}{Word: word}

	var history []prompt.Attempt
	for n := 1; n <= max; n++ {
		raw, err := r.LLM.GenerateJSON(ctx, prompt.Decomposition(word, history), input)
		if err != nil {
			return Outcome{}, &TransportError{Attempt: n, Err: err}
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return Outcome{}, &TransportError{Attempt: n, Err: err}
		}

		violations := validate.Validate(word, doc)
		attempt := prompt.Attempt{Attempt: n, Document: doc, Violations: violations}
		history = append(history, attempt)
		if r.Trace.OnAttempt != nil {
			r.Trace.OnAttempt(attempt)
		}

		if len(violations) == 0 {
			out := Outcome{
				Word:     word,
				Accepted: true,
				Document: layering.Apply(doc),
				Attempts: history,
			}
			log.Info("decomposition accepted",
				slog.String("word", word),
				slog.Int("attempts", n),
				slog.String("client", r.LLM.Name()))
			if r.Trace.OnAccepted != nil {
				r.Trace.OnAccepted(out)
			}
			return out, nil
		}
		log.Debug("decomposition rejected",
			slog.String("word", word),
			slog.Int("attempt", n),
			slog.Int("violations", len(violations)))
	}

	last := history[len(history)-1]
	out := Outcome{
		Word:       word,
		Accepted:   false,
		Document:   last.Document,
		Violations: last.Violations,
		Attempts:   history,
	}
	log.Warn("decomposition exhausted",
		slog.String("word", word),
		slog.Int("attempts", max),
		slog.Int("violations", len(last.Violations)))
	if r.Trace.OnExhausted != nil {
		r.Trace.OnExhausted(out)
	}
	return out, nil
}
