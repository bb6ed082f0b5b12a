package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"etymograph/internal/prompt"
)

const validDeconstructor = `{
  "word": "deconstructor",
  "thought": "de + construct + or",
  "parts": [
    {"id": "de", "text": "de", "originalWord": "de-", "origin": "Latin", "meaning": "reversal"},
    {"id": "construc", "text": "construc", "originalWord": "construere", "origin": "Latin", "meaning": "to build"},
    {"id": "tor", "text": "tor", "originalWord": "-or", "origin": "Latin", "meaning": "agent"}
  ],
  "combinations": [
    [{"id": "deconstruc", "text": "deconstruc", "definition": "to unbuild", "sourceIds": ["de", "construc"]}],
    [{"id": "deconstructor", "text": "deconstructor", "definition": "one who unbuilds", "sourceIds": ["deconstruc", "tor"]}]
  ]
}`

// Fails coverage: one part cannot spell the whole word.
const invalidDeconstructor = `{
  "word": "deconstructor",
  "parts": [
    {"id": "de", "text": "de", "originalWord": "de-", "origin": "Latin", "meaning": "reversal"}
  ],
  "combinations": [
    [{"id": "deconstructor", "text": "deconstructor", "definition": "?", "sourceIds": ["de"]}]
  ]
}`

type step struct {
	raw string
	err error
}

type scriptedLLM struct {
	steps   []step
	prompts []string
}

func (s *scriptedLLM) Name() string                { return "scripted" }
func (s *scriptedLLM) Close() error                { return nil }
func (s *scriptedLLM) CountTokens(text string) int { return len(text) / 4 }
func (s *scriptedLLM) TokenCapacity() int          { return 1 << 16 }

func (s *scriptedLLM) GenerateJSON(ctx context.Context, p string, input any) (json.RawMessage, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, p)
	if i >= len(s.steps) {
		return nil, fmt.Errorf("unexpected generation call %d", i+1)
	}
	if s.steps[i].err != nil {
		return nil, s.steps[i].err
	}
	return json.RawMessage(s.steps[i].raw), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveAcceptsFirstTry(t *testing.T) {
	gen := &scriptedLLM{steps: []step{{raw: validDeconstructor}}}
	r := &Resolver{LLM: gen, MaxAttempts: 3, Logger: quietLogger()}

	out, err := r.Resolve(context.Background(), "deconstructor")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !out.Accepted {
		t.Fatalf("outcome not accepted: %+v", out.Violations)
	}
	if len(gen.prompts) != 1 {
		t.Errorf("generation calls = %d, want 1", len(gen.prompts))
	}
	if len(out.Attempts) != 1 {
		t.Errorf("attempt history = %d entries, want 1", len(out.Attempts))
	}
	if len(out.Violations) != 0 {
		t.Errorf("violations = %v, want none", out.Violations)
	}
	if got := len(out.Document.Combinations); got != 2 {
		t.Errorf("canonical layers = %d, want 2", got)
	}
	if strings.Contains(gen.prompts[0], "Previous attempts:") {
		t.Errorf("first prompt must not carry a history block")
	}
	if !strings.Contains(gen.prompts[0], "'deconstructor'") {
		t.Errorf("prompt does not pin the word: %q", gen.prompts[0])
	}
}

func TestResolveFeedsHistoryIntoRetry(t *testing.T) {
	gen := &scriptedLLM{steps: []step{{raw: invalidDeconstructor}, {raw: validDeconstructor}}}

	var seen []prompt.Attempt
	accepted, exhausted := 0, 0
	r := &Resolver{
		LLM:         gen,
		MaxAttempts: 3,
		Logger:      quietLogger(),
		Trace: Trace{
			OnAttempt:   func(a prompt.Attempt) { seen = append(seen, a) },
			OnAccepted:  func(Outcome) { accepted++ },
			OnExhausted: func(Outcome) { exhausted++ },
		},
	}

	out, err := r.Resolve(context.Background(), "deconstructor")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !out.Accepted {
		t.Fatalf("outcome not accepted: %+v", out.Violations)
	}
	if len(gen.prompts) != 2 {
		t.Fatalf("generation calls = %d, want 2", len(gen.prompts))
	}
	retry := gen.prompts[1]
	if !strings.Contains(retry, "Previous attempts:") {
		t.Errorf("retry prompt lacks the history block")
	}
	if !strings.Contains(retry, "coverage_mismatch") {
		t.Errorf("retry prompt lacks the prior violation: %q", retry)
	}
	if len(out.Attempts) != 2 || len(out.Attempts[0].Violations) == 0 || len(out.Attempts[1].Violations) != 0 {
		t.Errorf("attempt history wrong: %+v", out.Attempts)
	}
	if len(seen) != 2 || seen[0].Attempt != 1 || seen[1].Attempt != 2 {
		t.Errorf("OnAttempt saw %+v", seen)
	}
	if accepted != 1 || exhausted != 0 {
		t.Errorf("hooks: accepted=%d exhausted=%d, want 1/0", accepted, exhausted)
	}
}

func TestResolveExhaustsAttemptBudget(t *testing.T) {
	gen := &scriptedLLM{steps: []step{
		{raw: invalidDeconstructor},
		{raw: invalidDeconstructor},
		{raw: invalidDeconstructor},
	}}
	accepted, exhausted := 0, 0
	r := &Resolver{
		LLM:         gen,
		MaxAttempts: 3,
		Logger:      quietLogger(),
		Trace: Trace{
			OnAccepted:  func(Outcome) { accepted++ },
			OnExhausted: func(Outcome) { exhausted++ },
		},
	}

	out, err := r.Resolve(context.Background(), "deconstructor")
	if err != nil {
		t.Fatalf("exhaustion must not be an error, got %v", err)
	}
	if out.Accepted {
		t.Fatalf("outcome accepted, want exhausted")
	}
	if len(gen.prompts) != 3 {
		t.Errorf("generation calls = %d, want exactly 3", len(gen.prompts))
	}
	if len(out.Attempts) != 3 {
		t.Fatalf("attempt history = %d entries, want 3", len(out.Attempts))
	}
	for i, a := range out.Attempts {
		if a.Attempt != i+1 {
			t.Errorf("attempt[%d].Attempt = %d, want %d", i, a.Attempt, i+1)
		}
	}
	if len(out.Violations) == 0 {
		t.Errorf("exhausted outcome must carry the last violations")
	}
	if len(out.Document.Parts) != 1 || out.Document.Parts[0].ID != "de" {
		t.Errorf("exhausted outcome must carry the last document, got %+v", out.Document)
	}
	if accepted != 0 || exhausted != 1 {
		t.Errorf("hooks: accepted=%d exhausted=%d, want 0/1", accepted, exhausted)
	}
}

func TestResolveDefaultsMaxAttempts(t *testing.T) {
	gen := &scriptedLLM{steps: []step{
		{raw: invalidDeconstructor},
		{raw: invalidDeconstructor},
		{raw: invalidDeconstructor},
	}}
	r := &Resolver{LLM: gen, Logger: quietLogger()}

	out, err := r.Resolve(context.Background(), "deconstructor")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Accepted {
		t.Fatalf("outcome accepted, want exhausted")
	}
	if len(gen.prompts) != DefaultMaxAttempts {
		t.Errorf("generation calls = %d, want %d", len(gen.prompts), DefaultMaxAttempts)
	}
}

func TestResolveAbortsOnTransportFailure(t *testing.T) {
	boom := errors.New("connection reset")
	gen := &scriptedLLM{steps: []step{{raw: invalidDeconstructor}, {err: boom}}}
	r := &Resolver{LLM: gen, MaxAttempts: 5, Logger: quietLogger()}

	_, err := r.Resolve(context.Background(), "deconstructor")
	if err == nil {
		t.Fatalf("want transport error, got nil")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %T, want *TransportError", err)
	}
	if te.Attempt != 2 {
		t.Errorf("TransportError.Attempt = %d, want 2", te.Attempt)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err does not wrap the cause: %v", err)
	}
	if len(gen.prompts) != 2 {
		t.Errorf("generation calls = %d, want 2 (no retry after transport failure)", len(gen.prompts))
	}
}

func TestResolveTreatsGarbageOutputAsTransportFailure(t *testing.T) {
	gen := &scriptedLLM{steps: []step{{raw: "I cannot help with that."}}}
	attempts := 0
	r := &Resolver{
		LLM:    gen,
		Logger: quietLogger(),
		Trace:  Trace{OnAttempt: func(prompt.Attempt) { attempts++ }},
	}

	_, err := r.Resolve(context.Background(), "deconstructor")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.Attempt != 1 {
		t.Errorf("TransportError.Attempt = %d, want 1", te.Attempt)
	}
	if attempts != 0 {
		t.Errorf("garbage output must not count as a validated attempt")
	}
}

func TestResolveDecodesFencedOutput(t *testing.T) {
	fenced := "Here you go:\n```json\n" + validDeconstructor + "\n```\n"
	gen := &scriptedLLM{steps: []step{{raw: fenced}}}
	r := &Resolver{LLM: gen, Logger: quietLogger()}

	out, err := r.Resolve(context.Background(), "deconstructor")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !out.Accepted {
		t.Fatalf("fenced but valid output should be accepted, got %+v", out.Violations)
	}
}
