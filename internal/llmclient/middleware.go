package llmclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns.
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// WithLogging emits one structured line per generation: client name,
// prompt tokens, duration, and the error if any. A nil logger falls back
// to slog.Default().
func WithLogging(logger *slog.Logger) Middleware {
	return func(next LLMClient) LLMClient {
		if logger == nil {
			logger = slog.Default()
		}
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next LLMClient
	log  *slog.Logger
}

func (l *logging) Name() string                { return l.next.Name() }
func (l *logging) Close() error                { return l.next.Close() }
func (l *logging) CountTokens(text string) int { return l.next.CountTokens(text) }
func (l *logging) TokenCapacity() int          { return l.next.TokenCapacity() }

func (l *logging) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	start := time.Now()
	raw, err := l.next.GenerateJSON(ctx, prompt, input)
	attrs := []any{
		slog.String("client", l.next.Name()),
		slog.Int("prompt_tokens", l.next.CountTokens(prompt)),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		l.log.Error("llm generation failed", append(attrs, slog.Any("error", err))...)
		return nil, err
	}
	l.log.Debug("llm generation done", append(attrs, slog.Int("response_bytes", len(raw)))...)
	return raw, nil
}

// GenerationObserver receives timing for every generation call. The
// metrics collector implements it; the indirection keeps this package
// free of a direct prometheus dependency.
type GenerationObserver interface {
	ObserveGeneration(client string, d time.Duration, err error)
}

// WithMetrics reports each generation to obs. A nil observer is a no-op.
func WithMetrics(obs GenerationObserver) Middleware {
	return func(next LLMClient) LLMClient {
		if obs == nil {
			return next
		}
		return &metered{next: next, obs: obs}
	}
}

type metered struct {
	next LLMClient
	obs  GenerationObserver
}

func (m *metered) Name() string                { return m.next.Name() }
func (m *metered) Close() error                { return m.next.Close() }
func (m *metered) CountTokens(text string) int { return m.next.CountTokens(text) }
func (m *metered) TokenCapacity() int          { return m.next.TokenCapacity() }

func (m *metered) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	start := time.Now()
	raw, err := m.next.GenerateJSON(ctx, prompt, input)
	m.obs.ObserveGeneration(m.next.Name(), time.Since(start), err)
	return raw, err
}
