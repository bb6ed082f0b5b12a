// Package resolution coordinates one word's journey through the service:
// cache lookup, resolver run, watch events, metrics, and storing the
// accepted result.
package resolution

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"etymograph/internal/gateway/metrics"
	"etymograph/internal/gateway/repository/decompstore"
	"etymograph/internal/gateway/repository/morphidx"
	"etymograph/internal/gateway/watch"
	"etymograph/internal/llmclient"
	"etymograph/internal/morph"
	"etymograph/internal/prompt"
	"etymograph/internal/resolve"
)

// ErrEmptyWord rejects requests whose word has no letters to decompose.
var ErrEmptyWord = errors.New("resolution: word must contain at least one letter")

const defaultTimeout = 2 * time.Minute

type Options struct {
	LLM         llmclient.LLMClient
	Store       *decompstore.Store
	Index       *morphidx.Index
	Hub         *watch.Hub
	Metrics     *metrics.Collector
	Logger      *slog.Logger
	MaxAttempts int
	Timeout     time.Duration
}

type Service struct {
	llm         llmclient.LLMClient
	store       *decompstore.Store
	index       *morphidx.Index
	hub         *watch.Hub
	metrics     *metrics.Collector
	log         *slog.Logger
	maxAttempts int
	timeout     time.Duration
}

func New(opts Options) *Service {
	if opts.Hub == nil {
		opts.Hub = watch.NewHub(0)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCollector("etymograph")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Service{
		llm:         opts.LLM,
		store:       opts.Store,
		index:       opts.Index,
		hub:         opts.Hub,
		metrics:     opts.Metrics,
		log:         opts.Logger,
		maxAttempts: opts.MaxAttempts,
		timeout:     opts.Timeout,
	}
}

// Result pairs an outcome with the watch id of the resolution that
// produced it. ResolutionID is empty on cache hits: nothing ran.
type Result struct {
	ResolutionID string
	FromCache    bool
	Outcome      resolve.Outcome
}

// Decompose resolves word synchronously, consulting the cache first.
func (s *Service) Decompose(ctx context.Context, word string) (Result, error) {
	word = strings.TrimSpace(word)
	if morph.NormalizeWord(word) == "" {
		return Result{}, ErrEmptyWord
	}

	if cached, ok := s.store.Get(word); ok {
		s.metrics.CacheHits.Inc()
		return Result{FromCache: true, Outcome: cached}, nil
	}
	s.metrics.CacheMisses.Inc()

	id := uuid.NewString()
	s.hub.Open(id)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.run(ctx, id, word)
	if err != nil {
		return Result{ResolutionID: id}, err
	}
	return Result{ResolutionID: id, Outcome: out}, nil
}

// Start launches a background resolution and returns its watch id
// immediately. Progress is observable through the hub; an accepted
// result lands in the cache exactly like Decompose's.
func (s *Service) Start(word string) (Result, error) {
	word = strings.TrimSpace(word)
	if morph.NormalizeWord(word) == "" {
		return Result{}, ErrEmptyWord
	}

	id := uuid.NewString()
	s.hub.Open(id)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.run(ctx, id, word); err != nil {
			s.log.Error("background resolution failed",
				slog.String("word", word),
				slog.String("resolution_id", id),
				slog.Any("error", err))
		}
	}()

	return Result{ResolutionID: id}, nil
}

// Lookup returns the cached decomposition for word, if any.
func (s *Service) Lookup(word string) (resolve.Outcome, bool) {
	out, ok := s.store.Get(word)
	if ok {
		s.metrics.CacheHits.Inc()
	} else {
		s.metrics.CacheMisses.Inc()
	}
	return out, ok
}

// Search lists the indexed words whose decomposition contains the given
// morpheme.
func (s *Service) Search(text string) []string {
	return s.index.Find(text)
}

// run executes one resolution and keeps the side effects ordered: the
// accepted outcome is stored before the terminal event goes out, so a
// watcher that sees "accepted" can immediately read the cache.
func (s *Service) run(ctx context.Context, id, word string) (resolve.Outcome, error) {
	start := time.Now()
	r := &resolve.Resolver{
		LLM:         s.llm,
		MaxAttempts: s.maxAttempts,
		Logger:      s.log,
		Trace: resolve.Trace{
			OnAttempt: func(a prompt.Attempt) {
				s.hub.Publish(id, watch.Event{
					Kind:       watch.EventAttempt,
					Word:       word,
					Attempt:    a.Attempt,
					Violations: a.Violations,
				})
			},
		},
	}

	out, err := r.Resolve(ctx, word)
	if err != nil {
		s.metrics.ObserveResolution(metrics.OutcomeTransport, time.Since(start))
		s.hub.Publish(id, watch.Event{Kind: watch.EventFailed, Word: word, Error: err.Error()})
		return resolve.Outcome{}, err
	}

	doc := out.Document
	if out.Accepted {
		s.store.Put(out)
		s.index.Add(doc)
		s.metrics.ObserveResolution(metrics.OutcomeAccepted, time.Since(start))
		s.hub.Publish(id, watch.Event{
			Kind:     watch.EventAccepted,
			Word:     word,
			Attempt:  len(out.Attempts),
			Document: &doc,
		})
	} else {
		s.metrics.ObserveResolution(metrics.OutcomeExhausted, time.Since(start))
		s.hub.Publish(id, watch.Event{
			Kind:       watch.EventExhausted,
			Word:       word,
			Attempt:    len(out.Attempts),
			Document:   &doc,
			Violations: out.Violations,
		})
	}
	return out, nil
}
