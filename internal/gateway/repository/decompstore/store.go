// Package decompstore caches accepted decompositions so repeated
// lookups of the same word skip the generator entirely. The working set
// is an in-memory LRU; a store built with NewPersistent also mirrors it
// to a JSON file and reloads it on the next start.
package decompstore

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"etymograph/internal/morph"
	"etymograph/internal/resolve"
)

const defaultSize = 1024

// Store is an LRU of accepted outcomes keyed by the normalized word, so
// "Atlas" and "atlas" share one entry.
type Store struct {
	cache *lru.Cache[string, resolve.Outcome]

	path     string
	loadOnce sync.Once
	saveMu   sync.Mutex
}

func New(size int) (*Store, error) {
	if size <= 0 {
		size = defaultSize
	}
	cache, err := lru.New[string, resolve.Outcome](size)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache}, nil
}

// NewPersistent builds a store that survives restarts: every Put also
// rewrites the JSON file at path, and the first read loads it back.
func NewPersistent(size int, path string) (*Store, error) {
	s, err := New(size)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

func (s *Store) Get(word string) (resolve.Outcome, bool) {
	if s == nil {
		return resolve.Outcome{}, false
	}
	s.ensureLoaded()
	return s.cache.Get(morph.NormalizeWord(word))
}

// Put stores an accepted outcome. Exhausted or failed outcomes are not
// cached: the next request for that word gets a fresh resolution.
func (s *Store) Put(out resolve.Outcome) {
	if s == nil || !out.Accepted {
		return
	}
	s.ensureLoaded()
	s.cache.Add(morph.NormalizeWord(out.Word), out)
	s.save()
}

// Outcomes returns a snapshot of the cached outcomes, oldest first.
func (s *Store) Outcomes() []resolve.Outcome {
	if s == nil {
		return nil
	}
	s.ensureLoaded()
	keys := s.cache.Keys()
	rows := make([]resolve.Outcome, 0, len(keys))
	for _, key := range keys {
		if out, ok := s.cache.Peek(key); ok {
			rows = append(rows, out)
		}
	}
	return rows
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.ensureLoaded()
	return s.cache.Len()
}
