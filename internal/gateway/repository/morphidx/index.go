// Package morphidx keeps an inverted index from morpheme text to the
// words whose accepted decompositions contain it, answering queries
// like "which cached words share the root 'spec'".
package morphidx

import (
	"hash/fnv"
	"sort"
	"sync"

	"etymograph/internal/morph"
)

type posting struct {
	text string
	word string
}

// Index maps hashed morpheme text to postings. Hash collisions are
// resolved by re-checking the stored text on lookup. Entries are never
// removed, so a word evicted from the decomposition cache may still be
// listed; the cache stays authoritative for lookups.
type Index struct {
	mu      sync.RWMutex
	byHash  map[uint64][]posting
	indexed map[string]struct{}
}

func New() *Index {
	return &Index{
		byHash:  make(map[uint64][]posting),
		indexed: make(map[string]struct{}),
	}
}

// Add indexes every part of a decomposition under its word. Morpheme
// text and word are both normalized; re-adding a word is a no-op.
func (x *Index) Add(doc morph.Document) {
	if x == nil {
		return
	}
	word := morph.NormalizeWord(doc.Word)
	if word == "" {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if _, done := x.indexed[word]; done {
		return
	}
	x.indexed[word] = struct{}{}

	seen := make(map[string]struct{}, len(doc.Parts))
	for _, p := range doc.Parts {
		text := morph.NormalizeWord(p.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		key := hashText(text)
		x.byHash[key] = append(x.byHash[key], posting{text: text, word: word})
	}
}

// Find returns the indexed words containing the given morpheme, sorted.
func (x *Index) Find(text string) []string {
	if x == nil {
		return nil
	}
	text = morph.NormalizeWord(text)
	if text == "" {
		return nil
	}
	key := hashText(text)

	x.mu.RLock()
	defer x.mu.RUnlock()
	var words []string
	for _, p := range x.byHash[key] {
		if p.text == text {
			words = append(words, p.word)
		}
	}
	sort.Strings(words)
	return words
}

// Words reports how many distinct words have been indexed.
func (x *Index) Words() int {
	if x == nil {
		return 0
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.indexed)
}

func hashText(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}
