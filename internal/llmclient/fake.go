package llmclient

import (
	"context"
	"encoding/json"

	"etymograph/internal/morph"
)

// FakeClient returns a deterministic, minimal decomposition for offline
// runs and tests: the whole word as a single part, combined once into the
// root. The result always passes structural validation.
type FakeClient struct {
	tokenCap int
}

func NewFakeClient(tokenCap int) *FakeClient {
	if tokenCap <= 0 {
		tokenCap = 4096
	}
	return &FakeClient{tokenCap: tokenCap}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }
func (f *FakeClient) CountTokens(text string) int {
	return CountTokens(text)
}
func (f *FakeClient) TokenCapacity() int { return f.tokenCap }

// GenerateJSON reads the word out of the input payload and fabricates a
// single-part decomposition for it.
func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var req struct {
		Word string `json:"word"`
	}
	if b, err := json.Marshal(input); err == nil {
		_ = json.Unmarshal(b, &req)
	}
	word := req.Word
	if word == "" {
		word = "word"
	}

	doc := morph.Document{
		Word:    word,
		Thought: "offline stand-in: treat the whole word as one morpheme",
		Parts: []morph.Part{{
			ID:           "whole",
			Text:         word,
			OriginalWord: word,
			Origin:       "unknown",
			Meaning:      "the word itself",
		}},
		Combinations: [][]morph.Combination{{{
			ID:         "root",
			Text:       word,
			Definition: "the word " + word,
			SourceIDs:  []string{"whole"},
		}}},
	}
	b, _ := json.Marshal(doc)
	return json.RawMessage(b), nil
}
