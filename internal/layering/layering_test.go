package layering

import (
	"reflect"
	"testing"

	"etymograph/internal/morph"
)

func ids(layers [][]morph.Combination) [][]string {
	var out [][]string
	for _, layer := range layers {
		var row []string
		for _, c := range layer {
			row = append(row, c.ID)
		}
		out = append(out, row)
	}
	return out
}

func TestLayersFlatInput(t *testing.T) {
	// A flat, unlayered list must split into two layers: ab first, abc after.
	doc := morph.Document{
		Word: "abc",
		Parts: []morph.Part{
			{ID: "a", Text: "a"},
			{ID: "b", Text: "b"},
			{ID: "c", Text: "c"},
		},
		Combinations: [][]morph.Combination{{
			{ID: "abc", Text: "abc", SourceIDs: []string{"ab", "c"}},
			{ID: "ab", Text: "ab", SourceIDs: []string{"a", "b"}},
		}},
	}

	got := ids(Layers(doc))
	want := [][]string{{"ab"}, {"abc"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Layers = %v, want %v", got, want)
	}
}

func TestLayersPartsOnlyDependencyLandsInLayerZero(t *testing.T) {
	doc := morph.Document{
		Parts: []morph.Part{{ID: "a", Text: "a"}},
		Combinations: [][]morph.Combination{
			// Declared in layer 3 of 4; the canonical layering ignores that.
			{}, {}, {}, {{ID: "aa", Text: "a", SourceIDs: []string{"a"}}},
		},
	}
	got := ids(Layers(doc))
	want := [][]string{{"aa"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Layers = %v, want %v", got, want)
	}
}

func TestLayersIdempotent(t *testing.T) {
	doc := morph.Document{
		Word: "unbreakable",
		Parts: []morph.Part{
			{ID: "un", Text: "un"},
			{ID: "break", Text: "break"},
			{ID: "able", Text: "able"},
		},
		Combinations: [][]morph.Combination{{
			{ID: "breakable", Text: "breakable", SourceIDs: []string{"break", "able"}},
			{ID: "unbreakable", Text: "unbreakable", SourceIDs: []string{"un", "breakable"}},
		}},
	}

	once := Layers(doc)
	twice := Layers(Apply(doc))
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Fatalf("layering not idempotent: %v then %v", ids(once), ids(twice))
	}
}

func TestLayersStableWithinLayer(t *testing.T) {
	doc := morph.Document{
		Parts: []morph.Part{
			{ID: "a", Text: "a"}, {ID: "b", Text: "b"},
			{ID: "c", Text: "c"}, {ID: "d", Text: "d"},
		},
		Combinations: [][]morph.Combination{{
			{ID: "cd", Text: "cd", SourceIDs: []string{"c", "d"}},
			{ID: "ab", Text: "ab", SourceIDs: []string{"a", "b"}},
			{ID: "abcd", Text: "abcd", SourceIDs: []string{"ab", "cd"}},
		}},
	}
	got := ids(Layers(doc))
	want := [][]string{{"cd", "ab"}, {"abcd"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Layers = %v, want %v", got, want)
	}
}

func TestLayersDeepChain(t *testing.T) {
	doc := morph.Document{
		Parts: []morph.Part{{ID: "p", Text: "p"}, {ID: "q", Text: "q"}},
		Combinations: [][]morph.Combination{{
			{ID: "c3", Text: "x", SourceIDs: []string{"c2", "q"}},
			{ID: "c1", Text: "x", SourceIDs: []string{"p"}},
			{ID: "c2", Text: "x", SourceIDs: []string{"c1"}},
		}},
	}
	got := ids(Layers(doc))
	want := [][]string{{"c1"}, {"c2"}, {"c3"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Layers = %v, want %v", got, want)
	}
}

func TestLayersEmptyDocument(t *testing.T) {
	if got := Layers(morph.Document{Word: "x"}); got != nil {
		t.Fatalf("Layers of empty document = %v, want nil", got)
	}
}

func TestLayersCycleParticipantsFallBackToLayerZero(t *testing.T) {
	doc := morph.Document{
		Parts: []morph.Part{{ID: "a", Text: "a"}},
		Combinations: [][]morph.Combination{{
			{ID: "x", Text: "x", SourceIDs: []string{"y"}},
			{ID: "y", Text: "y", SourceIDs: []string{"x"}},
			{ID: "z", Text: "z", SourceIDs: []string{"a"}},
		}},
	}
	got := ids(Layers(doc))
	want := [][]string{{"x", "y", "z"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cycle fallback: Layers = %v, want %v", got, want)
	}
}

func TestLayersUnknownSourceCountsAsBaseline(t *testing.T) {
	doc := morph.Document{
		Parts: []morph.Part{{ID: "a", Text: "a"}},
		Combinations: [][]morph.Combination{{
			{ID: "x", Text: "x", SourceIDs: []string{"ghost"}},
			{ID: "y", Text: "y", SourceIDs: []string{"x", "a"}},
		}},
	}
	got := ids(Layers(doc))
	want := [][]string{{"x"}, {"y"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Layers = %v, want %v", got, want)
	}
}

func TestApplyRewritesOnlyLayers(t *testing.T) {
	doc := morph.Document{
		Word:    "ab",
		Thought: "two halves",
		Parts:   []morph.Part{{ID: "a", Text: "a"}, {ID: "b", Text: "b"}},
		Combinations: [][]morph.Combination{{
			{ID: "ab", Text: "ab", SourceIDs: []string{"a", "b"}},
		}},
	}
	got := Apply(doc)
	if got.Word != doc.Word || got.Thought != doc.Thought || len(got.Parts) != 2 {
		t.Fatalf("Apply must keep word, thought, and parts: %+v", got)
	}
	if len(got.Combinations) != 1 || got.Combinations[0][0].ID != "ab" {
		t.Fatalf("Apply layering wrong: %+v", got.Combinations)
	}
}
