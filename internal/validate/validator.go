// Package validate checks a candidate decomposition graph against the
// structural invariants: part texts must cover the input word, ids must be
// unique, every source reference must point at an already-defined node,
// every non-root node must be consumed exactly once, and the final layer
// must hold the single root whose text equals the word.
package validate

import (
	"strconv"
	"strings"

	"etymograph/internal/morph"
)

// Validate runs every structural check against doc and returns the
// accumulated violations, empty when the graph is valid. It never panics
// on malformed input; a malformed graph is the thing being reported on.
// The one prerequisite is the presence of at least one combination layer:
// without it there is no root to check, so that single violation is
// returned alone.
func Validate(word string, doc morph.Document) []Violation {
	if len(doc.Flatten()) == 0 {
		return []Violation{violationf(CodeNoLayers, nil,
			"the graph has no combinations; expected at least one layer ending in a single root for %q", word)}
	}

	var out []Violation
	out = append(out, checkCoverage(word, doc)...)
	out = append(out, checkUniqueIDs(doc)...)
	out = append(out, checkRoot(word, doc)...)
	out = append(out, checkReferences(doc)...)
	out = append(out, checkConsumers(doc)...)
	return out
}

// checkCoverage compares the normalized input word against the normalized
// concatenation of all part texts.
func checkCoverage(word string, doc morph.Document) []Violation {
	var b strings.Builder
	for _, p := range doc.Parts {
		b.WriteString(p.Text)
	}
	wantNorm := morph.NormalizeWord(word)
	gotNorm := morph.NormalizeWord(b.String())
	if wantNorm == gotNorm {
		return nil
	}
	return []Violation{violationf(CodeCoverageMismatch, partIDs(doc),
		"part texts joined spell %q but the word is %q (compared as %q vs %q)",
		b.String(), word, gotNorm, wantNorm)}
}

// checkUniqueIDs finds ids reused between parts and combinations or between
// two combinations, reporting both locations.
func checkUniqueIDs(doc morph.Document) []Violation {
	var out []Violation
	seen := make(map[string]string, len(doc.Parts))
	for _, p := range doc.Parts {
		if first, ok := seen[p.ID]; ok {
			out = append(out, violationf(CodeDuplicateID, []string{p.ID},
				"id %q in parts is already used in %s", p.ID, first))
			continue
		}
		seen[p.ID] = "parts"
	}
	for li, layer := range doc.Combinations {
		loc := layerName(li)
		for _, c := range layer {
			if first, ok := seen[c.ID]; ok {
				out = append(out, violationf(CodeDuplicateID, []string{c.ID},
					"id %q in %s is already used in %s", c.ID, loc, first))
				continue
			}
			seen[c.ID] = loc
		}
	}
	return out
}

// checkRoot verifies the final layer holds exactly one combination and that
// its text matches the input word case-insensitively.
func checkRoot(word string, doc morph.Document) []Violation {
	final := doc.Combinations[len(doc.Combinations)-1]
	if len(final) != 1 {
		ids := make([]string, 0, len(final))
		for _, c := range final {
			ids = append(ids, c.ID)
		}
		return []Violation{violationf(CodeRootShape, ids,
			"the final layer must contain exactly one combination equal to the word, got %d", len(final))}
	}
	sink := final[0]
	if !strings.EqualFold(sink.Text, word) {
		return []Violation{violationf(CodeRootTextMismatch, []string{sink.ID},
			"the final combination %q has text %q, expected the word %q", sink.ID, sink.Text, word)}
	}
	return nil
}

// checkReferences walks layers in order keeping a running set of defined
// ids (parts first, then each completed layer). Every sourceId must already
// be in the set, so self references, same-layer references, and references
// into later layers all surface here along with plain unknown ids.
func checkReferences(doc morph.Document) []Violation {
	var out []Violation

	known := make(map[string]bool, len(doc.Parts))
	for _, p := range doc.Parts {
		known[p.ID] = true
	}
	all := doc.Index()

	for li, layer := range doc.Combinations {
		for _, c := range layer {
			if len(c.SourceIDs) == 0 {
				out = append(out, violationf(CodeEmptySources, []string{c.ID},
					"combination %q has no sourceIds; every combination must be built from at least one node", c.ID))
				continue
			}
			for _, src := range c.SourceIDs {
				if known[src] {
					continue
				}
				if _, exists := all[src]; exists {
					out = append(out, violationf(CodeForwardReference, []string{c.ID, src},
						"combination %q in %s references %q, which is not defined in an earlier layer", c.ID, layerName(li), src))
				} else {
					out = append(out, violationf(CodeUnknownReference, []string{c.ID, src},
						"combination %q references unknown id %q", c.ID, src))
				}
			}
		}
		for _, c := range layer {
			known[c.ID] = true
		}
	}
	return out
}

// checkConsumers counts how many times each node is consumed as a source.
// Every node except the root must be consumed exactly once: zero means it
// was produced and never recombined, more than one means it was reused.
func checkConsumers(doc morph.Document) []Violation {
	counts := make(map[string]int, len(doc.Parts))
	order := make([]string, 0, len(doc.Parts))
	for _, p := range doc.Parts {
		if _, ok := counts[p.ID]; !ok {
			order = append(order, p.ID)
		}
		counts[p.ID] = 0
	}
	for _, c := range doc.Flatten() {
		if _, ok := counts[c.ID]; !ok {
			order = append(order, c.ID)
		}
		counts[c.ID] = 0
	}
	for _, c := range doc.Flatten() {
		for _, src := range c.SourceIDs {
			if _, ok := counts[src]; ok {
				counts[src]++
			}
		}
	}

	// The root is exempt from consumption, but only when the final layer
	// actually designates a single one.
	rootID := ""
	if final := doc.Combinations[len(doc.Combinations)-1]; len(final) == 1 {
		rootID = final[0].ID
	}

	var out []Violation
	for _, id := range order {
		if id == rootID {
			continue
		}
		switch n := counts[id]; {
		case n == 0:
			out = append(out, violationf(CodeUnusedNode, []string{id},
				"node %q is never used as a source by any combination", id))
		case n > 1:
			out = append(out, violationf(CodeReusedNode, []string{id},
				"node %q is used as a source %d times; every node may be consumed exactly once", id, n))
		}
	}
	return out
}

func layerName(i int) string {
	return "layer " + strconv.Itoa(i)
}

func partIDs(doc morph.Document) []string {
	ids := make([]string, 0, len(doc.Parts))
	for _, p := range doc.Parts {
		ids = append(ids, p.ID)
	}
	return ids
}
