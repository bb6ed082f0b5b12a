// Package layering re-derives the canonical layer sequence of a
// decomposition graph. Layer numbers follow longest-path leveling: a
// combination sits one past the deepest of its sources, with parts as the
// depth baseline, so every node renders as early as its dependencies allow.
// The input may be flat, redundantly layered, or outright malformed; the
// output layering depends only on the dependency relation, which makes the
// engine idempotent.
package layering

import "etymograph/internal/morph"

// Layers computes the canonical layer sequence for doc's combinations.
// Parts are not part of the output; a combination built only from parts
// lands in layer 0. Within a layer the input traversal order is kept so
// rendering stays stable. A document without combinations yields nil.
//
// Malformed input degrades instead of failing: unknown source ids count as
// baseline depth, and cycle participants (impossible in a validated graph)
// are pinned to layer 0.
func Layers(doc morph.Document) [][]morph.Combination {
	combos := doc.Flatten()
	if len(combos) == 0 {
		return nil
	}

	byID := make(map[string]int, len(combos))
	for i, c := range combos {
		if _, ok := byID[c.ID]; ok {
			continue
		}
		byID[c.ID] = i
	}

	depth := depths(combos, byID)

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}
	// Depth d > 0 always has a maximizing source at d-1, so the buckets
	// have no gaps and no output layer can be empty.
	buckets := make([][]morph.Combination, maxDepth+1)
	for i, c := range combos {
		buckets[depth[i]] = append(buckets[depth[i]], c)
	}
	return buckets
}

// Apply returns a copy of doc with its combinations regrouped into the
// canonical layers. Parts, word, and thought pass through untouched.
func Apply(doc morph.Document) morph.Document {
	doc.Combinations = Layers(doc)
	return doc
}

// depths assigns every combination its longest-path depth using a memo
// table filled in topological order. Kahn's algorithm supplies the order;
// whatever it cannot drain is part of a cycle and keeps depth 0.
func depths(combos []morph.Combination, byID map[string]int) []int {
	n := len(combos)

	indegree := make([]int, n)
	dependents := make([][]int, n)
	for i, c := range combos {
		if byID[c.ID] != i {
			// Shadowed duplicate: never enters the queue, keeps depth 0.
			continue
		}
		for _, src := range c.SourceIDs {
			j, ok := byID[src]
			if !ok || j == i {
				continue
			}
			dependents[j] = append(dependents[j], i)
			indegree[i]++
		}
	}

	queue := make([]int, 0, n)
	for i := range combos {
		if indegree[i] == 0 && byID[combos[i].ID] == i {
			queue = append(queue, i)
		}
	}

	depth := make([]int, n)
	processed := make([]bool, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		processed[i] = true

		d := 0
		for _, src := range combos[i].SourceIDs {
			j, ok := byID[src]
			if !ok || j == i || !processed[j] {
				// Parts, unknown ids, and cycle remnants contribute the
				// baseline: one past them is layer 0.
				continue
			}
			if depth[j]+1 > d {
				d = depth[j] + 1
			}
		}
		depth[i] = d

		for _, k := range dependents[i] {
			indegree[k]--
			if indegree[k] == 0 {
				queue = append(queue, k)
			}
		}
	}
	return depth
}
