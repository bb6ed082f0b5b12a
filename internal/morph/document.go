package morph

// Part is a leaf morpheme of the input word. Parts are produced once per
// generation attempt and never mutated afterwards.
type Part struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	OriginalWord string `json:"originalWord"`
	Origin       string `json:"origin"`
	Meaning      string `json:"meaning"`
}

// Combination is an internal or root node built from earlier nodes.
// SourceIDs reference Part or Combination ids and must be non-empty.
type Combination struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Definition string   `json:"definition"`
	SourceIDs  []string `json:"sourceIds"`
}

// Document is the decomposition exchange format: the input word, the
// generator's reasoning scratchpad, the leaf parts, and the combinations
// grouped into ordered layers. A layer may be evaluated only after all
// earlier layers; the last layer holds the single root node.
type Document struct {
	Word         string          `json:"word"`
	Thought      string          `json:"thought,omitempty"`
	Parts        []Part          `json:"parts"`
	Combinations [][]Combination `json:"combinations"`
}

// Edge is one dependency arrow of the graph, pointing from a source node
// to the combination built from it. Rendering collaborators consume the
// edge list together with the layer sequence.
type Edge struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
}

// Flatten returns all combinations in layer order.
func (d Document) Flatten() []Combination {
	var out []Combination
	for _, layer := range d.Combinations {
		out = append(out, layer...)
	}
	return out
}

// Edges returns every sourceId -> combination dependency in layer order.
func (d Document) Edges() []Edge {
	var out []Edge
	for _, c := range d.Flatten() {
		for _, src := range c.SourceIDs {
			out = append(out, Edge{SourceID: src, TargetID: c.ID})
		}
	}
	return out
}
