package morph

// NodeKind discriminates the two node variants of the graph.
type NodeKind uint8

const (
	KindPart NodeKind = iota + 1
	KindCombination
)

// Node is a tagged variant over Part and Combination, so lookups by id
// never have to probe field shapes. Layer is the layer index for
// combinations and -1 for parts.
type Node struct {
	Kind        NodeKind
	Layer       int
	Part        Part
	Combination Combination
}

// ID returns the id of the underlying node.
func (n Node) ID() string {
	if n.Kind == KindPart {
		return n.Part.ID
	}
	return n.Combination.ID
}

// Text returns the surface text of the underlying node.
func (n Node) Text() string {
	if n.Kind == KindPart {
		return n.Part.Text
	}
	return n.Combination.Text
}

// Index builds the id -> node lookup table for the document, parts first,
// then layers in order. When an id is reused the first occurrence wins;
// duplicate detection is the validator's job, not the index's.
func (d Document) Index() map[string]Node {
	idx := make(map[string]Node, len(d.Parts)+len(d.Combinations))
	for _, p := range d.Parts {
		if _, ok := idx[p.ID]; ok {
			continue
		}
		idx[p.ID] = Node{Kind: KindPart, Layer: -1, Part: p}
	}
	for li, layer := range d.Combinations {
		for _, c := range layer {
			if _, ok := idx[c.ID]; ok {
				continue
			}
			idx[c.ID] = Node{Kind: KindCombination, Layer: li, Combination: c}
		}
	}
	return idx
}
