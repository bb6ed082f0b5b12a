package resolve

import (
	"encoding/json"
	"fmt"

	"etymograph/internal/morph"
	"etymograph/internal/util/jsonutil"
)

// decodeDocument parses a model response into a Document, tolerating
// markdown fences and stray prose around the JSON body.
func decodeDocument(raw json.RawMessage) (morph.Document, error) {
	cleaned := jsonutil.ExtractJSON(string(raw))
	var doc morph.Document
	if err := jsonutil.UnmarshalFlex([]byte(cleaned), &doc); err != nil {
		return morph.Document{}, fmt.Errorf("document JSON invalid: %w\nraw: %s", err, raw)
	}
	return doc, nil
}
