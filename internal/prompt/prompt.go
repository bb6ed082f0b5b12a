// Package prompt builds the generation prompts for word decomposition,
// including the feedback block that carries every prior attempt and its
// violations back to the model.
package prompt

import (
	"fmt"
	"strings"

	"etymograph/internal/morph"
	"etymograph/internal/util/jsonutil"
	"etymograph/internal/validate"
)

// Attempt is one prior generation attempt: the graph the model produced
// and the violations it earned. The slice of these is the prompt context
// a retry carries.
type Attempt struct {
	Attempt    int                  `json:"attempt"`
	Document   morph.Document       `json:"document"`
	Violations []validate.Violation `json:"violations"`
}

const decompositionSchema = `Return STRICT JSON with this shape:
{
  "thought":      "string",  // think about the word, its origins, and how it is put together
  "parts": [                 // leaf morphemes; their texts joined must spell the word exactly
    {
      "id":           "string",  // lowercase identifier, unique across parts and combinations
      "text":         "string",  // exact section of the input word
      "originalWord": "string",  // oldest word/affix this part comes from
      "origin":       "string",  // brief origin (Latin, Greek, etc)
      "meaning":      "string"   // concise meaning of this part
    }
  ],
  "combinations": [          // layers of combinations forming a DAG to the final word
    [
      {
        "id":         "string",    // unique lowercase identifier
        "text":       "string",    // combined text segments
        "definition": "string",    // clear definition of the combined parts
        "sourceIds":  ["string"]   // ids of the parts/combinations this node is built from
      }
    ]
  ]
}

Rules:
- Every part and combination must be consumed by exactly one later combination, except the final one.
- The last layer contains exactly one combination whose text equals the input word.
- sourceIds may only reference parts or combinations from strictly earlier layers.
- Do not reuse ids; do not leave any node unused.
- JSON only; no comments or trailing commas.`

// Decomposition renders the full prompt for one generation attempt. The
// base instruction pins the model to the exact input word; when history is
// non-empty, every prior attempt is appended as indented JSON followed by
// the instruction to fix the listed issues.
func Decomposition(word string, history []Attempt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your task is to deconstruct this EXACT word: '%s'\n", word)
	fmt.Fprintf(&b, "Do not analyze any other word. Focus only on '%s'.\n", word)
	fmt.Fprintf(&b, "Break down '%s' into its etymological components.\n\n", word)
	b.WriteString(decompositionSchema)

	if len(history) > 0 {
		prior, err := jsonutil.MarshalNoEscapeIndent(history, "", "  ")
		if err != nil {
			prior = []byte("[]")
		}
		b.WriteString("\n\nPrevious attempts:\n")
		b.Write(prior)
		b.WriteString("\n\nPlease fix all the issues and try again.")
	}
	return b.String()
}
