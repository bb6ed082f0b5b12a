// Package jsonutil handles the JSON that comes back from language models:
// payloads wrapped in markdown fences or prose, trailing commas, line
// comments, and double-escaped unicode sequences.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	// fencedPattern matches a JSON object or array inside a markdown code
	// block, with or without the json language tag.
	fencedPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?([\\{\\[].*[\\}\\]])\\s*```")
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls the JSON value out of a model response: it unwraps
// markdown fences, falls back to the outermost braced or bracketed span,
// strips // comments outside strings, and drops trailing commas. When no
// JSON-looking span exists the input comes back unchanged so the caller's
// unmarshal error names the real payload.
func ExtractJSON(content string) string {
	raw := strings.TrimSpace(content)
	if m := fencedPattern.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	} else if span := outermostValue(raw); span != "" {
		raw = span
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return trailingCommaPattern.ReplaceAllString(strings.Join(lines, "\n"), "$1")
}

// outermostValue returns the first balanced {...} or [...] span, tracking
// strings and escapes so braces inside values do not confuse the count.
func outermostValue(s string) string {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			open = s[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// stripLineComment removes a // comment from a line unless the slashes sit
// inside a string value (think "http://...").
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}

// MarshalNoEscape encodes v without escaping <, >, & into \u003c etc., so
// JSON embedded in prompts stays readable for the model.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent is MarshalNoEscape with indentation.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	b, err := MarshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, b, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalFlex unmarshals raw into v, retrying once through unicode
// normalization when the payload carries double-escaped sequences.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	norm, err := NormalizeJSONUnicode(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(norm, v)
}

// NormalizeJSONUnicode parses raw and re-encodes it with any remaining
// double-escaped unicode sequences (e.g. "\\u003e") resolved inside string
// values. Payloads that arrive as a JSON-encoded string of JSON are
// unwrapped one level first.
func NormalizeJSONUnicode(raw []byte) ([]byte, error) {
	var val any
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, errors.New("jsonutil: cannot parse JSON payload")
	}
	if s, ok := val.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			val = inner
		}
	}
	return MarshalNoEscape(deepUnescape(val))
}

func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if s, err := unescapeUnicodeString(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}

// unescapeUnicodeString resolves leftover escapes like "\u003e" by
// re-reading s as a quoted JSON string. Strings without a \u sequence pass
// through; strings where the re-read fails (a lone backslash, a raw
// newline) are left to the caller unchanged.
func unescapeUnicodeString(s string) (string, error) {
	if !strings.Contains(s, `\u`) {
		return s, nil
	}
	esc := strings.ReplaceAll(s, `"`, `\"`)
	var out string
	if err := json.Unmarshal([]byte(`"`+esc+`"`), &out); err != nil {
		return "", err
	}
	return out, nil
}
