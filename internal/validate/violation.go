package validate

import "fmt"

// Code identifies the invariant a violation breaks. Codes are stable
// strings because violations are serialized into retry prompts.
type Code string

const (
	CodeNoLayers         Code = "no_layers"
	CodeCoverageMismatch Code = "coverage_mismatch"
	CodeDuplicateID      Code = "duplicate_id"
	CodeRootShape        Code = "root_shape"
	CodeRootTextMismatch Code = "root_text_mismatch"
	CodeEmptySources     Code = "empty_sources"
	CodeUnknownReference Code = "unknown_reference"
	CodeForwardReference Code = "forward_reference"
	CodeUnusedNode       Code = "unused_node"
	CodeReusedNode       Code = "reused_node"
)

// Violation describes one broken invariant. It is data, never an error:
// the whole list goes back to the generator verbatim so it can repair
// the graph, and NodeIDs lets a renderer highlight the offenders.
type Violation struct {
	Code    Code     `json:"code"`
	Message string   `json:"message"`
	NodeIDs []string `json:"nodeIds,omitempty"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

func violationf(code Code, nodeIDs []string, format string, args ...any) Violation {
	return Violation{Code: code, Message: fmt.Sprintf(format, args...), NodeIDs: nodeIDs}
}
