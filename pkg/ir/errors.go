package ir

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes reported by structural validation.
const (
	CodeRequired     = "required"
	CodeInvalidType  = "invalid_type"
	CodeInvalidEnum  = "invalid_enum"
	CodeInvalidValue = "invalid_value"
	CodeUnknownKey   = "unknown_key"
	CodeDuplicate    = "duplicate"
	CodeParseError   = "parse_error"
)

// Issue is a single structural validation failure located by a JSON pointer
// into the input document (for example /entities/0/fields/2/type).
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	path := i.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s at %s: %s", i.Code, path, i.Message)
}

// ValidationError reports every structural problem found in a document.
// Generation never starts when Parse returns one.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "ir: invalid document"
	}
	const maxShown = 3
	parts := make([]string, 0, maxShown)
	for i, issue := range e.Issues {
		if i == maxShown {
			break
		}
		parts = append(parts, issue.String())
	}
	msg := "ir: invalid document: " + strings.Join(parts, "; ")
	if len(e.Issues) > maxShown {
		msg += fmt.Sprintf("; ... (total %d)", len(e.Issues))
	}
	return msg
}

// Paths returns the JSON pointers of every issue, in discovery order.
func (e *ValidationError) Paths() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		out[i] = issue.Path
	}
	return out
}

// AsValidationError extracts a ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
