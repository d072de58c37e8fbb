package render

import (
	"errors"
	"fmt"
)

// TemplateError reasons.
const (
	ReasonUnknown   = "unknown template"
	ReasonMissing   = "missing template"
	ReasonShape     = "data shape mismatch"
	ReasonExecution = "execution failed"
)

// TemplateError reports a template that could not be rendered.
type TemplateError struct {
	ID     string
	Reason string
	Err    error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("render: template %q: %s: %v", e.ID, e.Reason, e.Err)
	}
	return fmt.Sprintf("render: template %q: %s", e.ID, e.Reason)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// AsTemplateError extracts a *TemplateError from err.
func AsTemplateError(err error) (*TemplateError, bool) {
	var te *TemplateError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
