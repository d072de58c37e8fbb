package provider

import (
	"errors"
	"fmt"
)

// Error operations.
const (
	OpRequest = "request"
	OpDecode  = "decode"
	OpConfig  = "config"
)

// Error reports a failed provider query. For OpDecode, Err wraps the
// *ir.ValidationError (or the JSON syntax error) of the response and Raw
// holds the response text.
type Error struct {
	Provider string
	Op       string
	Status   int
	Raw      string
	Err      error
}

func (e *Error) Error() string {
	name := e.Provider
	if name == "" {
		name = "provider"
	}
	if e.Status != 0 {
		return fmt.Sprintf("provider: %s: %s: status %d: %v", name, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("provider: %s: %s: %v", name, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
