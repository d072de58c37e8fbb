package view

import (
	"errors"
	"fmt"
)

// ReasonNoIdentity explains a reference to an entity without an Id field.
const ReasonNoIdentity = "entity declares no Id field"

// UnresolvedReferenceError reports a relation that cannot be wired: it names
// an undeclared entity, or needs an identity or column the entity lacks.
type UnresolvedReferenceError struct {
	Relation string
	Entity   string
	Reason   string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("view: relation %q references unknown entity %q", e.Relation, e.Entity)
	}
	return fmt.Sprintf("view: relation %q cannot use entity %q: %s", e.Relation, e.Entity, e.Reason)
}

// AsUnresolvedReference extracts an UnresolvedReferenceError from err.
func AsUnresolvedReference(err error) (*UnresolvedReferenceError, bool) {
	var target *UnresolvedReferenceError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
