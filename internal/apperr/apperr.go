// Package apperr provides the error taxonomy shared across the core. All
// failures surfaced to the embedding UI go through these types so that the
// presentation layer never inspects store internals.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError carries field-level messages from the form boundary. It
// blocks submission and never reaches the remote store.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation failed", Fields: fields}
}

func (e *ValidationError) Error() string { return e.Detail }

// LinkedItemsError is the distinguishable referential-constraint failure:
// a supplier cannot be deleted while inventory items reference it. Count is
// the number of linked items, reported to the user verbatim.
type LinkedItemsError struct {
	Count int
}

func (e *LinkedItemsError) Error() string {
	return fmt.Sprintf("supplier has %d linked inventory item%s", e.Count, plural(e.Count))
}

// AsLinkedItems unwraps err into a LinkedItemsError if it is one.
func AsLinkedItems(err error) (*LinkedItemsError, bool) {
	var linked *LinkedItemsError
	if errors.As(err, &linked) {
		return linked, true
	}
	return nil, false
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation, true
	}
	return nil, false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
