package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidValue is matched by every ValidationError.
	ErrInvalidValue = errors.New("invalid value")
	// ErrProductNotFound is matched by every NotFoundError.
	ErrProductNotFound = errors.New("product not found")
)

// ValidationError reports an input outside its fixed enumeration.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s. Must be one of: %s", e.Field, strings.Join(e.Allowed, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidValue
}

// Reason is the machine readable code sent to clients.
func (e *ValidationError) Reason() string {
	return "invalid_" + e.Field
}

// NotFoundError reports a product name absent from the catalog, together with
// valid alternatives the caller can offer instead.
type NotFoundError struct {
	Product       string
	ValidProducts []string
	Categories    []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product '%s' not found", e.Product)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}
