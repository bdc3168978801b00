package repository

import (
	"errors"
	"fmt"
)

// Common repository errors.
var (
	// ErrNotFound is returned when a node or property does not exist.
	ErrNotFound = errors.New("item not found")

	// ErrExists is returned when creating a node at an occupied path.
	ErrExists = errors.New("item already exists")

	// ErrInvalidPath is returned for paths that are not absolute and clean.
	ErrInvalidPath = errors.New("invalid path")

	// ErrValueFormat is returned when a stored value cannot be read as the
	// requested type.
	ErrValueFormat = errors.New("value format mismatch")

	// ErrMultiValued is returned by Property.Value on a multi-valued property.
	ErrMultiValued = errors.New("property is multi-valued")

	// ErrSingleValued is returned by Property.Values on a single-valued property.
	ErrSingleValued = errors.New("property is single-valued")
)

// AccessError reports that reading from the repository failed. It is the
// only error kind surfaced by graph conversion and always carries the
// underlying failure.
type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("repository access failed: %v", e.Err)
	}
	return fmt.Sprintf("repository access failed: %s: %v", e.Op, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// NewAccessError wraps err as an access failure for op. An error that is
// already an access failure is returned unchanged.
func NewAccessError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AccessError
	if errors.As(err, &ae) {
		return err
	}
	return &AccessError{Op: op, Err: err}
}

// IsAccessError reports whether err is a repository access failure.
func IsAccessError(err error) bool {
	var ae *AccessError
	return errors.As(err, &ae)
}
