package domain

import (
	"errors"
	"fmt"
)

// Common domain errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// EntityKind names the kind of entity a lookup failed for.
type EntityKind string

// Entity kinds reported by NotFoundError.
const (
	EntityProject      EntityKind = "project"
	EntityCategory     EntityKind = "category"
	EntityUser         EntityKind = "user"
	EntitySubscription EntityKind = "subscription"
	EntityStep         EntityKind = "step"
)

// NotFoundError identifies a missing entity. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Kind EntityKind
	ID   string
}

// NewNotFound creates a NotFoundError for the given kind and identifier.
func NewNotFound(kind EntityKind, id any) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Is reports whether target is ErrNotFound or a NotFoundError of the same kind.
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	var other *NotFoundError
	if errors.As(target, &other) {
		return other.Kind == e.Kind && (other.ID == "" || other.ID == e.ID)
	}
	return false
}

// IsNotFoundKind reports whether err is a NotFoundError for kind.
func IsNotFoundKind(err error, kind EntityKind) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Kind == kind
}
