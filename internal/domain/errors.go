package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of these via errors.Is,
// which is how the transport layer picks a status code.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrOwnership  = errors.New("ownership mismatch")
	ErrConflict   = errors.New("conflict")
)

// ValidationError reports malformed or missing caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports that a referenced entity is absent or soft-deleted.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// OwnershipError reports an actor that does not own the entity it is acting on.
type OwnershipError struct {
	Entity string
	ID     string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("%s %s does not belong to the caller", e.Entity, e.ID)
}

func (e *OwnershipError) Unwrap() error { return ErrOwnership }

// NewOwnershipError creates an OwnershipError
func NewOwnershipError(entity, id string) error {
	return &OwnershipError{Entity: entity, ID: id}
}

// ConflictError reports a uniqueness violation raised by the persistence layer.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError creates a ConflictError
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}
