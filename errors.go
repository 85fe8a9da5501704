package kelo

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrUnknownRelation is returned when a relation name does not exist
	// in an entity type's declarations.
	ErrUnknownRelation = errors.New("kelo: unknown relation")

	// ErrUnknownType is returned when an entity type was never registered.
	ErrUnknownType = errors.New("kelo: unknown entity type")
)

// UnknownRelationError reports a relation name that is not declared on the
// entity type it was requested from.
type UnknownRelationError struct {
	typ      string
	relation string
}

// Error returns the error string.
func (e *UnknownRelationError) Error() string {
	return fmt.Sprintf("kelo: unknown relation %q on type %q", e.relation, e.typ)
}

// Is reports whether the target error matches UnknownRelationError.
// This allows errors.Is(err, ErrUnknownRelation) to return true.
func (e *UnknownRelationError) Is(err error) bool {
	return err == ErrUnknownRelation
}

// Type returns the entity type the relation was requested from.
func (e *UnknownRelationError) Type() string {
	return e.typ
}

// Relation returns the missing relation name.
func (e *UnknownRelationError) Relation() string {
	return e.relation
}

// NewUnknownRelationError returns a new UnknownRelationError.
func NewUnknownRelationError(typ, relation string) *UnknownRelationError {
	return &UnknownRelationError{typ: typ, relation: relation}
}

// IsUnknownRelation returns true if the error is an UnknownRelationError.
func IsUnknownRelation(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownRelationError
	return errors.As(err, &e) || errors.Is(err, ErrUnknownRelation)
}

// InvalidJoinError reports a relation declaration whose join descriptor
// references a column that does not exist on its table.
type InvalidJoinError struct {
	typ      string
	relation string
	column   string
}

// Error returns the error string.
func (e *InvalidJoinError) Error() string {
	return fmt.Sprintf("kelo: relation %q on type %q joins through undeclared column %q", e.relation, e.typ, e.column)
}

// Type returns the entity type carrying the invalid column.
func (e *InvalidJoinError) Type() string {
	return e.typ
}

// Relation returns the relation holding the invalid join descriptor.
func (e *InvalidJoinError) Relation() string {
	return e.relation
}

// Column returns the undeclared column.
func (e *InvalidJoinError) Column() string {
	return e.column
}

// NewInvalidJoinError returns a new InvalidJoinError.
func NewInvalidJoinError(typ, relation, column string) *InvalidJoinError {
	return &InvalidJoinError{typ: typ, relation: relation, column: column}
}

// IsInvalidJoin returns true if the error is an InvalidJoinError.
func IsInvalidJoin(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidJoinError
	return errors.As(err, &e)
}

// NotFoundError represents an error when a required entity is not found.
type NotFoundError struct {
	label string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("kelo: %s not found", e.label)
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// NewNotFoundError returns a new NotFoundError for the given label.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e)
}

// NotSingularError represents an error when a single-valued relation
// matches more than one row.
type NotSingularError struct {
	label string
	count int // Number of results returned (-1 if unknown)
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	if e.count >= 0 {
		return fmt.Sprintf("kelo: %s not singular (got %d results, expected 1)", e.label, e.count)
	}
	return fmt.Sprintf("kelo: %s not singular", e.label)
}

// Label returns the entity label.
func (e *NotSingularError) Label() string {
	return e.label
}

// Count returns the number of results, or -1 if unknown.
func (e *NotSingularError) Count() int {
	return e.count
}

// NewNotSingularError returns a new NotSingularError for the given label.
func NewNotSingularError(label string, count int) *NotSingularError {
	return &NotSingularError{label: label, count: count}
}

// IsNotSingular returns true if the error is a NotSingularError.
func IsNotSingular(err error) bool {
	if err == nil {
		return false
	}
	var e *NotSingularError
	return errors.As(err, &e)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("kelo: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Entity string // Entity type being queried
	Path   string // Relation path, empty for the root fetch
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("kelo: querying %s (path %q): %v", e.Entity, e.Path, e.Err)
	}
	return fmt.Sprintf("kelo: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity, path string, err error) *QueryError {
	return &QueryError{Entity: entity, Path: path, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps an insert error with additional context.
type MutationError struct {
	Entity string // Entity type being inserted
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("kelo: inserting %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(entity string, err error) *MutationError {
	return &MutationError{Entity: entity, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}
