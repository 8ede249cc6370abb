// Package apperr defines the typed errors the domain services return.
// Handlers translate them to HTTP statuses; the services themselves never
// log or swallow them.
package apperr

import "fmt"

// Validation reports malformed or missing input. Nothing was mutated.
type Validation struct {
	Field  string
	Reason string
}

func (e *Validation) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NotFound reports that a referenced id does not resolve.
type NotFound struct {
	Entity string
	ID     uint
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// RoleViolation reports that a referenced user exists but holds the wrong
// role for the position it was used in.
type RoleViolation struct {
	Entity       string
	ExpectedRole string
}

func (e *RoleViolation) Error() string {
	return fmt.Sprintf("%s must have role %s", e.Entity, e.ExpectedRole)
}

// Range reports a numeric value outside its allowed bounds.
type Range struct {
	Field string
	Min   float64
	Max   float64
}

func (e *Range) Error() string {
	return fmt.Sprintf("%s must be between %g and %g", e.Field, e.Min, e.Max)
}

// Authorization reports that the actor lacks rights over the target scope.
// It is raised before any write reaches storage.
type Authorization struct {
	ActorID uint
	Scope   string
}

func (e *Authorization) Error() string {
	return fmt.Sprintf("actor %d is not allowed to act on %s", e.ActorID, e.Scope)
}

// Conflict reports a uniqueness or referential constraint violation.
type Conflict struct {
	Constraint string
}

func (e *Conflict) Error() string {
	return fmt.Sprintf("conflict on %s", e.Constraint)
}

// Storage wraps an underlying transaction failure. The enclosing
// transaction has been rolled back in full.
type Storage struct {
	Err error
}

func (e *Storage) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Err)
}

func (e *Storage) Unwrap() error { return e.Err }
