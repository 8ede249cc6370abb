package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
)

// Scope narrows a query before it runs. scope.Actor predicates satisfy
// this signature and are passed straight through to gorm's Scopes.
type Scope = func(*gorm.DB) *gorm.DB

func applyScopes(q *gorm.DB, scopes []Scope) *gorm.DB {
	if len(scopes) == 0 {
		return q
	}
	return q.Scopes(scopes...)
}

// translateError maps driver errors onto the domain taxonomy. Uniqueness
// violations become Conflict, anything else a Storage failure.
func translateError(err error, constraint string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperr.Conflict{Constraint: constraint}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key") {
		return &apperr.Conflict{Constraint: constraint}
	}
	return &apperr.Storage{Err: err}
}
