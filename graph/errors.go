package graph

import (
	"errors"
	"strings"

	"github.com/syssam/kelo"
)

// errorCoder is implemented by database errors that expose a string
// error code, e.g. pq.Error.
type errorCoder interface {
	Code() string
}

// errorNumberer is implemented by database errors that expose a numeric
// error code, e.g. mysql.MySQLError.
type errorNumberer interface {
	Number() uint16
}

// sqlStateError is implemented by errors that expose a SQLSTATE code.
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// IsUniqueConstraintError reports if the error resulted from a DB
// uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	return matchesConstraint(err,
		[]string{pgUniqueViolation},
		[]uint16{mysqlDuplicateEntry},
		[]string{
			"Error 1062",                 // MySQL
			"violates unique constraint", // Postgres
			"UNIQUE constraint failed",   // SQLite
		},
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a
// database foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	return matchesConstraint(err,
		[]string{pgForeignKeyViolation},
		[]uint16{mysqlForeignKeyParent, mysqlForeignKeyChild},
		[]string{
			"Error 1451",                      // MySQL
			"Error 1452",                      // MySQL
			"violates foreign key constraint", // Postgres
			"FOREIGN KEY constraint failed",   // SQLite
		},
	)
}

// IsCheckConstraintError reports if the error resulted from a database
// check constraint violation.
func IsCheckConstraintError(err error) bool {
	return matchesConstraint(err,
		[]string{pgCheckViolation},
		[]uint16{mysqlCheckConstraintViolate},
		[]string{
			"Error 3819",                // MySQL
			"violates check constraint", // Postgres
			"CHECK constraint failed",   // SQLite
		},
	)
}

// IsConstraintError reports if the error resulted from any database
// constraint violation.
func IsConstraintError(err error) bool {
	return kelo.IsConstraintError(err) ||
		IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err)
}

func matchesConstraint(err error, states []string, numbers []uint16, fallbacks []string) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok {
		for _, s := range states {
			if e.SQLState() == s {
				return true
			}
		}
	}
	if e, ok := asError[errorCoder](err); ok {
		for _, s := range states {
			if e.Code() == s {
				return true
			}
		}
	}
	if e, ok := asError[errorNumberer](err); ok {
		for _, n := range numbers {
			if e.Number() == n {
				return true
			}
		}
	}
	// String matching for drivers that implement none of the interfaces.
	return containsAny(err.Error(), fallbacks...)
}

func asError[T any](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// insertError classifies a failed insert: constraint violations become
// a ConstraintError, anything else a MutationError.
func insertError(entity string, err error) error {
	if IsConstraintError(err) {
		return kelo.NewConstraintError(entity, err)
	}
	return kelo.NewMutationError(entity, err)
}
