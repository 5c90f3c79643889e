// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the SQLite and PostgreSQL
// backends are interchangeable (see storage.driver in the config).
//
// UNIT OF WORK
// ────────────
// Every method runs inside its own transaction. An implementation opens
// the transaction, performs at most one read-then-write sequence, and
// either commits or rolls back before returning. Nothing is held open
// between calls.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// Sentinel errors returned (possibly wrapped) by every implementation.
// Handlers match them with errors.Is.
var (
	// ErrNotFound means no student has the requested id.
	ErrNotFound = errors.New("student not found")

	// ErrConflict means the email already belongs to another student.
	ErrConflict = errors.New("student already exists")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student and returns the generated id.
	// Returns ErrConflict if the email is already taken. Any ID set on
	// the argument is ignored.
	CreateStudent(ctx context.Context, student types.Student) (int64, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrNotFound if absent.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student ordered by id.
	// Returns an empty slice (not nil) if there are none.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID replaces every mutable field of an existing
	// student and returns the stored result. Returns ErrNotFound if the
	// id is absent and ErrConflict if the new email belongs to a
	// different student.
	UpdateStudentByID(ctx context.Context, id int64, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student permanently.
	// Returns ErrNotFound if absent.
	DeleteStudentByID(ctx context.Context, id int64) error

	// SearchStudents returns students whose name, surname or email
	// contains the matching criterion (case-insensitive). Criteria are
	// OR-ed; empty criteria return every student.
	SearchStudents(ctx context.Context, criteria types.SearchCriteria) ([]types.Student, error)

	// DeleteStudents removes every student and returns how many rows
	// were deleted.
	DeleteStudents(ctx context.Context) (int64, error)

	// Close releases the underlying connection pool.
	Close() error
}
