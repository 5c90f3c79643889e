// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no
// network and no separate server process, which makes it the default
// backend for local runs and for the tests.
//
// Each Storage method is one unit of work: it opens a transaction with
// withTx, and the transaction is committed when the callback returns nil
// and rolled back on every other path.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"

	"github.com/mattn/go-sqlite3"
)

// driverName is the go-sqlite3 driver with a casefold(text) function
// registered on every connection. SQLite's own LIKE only folds ASCII
// letters, so search lowercases both sides with it first.
const driverName = "sqlite3_students"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", strings.ToLower, true)
		},
	})
}

// schema is idempotent — safe to run on every startup.
//
// AUTOINCREMENT (rather than a bare INTEGER PRIMARY KEY) stops SQLite
// from handing out the id of a deleted row again.
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT    NOT NULL,
		surname       TEXT    NOT NULL,
		email         TEXT    NOT NULL UNIQUE,
		phone_number  TEXT    NOT NULL,
		date_of_birth TEXT    NOT NULL
	)
`

const selectColumns = "SELECT id, name, surname, email, phone_number, date_of_birth FROM students"

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at path, creates the students table if
// it does not already exist, and returns a ready-to-use *SQLite.
//
// A busy timeout is added to the DSN so that concurrent writers wait
// for the file lock instead of failing with SQLITE_BUSY, and every
// transaction starts with BEGIN IMMEDIATE so two read-then-write units
// of work cannot deadlock on the lock upgrade.
func New(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_busy_timeout=5000&_txlock=immediate"
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// withTx runs fn inside a transaction. Rollback after a successful
// Commit is a no-op, so the deferred call covers every exit path.
func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CreateStudent checks the email, then inserts the row.
//
// The existence check and the insert are not atomic with respect to
// other connections; the UNIQUE constraint on email is the real
// guarantee, so a constraint violation is mapped to ErrConflict too.
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (int64, error) {
	var lastID int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		taken, err := emailTaken(ctx, tx, student.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return storage.ErrConflict
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO students (name, surname, email, phone_number, date_of_birth)
			 VALUES (?, ?, ?, ?, ?)`,
			student.Name, student.Surname, student.Email, student.PhoneNumber, student.DateOfBirth,
		)
		if err != nil {
			return mapError("exec", err)
		}

		lastID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: %w", err)
	}

	return lastID, nil
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	var student types.Student

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		student, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}

	return student, nil
}

// GetStudents returns all student rows in insertion order.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	var students []types.Student

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		students, err = queryStudents(ctx, tx, selectColumns+" ORDER BY id")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces a student's data with the provided values
// and returns the stored row.
//
// Unlike the first version of this service, the email is re-checked
// here: moving a student onto an email owned by someone else fails with
// ErrConflict instead of being left to the constraint.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id int64, student types.Student) (types.Student, error) {
	var updated types.Student

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getByID(ctx, tx, id); err != nil {
			return err
		}

		taken, err := emailTaken(ctx, tx, student.Email, id)
		if err != nil {
			return err
		}
		if taken {
			return storage.ErrConflict
		}

		// Argument order matches the ? order in the SQL.
		_, err = tx.ExecContext(ctx,
			`UPDATE students
			 SET name = ?, surname = ?, email = ?, phone_number = ?, date_of_birth = ?
			 WHERE id = ?`,
			student.Name, student.Surname, student.Email, student.PhoneNumber, student.DateOfBirth, id,
		)
		if err != nil {
			return mapError("exec", err)
		}

		// Re-fetch so we return exactly what is stored.
		updated, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	return updated, nil
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("exec: %w", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}

	return nil
}

// SearchStudents ORs one LIKE clause per non-empty criterion. Both sides
// go through casefold, so the match ignores case for any letter.
func (s *SQLite) SearchStudents(ctx context.Context, criteria types.SearchCriteria) ([]types.Student, error) {
	var (
		clauses []string
		args    []any
	)

	add := func(column, value string) {
		if value == "" {
			return
		}
		clauses = append(clauses, "casefold("+column+`) LIKE casefold(?) ESCAPE '\'`)
		args = append(args, storage.ContainsPattern(value))
	}
	add("name", criteria.Name)
	add("surname", criteria.Surname)
	add("email", criteria.Email)

	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " OR ")
	}
	query += " ORDER BY id"

	var students []types.Student
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		students, err = queryStudents(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("SearchStudents: %w", err)
	}

	return students, nil
}

// DeleteStudents empties the table. AUTOINCREMENT keeps its counter, so
// ids are still never reused.
func (s *SQLite) DeleteStudents(ctx context.Context) (int64, error) {
	var n int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "DELETE FROM students")
		if err != nil {
			return fmt.Errorf("exec: %w", err)
		}
		n, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("DeleteStudents: %w", err)
	}

	return n, nil
}

func getByID(ctx context.Context, tx *sql.Tx, id int64) (types.Student, error) {
	var student types.Student

	// QueryRow does not report "no rows" itself; the error surfaces
	// only when we call Scan.
	err := tx.QueryRowContext(ctx, selectColumns+" WHERE id = ? LIMIT 1", id).Scan(
		&student.ID,
		&student.Name,
		&student.Surname,
		&student.Email,
		&student.PhoneNumber,
		&student.DateOfBirth,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("scan: %w", err)
	}

	return student, nil
}

// emailTaken reports whether a student other than exceptID owns email.
// Pass 0 to check against every row.
func emailTaken(ctx context.Context, tx *sql.Tx, email string, exceptID int64) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM students WHERE email = ? AND id <> ?)",
		email, exceptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func queryStudents(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]types.Student, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the caller can encode [] instead of null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Surname,
			&student.Email,
			&student.PhoneNumber,
			&student.DateOfBirth,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return students, nil
}

// mapError turns a UNIQUE violation into storage.ErrConflict and wraps
// everything else with the failing step.
func mapError(step string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return storage.ErrConflict
	}
	return fmt.Errorf("%s: %w", step, err)
}
