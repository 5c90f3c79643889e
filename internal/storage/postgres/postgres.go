// Package postgres implements storage.Storage on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

var schema = fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS students (
		id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		name          VARCHAR(%d) NOT NULL,
		surname       VARCHAR(%d) NOT NULL,
		email         VARCHAR(%d) NOT NULL,
		phone_number  VARCHAR(%d) NOT NULL,
		date_of_birth VARCHAR(%d) NOT NULL,
		CONSTRAINT students_email_key UNIQUE (email)
	)`,
	types.MaxNameLen, types.MaxSurnameLen, types.MaxEmailLen,
	types.MaxPhoneNumberLen, types.MaxDateOfBirthLen,
)

const selectColumns = "SELECT id, name, surname, email, phone_number, date_of_birth FROM students"

// Postgres is a storage.Storage backed by a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Postgres)(nil)

// New creates and validates a connection pool, then creates the
// students table if needed.
func New(ctx context.Context, dsn string, maxConns int32) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close releases the pool. It never fails.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// withTx commits when fn returns nil and rolls back otherwise.
func (p *Postgres) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, p.pool, fn)
}

func (p *Postgres) CreateStudent(ctx context.Context, student types.Student) (int64, error) {
	var id int64

	err := p.withTx(ctx, func(tx pgx.Tx) error {
		taken, err := emailTaken(ctx, tx, student.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return storage.ErrConflict
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO students (name, surname, email, phone_number, date_of_birth)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			student.Name, student.Surname, student.Email, student.PhoneNumber, student.DateOfBirth,
		).Scan(&id)
		return mapError("insert", err)
	})
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: %w", err)
	}

	return id, nil
}

func (p *Postgres) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	var student types.Student

	err := p.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		student, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}

	return student, nil
}

func (p *Postgres) GetStudents(ctx context.Context) ([]types.Student, error) {
	var students []types.Student

	err := p.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		students, err = queryStudents(ctx, tx, selectColumns+" ORDER BY id")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	return students, nil
}

// UpdateStudentByID re-checks email ownership before overwriting.
func (p *Postgres) UpdateStudentByID(ctx context.Context, id int64, student types.Student) (types.Student, error) {
	var updated types.Student

	err := p.withTx(ctx, func(tx pgx.Tx) error {
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

		err = tx.QueryRow(ctx,
			`UPDATE students
			 SET name = $1, surname = $2, email = $3, phone_number = $4, date_of_birth = $5
			 WHERE id = $6
			 RETURNING id, name, surname, email, phone_number, date_of_birth`,
			student.Name, student.Surname, student.Email, student.PhoneNumber, student.DateOfBirth, id,
		).Scan(&updated.ID, &updated.Name, &updated.Surname, &updated.Email, &updated.PhoneNumber, &updated.DateOfBirth)
		return mapError("update", err)
	})
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	return updated, nil
}

func (p *Postgres) DeleteStudentByID(ctx context.Context, id int64) error {
	err := p.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM students WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: %w", err)
	}

	return nil
}

// SearchStudents builds one ILIKE clause per non-empty criterion.
func (p *Postgres) SearchStudents(ctx context.Context, criteria types.SearchCriteria) ([]types.Student, error) {
	var (
		clauses []string
		args    []any
	)

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, storage.ContainsPattern(value))
		clauses = append(clauses, column+" ILIKE $"+strconv.Itoa(len(args))+` ESCAPE '\'`)
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
	err := p.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		students, err = queryStudents(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("SearchStudents: %w", err)
	}

	return students, nil
}

// DeleteStudents empties the table. The identity sequence is left
// untouched so ids are never reused.
func (p *Postgres) DeleteStudents(ctx context.Context) (int64, error) {
	var n int64

	err := p.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM students")
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("DeleteStudents: %w", err)
	}

	return n, nil
}

func getByID(ctx context.Context, tx pgx.Tx, id int64) (types.Student, error) {
	var s types.Student
	err := tx.QueryRow(ctx, selectColumns+" WHERE id = $1", id).
		Scan(&s.ID, &s.Name, &s.Surname, &s.Email, &s.PhoneNumber, &s.DateOfBirth)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("scan: %w", err)
	}
	return s, nil
}

func emailTaken(ctx context.Context, tx pgx.Tx, email string, exceptID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM students WHERE email = $1 AND id <> $2)",
		email, exceptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func queryStudents(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]types.Student, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		var s types.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Surname, &s.Email, &s.PhoneNumber, &s.DateOfBirth); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return students, nil
}

func mapError(step string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrConflict
	}
	return fmt.Errorf("%s: %w", step, err)
}
