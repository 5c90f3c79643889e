package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return newTestStore(t)
	})
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.db")

	first, err := New(context.Background(), path)
	require.NoError(t, err)
	_, err = first.CreateStudent(context.Background(), storagetest.Student("anna", "Anna", "Smith"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(context.Background(), path)
	require.NoError(t, err)
	defer second.Close()

	all, err := second.GetStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "a.db?_busy_timeout=5000&_txlock=immediate", dsn("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_busy_timeout=5000&_txlock=immediate", dsn("file:a.db?mode=rwc"))
}

// The UNIQUE constraint is what settles concurrent creates with the same
// email: exactly one wins, the rest see ErrConflict.
func TestConcurrentCreateSameEmail(t *testing.T) {
	s := newTestStore(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateStudent(context.Background(), storagetest.Student("race", "Race", "Condition"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case assert.ErrorIs(t, err, storage.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
}

func TestMapErrorWrapsOtherErrors(t *testing.T) {
	err := mapError("exec", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, storage.ErrConflict)
}
