// Package storagetest is a behaviour suite every storage.Storage
// implementation must pass. Backend packages call Run from their tests
// with a factory that returns an empty store.
package storagetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Factory returns an empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) storage.Storage

// Student builds a valid student whose email is derived from key.
func Student(key, name, surname string) types.Student {
	return types.Student{
		Name:        name,
		Surname:     surname,
		Email:       key + "@example.com",
		PhoneNumber: "+380501234567",
		DateOfBirth: "2001-05-14",
	}
}

// Run executes the suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("CreateDuplicateEmail", func(t *testing.T) { testCreateDuplicateEmail(t, newStore(t)) })
	t.Run("CreateIgnoresID", func(t *testing.T) { testCreateIgnoresID(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("ListEmpty", func(t *testing.T) { testListEmpty(t, newStore(t)) })
	t.Run("ListAfterCreatesAndDeletes", func(t *testing.T) { testListAfterCreatesAndDeletes(t, newStore(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("UpdateMissing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("UpdateEmailConflict", func(t *testing.T) { testUpdateEmailConflict(t, newStore(t)) })
	t.Run("DeleteTwice", func(t *testing.T) { testDeleteTwice(t, newStore(t)) })
	t.Run("IDsNotReused", func(t *testing.T) { testIDsNotReused(t, newStore(t)) })
	t.Run("Search", func(t *testing.T) { testSearch(t, newStore(t)) })
	t.Run("SearchNonASCIICase", func(t *testing.T) { testSearchNonASCIICase(t, newStore(t)) })
	t.Run("SearchLiteralWildcards", func(t *testing.T) { testSearchLiteralWildcards(t, newStore(t)) })
	t.Run("DeleteStudents", func(t *testing.T) { testDeleteStudents(t, newStore(t)) })
}

func create(t *testing.T, s storage.Storage, student types.Student) int64 {
	t.Helper()
	id, err := s.CreateStudent(context.Background(), student)
	require.NoError(t, err)
	require.Positive(t, id)
	return id
}

func testCreateAndGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	in := Student("anna", "Anna", "Smith")

	id := create(t, s, in)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)

	in.ID = id
	assert.Equal(t, in, got)
}

func testCreateDuplicateEmail(t *testing.T, s storage.Storage) {
	create(t, s, Student("anna", "Anna", "Smith"))

	_, err := s.CreateStudent(context.Background(), Student("anna", "Other", "Person"))
	assert.ErrorIs(t, err, storage.ErrConflict)

	all, err := s.GetStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testCreateIgnoresID(t *testing.T, s storage.Storage) {
	first := create(t, s, Student("a", "A", "A"))

	in := Student("b", "B", "B")
	in.ID = first
	second := create(t, s, in)

	assert.NotEqual(t, first, second)
}

func testGetMissing(t *testing.T, s storage.Storage) {
	_, err := s.GetStudentByID(context.Background(), 4242)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListEmpty(t *testing.T, s storage.Storage) {
	all, err := s.GetStudents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func testListAfterCreatesAndDeletes(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, create(t, s, Student(fmt.Sprintf("s%d", i), "Name", "Surname")))
	}
	require.NoError(t, s.DeleteStudentByID(ctx, ids[1]))
	require.NoError(t, s.DeleteStudentByID(ctx, ids[3]))

	all, err := s.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{ids[0], ids[2], ids[4]}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func testUpdate(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	id := create(t, s, Student("anna", "Anna", "Smith"))

	repl := types.Student{
		Name:        "Joanne",
		Surname:     "Brown",
		Email:       "joanne@example.com",
		PhoneNumber: "555-0100",
		DateOfBirth: "1999-12-31",
	}
	updated, err := s.UpdateStudentByID(ctx, id, repl)
	require.NoError(t, err)

	repl.ID = id
	assert.Equal(t, repl, updated)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, repl, got)

	// Keeping one's own email is not a conflict.
	_, err = s.UpdateStudentByID(ctx, id, repl)
	assert.NoError(t, err)
}

func testUpdateMissing(t *testing.T, s storage.Storage) {
	_, err := s.UpdateStudentByID(context.Background(), 4242, Student("x", "X", "X"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testUpdateEmailConflict(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	create(t, s, Student("anna", "Anna", "Smith"))
	id := create(t, s, Student("bob", "Bob", "Jones"))

	_, err := s.UpdateStudentByID(ctx, id, Student("anna", "Bob", "Jones"))
	assert.ErrorIs(t, err, storage.ErrConflict)

	got, err := s.GetStudentByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)
}

func testDeleteTwice(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	id := create(t, s, Student("anna", "Anna", "Smith"))

	require.NoError(t, s.DeleteStudentByID(ctx, id))

	_, err := s.GetStudentByID(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, s.DeleteStudentByID(ctx, id), storage.ErrNotFound)
}

func testIDsNotReused(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	first := create(t, s, Student("a", "A", "A"))
	require.NoError(t, s.DeleteStudentByID(ctx, first))

	second := create(t, s, Student("a", "A", "A"))
	assert.Greater(t, second, first)
}

func testSearch(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	create(t, s, Student("anna", "Anna", "Smith"))
	create(t, s, Student("joanne", "Joanne", "Brown"))
	create(t, s, Student("bob", "Bob", "Jones"))
	create(t, s, Student("carl", "Carl", "Annandale"))

	names := func(students []types.Student) []string {
		out := make([]string, 0, len(students))
		for _, st := range students {
			out = append(out, st.Name)
		}
		return out
	}

	got, err := s.SearchStudents(ctx, types.SearchCriteria{Name: "ann"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna", "Joanne"}, names(got))

	// Two criteria: union, not intersection.
	got, err = s.SearchStudents(ctx, types.SearchCriteria{Name: "bob", Surname: "ANNAN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Carl"}, names(got))

	got, err = s.SearchStudents(ctx, types.SearchCriteria{Email: "JOANNE@"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Joanne"}, names(got))

	got, err = s.SearchStudents(ctx, types.SearchCriteria{})
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = s.SearchStudents(ctx, types.SearchCriteria{Name: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func testSearchNonASCIICase(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	create(t, s, Student("olena", "Олена", "Шевченко"))
	create(t, s, Student("zoe", "Zoë", "Ärger"))

	tests := []struct {
		criteria types.SearchCriteria
		want     string
	}{
		{types.SearchCriteria{Name: "олена"}, "Олена"},
		{types.SearchCriteria{Name: "ОЛЕНА"}, "Олена"},
		{types.SearchCriteria{Name: "Олена"}, "Олена"},
		{types.SearchCriteria{Surname: "шЕВЧ"}, "Олена"},
		{types.SearchCriteria{Name: "ZOË"}, "Zoë"},
		{types.SearchCriteria{Surname: "ärger"}, "Zoë"},
	}

	for _, tt := range tests {
		got, err := s.SearchStudents(ctx, tt.criteria)
		require.NoError(t, err)
		require.Len(t, got, 1, "criteria %+v", tt.criteria)
		assert.Equal(t, tt.want, got[0].Name)
	}
}

func testSearchLiteralWildcards(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	create(t, s, Student("a", "100%", "Sure"))
	create(t, s, Student("b", "1000", "Sure"))

	got, err := s.SearchStudents(ctx, types.SearchCriteria{Name: "0%"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100%", got[0].Name)

	got, err = s.SearchStudents(ctx, types.SearchCriteria{Name: "1_0"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testDeleteStudents(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	create(t, s, Student("a", "A", "A"))
	create(t, s, Student("b", "B", "B"))

	n, err := s.DeleteStudents(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, err := s.GetStudents(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
