package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestToStudentDropsID(t *testing.T) {
	id := int64(99)
	req := StudentRequest{
		ID:          &id,
		Name:        "Anna",
		Surname:     "Smith",
		Email:       "anna@example.com",
		PhoneNumber: "555-0100",
		DateOfBirth: "2001-05-14",
	}

	s := req.ToStudent()

	assert.Zero(t, s.ID)
	assert.Equal(t, "Anna", s.Name)
	assert.Equal(t, "2001-05-14", s.DateOfBirth)
}

func TestResponseHasNoID(t *testing.T) {
	resp := NewStudentResponse(Student{ID: 7, Name: "Anna", Email: "anna@example.com"})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.NotContains(t, fields, "id")
	assert.ElementsMatch(t,
		[]string{"name", "surname", "email", "phone_number", "date_of_birth"},
		keys(fields))
}

func TestNewStudentResponsesEmpty(t *testing.T) {
	raw, err := json.Marshal(NewStudentResponses(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestSearchCriteriaIsEmpty(t *testing.T) {
	assert.True(t, SearchCriteria{}.IsEmpty())
	assert.False(t, SearchCriteria{Email: "x"}.IsEmpty())
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
