package validate

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/types"
)

func validRequest() types.StudentRequest {
	return types.StudentRequest{
		Name:        "Anna",
		Surname:     "Smith",
		Email:       "anna@example.com",
		PhoneNumber: "+380501234567",
		DateOfBirth: "2001-05-14",
	}
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(validRequest()))
}

// Only presence and length are checked; the contents are free text.
func TestStructAcceptsFreeText(t *testing.T) {
	req := validRequest()
	req.Email = "not an email"
	req.PhoneNumber = "call me"
	req.DateOfBirth = "someday"

	assert.NoError(t, Struct(req))
}

func TestStructRequiredUsesJSONNames(t *testing.T) {
	err := Struct(types.StudentRequest{})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := Translate(verrs)
	assert.Len(t, fields, 5)
	for _, name := range []string{"name", "surname", "email", "phone_number", "date_of_birth"} {
		assert.Equal(t, name+" is a required field", fields[name])
	}
}

func TestStructMaxLengths(t *testing.T) {
	req := validRequest()
	req.Name = strings.Repeat("a", types.MaxNameLen+1)
	req.Surname = strings.Repeat("b", types.MaxSurnameLen)
	req.Email = strings.Repeat("c", types.MaxEmailLen+1)
	req.DateOfBirth = "2001-05-14T00"

	err := Struct(req)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := Translate(verrs)
	assert.Contains(t, fields, "name")
	assert.NotContains(t, fields, "surname")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "date_of_birth")
}
