package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/utils/validate"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, WriteJSON(rec, http.StatusCreated, map[string]string{"message": "hi"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"hi"}`, rec.Body.String())
}

func TestGeneralError(t *testing.T) {
	raw, err := json.Marshal(GeneralError(errors.New("student not found")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","error":"student not found"}`, string(raw))
}

func TestOK(t *testing.T) {
	raw, err := json.Marshal(OK("student deleted successfully"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","detail":"student deleted successfully"}`, string(raw))
}

func TestValidationError(t *testing.T) {
	err := validate.Struct(types.StudentRequest{
		Name:        "Anna",
		Surname:     "Smith",
		PhoneNumber: "0123456789012345",
		DateOfBirth: "2001-05-14",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	resp := ValidationError(verrs)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, map[string]string{
		"email":        "email is a required field",
		"phone_number": "phone_number must be a maximum of 15 characters in length",
	}, resp.Fields)
	assert.Equal(t,
		"email is a required field, phone_number must be a maximum of 15 characters in length",
		resp.Error)
}
