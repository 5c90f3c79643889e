// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function receives its dependencies (storage, a clock…)
// once at startup and returns the http.HandlerFunc that serves every
// request:
//
//	router.HandleFunc("POST /students/{$}", student.New(storage))
//
// Handlers never hold state between requests. Each one makes a single
// storage call, and every storage call is its own unit of work.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-directory/internal/birthday"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"
	"github.com/aanand-mishra/student-directory/internal/utils/response"
	"github.com/aanand-mishra/student-directory/internal/utils/validate"
)

// maxBodyBytes caps create/update payloads.
const maxBodyBytes = 1 << 20

var errInternal = errors.New("internal server error")

// Greeting handles GET /
func Greeting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"message": "Hello World!"})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students/
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Anna", "surname": "Smith", "email": "anna@test.com",
//	  "phone_number": "+380501234567", "date_of_birth": "2001-05-14" }
//
// An "id" in the body is ignored; the server assigns one.
//
// Success response (201 Created): the stored student without its id.
// The new id is only exposed through the Location header.
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, failed validation,
//	                   or the email already exists
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		req, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		student := req.ToStudent()
		lastID, err := storage.CreateStudent(r.Context(), student)
		if err != nil {
			writeStorageError(w, "error creating student", err)
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))

		student.ID = lastID
		w.Header().Set("Location", fmt.Sprintf("/students/%d", lastID))
		response.WriteJSON(w, http.StatusCreated, types.NewStudentResponse(student))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{id}
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no such student
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStorageError(w, "error getting student", err, slog.Int64("id", id))
			return
		}

		response.WriteJSON(w, http.StatusOK, types.NewStudentResponse(student))
	}
}

// GetList handles GET /students/
// Returns every student as a JSON array ([] when there are none). There
// is no pagination: each call reads the whole table.
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents(r.Context())
		if err != nil {
			writeStorageError(w, "error getting students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, types.NewStudentResponses(students))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/{id}
// Replaces ALL fields of an existing student; partial updates are not
// supported, every field must be sent again.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body, validation failure, or the
//	                   new email belongs to another student
//	404 Not Found    — no such student
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		req, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		updated, err := storage.UpdateStudentByID(r.Context(), id, req.ToStudent())
		if err != nil {
			writeStorageError(w, "error updating student", err, slog.Int64("id", id))
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, types.NewStudentResponse(updated))
	}
}

// Delete handles DELETE /students/{id}
//
// Success response (200 OK):
//
//	{ "status": "ok", "detail": "student deleted successfully" }
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := storage.DeleteStudentByID(r.Context(), id); err != nil {
			writeStorageError(w, "error deleting student", err, slog.Int64("id", id))
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.OK("student deleted successfully"))
	}
}

// Search handles GET /students/search/?name=&surname=&email=
// Matches are case-insensitive substrings, and a student matching ANY of
// the given parameters is returned. Without parameters it lists everyone.
func Search(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		criteria := types.SearchCriteria{
			Name:    q.Get("name"),
			Surname: q.Get("surname"),
			Email:   q.Get("email"),
		}
		slog.Info("searching students",
			slog.String("name", criteria.Name),
			slog.String("surname", criteria.Surname),
			slog.String("email", criteria.Email),
		)

		var (
			students []types.Student
			err      error
		)
		if criteria.IsEmpty() {
			students, err = storage.GetStudents(r.Context())
		} else {
			students, err = storage.SearchStudents(r.Context(), criteria)
		}
		if err != nil {
			writeStorageError(w, "error searching students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, types.NewStudentResponses(students))
	}
}

// UpcomingBirthdays handles GET /students/upcoming_birthdays/
// Students whose date_of_birth cannot be parsed are skipped.
func UpcomingBirthdays(storage storage.Storage, now func() time.Time, windowDays int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting upcoming birthdays", slog.Int("window_days", windowDays))

		students, err := storage.GetStudents(r.Context())
		if err != nil {
			writeStorageError(w, "error getting students", err)
			return
		}

		upcoming := birthday.Upcoming(students, now(), windowDays)
		response.WriteJSON(w, http.StatusOK, types.NewStudentResponses(upcoming))
	}
}

// Purge handles DELETE /students/ and removes every student. It is only
// routed when http_server.enable_purge is set.
func Purge(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("purging all students")

		n, err := storage.DeleteStudents(r.Context())
		if err != nil {
			writeStorageError(w, "error purging students", err)
			return
		}

		slog.Warn("students purged", slog.Int64("count", n))
		response.WriteJSON(w, http.StatusOK, response.OK(fmt.Sprintf("deleted %d students", n)))
	}
}

// parseID reads the {id} path value. On failure it has already written
// the 400 response.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	return id, true
}

// decodeStudent decodes and validates a create/update body. On failure
// it has already written the 400 response.
func decodeStudent(w http.ResponseWriter, r *http.Request) (types.StudentRequest, bool) {
	var req types.StudentRequest

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return req, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return req, false
	}

	if err := validate.Struct(req); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return req, false
	}

	return req, true
}

// writeStorageError maps storage sentinels to status codes. Anything
// unexpected is logged and hidden behind a generic 500.
func writeStorageError(w http.ResponseWriter, msg string, err error, attrs ...any) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(storage.ErrNotFound))
	case errors.Is(err, storage.ErrConflict):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(storage.ErrConflict))
	default:
		slog.Error(msg, append(attrs, slog.String("error", err.Error()))...)
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errInternal))
	}
}
