// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
//
// There are three shapes of a student:
//
//   - Student         — a row as it lives in the students table (with ID)
//   - StudentRequest  — what a client sends on create / update
//   - StudentResponse — what a client gets back (ID stripped)
//
// The mapping between them is explicit (ToStudent, NewStudentResponse)
// instead of being driven by reflection.
package types

// Column length limits. They mirror the VARCHAR sizes of the postgres
// schema and the max=N validation tags below.
const (
	MaxNameLen        = 30
	MaxSurnameLen     = 30
	MaxEmailLen       = 50
	MaxPhoneNumberLen = 15
	MaxDateOfBirthLen = 10
)

// DateOfBirthLayout is the textual date format expected in date_of_birth.
// It is only interpreted by the upcoming-birthdays query. Month and day
// may be written with or without a leading zero.
const DateOfBirthLayout = "2006-1-2"

// Student represents a student record in our system.
type Student struct {
	ID          int64
	Name        string
	Surname     string
	Email       string
	PhoneNumber string
	DateOfBirth string
}

// StudentRequest is the JSON body accepted by create and update.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears in the JSON body.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. "required" means the field must be non-empty, "max=N"
//     caps the length at the size of the matching column.
//
// ID is accepted for compatibility with older clients but never used:
// the server always generates the primary key.
type StudentRequest struct {
	ID          *int64 `json:"id,omitempty"`
	Name        string `json:"name"          validate:"required,max=30"`
	Surname     string `json:"surname"       validate:"required,max=30"`
	Email       string `json:"email"         validate:"required,max=50"`
	PhoneNumber string `json:"phone_number"  validate:"required,max=15"`
	DateOfBirth string `json:"date_of_birth" validate:"required,max=10"`
}

// ToStudent converts the request into a storage row. The ID is left zero.
func (r StudentRequest) ToStudent() Student {
	return Student{
		Name:        r.Name,
		Surname:     r.Surname,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		DateOfBirth: r.DateOfBirth,
	}
}

// StudentResponse is the JSON shape returned to clients. It deliberately
// has no id field.
type StudentResponse struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
}

// NewStudentResponse strips the internal fields off a stored student.
func NewStudentResponse(s Student) StudentResponse {
	return StudentResponse{
		Name:        s.Name,
		Surname:     s.Surname,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		DateOfBirth: s.DateOfBirth,
	}
}

// NewStudentResponses maps a slice of students. It never returns nil so
// an empty result encodes to [] rather than null.
func NewStudentResponses(students []Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, NewStudentResponse(s))
	}
	return out
}

// SearchCriteria holds the optional substring patterns of a search.
// Empty fields are ignored.
type SearchCriteria struct {
	Name    string
	Surname string
	Email   string
}

// IsEmpty reports whether no criterion was supplied.
func (c SearchCriteria) IsEmpty() bool {
	return c.Name == "" && c.Surname == "" && c.Email == ""
}
