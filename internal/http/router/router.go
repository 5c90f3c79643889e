// Package router wires the student handlers into a ServeMux.
//
// Route table:
//
//	GET    /                               → greeting
//	POST   /students/                      → create a student
//	GET    /students/                      → list all students
//	GET    /students/{id}                  → get one student
//	PUT    /students/{id}                  → update a student
//	DELETE /students/{id}                  → delete a student
//	GET    /students/search/               → search by name / surname / email
//	GET    /students/upcoming_birthdays/   → birthdays in the next N days
//	DELETE /students/                      → delete everyone (opt-in)
//
// {$} anchors a pattern so that "/students/" does not swallow every
// path below it.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-directory/internal/birthday"
	"github.com/aanand-mishra/student-directory/internal/http/handlers/student"
	"github.com/aanand-mishra/student-directory/internal/http/middleware"
	"github.com/aanand-mishra/student-directory/internal/storage"
)

// Options tune the routes that depend on configuration.
type Options struct {
	// Now is the clock used by the birthday query. Defaults to time.Now.
	Now func() time.Time

	// BirthdayWindowDays defaults to birthday.DefaultWindowDays.
	BirthdayWindowDays int
	EnablePurge        bool
}

// New returns the fully wrapped HTTP handler.
func New(storage storage.Storage, log *slog.Logger, opts Options) http.Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BirthdayWindowDays <= 0 {
		opts.BirthdayWindowDays = birthday.DefaultWindowDays
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", student.Greeting())

	mux.HandleFunc("POST /students/{$}", student.New(storage))
	mux.HandleFunc("GET /students/{$}", student.GetList(storage))
	mux.HandleFunc("GET /students/{id}", student.GetByID(storage))
	mux.HandleFunc("PUT /students/{id}", student.Update(storage))
	mux.HandleFunc("DELETE /students/{id}", student.Delete(storage))
	mux.HandleFunc("GET /students/search/{$}", student.Search(storage))
	mux.HandleFunc("GET /students/upcoming_birthdays/{$}",
		student.UpcomingBirthdays(storage, opts.Now, opts.BirthdayWindowDays))

	if opts.EnablePurge {
		mux.HandleFunc("DELETE /students/{$}", student.Purge(storage))
	}

	// Outermost first: the request id must exist before anything logs.
	var h http.Handler = mux
	h = middleware.Recoverer(log)(h)
	h = middleware.Logger(log)(h)
	h = middleware.RequestID(h)

	return h
}
