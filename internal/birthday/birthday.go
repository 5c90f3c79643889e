// Package birthday decides which students have a birthday coming up.
//
// Dates are compared as whole days in the location of the supplied
// "now"; the time of day never matters.
//
// Two edge cases have a fixed policy:
//
//   - A Feb 29 birthday in a non-leap year is celebrated on March 1.
//   - Only the current year is substituted into the birth date, so a
//     window that crosses Dec 31 does not see January birthdays.
package birthday

import (
	"time"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// DefaultWindowDays is how many days ahead of today the query looks.
const DefaultWindowDays = 7

// IsUpcoming reports whether dateOfBirth, moved into the current year,
// falls between today and today+windowDays, both ends included.
// It returns false for a date that cannot be parsed.
func IsUpcoming(dateOfBirth string, now time.Time, windowDays int) bool {
	dob, err := time.Parse(types.DateOfBirthLayout, dateOfBirth)
	if err != nil {
		return false
	}

	loc := now.Location()
	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, loc)
	last := today.AddDate(0, 0, windowDays)

	// time.Date normalises Feb 29 of a non-leap year to March 1.
	next := time.Date(year, dob.Month(), dob.Day(), 0, 0, 0, 0, loc)

	return !next.Before(today) && !next.After(last)
}

// Upcoming filters students down to those with an upcoming birthday,
// keeping their order.
func Upcoming(students []types.Student, now time.Time, windowDays int) []types.Student {
	out := make([]types.Student, 0)
	for _, s := range students {
		if IsUpcoming(s.DateOfBirth, now, windowDays) {
			out = append(out, s)
		}
	}
	return out
}
