// Package validate holds the synchronous form validators. They run before any
// network call; a failing form never reaches the data store.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors is field-keyed so a single field's error can be cleared the moment
// its value changes, independent of the other fields.
type Errors map[string]string

func (e Errors) OK() bool {
	return len(e) == 0
}

func (e Errors) Clear(field string) {
	delete(e, field)
}

// EventForm is the event-creation wizard input.
type EventForm struct {
	Name          string
	Date          string
	Capacity      int
	Registrations int
}

// Event validates the creation form. The date check uses now so "not in the
// past" is testable; midnight today still counts as today.
func Event(f EventForm, now time.Time) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Event name is required"
	}
	if f.Date == "" {
		errs["date"] = "Date is required"
	} else if d, err := time.Parse("2006-01-02", f.Date); err != nil {
		errs["date"] = "Date must be a valid YYYY-MM-DD date"
	} else if d.Before(now.Truncate(24 * time.Hour)) {
		errs["date"] = "Date cannot be in the past"
	}
	if f.Capacity <= 0 {
		errs["capacity"] = "Capacity must be positive"
	}
	if f.Registrations < 0 {
		errs["registrations"] = "Registrations cannot be negative"
	} else if f.Capacity > 0 && f.Registrations > f.Capacity {
		errs["registrations"] = "Registrations cannot exceed capacity"
	}

	return errs
}

// RegistrationForm is the public attendee form.
type RegistrationForm struct {
	Name  string
	Email string
}

func Registration(f RegistrationForm) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		errs["email"] = "Enter a valid email address"
	}

	return errs
}

// SignUpForm is the host sign-up input.
type SignUpForm struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

func SignUp(f SignUpForm) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.FullName) == "" {
		errs["full_name"] = "Full name is required"
	}
	if strings.TrimSpace(f.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(f.Email) {
		errs["email"] = "Enter a valid email address"
	}
	if f.Password == "" {
		errs["password"] = "Password is required"
	} else if msg := passwordStrength(f.Password); msg != "" {
		errs["password"] = msg
	}
	if f.ConfirmPassword != f.Password {
		errs["confirm_password"] = "Passwords do not match"
	}

	return errs
}

func passwordStrength(pw string) string {
	if len(pw) < 8 {
		return "Password must be at least 8 characters"
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "Password must contain upper-case, lower-case and a digit"
	}
	return ""
}
