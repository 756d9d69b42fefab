package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ventar/internal/validate"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestEventValidForm(t *testing.T) {
	errs := validate.Event(validate.EventForm{
		Name:          "Go Meetup",
		Date:          "2026-04-01",
		Capacity:      50,
		Registrations: 10,
	}, now)

	assert.True(t, errs.OK())
}

func TestEventNameRequired(t *testing.T) {
	errs := validate.Event(validate.EventForm{
		Name:     "   ",
		Date:     "2026-04-01",
		Capacity: 50,
	}, now)

	assert.Equal(t, "Event name is required", errs["name"])
}

func TestEventDateRules(t *testing.T) {
	cases := []struct {
		name string
		date string
		want string
	}{
		{"missing", "", "Date is required"},
		{"garbage", "not-a-date", "Date must be a valid YYYY-MM-DD date"},
		{"past", "2026-03-01", "Date cannot be in the past"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := validate.Event(validate.EventForm{Name: "X", Date: tc.date, Capacity: 1}, now)
			assert.Equal(t, tc.want, errs["date"])
		})
	}
}

func TestEventTodayIsNotPast(t *testing.T) {
	errs := validate.Event(validate.EventForm{Name: "X", Date: "2026-03-15", Capacity: 1}, now)
	assert.Empty(t, errs["date"])
}

func TestEventCapacityAndRegistrations(t *testing.T) {
	errs := validate.Event(validate.EventForm{Name: "X", Date: "2026-04-01", Capacity: 0}, now)
	assert.Equal(t, "Capacity must be positive", errs["capacity"])

	errs = validate.Event(validate.EventForm{Name: "X", Date: "2026-04-01", Capacity: 10, Registrations: 11}, now)
	assert.Equal(t, "Registrations cannot exceed capacity", errs["registrations"])

	errs = validate.Event(validate.EventForm{Name: "X", Date: "2026-04-01", Capacity: 10, Registrations: -1}, now)
	assert.Equal(t, "Registrations cannot be negative", errs["registrations"])
}

func TestErrorsClear(t *testing.T) {
	errs := validate.Event(validate.EventForm{}, now)
	assert.False(t, errs.OK())

	errs.Clear("name")
	assert.Empty(t, errs["name"])
	// Other fields stay failed until their values change too.
	assert.NotEmpty(t, errs["date"])
}

func TestRegistrationEmail(t *testing.T) {
	errs := validate.Registration(validate.RegistrationForm{Name: "Sam", Email: "sam@example.com"})
	assert.True(t, errs.OK())

	errs = validate.Registration(validate.RegistrationForm{Name: "Sam", Email: "not-an-email"})
	assert.Equal(t, "Enter a valid email address", errs["email"])

	errs = validate.Registration(validate.RegistrationForm{Email: "sam@example.com"})
	assert.Equal(t, "Name is required", errs["name"])
}

func TestSignUpPasswordStrength(t *testing.T) {
	base := validate.SignUpForm{FullName: "Sam Lee", Email: "sam@example.com"}

	form := base
	form.Password, form.ConfirmPassword = "short1A", "short1A"
	assert.Equal(t, "Password must be at least 8 characters", validate.SignUp(form)["password"])

	form = base
	form.Password, form.ConfirmPassword = "alllowercase1", "alllowercase1"
	assert.Equal(t, "Password must contain upper-case, lower-case and a digit", validate.SignUp(form)["password"])

	form = base
	form.Password, form.ConfirmPassword = "GoodPass1", "Different1"
	assert.Equal(t, "Passwords do not match", validate.SignUp(form)["confirm_password"])

	form = base
	form.Password, form.ConfirmPassword = "GoodPass1", "GoodPass1"
	assert.True(t, validate.SignUp(form).OK())
}
