package auth

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	minFieldLength    = 2
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+'\-]+@([A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?\.)+[A-Za-z]{2,}$`)

// ValidationError holds per-field messages, keyed by form field name. It is raised before any
// network call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, e.Fields[name])
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message for one field, or ""
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// LoginForm is the sign-in form
type LoginForm struct {
	Email    string
	Password string
}

func (f LoginForm) Validate() error {
	errs := fieldErrors{}
	validateEmail(errs, f.Email)
	if f.Password == "" {
		errs.add("password", "Password is required")
	}
	validatePassword(errs, f.Password)
	return errs.err()
}

// RegistrationForm is the sign-up form. AcceptTerms is never sent to the backend.
type RegistrationForm struct {
	FullName    string
	PhoneNumber string
	Address     string
	Email       string
	Password    string
	AcceptTerms bool
}

func (f RegistrationForm) Validate() error {
	errs := fieldErrors{}
	if utf8.RuneCountInString(strings.TrimSpace(f.FullName)) < minFieldLength {
		errs.add("full_name", "Please enter your full name")
	}
	if utf8.RuneCountInString(strings.TrimSpace(f.PhoneNumber)) < minFieldLength {
		errs.add("phone_number", "Please enter your phone number")
	}
	if utf8.RuneCountInString(strings.TrimSpace(f.Address)) < minFieldLength {
		errs.add("address", "Please enter your address")
	}
	validateEmail(errs, f.Email)
	validatePassword(errs, f.Password)
	if !f.AcceptTerms {
		errs.add("terms", "You must accept the terms and conditions")
	}
	return errs.err()
}

func validateEmail(errs fieldErrors, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.add("email", "Email is required")
		return
	}
	if !emailPattern.MatchString(email) {
		errs.add("email", "Please enter a valid email address")
	}
}

func validatePassword(errs fieldErrors, password string) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		errs.add("password", "Password must be at least 8 characters")
	}
}
