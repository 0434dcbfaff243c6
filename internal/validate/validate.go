// Package validate holds the pure request checks that run before any service call.
// None of them touch the store.
package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every *Error via errors.Is.
var ErrValidation = errors.New("validation error")

// emailPattern is the basic local@domain.tld check applied to query emails.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Error describes rejected input. Fields lists the offending request fields.
type Error struct {
	Message string
	Fields  []string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrValidation
}

func newError(message string, fields ...string) *Error {
	return &Error{Message: message, Fields: fields}
}

type registration struct {
	Username string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type login struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type submission struct {
	Name    string `validate:"required"`
	Email   string `validate:"required"`
	Message string `validate:"required"`
}

// Registration requires a non-empty username, email and password, a well formed email and a
// password bcrypt can hash.
func Registration(username, email, password string) error {
	if err := required(registration{Username: username, Email: email, Password: password},
		"Username, email, and password are required"); err != nil {
		return err
	}
	if !emailPattern.MatchString(email) {
		return newError("Invalid email format", "email")
	}
	if len(password) > MaxPasswordBytes {
		return newError("Password must be at most 72 bytes", "password")
	}
	return nil
}

// Login requires a non-empty username and password.
func Login(username, password string) error {
	return required(login{Username: username, Password: password},
		"Username and password are required")
}

// QuerySubmission requires a non-empty name, email and message.
func QuerySubmission(name, email, message string) error {
	return required(submission{Name: name, Email: email, Message: message},
		"Name, email, and message are required")
}

// QueryUpdate checks a partial update: at least one field, no empty values, and a well formed
// email when one is supplied.
func QueryUpdate(name, email, message *string) error {
	if name == nil && email == nil && message == nil {
		return newError("At least one of name, email or message must be provided")
	}

	var empty []string
	for _, f := range []struct {
		field string
		value *string
	}{{"name", name}, {"email", email}, {"message", message}} {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			empty = append(empty, f.field)
		}
	}
	if len(empty) > 0 {
		return newError("Fields must not be empty: "+strings.Join(empty, ", "), empty...)
	}

	if email != nil && !emailPattern.MatchString(*email) {
		return newError("Invalid email format", "email")
	}
	return nil
}

// QueryID parses a path id that must be a positive integer.
func QueryID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, newError("Invalid query id", "id")
	}
	return id, nil
}

// PositiveID rejects ids that did not come through QueryID.
func PositiveID(id int64) error {
	if id <= 0 {
		return newError("Invalid query id", "id")
	}
	return nil
}

func required(v any, message string) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return newError(message)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return newError(message, fields...)
}
