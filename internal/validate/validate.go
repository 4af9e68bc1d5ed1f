// Package validate is the client-side input validation contract. Validation
// failures never reach the network layer; callers surface the first failing
// field's message.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/squarehq/square/pkg/domain"
)

// Error is a client-side validation failure for a single field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

var v = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New()
	// Lookahead isn't available in Go regexp, so the complexity rule
	// scans the rune classes directly.
	if err := vd.RegisterValidation("password", passwordRule); err != nil {
		panic(fmt.Sprintf("validate: register password rule: %v", err))
	}
	return vd
}

// passwordRule requires an upper-case letter, a lower-case letter, a digit,
// and a symbol.
func passwordRule(fl validator.FieldLevel) bool {
	var upper, lower, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,password"`
}

// Validate checks the login form and returns the first failing field's
// message.
func (in LoginInput) Validate() error {
	in.Email = strings.TrimSpace(in.Email)
	return first(v.Struct(in), map[string]string{
		"Email":             "A valid email is required",
		"Password.min":      "Password must be at least 8 characters",
		"Password.password": "Password must contain upper and lower case letters, a number, and a symbol",
		"Password":          "Password is required",
	})
}

// RegisterInput is the account creation form.
type RegisterInput struct {
	Name            string `validate:"required,min=3"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8,password"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

// Validate checks the register form and returns the first failing field's
// message.
func (in RegisterInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	return first(v.Struct(in), map[string]string{
		"Name":              "Name must be at least 3 characters",
		"Email":             "A valid email is required",
		"Password.min":      "Password must be at least 8 characters",
		"Password.password": "Password must contain upper and lower case letters, a number, and a symbol",
		"Password":          "Password is required",
		"ConfirmPassword":   "Password confirmation does not match",
	})
}

// TaskInput is the add-task form.
type TaskInput struct {
	Title       string        `validate:"required,min=3"`
	Description string        `validate:"required,min=5"`
	AssigneeID  string        `validate:"required"`
	Status      domain.Status `validate:"required,oneof=todo in-progress done"`
}

// Validate checks the task form and returns the first failing field's
// message.
func (in TaskInput) Validate() error {
	return first(v.Struct(in), map[string]string{
		"Title":       "Title must be at least 3 characters",
		"Description": "Description must be at least 5 characters",
		"AssigneeID":  "An assignee is required",
		"Status":      "Status must be one of todo, in-progress, done",
	})
}

// ProjectInput is the create/rename project form.
type ProjectInput struct {
	Title string `validate:"required,min=3"`
}

// Validate checks the project form and returns the first failing field's
// message.
func (in ProjectInput) Validate() error {
	return first(v.Struct(in), map[string]string{
		"Title": "Title must be at least 3 characters",
	})
}

// first converts a validator result into the first failing field's message.
// Messages are looked up by "Field.tag" first, then by "Field".
func first(err error, messages map[string]string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return &Error{Field: fe.Field(), Message: msg}
	}
	if msg, ok := messages[fe.Field()]; ok {
		return &Error{Field: fe.Field(), Message: msg}
	}
	return &Error{Field: fe.Field(), Message: fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field()))}
}
