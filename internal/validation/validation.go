// Package validation checks task and account forms before they are sent or
// stored. The same rules run in the clients and in the API server.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"todo-planner/internal/model"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// FieldError is a single human-readable validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned when a form fails validation.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// AsErrors extracts validation errors from err.
func AsErrors(err error) (Errors, bool) {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	must(v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.RegisterValidation("recurrence", func(fl validator.FieldLevel) bool {
		return model.RecurrencePattern(fl.Field().String()).Valid()
	}))
	must(v.RegisterValidation("requires_pattern", func(fl validator.FieldLevel) bool {
		parent := fl.Parent()
		if parent.Kind() == reflect.Ptr {
			parent = parent.Elem()
		}
		pattern := parent.FieldByName("RecurrencePattern")
		return pattern.IsValid() && !pattern.IsNil()
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// CreateTask normalizes and validates a create form. The returned input has
// a trimmed title and a nil description when the description was blank.
func CreateTask(in model.CreateTaskInput) (model.CreateTaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Description != nil {
		trimmed := strings.TrimSpace(*in.Description)
		if trimmed == "" {
			in.Description = nil
		} else {
			in.Description = &trimmed
		}
	}
	return in, check(in)
}

// UpdateTask normalizes and validates a partial update. A blank description
// is kept as an empty string, which clears the stored description.
func UpdateTask(in model.UpdateTaskInput) (model.UpdateTaskInput, error) {
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
	if in.Description != nil {
		trimmed := strings.TrimSpace(*in.Description)
		in.Description = &trimmed
	}
	return in, check(in)
}

// Credentials validates a sign-up or login form.
func Credentials(c model.Credentials) error {
	c.Email = strings.TrimSpace(c.Email)
	return check(c)
}

// ConfirmPassword checks the repeated password of a sign-up form.
func ConfirmPassword(password, confirm string) error {
	switch {
	case confirm == "":
		return Errors{{Field: "confirmPassword", Message: "Please confirm your password"}}
	case password != confirm:
		return Errors{{Field: "confirmPassword", Message: "Passwords do not match"}}
	}
	return nil
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		if fe.Tag() == "max" {
			return fmt.Sprintf("Title must be less than %d characters", MaxTitleLength)
		}
		return "Title is required"
	case "description":
		return fmt.Sprintf("Description must be less than %d characters", MaxDescriptionLength)
	case "recurrencePattern":
		return "Recurrence pattern must be one of DAILY, WEEKLY, MONTHLY"
	case "recurrenceEndDate":
		return "Recurrence end date cannot be set without a recurrence pattern"
	case "email":
		switch fe.Tag() {
		case "required":
			return "Email is required"
		case "max":
			return "Email must be less than 255 characters"
		}
		return "Invalid email format"
	case "password":
		switch fe.Tag() {
		case "required":
			return "Password is required"
		case "min":
			return "Password must be at least 8 characters"
		}
		return "Password must be less than 128 characters"
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
