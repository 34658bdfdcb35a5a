// Package validation evaluates declarative field rules on request DTOs.  All
// rules run; every failure is collected into a single *Error so clients get
// the full list in one response.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var zipPattern = regexp.MustCompile(`^\d{6}$`)

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the structured validation failure returned to handlers.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator adapts go-playground/validator to echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the custom rules registered and JSON field
// names used in error reports.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("zip6", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate runs every rule on i.  It returns nil or an *Error.
func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// messages holds the human text per field and rule.  Lookups fall back to a
// generic text per rule.
var messages = map[string]string{
	"username.required":   "Username is required",
	"username.min":        "Username must be at least 3 characters long",
	"email.required":      "Invalid email format",
	"email.email":         "Invalid email format",
	"password.required":   "Password is required",
	"password.min":        "Password must be at least 6 characters long",
	"firstName.required":  "First name is required",
	"lastName.required":   "Last name is required",
	"role.oneof":          "Role must be either user or seller",
	"identifier.required": "Identifier is required",
	"street.required":     "Street should not be empty",
	"city.required":       "City should not be empty",
	"state.required":      "State should not be empty",
	"zip.required":        "Zip code should not be empty",
	"zip.zip6":            "Zip code must be exactly 6 digits",
	"country.required":    "Country should not be empty",
}

func message(fe validator.FieldError) string {
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return "Should be a valid " + fe.Field()
	}
}
