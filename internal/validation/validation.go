// Package validation wires go-playground/validator into Echo and renders
// field errors in the request language.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nyumbalink/nyumbalink/internal/i18n"
)

// tzPhone accepts +2557XXXXXXXX, +2556XXXXXXXX, 07XXXXXXXX and 06XXXXXXXX.
var tzPhone = regexp.MustCompile(`^(\+255[67]\d{8}|0[67]\d{8})$`)

// FieldError is one failed constraint, keyed by the JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("tzphone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate checks struct tags on i.
func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// ValidPhone reports whether s is a Tanzanian mobile number.  Spaces and
// dashes are ignored.
func ValidPhone(s string) bool {
	return tzPhone.MatchString(NormalizePhone(s))
}

// NormalizePhone strips spaces and dashes.
func NormalizePhone(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}

// Fields converts a validation error into localized field errors.  It
// returns nil when err is not a validator error.
func Fields(err error, lang string) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Message: message(fe, lang),
			Type:    fe.Tag(),
		})
	}
	return out
}

func message(fe validator.FieldError, lang string) string {
	switch fe.Tag() {
	case "required", "email", "tzphone":
		return i18n.T(lang, "validate."+fe.Tag())
	case "min", "max", "gte", "lte":
		return i18n.T(lang, "validate."+fe.Tag(), fe.Param())
	case "oneof":
		return i18n.T(lang, "validate.oneof", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return i18n.T(lang, "validate.invalid")
	}
}
