// Package httpx carries the response helpers shared by middleware and
// handlers: the negotiated language and the localized error envelope.
package httpx

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nyumbalink/nyumbalink/internal/i18n"
	"github.com/nyumbalink/nyumbalink/internal/validation"
)

const langKey = "lang"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// SetLang records the response language for the request.
func SetLang(c echo.Context, lang string) { c.Set(langKey, lang) }

// Lang returns the language chosen by the Lang middleware, or English.
func Lang(c echo.Context) string {
	if l, ok := c.Get(langKey).(string); ok && l != "" {
		return l
	}
	return i18n.English
}

// Error writes {"error": code, "message": <localized code>}.
func Error(c echo.Context, status int, code string) error {
	return c.JSON(status, ErrorBody{Error: code, Message: i18n.T(Lang(c), code)})
}

// Validation writes a 400 carrying per-field messages.
func Validation(c echo.Context, err error) error {
	lang := Lang(c)
	return c.JSON(http.StatusBadRequest, ErrorBody{
		Error:   "validation_failed",
		Message: i18n.T(lang, "validation_failed"),
		Fields:  validation.Fields(err, lang),
	})
}

// Fields writes a 400 for errors found outside the struct validator.
func Fields(c echo.Context, code string, fields []validation.FieldError) error {
	return c.JSON(http.StatusBadRequest, ErrorBody{
		Error:   code,
		Message: i18n.T(Lang(c), code),
		Fields:  fields,
	})
}

// ErrorHandler replaces Echo's default so router level errors (unknown
// route, wrong method, oversized body) use the same envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	} else {
		c.Logger().Error(err)
	}
	key := "internal_error"
	switch code {
	case http.StatusNotFound:
		key = "not_found"
	case http.StatusMethodNotAllowed:
		key = "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		key = "payload_too_large"
	case http.StatusUnauthorized:
		key = "unauthorized"
	case http.StatusForbidden:
		key = "forbidden"
	case http.StatusTooManyRequests:
		key = "too_many_requests"
	case http.StatusBadRequest:
		key = "invalid_body"
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = Error(c, code, key)
}
