package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/nyumbalink/nyumbalink/internal/httpx"
    "github.com/nyumbalink/nyumbalink/internal/i18n"
)

// Lang negotiates the response language from ?lang= and Accept-Language
// and echoes it back in Content-Language.
func Lang() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            lang := i18n.Negotiate(c.QueryParam("lang"), c.Request().Header.Get("Accept-Language"))
            httpx.SetLang(c, lang)
            c.Response().Header().Set("Content-Language", lang)
            return next(c)
        }
    }
}
