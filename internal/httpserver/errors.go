package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/mini_shop/internal/service"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// toHTTPError turns a service error into the echo error the client sees.
// Internal failures keep their cause for logging but never leak it.
func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	code := statusFor(err)
	switch {
	case code == http.StatusInternalServerError:
		return echo.NewHTTPError(code, "internal error").SetInternal(err)
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(code, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(code, service.ErrInvalidToken.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(code, err.Error())
	}
}

// ErrorHandler is installed as echo's HTTPErrorHandler.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(toHTTPError(err), c)
	}
}
