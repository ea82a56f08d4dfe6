package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akulov/points-api/internal/service"
)

// ErrorHandler renders every failure as {"error": <message>} with the mapped
// status. Internal detail never reaches the body; non-HTTPError values
// collapse to a generic 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}

	if err := c.JSON(code, echo.Map{"error": msg}); err != nil {
		c.Logger().Error(err)
	}
}

// serviceError maps a service failure kind onto its HTTP rejection.
func serviceError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are required")
	case errors.Is(err, service.ErrInvalidRole):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	case errors.Is(err, service.ErrAdminRegistration):
		return echo.NewHTTPError(http.StatusForbidden, "Cannot register with admin role")
	case errors.Is(err, service.ErrUserExists):
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists with this email or username")
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}
