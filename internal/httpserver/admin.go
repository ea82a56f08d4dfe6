package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/akulov/points-api/internal/service"
	"github.com/akulov/points-api/pkg/logging"
)

type AdminHTTP struct {
	Svc *service.UserService
}

func (h *AdminHTTP) ListAllUsers(c echo.Context) error {
	users, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.Svc.Delete(ctx, id); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User deleted successfully",
	})
}

func (h *AdminHTTP) UpdatePoints(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_points")
	id := c.Param("id")

	var req struct {
		Points *int `json:"points"`
	}
	if err := c.Bind(&req); err != nil || req.Points == nil {
		l.Warn("points_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Points value is required")
	}

	if err := h.Svc.UpdatePoints(ctx, id, *req.Points); err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User points updated successfully",
	})
}
