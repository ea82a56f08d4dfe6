package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/akulov/points-api/internal/middleware"
	"github.com/akulov/points-api/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

// ListUsers is self-scoped: the role filter comes from the authenticated
// identity, so a caller cannot widen their view through the request.
func (h *UserHTTP) ListUsers(c echo.Context) error {
	role, _ := c.Get(mw.CtxRole).(string)

	users, err := h.Svc.ListByRole(c.Request().Context(), role)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, users)
}

// SortedUsers returns the caller's role rows ordered by points. An invalid
// order param falls back to descending.
func (h *UserHTTP) SortedUsers(c echo.Context) error {
	role, _ := c.Get(mw.CtxRole).(string)
	order := c.QueryParam("order")

	users, err := h.Svc.ListByRoleSorted(c.Request().Context(), role, order)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, users)
}
