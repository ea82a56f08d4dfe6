package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/akulov/points-api/internal/middleware"
	"github.com/akulov/points-api/internal/models"
	"github.com/akulov/points-api/internal/repo"
)

type Deps struct {
	AuthHandler  *AuthHTTP
	UserHandler  *UserHTTP
	AdminHandler *AdminHTTP
	JWTSecret    []byte
	Repo         *repo.GormRepo
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := mw.NewAuthMiddleware(d.JWTSecret, d.Repo)

	api := e.Group("/api/v1")

	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/login", d.AuthHandler.Login)

	private := api.Group("")
	private.Use(authMw.RequireAuth)

	private.POST("/auth/logout", d.AuthHandler.Logout)
	private.GET("/users", d.UserHandler.ListUsers)
	private.GET("/sortedusers", d.UserHandler.SortedUsers)

	admin := private.Group("/admin")
	admin.Use(mw.RequireRole(models.RoleAdmin))

	admin.GET("/users", d.AdminHandler.ListAllUsers)
	admin.DELETE("/users/:id", d.AdminHandler.DeleteUser)
	admin.PUT("/users/:id/points", d.AdminHandler.UpdatePoints)
}
