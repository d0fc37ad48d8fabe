package users

import (
	"github.com/acervobooks/acervo/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, bcryptCost int, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db, bcryptCost)

	h := &handler{
		userService: userService,
	}

	users := e.Group("/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("", h.list)
	users.GET("/:id", h.retrieve)
	users.GET("/:id/loans", h.listLoans)
	users.POST("", h.create)
	users.POST("/:id", h.update)
	users.DELETE("/:id", h.delete)

	return userService
}
