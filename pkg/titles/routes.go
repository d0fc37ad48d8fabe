package titles

import (
	"github.com/acervobooks/acervo/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all title routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	titleService := NewService(db)

	h := &handler{
		titleService: titleService,
	}

	titles := e.Group("/titles")
	titles.Use(authMiddleware.Authenticate)

	titles.GET("", h.list)
	titles.GET("/:id", h.retrieve)
	titles.GET("/:id/copies", h.listCopies)
	titles.POST("", h.create)
	titles.POST("/:id", h.update)
	titles.DELETE("/:id", h.delete)

	return titleService
}
