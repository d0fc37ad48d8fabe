package copies

import (
	"github.com/acervobooks/acervo/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all copy routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, qrCodeSize int, authMiddleware *auth.Middleware) *Service {
	copyService := NewService(db, qrCodeSize)

	h := &handler{
		copyService: copyService,
	}

	copies := e.Group("/copies")
	copies.Use(authMiddleware.Authenticate)

	copies.GET("", h.list)
	copies.GET("/:id", h.retrieve)
	copies.GET("/:id/qrcode", h.qrcode)
	copies.GET("/:id/loans", h.listLoans)
	copies.POST("", h.create)
	copies.POST("/:id", h.update)
	copies.DELETE("/:id", h.delete)

	return copyService
}
