package loans

import (
	"github.com/acervobooks/acervo/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all loan routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, loanPeriodDays int, authMiddleware *auth.Middleware) *Service {
	loanService := NewService(db, loanPeriodDays)

	h := &handler{
		loanService: loanService,
	}

	loans := e.Group("/loans")
	loans.Use(authMiddleware.Authenticate)

	loans.GET("", h.list)
	loans.GET("/:id", h.retrieve)
	loans.POST("", h.create)
	loans.POST("/:id", h.update)
	loans.POST("/:id/return", h.returnLoan)
	loans.DELETE("/:id", h.delete)

	return loanService
}
