package dashboard

import (
	"net/http"

	"github.com/acervobooks/acervo/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

type handler struct {
	dashboardService *Service
}

func (h *handler) counts(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.dashboardService.Counts(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, counts)
}

// RegisterRoutes registers the dashboard route.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	dashboardService := NewService(db)

	h := &handler{
		dashboardService: dashboardService,
	}

	e.GET("/dashboard", h.counts, authMiddleware.Authenticate)

	return dashboardService
}
