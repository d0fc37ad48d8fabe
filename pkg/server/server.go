package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/acervobooks/acervo/pkg/auth"
	"github.com/acervobooks/acervo/pkg/binder"
	"github.com/acervobooks/acervo/pkg/config"
	"github.com/acervobooks/acervo/pkg/copies"
	"github.com/acervobooks/acervo/pkg/dashboard"
	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/loans"
	"github.com/acervobooks/acervo/pkg/testutils"
	"github.com/acervobooks/acervo/pkg/titles"
	"github.com/acervobooks/acervo/pkg/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

// New builds the HTTP server with all routes registered.
func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	authService := auth.RegisterRoutes(e, db, cfg.JWTSecret, cfg.Settings.BcryptCost)
	authMiddleware := auth.NewMiddleware(authService)

	users.RegisterRoutes(e, db, cfg.Settings.BcryptCost, authMiddleware)
	titles.RegisterRoutes(e, db, authMiddleware)
	copies.RegisterRoutes(e, db, cfg.Settings.QRCodeSize, authMiddleware)
	loans.RegisterRoutes(e, db, cfg.Settings.LoanPeriodDays, authMiddleware)
	dashboard.RegisterRoutes(e, db, authMiddleware)

	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
