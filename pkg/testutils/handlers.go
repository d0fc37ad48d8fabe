package testutils

import (
	"net/http"
	"time"

	"github.com/acervobooks/acervo/pkg/auth"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

type handler struct {
	db *bun.DB
}

// createUserRequest is the request body for creating a test user.
type createUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// createUser creates a user directly, skipping the directory's duplicate
// checks. POST /test/users.
func (h *handler) createUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	hashedPassword, err := auth.HashPassword(req.Password, bcrypt.MinCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hashedPassword,
	}

	_, err = h.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create user")
	}

	return c.JSON(http.StatusCreated, user)
}

// seedRequest is the request body for seeding a title with copies.
type seedRequest struct {
	Name   string `json:"name" validate:"required"`
	Author string `json:"author" validate:"required"`
	Copies int    `json:"copies"`
}

// seedTitle creates a title with the requested number of available copies.
// POST /test/titles.
func (h *handler) seedTitle(c echo.Context) error {
	ctx := c.Request().Context()

	var req seedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	title := &models.Title{Name: req.Name, Author: req.Author}
	_, err := h.db.NewInsert().Model(title).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to create title")
	}

	for i := 0; i < req.Copies; i++ {
		copyRecord := &models.Copy{
			TitleID:         title.ID,
			AcquisitionDate: time.Now(),
			Available:       true,
		}
		_, err = h.db.NewInsert().Model(copyRecord).Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to create copy")
		}
	}

	return c.JSON(http.StatusCreated, title)
}

// resetResponse is the response body for resetting the database.
type resetResponse struct {
	Deleted map[string]int `json:"deleted"`
}

// reset empties every table, loans first so the foreign keys stay happy.
// DELETE /test/all.
func (h *handler) reset(c echo.Context) error {
	ctx := c.Request().Context()

	deleted := map[string]int{}
	for _, model := range []struct {
		name  string
		model interface{}
	}{
		{"loans", (*models.Loan)(nil)},
		{"copies", (*models.Copy)(nil)},
		{"titles", (*models.Title)(nil)},
		{"users", (*models.User)(nil)},
	} {
		result, err := h.db.NewDelete().
			Model(model.model).
			Where("1=1").
			Exec(ctx)
		if err != nil {
			return errors.Wrapf(err, "failed to delete %s", model.name)
		}

		count, _ := result.RowsAffected()
		deleted[model.name] = int(count)
	}

	return c.JSON(http.StatusOK, resetResponse{Deleted: deleted})
}
