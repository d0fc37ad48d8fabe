package users

import (
	"net/http"
	"strconv"

	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	userService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Create(ctx, CreateUserOptions{
		Name:     params.Name,
		Phone:    params.Phone,
		Email:    params.Email,
		Password: params.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	user, err := h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, total, err := h.userService.List(ctx, ListOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Users []*models.User `json:"users"`
		Total int            `json:"total"`
	}{users, total}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	params := UpdateUserPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	columns := []string{}

	if params.Name != nil && *params.Name != user.Name {
		user.Name = *params.Name
		columns = append(columns, "name")
	}
	if params.Phone != nil && *params.Phone != user.Phone {
		user.Phone = *params.Phone
		columns = append(columns, "phone")
	}
	if params.Email != nil && *params.Email != user.Email {
		user.Email = *params.Email
		columns = append(columns, "email")
	}

	err = h.userService.Update(ctx, user, columns)
	if err != nil {
		return err
	}

	user, err = h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	err = h.userService.Delete(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

type loanResponse struct {
	*models.Loan
	Overdue bool `json:"overdue"`
}

func (h *handler) listLoans(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	loans, err := h.userService.ListLoans(ctx, id)
	if err != nil {
		return err
	}

	resp := struct {
		Loans []loanResponse `json:"loans"`
	}{Loans: make([]loanResponse, 0, len(loans))}
	for _, loan := range loans {
		resp.Loans = append(resp.Loans, loanResponse{Loan: loan, Overdue: loan.Overdue()})
	}

	return c.JSON(http.StatusOK, resp)
}
