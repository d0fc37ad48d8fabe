package loans

import (
	"net/http"
	"strconv"
	"time"

	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	loanService *Service
}

// loanResponse augments a loan with its derived overdue state.
type loanResponse struct {
	*models.Loan
	Overdue bool `json:"overdue"`
}

func newLoanResponse(loan *models.Loan) loanResponse {
	return loanResponse{Loan: loan, Overdue: loan.Overdue()}
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := CreateLoanOptions{
		UserID: params.UserID,
		CopyID: params.CopyID,
	}
	if params.DueDate != nil && *params.DueDate != "" {
		dueDate, err := time.Parse("2006-01-02", *params.DueDate)
		if err != nil {
			return errcodes.ValidationError("due_date must be a valid date")
		}
		opts.DueDate = &dueDate
	}

	loan, err := h.loanService.Create(ctx, opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newLoanResponse(loan))
}

func (h *handler) returnLoan(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	loan, err := h.loanService.Return(ctx, id)
	if errors.Is(err, ErrAlreadyReturned) {
		resp := struct {
			Loan    loanResponse `json:"loan"`
			Warning string       `json:"warning"`
		}{newLoanResponse(loan), "Loan was already returned"}

		return c.JSON(http.StatusOK, resp)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newLoanResponse(loan))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	loan, err := h.loanService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newLoanResponse(loan))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loans, total, err := h.loanService.List(ctx, ListOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Loans []loanResponse `json:"loans"`
		Total int            `json:"total"`
	}{Loans: make([]loanResponse, 0, len(loans)), Total: total}
	for _, loan := range loans {
		resp.Loans = append(resp.Loans, newLoanResponse(loan))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	params := UpdateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	dueDate, err := time.Parse("2006-01-02", params.DueDate)
	if err != nil {
		return errcodes.ValidationError("due_date must be a valid date")
	}

	loan, err := h.loanService.UpdateDueDate(ctx, id, dueDate)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newLoanResponse(loan))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	err = h.loanService.Delete(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Loan deleted successfully"})
}
