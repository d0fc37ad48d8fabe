package copies

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
	copyService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateCopyPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	acquisitionDate, err := time.Parse("2006-01-02", params.AcquisitionDate)
	if err != nil {
		return errcodes.ValidationError("acquisition_date must be a valid date")
	}

	copyRecord, err := h.copyService.Create(ctx, CreateCopyOptions{
		TitleID:         params.TitleID,
		AcquisitionDate: acquisitionDate,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, copyRecord)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Copy")
	}

	copyRecord, err := h.copyService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, copyRecord)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListCopiesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	copies, total, err := h.copyService.List(ctx, ListOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Copies []*models.Copy `json:"copies"`
		Total  int            `json:"total"`
	}{copies, total}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Copy")
	}

	params := UpdateCopyPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	copyRecord, err := h.copyService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	columns := []string{}

	if params.TitleID != nil && *params.TitleID != copyRecord.TitleID {
		copyRecord.TitleID = *params.TitleID
		columns = append(columns, "title_id")
	}
	if params.AcquisitionDate != nil {
		acquisitionDate, err := time.Parse("2006-01-02", *params.AcquisitionDate)
		if err != nil {
			return errcodes.ValidationError("acquisition_date must be a valid date")
		}
		copyRecord.AcquisitionDate = acquisitionDate
		columns = append(columns, "acquisition_date")
	}

	err = h.copyService.Update(ctx, copyRecord, columns)
	if err != nil {
		return err
	}

	copyRecord, err = h.copyService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, copyRecord)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Copy")
	}

	err = h.copyService.Delete(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Copy deleted successfully"})
}

func (h *handler) qrcode(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Copy")
	}

	png, err := h.copyService.QRCodePNG(ctx, id)
	if err != nil {
		return err
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

type loanResponse struct {
	*models.Loan
	Overdue bool `json:"overdue"`
}

func (h *handler) listLoans(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Copy")
	}

	loans, err := h.copyService.ListLoans(ctx, id)
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
