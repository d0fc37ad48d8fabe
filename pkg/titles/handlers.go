package titles

import (
	"net/http"
	"strconv"

	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	titleService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateTitlePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	title, err := h.titleService.Create(ctx, CreateTitleOptions(params))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, title)
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Title")
	}

	title, err := h.titleService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, title)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListTitlesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	titles, total, err := h.titleService.List(ctx, ListOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Titles []*models.Title `json:"titles"`
		Total  int             `json:"total"`
	}{titles, total}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Title")
	}

	params := UpdateTitlePayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	title, err := h.titleService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	columns := []string{}

	if params.Name != nil && *params.Name != title.Name {
		title.Name = *params.Name
		columns = append(columns, "name")
	}
	if params.Author != nil && *params.Author != title.Author {
		title.Author = *params.Author
		columns = append(columns, "author")
	}
	if params.CoAuthor != nil {
		// An empty string clears the co-author.
		if *params.CoAuthor == "" {
			title.CoAuthor = nil
		} else {
			title.CoAuthor = params.CoAuthor
		}
		columns = append(columns, "co_author")
	}

	err = h.titleService.Update(ctx, title, columns)
	if err != nil {
		return err
	}

	title, err = h.titleService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, title)
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Title")
	}

	err = h.titleService.Delete(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Title deleted successfully"})
}

func (h *handler) listCopies(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Title")
	}

	copies, err := h.titleService.ListCopies(ctx, id)
	if err != nil {
		return err
	}

	resp := struct {
		Copies []*models.Copy `json:"copies"`
	}{copies}

	return c.JSON(http.StatusOK, resp)
}
