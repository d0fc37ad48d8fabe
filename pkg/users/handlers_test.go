package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/acervobooks/acervo/pkg/binder"
	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labstack/echo/v4"
)

func newUsersTestContext(t *testing.T, method, path, payload string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandlerCreate_RequiresMatchingConfirmation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{userService: NewService(db, testBcryptCost)}

	payload := `{"name":"Ana Souza","phone":"11 99999-0001","email":"ana@example.com","password":"password123","password_confirmation":"password456"}`
	c, _ := newUsersTestContext(t, http.MethodPost, "/users", payload)

	err := h.create(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)

	// Nothing was written.
	count, err := h.userService.db.NewSelect().Table("users").Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestHandlerCreate_HidesPasswordHash(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{userService: NewService(db, testBcryptCost)}

	payload := `{"name":"Ana Souza","phone":"11 99999-0001","email":"ana@example.com","password":"password123","password_confirmation":"password123"}`
	c, rr := newUsersTestContext(t, http.MethodPost, "/users", payload)

	err := h.create(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "ana@example.com")
	assert.NotContains(t, rr.Body.String(), "password_hash")
	assert.NotContains(t, rr.Body.String(), "password123")
}

func TestHandlerUpdate_PartialFields(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{userService: NewService(db, testBcryptCost)}
	ctx := context.Background()

	user, err := h.userService.Create(ctx, CreateUserOptions{
		Name:     "Ana Souza",
		Phone:    "11 99999-0001",
		Email:    "ana@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	c, rr := newUsersTestContext(t, http.MethodPost, "/users/"+strconv.Itoa(user.ID), `{"phone":"11 98888-7777"}`)
	c.SetPath("/users/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(user.ID))

	err = h.update(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	updated, err := h.userService.Retrieve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "11 98888-7777", updated.Phone)
	assert.Equal(t, "Ana Souza", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)
}

func TestHandlerListLoans_ExposesOverdue(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{userService: NewService(db, testBcryptCost)}
	ctx := context.Background()

	user, err := h.userService.Create(ctx, CreateUserOptions{
		Name:     "Ana Souza",
		Phone:    "11 99999-0001",
		Email:    "ana@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	loan := createTestLoan(ctx, t, db, user.ID, time.Now().AddDate(0, 0, -30))
	loan.DueDate = time.Now().AddDate(0, 0, -10)
	_, err = db.NewUpdate().Model(loan).Column("due_date").WherePK().Exec(ctx)
	require.NoError(t, err)

	c, rr := newUsersTestContext(t, http.MethodGet, "/users/"+strconv.Itoa(user.ID)+"/loans", "")
	c.SetPath("/users/:id/loans")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(user.ID))

	err = h.listLoans(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"overdue":true`)
}
