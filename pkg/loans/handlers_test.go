package loans

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
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoansTestContext(t *testing.T, method, path, payload string) (echo.Context, *httptest.ResponseRecorder) {
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

func TestHandlerCreate_DefaultsDueDate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{loanService: NewService(db, testLoanPeriodDays)}
	ctx := context.Background()

	f := newFixture(ctx, t, db, "Ana Souza", "ana@example.com", "Dom Casmurro")

	payload := `{"user_id":` + strconv.Itoa(f.user.ID) + `,"copy_id":` + strconv.Itoa(f.copy.ID) + `}`
	c, rr := newLoansTestContext(t, http.MethodPost, "/loans", payload)

	err := h.create(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rr.Code)

	wantDue := time.Now().AddDate(0, 0, testLoanPeriodDays).Format("2006-01-02")
	assert.Contains(t, rr.Body.String(), wantDue)
	assert.Contains(t, rr.Body.String(), `"overdue":false`)
}

func TestHandlerCreate_ConflictOnUnavailableCopy(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{loanService: NewService(db, testLoanPeriodDays)}
	ctx := context.Background()

	f := newFixture(ctx, t, db, "Ana Souza", "ana@example.com", "Dom Casmurro")

	_, err := h.loanService.Create(ctx, CreateLoanOptions{UserID: f.user.ID, CopyID: f.copy.ID})
	require.NoError(t, err)

	payload := `{"user_id":` + strconv.Itoa(f.user.ID) + `,"copy_id":` + strconv.Itoa(f.copy.ID) + `}`
	c, _ := newLoansTestContext(t, http.MethodPost, "/loans", payload)

	err = h.create(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusConflict, codeErr.HTTPCode)
}

func TestHandlerReturn_AlreadyReturnedWarns(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{loanService: NewService(db, testLoanPeriodDays)}
	ctx := context.Background()

	f := newFixture(ctx, t, db, "Ana Souza", "ana@example.com", "Dom Casmurro")

	loan, err := h.loanService.Create(ctx, CreateLoanOptions{UserID: f.user.ID, CopyID: f.copy.ID})
	require.NoError(t, err)

	_, err = h.loanService.Return(ctx, loan.ID)
	require.NoError(t, err)

	c, rr := newLoansTestContext(t, http.MethodPost, "/loans/"+strconv.Itoa(loan.ID)+"/return", "")
	c.SetPath("/loans/:id/return")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(loan.ID))

	err = h.returnLoan(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Loan was already returned")

	// Still exactly one loan, still returned.
	got, err := h.loanService.Retrieve(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, got.Returned())
}

func TestHandlerOverdueIsDerivedInJSON(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{loanService: NewService(db, testLoanPeriodDays)}
	ctx := context.Background()

	f := newFixture(ctx, t, db, "Ana Souza", "ana@example.com", "Dom Casmurro")

	pastDue := time.Now().AddDate(0, 0, -10)
	loan, err := h.loanService.Create(ctx, CreateLoanOptions{UserID: f.user.ID, CopyID: f.copy.ID, DueDate: &pastDue})
	require.NoError(t, err)

	c, rr := newLoansTestContext(t, http.MethodGet, "/loans/"+strconv.Itoa(loan.ID), "")
	c.SetPath("/loans/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(loan.ID))

	err = h.retrieve(c)
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), `"overdue":true`)

	// Returning it clears the flag even though the due date is in the past.
	_, err = h.loanService.Return(ctx, loan.ID)
	require.NoError(t, err)

	c, rr = newLoansTestContext(t, http.MethodGet, "/loans/"+strconv.Itoa(loan.ID), "")
	c.SetPath("/loans/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(loan.ID))

	err = h.retrieve(c)
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), `"overdue":false`)
}

func TestHandlerUpdate_RejectsBadDate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{loanService: NewService(db, testLoanPeriodDays)}
	ctx := context.Background()

	f := newFixture(ctx, t, db, "Ana Souza", "ana@example.com", "Dom Casmurro")

	loan, err := h.loanService.Create(ctx, CreateLoanOptions{UserID: f.user.ID, CopyID: f.copy.ID})
	require.NoError(t, err)

	c, _ := newLoansTestContext(t, http.MethodPost, "/loans/"+strconv.Itoa(loan.ID), `{"due_date":"junk"}`)
	c.SetPath("/loans/:id")
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(loan.ID))

	err = h.update(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
}
