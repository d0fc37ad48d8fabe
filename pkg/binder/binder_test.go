package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Name                 string `json:"name" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	DueDate              string `json:"due_date" validate:"omitempty,date"`
}

type testQuery struct {
	Limit  int     `query:"limit" default:"50" validate:"min=1,max=100"`
	Search *string `query:"search" validate:"omitempty,max=100"`
}

func newTestContext(t *testing.T, method, body string) echo.Context {
	t.Helper()

	e := echo.New()
	b, err := New()
	require.NoError(t, err)
	e.Binder = b

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/?search=ana", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestBindValidPayload(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, http.MethodPost, `{"name":"Ana","password":"password123","password_confirmation":"password123","due_date":"2026-09-14"}`)

	p := testPayload{}
	require.NoError(t, c.Bind(&p))
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "2026-09-14", p.DueDate)
}

func TestBindMismatchedConfirmation(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, http.MethodPost, `{"name":"Ana","password":"password123","password_confirmation":"different123"}`)

	err := c.Bind(&testPayload{})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Equal(t, `"password_confirmation" must match "password"`, codeErr.Message)
}

func TestBindBadDate(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, http.MethodPost, `{"name":"Ana","password":"password123","password_confirmation":"password123","due_date":"14/09/2026"}`)

	err := c.Bind(&testPayload{})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, `"due_date" should be in the format of YYYY-MM-DD`, codeErr.Message)
}

func TestBindUnknownField(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, http.MethodPost, `{"name":"Ana","password":"password123","password_confirmation":"password123","extra":true}`)

	err := c.Bind(&testPayload{})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, "unknown_parameter", codeErr.Code)
}

func TestBindQueryWithDefaults(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, http.MethodGet, "")

	q := testQuery{}
	require.NoError(t, c.Bind(&q))
	assert.Equal(t, 50, q.Limit)
	require.NotNil(t, q.Search)
	assert.Equal(t, "ana", *q.Search)
}

func TestBindEmptyBodyOnPost(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, http.MethodPost, "")
	// drop the query params so the request is genuinely empty
	c.Request().URL.RawQuery = ""

	err := c.Bind(&testPayload{})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, "empty_request_body", codeErr.Code)
}
