package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/acervobooks/acervo/pkg/binder"
	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestContext(t *testing.T, method, path, payload string) (echo.Context, *httptest.ResponseRecorder) {
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

func sessionCookieFrom(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == CookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", CookieName)
	return nil
}

func TestHandlerLogin_SetsSessionCookie(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret", testBcryptCost)
	h := &handler{authService: svc}
	ctx := context.Background()

	_, err := svc.CreateFirstUser(ctx, "Ana Souza", "11 99999-0001", "ana@example.com", "password123")
	require.NoError(t, err)

	c, rr := newAuthTestContext(t, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"password123"}`)
	err = h.login(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	cookie := sessionCookieFrom(t, rr)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	claims, err := svc.ValidateToken(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)

	// The hash never leaves the server.
	assert.NotContains(t, rr.Body.String(), "password_hash")
}

func TestHandlerLogin_BadCredentials(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret", testBcryptCost)
	h := &handler{authService: svc}
	ctx := context.Background()

	_, err := svc.CreateFirstUser(ctx, "Ana Souza", "11 99999-0001", "ana@example.com", "password123")
	require.NoError(t, err)

	c, _ := newAuthTestContext(t, http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"nope nope"}`)
	err = h.login(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnauthorized, codeErr.HTTPCode)
}

func TestHandlerLogout_ClearsCookie(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{authService: NewService(db, "test-secret", testBcryptCost)}

	c, rr := newAuthTestContext(t, http.MethodPost, "/auth/logout", "")
	err := h.logout(c)
	require.NoError(t, err)

	cookie := sessionCookieFrom(t, rr)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestHandlerStatus_ReportsSetupState(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret", testBcryptCost)
	h := &handler{authService: svc}
	ctx := context.Background()

	c, rr := newAuthTestContext(t, http.MethodGet, "/auth/status", "")
	err := h.status(c)
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), `"setup_complete":false`)

	_, err = svc.CreateFirstUser(ctx, "Ana Souza", "11 99999-0001", "ana@example.com", "password123")
	require.NoError(t, err)

	c, rr = newAuthTestContext(t, http.MethodGet, "/auth/status", "")
	err = h.status(c)
	require.NoError(t, err)
	assert.Contains(t, rr.Body.String(), `"setup_complete":true`)
}

func TestHandlerSetup_CreatesFirstUserAndLogsIn(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret", testBcryptCost)
	h := &handler{authService: svc}

	payload := `{"name":"Ana Souza","phone":"11 99999-0001","email":"ana@example.com","password":"password123","password_confirmation":"password123"}`
	c, rr := newAuthTestContext(t, http.MethodPost, "/auth/setup", payload)
	err := h.setup(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rr.Code)

	cookie := sessionCookieFrom(t, rr)
	assert.NotEmpty(t, cookie.Value)

	// A second setup attempt is forbidden.
	c, _ = newAuthTestContext(t, http.MethodPost, "/auth/setup", payload)
	err = h.setup(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusForbidden, codeErr.HTTPCode)
}

func TestHandlerSetup_MismatchedConfirmation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	h := &handler{authService: NewService(db, "test-secret", testBcryptCost)}

	payload := `{"name":"Ana Souza","phone":"11 99999-0001","email":"ana@example.com","password":"password123","password_confirmation":"password456"}`
	c, _ := newAuthTestContext(t, http.MethodPost, "/auth/setup", payload)
	err := h.setup(c)
	require.Error(t, err)
}

func TestHandlerMe(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret", testBcryptCost)
	h := &handler{authService: svc}
	ctx := context.Background()

	user, err := svc.CreateFirstUser(ctx, "Ana Souza", "11 99999-0001", "ana@example.com", "password123")
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	c, rr := newAuthTestContext(t, http.MethodGet, "/auth/me", "")
	c.Request().AddCookie(&http.Cookie{Name: CookieName, Value: token})

	err = h.me(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ana@example.com")

	// No cookie means no identity.
	c, rr = newAuthTestContext(t, http.MethodGet, "/auth/me", "")
	err = h.me(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
