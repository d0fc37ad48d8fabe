package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const testBcryptCost = 4

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	sqldb.SetMaxOpenConns(1)
	_, err = sqldb.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestServiceAuthenticate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret", testBcryptCost)
	ctx := context.Background()

	created, err := svc.CreateFirstUser(ctx, "Ana Souza", "11 99999-0001", "ana@example.com", "password123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "ana@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// Email matching is case-insensitive.
	_, err = svc.Authenticate(ctx, "ANA@EXAMPLE.COM", "password123")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrongpassword")
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "unauthorized", codeErr.Code)

	// An unknown email gets the same message as a bad password.
	_, err = svc.Authenticate(ctx, "nobody@example.com", "password123")
	require.Error(t, err)
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "Invalid email or password", codeErr.Message)
}

func TestServiceTokenRoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret", testBcryptCost)
	ctx := context.Background()

	user, err := svc.CreateFirstUser(ctx, "Ana Souza", "11 99999-0001", "ana@example.com", "password123")
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)

	// A token signed with another secret is rejected.
	other := NewService(db, "other-secret", testBcryptCost)
	_, err = other.ValidateToken(token)
	require.Error(t, err)

	_, err = svc.ValidateToken("garbage")
	require.Error(t, err)
}

func TestServiceCreateFirstUser_OnlyWhileEmpty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret", testBcryptCost)
	ctx := context.Background()

	count, err := svc.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = svc.CreateFirstUser(ctx, "Ana Souza", "11 99999-0001", "ana@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.CreateFirstUser(ctx, "Bruno Castro", "11 99999-0003", "bruno@example.com", "password123")
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "forbidden", codeErr.Code)

	count, err = svc.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
