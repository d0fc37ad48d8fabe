package dashboard

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/acervobooks/acervo/pkg/migrations"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

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

func TestServiceCounts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	counts, err := svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Counts{}, counts)

	user := &models.User{Name: "Ana Souza", Phone: "11 99999-0001", Email: "ana@example.com", PasswordHash: "x"}
	_, err = db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	title := &models.Title{Name: "Dom Casmurro", Author: "Machado de Assis"}
	_, err = db.NewInsert().Model(title).Exec(ctx)
	require.NoError(t, err)

	first := &models.Copy{TitleID: title.ID, AcquisitionDate: time.Now(), Available: false}
	_, err = db.NewInsert().Model(first).Exec(ctx)
	require.NoError(t, err)

	second := &models.Copy{TitleID: title.ID, AcquisitionDate: time.Now(), Available: false}
	_, err = db.NewInsert().Model(second).Exec(ctx)
	require.NoError(t, err)

	// One open loan past due, one open loan on time, one returned overdue
	// loan that must not count.
	now := time.Now()
	returnedAt := now.Add(-time.Hour)
	loans := []*models.Loan{
		{UserID: user.ID, CopyID: first.ID, LoanedAt: now.AddDate(0, 0, -30), DueDate: now.AddDate(0, 0, -15)},
		{UserID: user.ID, CopyID: second.ID, LoanedAt: now, DueDate: now.AddDate(0, 0, 15)},
		{UserID: user.ID, CopyID: second.ID, LoanedAt: now.AddDate(0, 0, -60), DueDate: now.AddDate(0, 0, -45), ReturnedAt: &returnedAt},
	}
	for _, loan := range loans {
		_, err = db.NewInsert().Model(loan).Exec(ctx)
		require.NoError(t, err)
	}

	counts, err = svc.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Counts{
		Users:        1,
		Titles:       1,
		Copies:       2,
		ActiveLoans:  2,
		OverdueLoans: 1,
	}, counts)
}
