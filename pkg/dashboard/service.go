package dashboard

import (
	"context"
	"time"

	"github.com/acervobooks/acervo/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service computes the collection overview.
type Service struct {
	db *bun.DB
}

// NewService creates a new dashboard service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Counts is the collection overview: how many of everything, plus how many
// loans are open and how many of those are past due.
type Counts struct {
	Users        int `json:"users"`
	Titles       int `json:"titles"`
	Copies       int `json:"copies"`
	ActiveLoans  int `json:"active_loans"`
	OverdueLoans int `json:"overdue_loans"`
}

// Counts returns the overview. Overdue is evaluated against today at call
// time, same as the loan list filter.
func (s *Service) Counts(ctx context.Context) (*Counts, error) {
	counts := &Counts{}

	var err error
	counts.Users, err = s.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counts.Titles, err = s.db.NewSelect().Model((*models.Title)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counts.Copies, err = s.db.NewSelect().Model((*models.Copy)(nil)).Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	counts.ActiveLoans, err = s.db.NewSelect().
		Model((*models.Loan)(nil)).
		Where("returned_at IS NULL").
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	counts.OverdueLoans, err = s.db.NewSelect().
		Model((*models.Loan)(nil)).
		Where("returned_at IS NULL").
		Where("date(due_date) < ?", today).
		Count(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return counts, nil
}
