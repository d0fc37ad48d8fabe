package loans

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles the loan ledger.
type Service struct {
	db             *bun.DB
	loanPeriodDays int
}

// NewService creates a new loans service. loanPeriodDays is the default loan
// length applied when a checkout doesn't name a due date.
func NewService(db *bun.DB, loanPeriodDays int) *Service {
	return &Service{db: db, loanPeriodDays: loanPeriodDays}
}

// CreateLoanOptions contains options for checking out a copy.
type CreateLoanOptions struct {
	UserID  int
	CopyID  int
	DueDate *time.Time
}

// Create checks a copy out to a user. The copy is claimed with a conditional
// update inside the transaction, so two concurrent checkouts of the same copy
// cannot both succeed: the loser sees zero rows flipped and gets a conflict,
// with no partial writes left behind.
func (s *Service) Create(ctx context.Context, opts CreateLoanOptions) (*models.Loan, error) {
	userExists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", opts.UserID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !userExists {
		return nil, errcodes.NotFound("User")
	}

	copyExists, err := s.db.NewSelect().
		Model((*models.Copy)(nil)).
		Where("id = ?", opts.CopyID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !copyExists {
		return nil, errcodes.NotFound("Copy")
	}

	now := time.Now()
	dueDate := now.AddDate(0, 0, s.loanPeriodDays)
	if opts.DueDate != nil {
		dueDate = *opts.DueDate
	}

	loan := &models.Loan{
		UserID:   opts.UserID,
		CopyID:   opts.CopyID,
		LoanedAt: now,
		DueDate:  dueDate,
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Copy)(nil)).
			Set("available = ?", false).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", opts.CopyID).
			Where("available = ?", true).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if affected == 0 {
			return errcodes.Conflict("Copy is not available")
		}

		_, err = tx.NewInsert().Model(loan).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Retrieve(ctx, loan.ID)
}

// ErrAlreadyReturned signals a return of a loan that is already closed. The
// handler turns it into a warning, not an error response.
var ErrAlreadyReturned = errors.New("loan already returned")

// Return closes a loan: stamps returned_at and puts the copy back in
// circulation, in one transaction. Returning an already-closed loan reports
// ErrAlreadyReturned and changes nothing, so availability never double-flips.
func (s *Service) Return(ctx context.Context, id int) (*models.Loan, error) {
	loan, err := s.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.Returned() {
		return loan, ErrAlreadyReturned
	}

	now := time.Now()
	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Loan)(nil)).
			Set("returned_at = ?", now).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", id).
			Where("returned_at IS NULL").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return errors.WithStack(err)
		}
		if affected == 0 {
			// Lost a race with another return of the same loan.
			return ErrAlreadyReturned
		}

		_, err = tx.NewUpdate().
			Model((*models.Copy)(nil)).
			Set("available = ?", true).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", loan.CopyID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyReturned) {
			loan, retrieveErr := s.Retrieve(ctx, id)
			if retrieveErr != nil {
				return nil, retrieveErr
			}
			return loan, ErrAlreadyReturned
		}
		return nil, err
	}

	return s.Retrieve(ctx, id)
}

// Retrieve gets a loan by ID, with its user, copy, and the copy's title.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.Loan, error) {
	loan := &models.Loan{}
	err := s.db.NewSelect().
		Model(loan).
		Relation("User").
		Relation("Copy").
		Relation("Copy.Title").
		Where("l.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.NotFound("Loan")
	}
	return loan, nil
}

// ListOptions contains options for listing loans.
type ListOptions struct {
	Search *string
	Status *string
	Limit  int
	Offset int
}

// List returns a paginated list of loans, most recent first. Search matches a
// case-insensitive substring of the borrower's name or the title's name.
// Status narrows to active, returned, or overdue loans; overdue is evaluated
// against today, not stored.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*models.Loan, int, error) {
	loans := []*models.Loan{}

	query := s.db.NewSelect().
		Model(&loans).
		Relation("User").
		Relation("Copy").
		Relation("Copy.Title").
		Order("l.loaned_at DESC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(*opts.Search) + "%"
		query = query.
			Join("JOIN users AS u ON u.id = l.user_id").
			Join("JOIN copies AS c ON c.id = l.copy_id").
			Join("JOIN titles AS t ON t.id = c.title_id").
			WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("LOWER(u.name) LIKE ?", search).
					WhereOr("LOWER(t.name) LIKE ?", search)
			})
	}

	if opts.Status != nil && *opts.Status != "" {
		today := time.Now().UTC().Format("2006-01-02")
		switch *opts.Status {
		case models.LoanStatusActive:
			query = query.Where("l.returned_at IS NULL")
		case models.LoanStatusReturned:
			query = query.Where("l.returned_at IS NOT NULL")
		case models.LoanStatusOverdue:
			query = query.
				Where("l.returned_at IS NULL").
				Where("date(l.due_date) < ?", today)
		default:
			return nil, 0, errcodes.ValidationError("status must be one of active, returned, overdue")
		}
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	total, err := query.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return loans, total, nil
}

// UpdateDueDate moves a loan's due date. Nothing else on a loan is editable
// after checkout.
func (s *Service) UpdateDueDate(ctx context.Context, id int, dueDate time.Time) (*models.Loan, error) {
	loan, err := s.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	loan.DueDate = dueDate
	loan.UpdatedAt = time.Now()
	_, err = s.db.NewUpdate().
		Model(loan).
		Column("due_date", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return s.Retrieve(ctx, id)
}

// Delete removes a loan record. The copy's availability is left alone: an
// open loan's copy stays checked out even though the record of who has it is
// gone.
func (s *Service) Delete(ctx context.Context, id int) error {
	loan, err := s.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.NewDelete().
		Model(loan).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
