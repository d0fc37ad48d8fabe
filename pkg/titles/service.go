package titles

import (
	"context"
	"strings"
	"time"

	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles catalog operations on titles.
type Service struct {
	db *bun.DB
}

// NewService creates a new titles service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// CreateTitleOptions contains options for creating a title.
type CreateTitleOptions struct {
	Name     string
	Author   string
	CoAuthor *string
}

// Create creates a new title.
func (s *Service) Create(ctx context.Context, opts CreateTitleOptions) (*models.Title, error) {
	title := &models.Title{
		Name:     opts.Name,
		Author:   opts.Author,
		CoAuthor: opts.CoAuthor,
	}

	_, err := s.db.NewInsert().Model(title).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return s.Retrieve(ctx, title.ID)
}

// Retrieve gets a title by ID.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.Title, error) {
	title := &models.Title{}
	err := s.db.NewSelect().
		Model(title).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.NotFound("Title")
	}
	return title, nil
}

// ListOptions contains options for listing titles.
type ListOptions struct {
	Search *string
	Limit  int
	Offset int
}

// List returns a paginated list of titles. Search matches a case-insensitive
// substring of name, author, or co-author.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*models.Title, int, error) {
	titles := []*models.Title{}

	query := s.db.NewSelect().
		Model(&titles).
		Order("t.name ASC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(*opts.Search) + "%"
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(t.name) LIKE ?", search).
				WhereOr("LOWER(t.author) LIKE ?", search).
				WhereOr("LOWER(t.co_author) LIKE ?", search)
		})
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

	return titles, total, nil
}

// Update updates the given columns of a title.
func (s *Service) Update(ctx context.Context, title *models.Title, columns []string) error {
	if len(columns) == 0 {
		return nil
	}

	title.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")
	_, err := s.db.NewUpdate().
		Model(title).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Delete removes a title. Its copies, and their loans, go with it via the
// foreign key cascade.
func (s *Service) Delete(ctx context.Context, id int) error {
	title, err := s.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.NewDelete().
		Model(title).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ListCopies returns the copies of a title.
func (s *Service) ListCopies(ctx context.Context, titleID int) ([]*models.Copy, error) {
	if _, err := s.Retrieve(ctx, titleID); err != nil {
		return nil, err
	}

	copies := []*models.Copy{}
	err := s.db.NewSelect().
		Model(&copies).
		Where("c.title_id = ?", titleID).
		Order("c.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return copies, nil
}
