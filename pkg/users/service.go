package users

import (
	"context"
	"strings"
	"time"

	"github.com/acervobooks/acervo/pkg/auth"
	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles member directory operations.
type Service struct {
	db         *bun.DB
	bcryptCost int
}

// NewService creates a new users service.
func NewService(db *bun.DB, bcryptCost int) *Service {
	return &Service{db: db, bcryptCost: bcryptCost}
}

// CreateUserOptions contains options for creating a user.
type CreateUserOptions struct {
	Name     string
	Phone    string
	Email    string
	Password string
}

// Create creates a new user.
func (s *Service) Create(ctx context.Context, opts CreateUserOptions) (*models.User, error) {
	exists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ? COLLATE NOCASE", opts.Email).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.ValidationError("Email already exists")
	}

	hashedPassword, err := auth.HashPassword(opts.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         opts.Name,
		Phone:        opts.Phone,
		Email:        opts.Email,
		PasswordHash: hashedPassword,
	}

	_, err = s.db.NewInsert().Model(user).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return s.Retrieve(ctx, user.ID)
}

// Retrieve gets a user by ID.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.NotFound("User")
	}
	return user, nil
}

// ListOptions contains options for listing users.
type ListOptions struct {
	Search *string
	Limit  int
	Offset int
}

// List returns a paginated list of users. Search matches a case-insensitive
// substring of name, email, or phone.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*models.User, int, error) {
	users := []*models.User{}

	query := s.db.NewSelect().
		Model(&users).
		Order("u.name ASC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(*opts.Search) + "%"
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(u.name) LIKE ?", search).
				WhereOr("LOWER(u.email) LIKE ?", search).
				WhereOr("LOWER(u.phone) LIKE ?", search)
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

	return users, total, nil
}

// Update updates the given columns of a user. The password hash is never
// among them.
func (s *Service) Update(ctx context.Context, user *models.User, columns []string) error {
	if len(columns) == 0 {
		return nil
	}

	// Duplicate-email check excludes the user being updated.
	exists, err := s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("email = ? COLLATE NOCASE", user.Email).
		Where("id != ?", user.ID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errcodes.ValidationError("Email already exists")
	}

	user.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")
	_, err = s.db.NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// VerifyPassword checks if the password is correct for a user.
func (s *Service) VerifyPassword(ctx context.Context, userID int, password string) (bool, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Column("password_hash").
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}

	return auth.CheckPassword(password, user.PasswordHash), nil
}

// Delete removes a user. Their loan history goes with them via the foreign
// key cascade.
func (s *Service) Delete(ctx context.Context, id int) error {
	user, err := s.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.NewDelete().
		Model(user).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ListLoans returns a user's loans, most recent first.
func (s *Service) ListLoans(ctx context.Context, userID int) ([]*models.Loan, error) {
	if _, err := s.Retrieve(ctx, userID); err != nil {
		return nil, err
	}

	loans := []*models.Loan{}
	err := s.db.NewSelect().
		Model(&loans).
		Relation("Copy").
		Relation("Copy.Title").
		Where("l.user_id = ?", userID).
		Order("l.loaned_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loans, nil
}
