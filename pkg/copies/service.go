package copies

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/acervobooks/acervo/pkg/errcodes"
	"github.com/acervobooks/acervo/pkg/models"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/uptrace/bun"
)

// Service handles operations on physical copies.
type Service struct {
	db         *bun.DB
	qrCodeSize int
}

// NewService creates a new copies service. qrCodeSize is the PNG edge length
// in pixels.
func NewService(db *bun.DB, qrCodeSize int) *Service {
	return &Service{db: db, qrCodeSize: qrCodeSize}
}

// CreateCopyOptions contains options for creating a copy.
type CreateCopyOptions struct {
	TitleID         int
	AcquisitionDate time.Time
}

// Create registers a new copy of a title. New copies start out available.
func (s *Service) Create(ctx context.Context, opts CreateCopyOptions) (*models.Copy, error) {
	title := &models.Title{}
	err := s.db.NewSelect().
		Model(title).
		Where("t.id = ?", opts.TitleID).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.NotFound("Title")
	}

	copyRecord := &models.Copy{
		TitleID:         opts.TitleID,
		AcquisitionDate: opts.AcquisitionDate,
		Available:       true,
	}

	_, err = s.db.NewInsert().Model(copyRecord).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// The QR payload includes the copy ID, so it can only be generated after
	// the insert.
	if err := s.ensureQRCode(ctx, copyRecord, title); err != nil {
		return nil, err
	}

	return s.Retrieve(ctx, copyRecord.ID)
}

// ensureQRCode generates and stores the copy's QR code if it doesn't have one
// yet. An existing code is never regenerated, so printed labels stay valid.
func (s *Service) ensureQRCode(ctx context.Context, copyRecord *models.Copy, title *models.Title) error {
	if copyRecord.QRCode != "" {
		return nil
	}

	text := fmt.Sprintf("Copy-%d-%s", copyRecord.ID, title.Name)
	png, err := qrcode.Encode(text, qrcode.Medium, s.qrCodeSize)
	if err != nil {
		return errors.WithStack(err)
	}

	copyRecord.QRCode = base64.StdEncoding.EncodeToString(png)
	copyRecord.UpdatedAt = time.Now()

	_, err = s.db.NewUpdate().
		Model(copyRecord).
		Column("qr_code", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Retrieve gets a copy by ID, with its title.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.Copy, error) {
	copyRecord := &models.Copy{}
	err := s.db.NewSelect().
		Model(copyRecord).
		Relation("Title").
		Where("c.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, errcodes.NotFound("Copy")
	}
	return copyRecord, nil
}

// QRCodePNG returns the copy's QR code as raw PNG bytes, generating it first
// if the stored code is empty.
func (s *Service) QRCodePNG(ctx context.Context, id int) ([]byte, error) {
	copyRecord, err := s.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	if copyRecord.QRCode == "" {
		if err := s.ensureQRCode(ctx, copyRecord, copyRecord.Title); err != nil {
			return nil, err
		}
	}

	png, err := base64.StdEncoding.DecodeString(copyRecord.QRCode)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return png, nil
}

// ListOptions contains options for listing copies.
type ListOptions struct {
	Search    *string
	Available *bool
	Limit     int
	Offset    int
}

// List returns a paginated list of copies. Search matches a case-insensitive
// substring of the owning title's name or author. Available narrows to copies
// that can be loaned out.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*models.Copy, int, error) {
	copies := []*models.Copy{}

	query := s.db.NewSelect().
		Model(&copies).
		Relation("Title").
		Order("c.id ASC")

	if opts.Search != nil && *opts.Search != "" {
		search := "%" + strings.ToLower(*opts.Search) + "%"
		query = query.
			Join("JOIN titles AS t ON t.id = c.title_id").
			WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("LOWER(t.name) LIKE ?", search).
					WhereOr("LOWER(t.author) LIKE ?", search)
			})
	}
	if opts.Available != nil {
		query = query.Where("c.available = ?", *opts.Available)
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

	return copies, total, nil
}

// Update updates the given columns of a copy. Moving a copy to another title
// revalidates the target.
func (s *Service) Update(ctx context.Context, copyRecord *models.Copy, columns []string) error {
	if len(columns) == 0 {
		return nil
	}

	exists, err := s.db.NewSelect().
		Model((*models.Title)(nil)).
		Where("id = ?", copyRecord.TitleID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.NotFound("Title")
	}

	copyRecord.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")
	_, err = s.db.NewUpdate().
		Model(copyRecord).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Delete removes a copy. Its loan history goes with it via the foreign key
// cascade.
func (s *Service) Delete(ctx context.Context, id int) error {
	copyRecord, err := s.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.NewDelete().
		Model(copyRecord).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ListLoans returns a copy's loans, most recent first.
func (s *Service) ListLoans(ctx context.Context, copyID int) ([]*models.Loan, error) {
	if _, err := s.Retrieve(ctx, copyID); err != nil {
		return nil, err
	}

	loans := []*models.Loan{}
	err := s.db.NewSelect().
		Model(&loans).
		Relation("User").
		Where("l.copy_id = ?", copyID).
		Order("l.loaned_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loans, nil
}
