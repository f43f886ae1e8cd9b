package repositories

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/rohits-web03/codedrop/internal/models"
)

var (
	ErrTransferNotFound = errors.New("transfer not found")
	ErrCodeConflict     = errors.New("transfer code already in use")
)

// TransferRepository is the metadata store for transfers.
type TransferRepository interface {
	Create(ctx context.Context, transfer *models.Transfer) error
	FindByCode(ctx context.Context, code string) (*models.Transfer, error)
	// CodeExists counts every row holding code, expired ones included.
	CodeExists(ctx context.Context, code string) (bool, error)
	ListExpired(ctx context.Context, cutoff time.Time) ([]models.Transfer, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteByCodes(ctx context.Context, codes []string) (int64, error)
}

type gormTransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &gormTransferRepository{db: db}
}

func (r *gormTransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	transfer.ExpiresAt = transfer.ExpiresAt.UTC()
	if err := r.db.WithContext(ctx).Create(transfer).Error; err != nil {
		if isKeyConflict(err) {
			return errors.Wrap(ErrCodeConflict, transfer.Code)
		}
		return errors.Wrap(err, "insert transfer")
	}
	return nil
}

func (r *gormTransferRepository) FindByCode(ctx context.Context, code string) (*models.Transfer, error) {
	var transfer models.Transfer
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&transfer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, errors.Wrap(err, "select transfer by code")
	}
	return &transfer, nil
}

func (r *gormTransferRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Transfer{}).Where("code = ?", code).Count(&n).Error; err != nil {
		return false, errors.Wrap(err, "count transfers by code")
	}
	return n > 0, nil
}

func (r *gormTransferRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]models.Transfer, error) {
	var transfers []models.Transfer
	err := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff.UTC()).
		Order("expires_at").
		Find(&transfers).Error
	if err != nil {
		return nil, errors.Wrap(err, "select expired transfers")
	}
	return transfers, nil
}

func (r *gormTransferRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", cutoff.UTC()).Delete(&models.Transfer{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete expired transfers")
	}
	return res.RowsAffected, nil
}

func (r *gormTransferRepository) DeleteByCodes(ctx context.Context, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("code IN ?", codes).Delete(&models.Transfer{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "delete transfers by code")
	}
	return res.RowsAffected, nil
}

func isKeyConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
