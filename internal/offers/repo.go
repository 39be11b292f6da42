package offers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
	"github.com/promolink/promolink-backend/pkg/pagination"
)

// Repository exposes persistence helpers for offers. Soft-deleted rows
// are invisible to every method except the expiry sweep.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	FindByIDAny(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	FindOwned(ctx context.Context, id, supplierID uuid.UUID) (*models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
	SoftDelete(ctx context.Context, id, supplierID uuid.UUID, now time.Time) (bool, error)
	List(ctx context.Context, params listOffersParams) ([]models.Offer, *pagination.Cursor, error)
	ListExpiredDueTx(tx *gorm.DB, today time.Time, limit int) ([]models.Offer, error)
	MarkExpiredTx(tx *gorm.DB, ids []uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listOffersParams struct {
	SupplierID *uuid.UUID
	Category   *enums.OfferCategory
	Status     *enums.OfferStatus
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// FindByIDAny looks the offer up regardless of soft-deletion. Requests
// keep referencing offers their supplier has since removed.
func (r *repositoryImpl) FindByIDAny(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *repositoryImpl) FindOwned(ctx context.Context, id, supplierID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Where("id = ? AND supplier_id = ? AND deleted_at IS NULL", id, supplierID).
		First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

func (r *repositoryImpl) Update(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

func (r *repositoryImpl) SoftDelete(ctx context.Context, id, supplierID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND supplier_id = ? AND deleted_at IS NULL", id, supplierID).
		UpdateColumn("deleted_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listOffersParams) ([]models.Offer, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Offer{}).Where("deleted_at IS NULL")
	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var offers []models.Offer
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&offers).Error; err != nil {
		return nil, nil, err
	}

	if len(offers) > normalized {
		offers = offers[:normalized]
		next := offers[normalized-1]
		return offers, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return offers, nil, nil
}

func (r *repositoryImpl) ListExpiredDueTx(tx *gorm.DB, today time.Time, limit int) ([]models.Offer, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var offers []models.Offer
	err := tx.
		Where("status = ? AND end_date < ? AND deleted_at IS NULL", enums.OfferStatusActive, today).
		Order("end_date ASC").
		Limit(limit).
		Find(&offers).Error
	return offers, err
}

func (r *repositoryImpl) MarkExpiredTx(tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, errors.New("transaction required")
	}
	if len(ids) == 0 {
		return 0, nil
	}
	result := tx.Model(&models.Offer{}).
		Where("id IN ? AND status = ?", ids, enums.OfferStatusActive).
		UpdateColumn("status", enums.OfferStatusExpired)
	return result.RowsAffected, result.Error
}
