package requests

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
	"github.com/promolink/promolink-backend/pkg/pagination"
)

// DedupConstraint is the unique index guarding one request per
// (store, offer, type). Insert races resolve here, not in Go.
const DedupConstraint = "ux_requests_store_offer_type"

// Repository exposes persistence helpers for requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.Request) error
	FindOwnedBySupplier(ctx context.Context, id, supplierID uuid.UUID) (*models.Request, error)
	ExistsDuplicate(ctx context.Context, storeID, offerID uuid.UUID, requestType enums.RequestType) (bool, error)
	MarkTreated(ctx context.Context, id uuid.UUID) (bool, error)
	ListBySupplier(ctx context.Context, supplierID uuid.UUID, params listRequestsParams) ([]models.Request, *pagination.Cursor, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params listRequestsParams) ([]models.Request, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a requests repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listRequestsParams struct {
	Status *enums.RequestStatus
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, request *models.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repositoryImpl) FindOwnedBySupplier(ctx context.Context, id, supplierID uuid.UUID) (*models.Request, error) {
	var request models.Request
	err := r.db.WithContext(ctx).
		Where("id = ? AND supplier_id = ?", id, supplierID).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *repositoryImpl) ExistsDuplicate(ctx context.Context, storeID, offerID uuid.UUID, requestType enums.RequestType) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("store_id = ? AND offer_id = ? AND type = ?", storeID, offerID, requestType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkTreated flips PENDING to TREATED. Zero rows affected means a
// concurrent treat already won; the caller maps that to already-treated.
func (r *repositoryImpl) MarkTreated(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("id = ? AND status = ?", id, enums.RequestStatusPending).
		UpdateColumn("status", enums.RequestStatusTreated)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) ListBySupplier(ctx context.Context, supplierID uuid.UUID, params listRequestsParams) ([]models.Request, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Request{}).Where("supplier_id = ?", supplierID)
	return r.list(query, params)
}

func (r *repositoryImpl) ListByStore(ctx context.Context, storeID uuid.UUID, params listRequestsParams) ([]models.Request, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Request{}).Where("store_id = ?", storeID)
	return r.list(query, params)
}

func (r *repositoryImpl) list(query *gorm.DB, params listRequestsParams) ([]models.Request, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var requests []models.Request
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&requests).Error; err != nil {
		return nil, nil, err
	}

	if len(requests) > normalized {
		requests = requests[:normalized]
		next := requests[normalized-1]
		return requests, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return requests, nil, nil
}
