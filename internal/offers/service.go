package offers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/promolink/promolink-backend/internal/suppliers"
	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
	pkgerrors "github.com/promolink/promolink-backend/pkg/errors"
	"github.com/promolink/promolink-backend/pkg/pagination"
)

// Service defines offer lifecycle operations.
type Service interface {
	Create(ctx context.Context, supplierUserID uuid.UUID, input CreateInput) (*models.Offer, error)
	Update(ctx context.Context, supplierUserID, offerID uuid.UUID, input UpdateInput) (*models.Offer, error)
	Delete(ctx context.Context, supplierUserID, offerID uuid.UUID) error
	Get(ctx context.Context, offerID uuid.UUID) (*Item, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListOwn(ctx context.Context, supplierUserID uuid.UUID, params ListParams) (*ListResult, error)
	CheckAvailability(ctx context.Context, offerID uuid.UUID) (*Availability, error)
}

type service struct {
	repo      Repository
	suppliers suppliers.Repository
	now       func() time.Time
}

// NewService wires offer dependencies.
func NewService(repo Repository, supplierRepo suppliers.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "offers repository required")
	}
	if supplierRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "suppliers repository required")
	}
	return &service{
		repo:      repo,
		suppliers: supplierRepo,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, supplierUserID uuid.UUID, input CreateInput) (*models.Offer, error) {
	supplier, err := s.resolveSupplier(ctx, supplierUserID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer category")
	}
	status := input.Status
	if status == "" {
		status = enums.OfferStatusDraft
	}
	if status != enums.OfferStatusDraft && status != enums.OfferStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer status must be DRAFT or ACTIVE")
	}
	if err := validatePricing(input.PromoPrice, input.DiscountPercent); err != nil {
		return nil, err
	}

	today := dateOnly(s.now().UTC())
	start := dateOnly(input.StartDate)
	end := dateOnly(input.EndDate)
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}
	if start.Before(today) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date must not be in the past")
	}

	offer := &models.Offer{
		SupplierID:      supplier.ID,
		Name:            name,
		PromoPrice:      input.PromoPrice,
		DiscountPercent: input.DiscountPercent,
		StartDate:       start,
		EndDate:         end,
		Category:        input.Category,
		Subcategory:     input.Subcategory,
		MarginPercent:   input.MarginPercent,
		Volume:          input.Volume,
		Conditions:      input.Conditions,
		Animation:       input.Animation,
		PhotoURL:        input.PhotoURL,
		Status:          status,
	}
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}
	return offer, nil
}

func (s *service) Update(ctx context.Context, supplierUserID, offerID uuid.UUID, input UpdateInput) (*models.Offer, error) {
	supplier, err := s.resolveSupplier(ctx, supplierUserID)
	if err != nil {
		return nil, err
	}

	offer, err := s.repo.FindOwned(ctx, offerID, supplier.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offre introuvable")
	}

	today := dateOnly(s.now().UTC())
	started := !dateOnly(offer.StartDate).After(today)

	if input.StartDate != nil || input.EndDate != nil {
		// Once the promotional window has opened it is frozen.
		if started {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer window cannot change after the offer has started")
		}
		newStart := dateOnly(offer.StartDate)
		if input.StartDate != nil {
			newStart = dateOnly(*input.StartDate)
		}
		newEnd := dateOnly(offer.EndDate)
		if input.EndDate != nil {
			newEnd = dateOnly(*input.EndDate)
		}
		if newStart.Before(today) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date must not be in the past")
		}
		if newEnd.Before(newStart) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
		}
		offer.StartDate = newStart
		offer.EndDate = newEnd
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer name is required")
		}
		offer.Name = name
	}
	if input.PromoPrice != nil {
		offer.PromoPrice = *input.PromoPrice
	}
	if input.DiscountPercent != nil {
		offer.DiscountPercent = *input.DiscountPercent
	}
	if input.PromoPrice != nil || input.DiscountPercent != nil {
		if err := validatePricing(offer.PromoPrice, offer.DiscountPercent); err != nil {
			return nil, err
		}
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer category")
		}
		offer.Category = *input.Category
	}
	if input.Status != nil {
		if *input.Status != enums.OfferStatusDraft && *input.Status != enums.OfferStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer status must be DRAFT or ACTIVE")
		}
		offer.Status = *input.Status
	}
	if input.Subcategory != nil {
		offer.Subcategory = input.Subcategory
	}
	if input.MarginPercent != nil {
		offer.MarginPercent = input.MarginPercent
	}
	if input.Volume != nil {
		offer.Volume = input.Volume
	}
	if input.Conditions != nil {
		offer.Conditions = input.Conditions
	}
	if input.Animation != nil {
		offer.Animation = input.Animation
	}
	if input.PhotoURL != nil {
		offer.PhotoURL = input.PhotoURL
	}

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer")
	}
	return offer, nil
}

func (s *service) Delete(ctx context.Context, supplierUserID, offerID uuid.UUID) error {
	supplier, err := s.resolveSupplier(ctx, supplierUserID)
	if err != nil {
		return err
	}

	deleted, err := s.repo.SoftDelete(ctx, offerID, supplier.ID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "offre introuvable")
	}
	return nil
}

func (s *service) Get(ctx context.Context, offerID uuid.UUID) (*Item, error) {
	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offre introuvable")
	}
	item := s.toItem(*offer)
	return &item, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, params)
}

func (s *service) ListOwn(ctx context.Context, supplierUserID uuid.UUID, params ListParams) (*ListResult, error) {
	supplier, err := s.resolveSupplier(ctx, supplierUserID)
	if err != nil {
		return nil, err
	}
	params.SupplierID = &supplier.ID
	return s.list(ctx, params)
}

func (s *service) list(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listOffersParams{
		SupplierID: params.SupplierID,
		Category:   params.Category,
		Status:     params.Status,
		Limit:      params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.toItem(row))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

func (s *service) CheckAvailability(ctx context.Context, offerID uuid.UUID) (*Availability, error) {
	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offre introuvable")
	}

	today := dateOnly(s.now().UTC())
	if offer.Status != enums.OfferStatusActive || dateOnly(offer.EndDate).Before(today) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cette offre n'est plus disponible")
	}

	return &Availability{
		OfferID:    offer.ID,
		SupplierID: offer.SupplierID,
		Name:       offer.Name,
	}, nil
}

func (s *service) resolveSupplier(ctx context.Context, supplierUserID uuid.UUID) (*models.Supplier, error) {
	if supplierUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	supplier, err := s.suppliers.FindByUserID(ctx, supplierUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve supplier profile")
	}
	if supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier profile required")
	}
	return supplier, nil
}

func (s *service) toItem(offer models.Offer) Item {
	display := offer.Status
	if display != enums.OfferStatusExpired && dateOnly(offer.EndDate).Before(dateOnly(s.now().UTC())) {
		display = enums.OfferStatusExpired
	}
	return Item{Offer: offer, DisplayStatus: display}
}

func validatePricing(price, discount decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "promo price must be positive")
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
