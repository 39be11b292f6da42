package offers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
)

// CreateInput carries the validated fields for a new offer.
type CreateInput struct {
	Name            string
	PromoPrice      decimal.Decimal
	DiscountPercent decimal.Decimal
	StartDate       time.Time
	EndDate         time.Time
	Category        enums.OfferCategory
	Subcategory     *string
	MarginPercent   *decimal.Decimal
	Volume          *string
	Conditions      *string
	Animation       *string
	PhotoURL        *string
	Status          enums.OfferStatus
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name            *string
	PromoPrice      *decimal.Decimal
	DiscountPercent *decimal.Decimal
	StartDate       *time.Time
	EndDate         *time.Time
	Category        *enums.OfferCategory
	Subcategory     *string
	MarginPercent   *decimal.Decimal
	Volume          *string
	Conditions      *string
	Animation       *string
	PhotoURL        *string
	Status          *enums.OfferStatus
}

// ListParams configures offer listing.
type ListParams struct {
	SupplierID *uuid.UUID
	Category   *enums.OfferCategory
	Status     *enums.OfferStatus
	Limit      int
	Cursor     string
}

// Item is an offer plus its derived display status; a stored ACTIVE or
// DRAFT offer whose window has closed displays as EXPIRED.
type Item struct {
	models.Offer
	DisplayStatus enums.OfferStatus `json:"display_status"`
}

// ListResult wraps a page of offers and the next-page cursor.
type ListResult struct {
	Items  []Item `json:"items"`
	Cursor string `json:"cursor"`
}

// Availability is the minimal projection request creation needs.
type Availability struct {
	OfferID    uuid.UUID
	SupplierID uuid.UUID
	Name       string
}
