package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/promolink/promolink-backend/pkg/enums"
)

// Offer is a supplier's time-boxed promotional listing. Offers are
// never hard deleted; requests keep referencing them through DeletedAt.
type Offer struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID      uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null"`
	Name            string              `gorm:"column:name;not null"`
	PromoPrice      decimal.Decimal     `gorm:"column:promo_price;type:numeric(10,2);not null"`
	DiscountPercent decimal.Decimal     `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	StartDate       time.Time           `gorm:"column:start_date;type:date;not null"`
	EndDate         time.Time           `gorm:"column:end_date;type:date;not null"`
	Category        enums.OfferCategory `gorm:"column:category;type:offer_category;not null"`
	Subcategory     *string             `gorm:"column:subcategory"`
	MarginPercent   *decimal.Decimal    `gorm:"column:margin_percent;type:numeric(5,2)"`
	Volume          *string             `gorm:"column:volume"`
	Conditions      *string             `gorm:"column:conditions"`
	Animation       *string             `gorm:"column:animation"`
	PhotoURL        *string             `gorm:"column:photo_url"`
	Status          enums.OfferStatus   `gorm:"column:status;type:offer_status;not null;default:'DRAFT'"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       *time.Time          `gorm:"column:deleted_at;type:timestamptz"`
}
