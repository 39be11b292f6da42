package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/promolink/promolink-backend/pkg/enums"
)

// Request is a store's INFO or ORDER inquiry against an offer.
// SupplierID is denormalized from the offer at creation time and never
// taken from client input. The unique index on (store_id, offer_id,
// type) is the authoritative duplicate guard under concurrency.
type Request struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID    uuid.UUID           `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_requests_store_offer_type,priority:1"`
	OfferID    uuid.UUID           `gorm:"column:offer_id;type:uuid;not null;uniqueIndex:ux_requests_store_offer_type,priority:2"`
	SupplierID uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null"`
	Type       enums.RequestType   `gorm:"column:type;type:request_type;not null;uniqueIndex:ux_requests_store_offer_type,priority:3"`
	Status     enums.RequestStatus `gorm:"column:status;type:request_status;not null;default:'PENDING'"`
	Message    *string             `gorm:"column:message;type:text"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
