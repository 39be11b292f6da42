package payloads

import (
	"github.com/google/uuid"
	"github.com/promolink/promolink-backend/pkg/enums"
)

// RequestCreatedEvent signals a store sent a new request on an offer.
// Display fields are denormalized at emit time so the consumer can
// build the email and realtime payload without extra lookups.
type RequestCreatedEvent struct {
	RequestID      uuid.UUID         `json:"request_id"`
	RequestType    enums.RequestType `json:"request_type"`
	OfferID        uuid.UUID         `json:"offer_id"`
	OfferName      string            `json:"offer_name"`
	StoreID        uuid.UUID         `json:"store_id"`
	StoreName      string            `json:"store_name"`
	SupplierID     uuid.UUID         `json:"supplier_id"`
	SupplierUserID uuid.UUID         `json:"supplier_user_id"`
	Message        *string           `json:"message,omitempty"`
}

// OfferExpiredEvent is emitted by the expiry sweep when an active offer
// passes its end date.
type OfferExpiredEvent struct {
	OfferID    uuid.UUID `json:"offer_id"`
	OfferName  string    `json:"offer_name"`
	SupplierID uuid.UUID `json:"supplier_id"`
	EndDate    string    `json:"end_date"`
}

// RequestTreatedEvent is emitted when a supplier marks a request treated.
type RequestTreatedEvent struct {
	RequestID    uuid.UUID         `json:"request_id"`
	RequestType  enums.RequestType `json:"request_type"`
	OfferID      uuid.UUID         `json:"offer_id"`
	OfferName    string            `json:"offer_name"`
	SupplierID   uuid.UUID         `json:"supplier_id"`
	SupplierName string            `json:"supplier_name"`
	StoreID      uuid.UUID         `json:"store_id"`
	StoreUserID  uuid.UUID         `json:"store_user_id"`
}
