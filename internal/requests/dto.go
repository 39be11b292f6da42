package requests

import (
	"github.com/google/uuid"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
)

// CreateInput carries a store's request against an offer. StoreUserID
// is the authenticated principal; the store profile is resolved from it.
type CreateInput struct {
	StoreUserID uuid.UUID
	OfferID     uuid.UUID
	Type        enums.RequestType
	Message     *string
}

// CreateResult returns the persisted request id.
type CreateResult struct {
	RequestID uuid.UUID `json:"requestId"`
}

// TreatInput identifies the request a supplier marks as handled.
type TreatInput struct {
	SupplierUserID uuid.UUID
	RequestID      uuid.UUID
}

// TreatResult returns the treated request id.
type TreatResult struct {
	RequestID uuid.UUID `json:"requestId"`
}

// ListParams configures pagination for a principal's own requests.
type ListParams struct {
	UserID uuid.UUID
	Status *enums.RequestStatus
	Limit  int
	Cursor string
}

// ListResult wraps a page of requests and the next-page cursor.
type ListResult struct {
	Items  []models.Request `json:"items"`
	Cursor string           `json:"cursor"`
}
