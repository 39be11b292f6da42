package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
	pkgerrors "github.com/promolink/promolink-backend/pkg/errors"
	"github.com/promolink/promolink-backend/pkg/pagination"
)

// User-facing notification copy.
const (
	TitleNewInfoRequest  = "Nouvelle demande"
	TitleNewOrderRequest = "Intention de commande"
	TitleRequestTreated  = "Demande traitée"
)

// Service defines notification creation and read operations.
type Service interface {
	CreateForNewRequest(ctx context.Context, input NewRequestInput) (*models.Notification, error)
	CreateForTreatedRequest(ctx context.Context, input TreatedRequestInput) (*models.Notification, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// NewRequestInput describes the supplier-side notification for a new request.
type NewRequestInput struct {
	SupplierUserID uuid.UUID
	RequestType    enums.RequestType
	StoreName      string
	OfferName      string
	RequestID      uuid.UUID
}

// TreatedRequestInput describes the store-side notification for a treated request.
type TreatedRequestInput struct {
	StoreUserID  uuid.UUID
	SupplierName string
	OfferName    string
	RequestID    uuid.UUID
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateForNewRequest(ctx context.Context, input NewRequestInput) (*models.Notification, error) {
	if input.SupplierUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier user id required")
	}
	if !input.RequestType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request type")
	}

	title := TitleNewInfoRequest
	if input.RequestType == enums.RequestTypeOrder {
		title = TitleNewOrderRequest
	}

	relatedID := input.RequestID
	notification := &models.Notification{
		UserID:    input.SupplierUserID,
		UserType:  enums.RecipientTypeSupplier,
		Type:      enums.NotificationTypeNewRequest,
		Title:     title,
		Body:      fmt.Sprintf("%s - %s", input.StoreName, input.OfferName),
		RelatedID: &relatedID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

func (s *service) CreateForTreatedRequest(ctx context.Context, input TreatedRequestInput) (*models.Notification, error) {
	if input.StoreUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store user id required")
	}

	relatedID := input.RequestID
	notification := &models.Notification{
		UserID:    input.StoreUserID,
		UserType:  enums.RecipientTypeStore,
		Type:      enums.NotificationTypeRequestTreated,
		Title:     TitleRequestTreated,
		Body:      fmt.Sprintf("%s - %s", input.SupplierName, input.OfferName),
		RelatedID: &relatedID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}
