package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promolink/promolink-backend/internal/notifications"
	"github.com/promolink/promolink-backend/internal/offers"
	"github.com/promolink/promolink-backend/pkg/db"
	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
	pkgerrors "github.com/promolink/promolink-backend/pkg/errors"
	"github.com/promolink/promolink-backend/pkg/logger"
	"github.com/promolink/promolink-backend/pkg/metrics"
	"github.com/promolink/promolink-backend/pkg/outbox"
	"github.com/promolink/promolink-backend/pkg/outbox/payloads"
	"github.com/promolink/promolink-backend/pkg/pagination"
)

// User-facing request errors.
const (
	msgDuplicateRequest = "vous avez déjà envoyé une demande de ce type"
	msgAlreadyTreated   = "demande déjà traitée"
	msgRequestNotFound  = "demande introuvable"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type storeDirectory interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type supplierDirectory interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Supplier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type offerGate interface {
	CheckAvailability(ctx context.Context, offerID uuid.UUID) (*offers.Availability, error)
}

type offerLookup interface {
	FindByIDAny(ctx context.Context, id uuid.UUID) (*models.Offer, error)
}

// notifier covers the in-app notification writes that ride alongside
// request transitions. Failures here never fail the request.
type notifier interface {
	CreateForNewRequest(ctx context.Context, input notifications.NewRequestInput) (*models.Notification, error)
	CreateForTreatedRequest(ctx context.Context, input notifications.TreatedRequestInput) (*models.Notification, error)
}

// Service defines the request lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Treat(ctx context.Context, input TreatInput) (*TreatResult, error)
	ListForStore(ctx context.Context, params ListParams) (*ListResult, error)
	ListForSupplier(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo      Repository
	stores    storeDirectory
	suppliers supplierDirectory
	gate      offerGate
	catalog   offerLookup
	tx        txRunner
	outbox    outboxPublisher
	notifier  notifier
	metrics   *metrics.RequestMetrics
	logg      *logger.Logger
}

// NewService wires the request service dependencies.
func NewService(
	repo Repository,
	stores storeDirectory,
	suppliers supplierDirectory,
	gate offerGate,
	catalog offerLookup,
	tx txRunner,
	outboxSvc outboxPublisher,
	notify notifier,
	requestMetrics *metrics.RequestMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if gate == nil {
		return nil, fmt.Errorf("offer availability gate required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("offer lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		stores:    stores,
		suppliers: suppliers,
		gate:      gate,
		catalog:   catalog,
		tx:        tx,
		outbox:    outboxSvc,
		notifier:  notify,
		metrics:   requestMetrics,
		logg:      logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if input.StoreUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OfferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request type")
	}

	store, err := s.stores.FindByUserID(ctx, input.StoreUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store profile")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store profile required")
	}

	message := normalizeMessage(input.Message)

	availability, err := s.gate.CheckAvailability(ctx, input.OfferID)
	if err != nil {
		return nil, err
	}

	// Friendly pre-check; the unique index is the real guard.
	exists, err := s.repo.ExistsDuplicate(ctx, store.ID, input.OfferID, input.Type)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check duplicate request")
	}
	if exists {
		s.metrics.IncDuplicate()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgDuplicateRequest)
	}

	supplier, err := s.suppliers.FindByID(ctx, availability.SupplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer supplier")
	}
	if supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeServer, "offer references missing supplier")
	}

	request := &models.Request{
		StoreID:    store.ID,
		OfferID:    availability.OfferID,
		SupplierID: availability.SupplierID,
		Type:       input.Type,
		Status:     enums.RequestStatusPending,
		Message:    message,
	}

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventRequestCreated,
			AggregateType: enums.AggregateRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID: input.StoreUserID,
				Role:   string(enums.ActorRoleStore),
			},
			Data: payloads.RequestCreatedEvent{
				RequestID:      request.ID,
				RequestType:    request.Type,
				OfferID:        availability.OfferID,
				OfferName:      availability.Name,
				StoreID:        store.ID,
				StoreName:      store.Name,
				SupplierID:     supplier.ID,
				SupplierUserID: supplier.UserID,
				Message:        message,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if txErr != nil {
		if db.IsUniqueViolation(txErr, DedupConstraint) {
			s.metrics.IncDuplicate()
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgDuplicateRequest)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "create request")
	}

	// Secondary path. The request is committed; a notification failure
	// is logged and swallowed so the caller still gets the id.
	if _, err := s.notifier.CreateForNewRequest(ctx, notifications.NewRequestInput{
		SupplierUserID: supplier.UserID,
		RequestType:    request.Type,
		StoreName:      store.Name,
		OfferName:      availability.Name,
		RequestID:      request.ID,
	}); err != nil {
		logCtx := s.logg.WithField(ctx, "request_id", request.ID.String())
		s.logg.Error(logCtx, "request created but notification write failed", err)
	}

	s.metrics.IncCreated(string(request.Type))
	return &CreateResult{RequestID: request.ID}, nil
}

func (s *service) Treat(ctx context.Context, input TreatInput) (*TreatResult, error) {
	if input.SupplierUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	supplier, err := s.suppliers.FindByUserID(ctx, input.SupplierUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier profile")
	}
	if supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier profile required")
	}

	// Ownership is folded into the lookup so a foreign request is
	// indistinguishable from a missing one.
	request, err := s.repo.FindOwnedBySupplier(ctx, input.RequestID, supplier.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgRequestNotFound)
	}
	if request.Status == enums.RequestStatusTreated {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgAlreadyTreated)
	}

	store, err := s.stores.FindByID(ctx, request.StoreID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request store")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeServer, "request references missing store")
	}

	offerName := ""
	offer, err := s.catalog.FindByIDAny(ctx, request.OfferID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request offer")
	}
	if offer != nil {
		offerName = offer.Name
	}

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updated, err := s.repo.WithTx(tx).MarkTreated(ctx, request.ID)
		if err != nil {
			return err
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeValidation, msgAlreadyTreated)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventRequestTreated,
			AggregateType: enums.AggregateRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID: input.SupplierUserID,
				Role:   string(enums.ActorRoleSupplier),
			},
			Data: payloads.RequestTreatedEvent{
				RequestID:    request.ID,
				RequestType:  request.Type,
				OfferID:      request.OfferID,
				OfferName:    offerName,
				SupplierID:   supplier.ID,
				SupplierName: supplier.CompanyName,
				StoreID:      store.ID,
				StoreUserID:  store.UserID,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "treat request")
	}

	if _, err := s.notifier.CreateForTreatedRequest(ctx, notifications.TreatedRequestInput{
		StoreUserID:  store.UserID,
		SupplierName: supplier.CompanyName,
		OfferName:    offerName,
		RequestID:    request.ID,
	}); err != nil {
		logCtx := s.logg.WithField(ctx, "request_id", request.ID.String())
		s.logg.Error(logCtx, "request treated but notification write failed", err)
	}

	s.metrics.IncTreated()
	return &TreatResult{RequestID: request.ID}, nil
}

func (s *service) ListForStore(ctx context.Context, params ListParams) (*ListResult, error) {
	query, err := buildListParams(params)
	if err != nil {
		return nil, err
	}

	store, err := s.stores.FindByUserID(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store profile")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store profile required")
	}

	rows, next, err := s.repo.ListByStore(ctx, store.ID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return buildListResult(rows, next), nil
}

func (s *service) ListForSupplier(ctx context.Context, params ListParams) (*ListResult, error) {
	query, err := buildListParams(params)
	if err != nil {
		return nil, err
	}

	supplier, err := s.suppliers.FindByUserID(ctx, params.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier profile")
	}
	if supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "supplier profile required")
	}

	rows, next, err := s.repo.ListBySupplier(ctx, supplier.ID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return buildListResult(rows, next), nil
}

func buildListParams(params ListParams) (listRequestsParams, error) {
	if params.UserID == uuid.Nil {
		return listRequestsParams{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return listRequestsParams{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid request status")
	}

	query := listRequestsParams{
		Status: params.Status,
		Limit:  params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return listRequestsParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	return query, nil
}

func buildListResult(rows []models.Request, next *pagination.Cursor) *ListResult {
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}
}

func normalizeMessage(message *string) *string {
	if message == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*message)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
