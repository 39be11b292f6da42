package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
	pkgerrors "github.com/promolink/promolink-backend/pkg/errors"
	paginationpkg "github.com/promolink/promolink-backend/pkg/pagination"
)

type fakeRepository struct {
	created       []*models.Notification
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	unreadFn      func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.unreadFn != nil {
		return f.unreadFn(ctx, userID)
	}
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_CreateForNewRequest(t *testing.T) {
	repo := &fakeRepository{}
	svc := newServiceWithRepo(repo)

	requestID := uuid.New()
	notification, err := svc.CreateForNewRequest(context.Background(), NewRequestInput{
		SupplierUserID: uuid.New(),
		RequestType:    enums.RequestTypeOrder,
		StoreName:      "Superette du Port",
		OfferName:      "Promo rentrée",
		RequestID:      requestID,
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if notification.Title != TitleNewOrderRequest {
		t.Fatalf("expected order title, got %q", notification.Title)
	}
	if notification.Body != "Superette du Port - Promo rentrée" {
		t.Fatalf("unexpected body %q", notification.Body)
	}
	if notification.UserType != enums.RecipientTypeSupplier {
		t.Fatalf("expected supplier recipient, got %s", notification.UserType)
	}
	if notification.RelatedID == nil || *notification.RelatedID != requestID {
		t.Fatal("expected related id to reference the request")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(repo.created))
	}
}

func TestService_CreateForNewRequestInfoTitle(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})

	notification, err := svc.CreateForNewRequest(context.Background(), NewRequestInput{
		SupplierUserID: uuid.New(),
		RequestType:    enums.RequestTypeInfo,
		StoreName:      "Epicerie Centrale",
		OfferName:      "Lot découverte",
		RequestID:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if notification.Title != TitleNewInfoRequest {
		t.Fatalf("expected info title, got %q", notification.Title)
	}
}

func TestService_CreateForNewRequestMissingRecipient(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})

	_, err := svc.CreateForNewRequest(context.Background(), NewRequestInput{
		RequestType: enums.RequestTypeInfo,
		RequestID:   uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error for missing recipient")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_CreateForTreatedRequest(t *testing.T) {
	repo := &fakeRepository{}
	svc := newServiceWithRepo(repo)

	notification, err := svc.CreateForTreatedRequest(context.Background(), TreatedRequestInput{
		StoreUserID:  uuid.New(),
		SupplierName: "Distrib Ouest",
		OfferName:    "Promo rentrée",
		RequestID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}
	if notification.Title != TitleRequestTreated {
		t.Fatalf("unexpected title %q", notification.Title)
	}
	if notification.Body != "Distrib Ouest - Promo rentrée" {
		t.Fatalf("unexpected body %q", notification.Body)
	}
	if notification.UserType != enums.RecipientTypeStore {
		t.Fatalf("expected store recipient, got %s", notification.UserType)
	}
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if !params.UnreadOnly {
				t.Fatal("expected unread filter to pass through")
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1, UnreadOnly: true})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("invalid cursor %q: %v", result.Cursor, err)
	}
	if decoded.ID != second.ID {
		t.Fatalf("expected cursor id %s got %s", second.ID, decoded.ID)
	}
}

func TestService_ListNotificationsInvalidCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid cursor")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, userID, notificationID uuid.UUID) (notificationMarkResult, error) {
			return notificationMarkResult{Found: false}, nil
		},
	}
	svc := newServiceWithRepo(repo)
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected not found error")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_MarkAllRead(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 3, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected mark all read error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 updated rows, got %d", count)
	}
}

func TestService_UnreadCount(t *testing.T) {
	repo := &fakeRepository{
		unreadFn: func(ctx context.Context, userID uuid.UUID) (int64, error) {
			return 5, nil
		},
	}
	svc := newServiceWithRepo(repo)
	count, err := svc.UnreadCount(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected unread count error: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 unread, got %d", count)
	}
}
