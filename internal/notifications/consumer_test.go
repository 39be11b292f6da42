package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
	"github.com/promolink/promolink-backend/pkg/logger"
	"github.com/promolink/promolink-backend/pkg/mailer"
	"github.com/promolink/promolink-backend/pkg/outbox"
	"github.com/promolink/promolink-backend/pkg/outbox/idempotency"
	"github.com/promolink/promolink-backend/pkg/outbox/payloads"
)

type fakeSupplierDir struct {
	supplier *models.Supplier
	err      error
}

func (f *fakeSupplierDir) FindByID(context.Context, uuid.UUID) (*models.Supplier, error) {
	return f.supplier, f.err
}

type fakeSender struct {
	sent []mailer.Email
	err  error
}

func (f *fakeSender) Send(_ context.Context, email mailer.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

type fakeRealtime struct {
	channels []string
	payloads [][]byte
	err      error
}

func (f *fakeRealtime) Publish(_ context.Context, channel string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.channels = append(f.channels, channel)
	if data, ok := payload.([]byte); ok {
		f.payloads = append(f.payloads, data)
	}
	return nil
}

func (f *fakeRealtime) NotifyChannel(userID string) string {
	return "pl:notify:" + userID
}

type fakeIdemStore struct {
	setNXResult bool
	setNXErr    error
	deleted     []string
}

func (f *fakeIdemStore) Get(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeIdemStore) SetNX(context.Context, string, any, time.Duration) (bool, error) {
	return f.setNXResult, f.setNXErr
}

func (f *fakeIdemStore) IdempotencyKey(scope, id string) string {
	return "pl:idempotency:" + scope + ":" + id
}

func (f *fakeIdemStore) Del(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return nil
}

type consumerFixture struct {
	consumer *Consumer
	sender   *fakeSender
	realtime *fakeRealtime
	store    *fakeIdemStore
}

func newConsumerFixture(t *testing.T, supplier *models.Supplier) *consumerFixture {
	t.Helper()
	store := &fakeIdemStore{setNXResult: true}
	manager, err := idempotency.NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	sender := &fakeSender{}
	rt := &fakeRealtime{}
	logg := logger.New(logger.Options{ServiceName: "consumer-test", Output: io.Discard})
	return &consumerFixture{
		consumer: &Consumer{
			suppliers:   &fakeSupplierDir{supplier: supplier},
			idempotency: manager,
			sender:      sender,
			realtime:    rt,
			logg:        logg,
			now:         time.Now,
		},
		sender:   sender,
		realtime: rt,
		store:    store,
	}
}

func requestCreatedMessage(t *testing.T, payload payloads.RequestCreatedEvent) *pubsub.Message {
	t.Helper()
	return eventMessage(t, string(enums.EventRequestCreated), payload)
}

func eventMessage(t *testing.T, eventType string, payload any) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       raw,
		Attributes: map[string]string{"event_type": eventType},
	}
}

func TestConsumer_RequestCreatedDispatchesEmailAndRealtime(t *testing.T) {
	email := "contact@distrib-ouest.fr"
	supplierUserID := uuid.New()
	fix := newConsumerFixture(t, &models.Supplier{
		ID:           uuid.New(),
		CompanyName:  "Distrib Ouest",
		ContactEmail: &email,
	})

	message := "possible d'avoir 3 palettes ?"
	msg := requestCreatedMessage(t, payloads.RequestCreatedEvent{
		RequestID:      uuid.New(),
		RequestType:    enums.RequestTypeOrder,
		OfferID:        uuid.New(),
		OfferName:      "Promo rentrée",
		StoreID:        uuid.New(),
		StoreName:      "Superette du Port",
		SupplierID:     uuid.New(),
		SupplierUserID: supplierUserID,
		Message:        &message,
	})

	result := fix.consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(fix.sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(fix.sender.sent))
	}
	sent := fix.sender.sent[0]
	if sent.To != email {
		t.Fatalf("email sent to %q", sent.To)
	}
	if sent.Subject != TitleNewOrderRequest {
		t.Fatalf("unexpected subject %q", sent.Subject)
	}
	if !strings.Contains(sent.PlainText, "Superette du Port - Promo rentrée") {
		t.Fatalf("email body missing display names: %q", sent.PlainText)
	}
	if !strings.Contains(sent.PlainText, message) {
		t.Fatalf("email body missing store message: %q", sent.PlainText)
	}
	if len(fix.realtime.channels) != 1 {
		t.Fatalf("expected one realtime publish, got %d", len(fix.realtime.channels))
	}
	if fix.realtime.channels[0] != "pl:notify:"+supplierUserID.String() {
		t.Fatalf("published on wrong channel %q", fix.realtime.channels[0])
	}
	var event realtimeEvent
	if err := json.Unmarshal(fix.realtime.payloads[0], &event); err != nil {
		t.Fatalf("decode realtime payload: %v", err)
	}
	if event.Type != enums.NotificationTypeNewRequest {
		t.Fatalf("unexpected realtime type %s", event.Type)
	}
	if event.Title != TitleNewOrderRequest {
		t.Fatalf("unexpected realtime title %q", event.Title)
	}
}

func TestConsumer_EmailFailureStillAcks(t *testing.T) {
	email := "contact@distrib-ouest.fr"
	fix := newConsumerFixture(t, &models.Supplier{
		ID:           uuid.New(),
		CompanyName:  "Distrib Ouest",
		ContactEmail: &email,
	})
	fix.sender.err = errors.New("smtp unavailable")

	msg := requestCreatedMessage(t, payloads.RequestCreatedEvent{
		RequestID:      uuid.New(),
		RequestType:    enums.RequestTypeInfo,
		OfferName:      "Promo rentrée",
		StoreName:      "Superette du Port",
		SupplierID:     uuid.New(),
		SupplierUserID: uuid.New(),
	})

	result := fix.consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack despite email failure, got %+v", result)
	}
	if len(fix.realtime.channels) != 1 {
		t.Fatalf("realtime publish should still happen, got %d", len(fix.realtime.channels))
	}
	if len(fix.store.deleted) != 0 {
		t.Fatalf("idempotency mark should survive an email failure")
	}
}

func TestConsumer_MissingContactEmailSkipsEmail(t *testing.T) {
	fix := newConsumerFixture(t, &models.Supplier{
		ID:          uuid.New(),
		CompanyName: "Distrib Ouest",
	})

	msg := requestCreatedMessage(t, payloads.RequestCreatedEvent{
		RequestID:      uuid.New(),
		RequestType:    enums.RequestTypeInfo,
		OfferName:      "Promo rentrée",
		StoreName:      "Superette du Port",
		SupplierID:     uuid.New(),
		SupplierUserID: uuid.New(),
	})

	result := fix.consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(fix.sender.sent) != 0 {
		t.Fatalf("no email expected, got %d", len(fix.sender.sent))
	}
	if len(fix.realtime.channels) != 1 {
		t.Fatalf("realtime publish expected, got %d", len(fix.realtime.channels))
	}
}

func TestConsumer_DuplicateEventAcksWithoutDispatch(t *testing.T) {
	email := "contact@distrib-ouest.fr"
	fix := newConsumerFixture(t, &models.Supplier{ID: uuid.New(), ContactEmail: &email})
	fix.store.setNXResult = false

	msg := requestCreatedMessage(t, payloads.RequestCreatedEvent{
		RequestID:      uuid.New(),
		SupplierID:     uuid.New(),
		SupplierUserID: uuid.New(),
	})

	result := fix.consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack for duplicate, got %+v", result)
	}
	if len(fix.sender.sent) != 0 || len(fix.realtime.channels) != 0 {
		t.Fatalf("duplicate event must not dispatch")
	}
}

func TestConsumer_RealtimeFailureNacksAndReleasesIdempotency(t *testing.T) {
	email := "contact@distrib-ouest.fr"
	fix := newConsumerFixture(t, &models.Supplier{ID: uuid.New(), ContactEmail: &email})
	fix.realtime.err = errors.New("redis down")

	msg := eventMessage(t, string(enums.EventRequestTreated), payloads.RequestTreatedEvent{
		RequestID:    uuid.New(),
		SupplierName: "Distrib Ouest",
		OfferName:    "Promo rentrée",
		StoreID:      uuid.New(),
		StoreUserID:  uuid.New(),
	})

	result := fix.consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on realtime failure, got %+v", result)
	}
	if len(fix.store.deleted) != 1 {
		t.Fatalf("idempotency key should be released for retry")
	}
}

func TestConsumer_UnknownEventTypeAcks(t *testing.T) {
	fix := newConsumerFixture(t, nil)

	msg := eventMessage(t, "inventory_adjusted", map[string]string{"sku": "x"})
	result := fix.consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack for unhandled event, got %+v", result)
	}
}

func TestConsumer_MalformedEnvelopeAcks(t *testing.T) {
	fix := newConsumerFixture(t, nil)

	msg := &pubsub.Message{
		ID:         uuid.NewString(),
		Data:       []byte("not-json"),
		Attributes: map[string]string{"event_type": string(enums.EventRequestCreated)},
	}
	result := fix.consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack for malformed envelope, got %+v", result)
	}
}
