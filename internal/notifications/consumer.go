package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/promolink/promolink-backend/pkg/db/models"
	"github.com/promolink/promolink-backend/pkg/enums"
	"github.com/promolink/promolink-backend/pkg/logger"
	"github.com/promolink/promolink-backend/pkg/mailer"
	"github.com/promolink/promolink-backend/pkg/metrics"
	"github.com/promolink/promolink-backend/pkg/outbox"
	"github.com/promolink/promolink-backend/pkg/outbox/idempotency"
	"github.com/promolink/promolink-backend/pkg/outbox/payloads"
)

const dispatchConsumer = "notification-dispatch"

const (
	channelEmail    = "email"
	channelRealtime = "realtime"
)

type supplierDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

type realtimePublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	NotifyChannel(userID string) string
}

// realtimeEvent is what goes over the user's redis channel. The bridge
// relays it to open websocket sessions as-is.
type realtimeEvent struct {
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	RequestID uuid.UUID              `json:"request_id"`
	SentAt    time.Time              `json:"sent_at"`
}

// Consumer fans domain events out to email and realtime channels. The
// in-app notification row is written by the request service at commit
// time; this path only handles side-channel delivery.
type Consumer struct {
	suppliers    supplierDirectory
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	sender       mailer.Sender
	realtime     realtimePublisher
	dispatch     *metrics.DispatchMetrics
	logg         *logger.Logger
	now          func() time.Time
}

// NewConsumer builds the notification dispatch consumer.
func NewConsumer(
	suppliers supplierDirectory,
	subscription *pubsub.Subscriber,
	manager *idempotency.Manager,
	sender mailer.Sender,
	realtime realtimePublisher,
	dispatch *metrics.DispatchMetrics,
	logg *logger.Logger,
) (*Consumer, error) {
	if suppliers == nil {
		return nil, fmt.Errorf("suppliers repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if realtime == nil {
		return nil, fmt.Errorf("realtime publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		suppliers:    suppliers,
		subscription: subscription,
		idempotency:  manager,
		sender:       sender,
		realtime:     realtime,
		dispatch:     dispatch,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, dispatchConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	started := c.now()
	handleErr := c.handleEvent(ctx, eventType, envelope, logCtx)
	c.dispatch.ObserveDuration(eventType, c.now().Sub(started))

	if handleErr != nil {
		c.logg.Error(logCtx, "dispatch failed", handleErr)
		_ = c.idempotency.Delete(ctx, dispatchConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType string, envelope outbox.PayloadEnvelope, logCtx context.Context) error {
	switch eventType {
	case string(enums.EventRequestCreated):
		var payload payloads.RequestCreatedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse request_created payload: %w", err)
		}
		return c.dispatchRequestCreated(ctx, payload, logCtx)
	case string(enums.EventRequestTreated):
		var payload payloads.RequestTreatedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse request_treated payload: %w", err)
		}
		return c.dispatchRequestTreated(ctx, payload, logCtx)
	case string(enums.EventOfferExpired):
		var payload payloads.OfferExpiredEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("parse offer_expired payload: %w", err)
		}
		c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
			"offer_id": payload.OfferID.String(),
			"end_date": payload.EndDate,
		}), "offer expired")
		return nil
	default:
		c.logg.Info(logCtx, "skipping unhandled event")
		c.dispatch.IncSkipped("unhandled_event")
		return nil
	}
}

// dispatchRequestCreated emails the supplier and pushes the realtime
// event. Email is at-most-once: a transport failure is logged and the
// message is still acked, so a retry never double-sends.
func (c *Consumer) dispatchRequestCreated(ctx context.Context, payload payloads.RequestCreatedEvent, logCtx context.Context) error {
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"request_id":  payload.RequestID.String(),
		"supplier_id": payload.SupplierID.String(),
	})

	c.sendSupplierEmail(ctx, payload, logCtx)

	title := TitleNewInfoRequest
	if payload.RequestType == enums.RequestTypeOrder {
		title = TitleNewOrderRequest
	}
	event := realtimeEvent{
		Type:      enums.NotificationTypeNewRequest,
		Title:     title,
		Body:      fmt.Sprintf("%s - %s", payload.StoreName, payload.OfferName),
		RequestID: payload.RequestID,
		SentAt:    c.now().UTC(),
	}
	return c.publishRealtime(ctx, payload.SupplierUserID, event, logCtx)
}

func (c *Consumer) dispatchRequestTreated(ctx context.Context, payload payloads.RequestTreatedEvent, logCtx context.Context) error {
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"request_id": payload.RequestID.String(),
		"store_id":   payload.StoreID.String(),
	})

	event := realtimeEvent{
		Type:      enums.NotificationTypeRequestTreated,
		Title:     TitleRequestTreated,
		Body:      fmt.Sprintf("%s - %s", payload.SupplierName, payload.OfferName),
		RequestID: payload.RequestID,
		SentAt:    c.now().UTC(),
	}
	return c.publishRealtime(ctx, payload.StoreUserID, event, logCtx)
}

func (c *Consumer) sendSupplierEmail(ctx context.Context, payload payloads.RequestCreatedEvent, logCtx context.Context) {
	supplier, err := c.suppliers.FindByID(ctx, payload.SupplierID)
	if err != nil {
		c.logg.Error(logCtx, "supplier lookup failed, skipping email", err)
		c.dispatch.IncSkipped("supplier_lookup_failed")
		return
	}
	if supplier == nil || supplier.ContactEmail == nil || *supplier.ContactEmail == "" {
		c.logg.Info(logCtx, "supplier has no contact email, skipping")
		c.dispatch.IncSkipped("no_contact_email")
		return
	}

	subject := TitleNewInfoRequest
	if payload.RequestType == enums.RequestTypeOrder {
		subject = TitleNewOrderRequest
	}
	body := fmt.Sprintf("%s - %s", payload.StoreName, payload.OfferName)
	if payload.Message != nil && *payload.Message != "" {
		body = fmt.Sprintf("%s\n\n%s", body, *payload.Message)
	}

	email := mailer.Email{
		To:        *supplier.ContactEmail,
		ToName:    supplier.CompanyName,
		Subject:   subject,
		PlainText: body,
	}
	if err := c.sender.Send(ctx, email); err != nil {
		c.logg.Error(logCtx, "email send failed", err)
		c.dispatch.IncFailure(channelEmail)
		return
	}
	c.dispatch.IncSuccess(channelEmail)
}

func (c *Consumer) publishRealtime(ctx context.Context, userID uuid.UUID, event realtimeEvent, logCtx context.Context) error {
	if userID == uuid.Nil {
		c.logg.Warn(logCtx, "realtime event has no recipient, skipping")
		c.dispatch.IncSkipped("no_recipient")
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal realtime event: %w", err)
	}
	channel := c.realtime.NotifyChannel(userID.String())
	if err := c.realtime.Publish(ctx, channel, data); err != nil {
		c.dispatch.IncFailure(channelRealtime)
		return fmt.Errorf("publish realtime event: %w", err)
	}
	c.dispatch.IncSuccess(channelRealtime)
	return nil
}
