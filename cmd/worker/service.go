package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promolink/promolink-backend/internal/notifications"
	"github.com/promolink/promolink-backend/internal/offers"
	"github.com/promolink/promolink-backend/pkg/config"
	"github.com/promolink/promolink-backend/pkg/db"
	"github.com/promolink/promolink-backend/pkg/enums"
	"github.com/promolink/promolink-backend/pkg/logger"
	"github.com/promolink/promolink-backend/pkg/outbox"
	"github.com/promolink/promolink-backend/pkg/outbox/payloads"
	"github.com/promolink/promolink-backend/pkg/pubsub"
	"github.com/promolink/promolink-backend/pkg/redis"
)

const (
	offerSweepInterval  = 15 * time.Minute
	offerSweepBatchSize = 100
	dateLayout          = "2006-01-02"
)

type ServiceParams struct {
	Config               *config.Config
	Logger               *logger.Logger
	DB                   *db.Client
	Redis                *redis.Client
	PubSub               *pubsub.Client
	NotificationConsumer *notifications.Consumer
	OffersRepo           offers.Repository
	Outbox               *outbox.Service
}

type Service struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	redis    *redis.Client
	pubsub   *pubsub.Client
	consumer *notifications.Consumer
	offers   offers.Repository
	outbox   *outbox.Service
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.NotificationConsumer == nil {
		return nil, errors.New("notification consumer is required")
	}
	if params.OffersRepo == nil {
		return nil, errors.New("offers repository is required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox service is required")
	}
	return &Service{
		cfg:      params.Config,
		logg:     params.Logger,
		db:       params.DB,
		redis:    params.Redis,
		pubsub:   params.PubSub,
		consumer: params.NotificationConsumer,
		offers:   params.OffersRepo,
		outbox:   params.Outbox,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(offerSweepInterval)
	defer ticker.Stop()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.consumer.Run(ctx)
	}()

	s.sweepExpiredOffers(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "worker context canceled")
			return ctx.Err()
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logg.Error(ctx, "consumer stopped unexpectedly", err)
				return err
			}
			return err
		case <-ticker.C:
			s.sweepExpiredOffers(ctx)
		}
	}
}

// sweepExpiredOffers flips ACTIVE offers past their end date to EXPIRED
// and queues one offer_expired event per offer in the same transaction.
// Failures are logged and retried on the next tick.
func (s *Service) sweepExpiredOffers(ctx context.Context) {
	today := time.Now().UTC()
	for {
		var swept int
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			due, err := s.offers.ListExpiredDueTx(tx, today, offerSweepBatchSize)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				return nil
			}
			ids := make([]uuid.UUID, 0, len(due))
			for _, offer := range due {
				ids = append(ids, offer.ID)
			}
			if _, err := s.offers.MarkExpiredTx(tx, ids); err != nil {
				return err
			}
			for _, offer := range due {
				event := outbox.DomainEvent{
					EventType:     enums.EventOfferExpired,
					AggregateType: enums.AggregateOffer,
					AggregateID:   offer.ID,
					Data: payloads.OfferExpiredEvent{
						OfferID:    offer.ID,
						OfferName:  offer.Name,
						SupplierID: offer.SupplierID,
						EndDate:    offer.EndDate.Format(dateLayout),
					},
					Version: 1,
				}
				if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
					return err
				}
			}
			swept = len(due)
			return nil
		})
		if err != nil {
			s.logg.Error(ctx, "offer expiry sweep failed", err)
			return
		}
		if swept > 0 {
			s.logg.Info(s.logg.WithField(ctx, "count", swept), "expired offers swept")
		}
		if swept < offerSweepBatchSize {
			return
		}
	}
}
