// Package container builds the application object graph shared by the
// server and worker entry points.
package container

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"subcycle/internal/application/subscription/usecases"
	"subcycle/internal/domain/order"
	"subcycle/internal/domain/shared/events"
	"subcycle/internal/domain/subscription"
	"subcycle/internal/infrastructure/cache"
	"subcycle/internal/infrastructure/config"
	"subcycle/internal/infrastructure/database"
	"subcycle/internal/infrastructure/gateway"
	"subcycle/internal/infrastructure/notification"
	"subcycle/internal/infrastructure/repository"
	"subcycle/internal/infrastructure/scheduler"
	"subcycle/internal/shared/logger"
)

// Container holds every wired component of the engine.
type Container struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	Logger     logger.Interface
	Dispatcher *events.InMemoryEventDispatcher

	SubscriptionRepo subscription.Repository
	OrderStore       order.Store
	OrderLedger      order.Ledger
	OrderQuery       *order.Query
	Notes            *repository.NoteRecorderImpl

	CreateSubscription *usecases.CreateSubscriptionUseCase
	GetSubscription    *usecases.GetSubscriptionUseCase
	UpdateStatus       *usecases.UpdateStatusUseCase
	UpdateDates        *usecases.UpdateDatesUseCase
	CalculateDate      *usecases.CalculateDateUseCase
	ProcessRenewal     *usecases.ProcessRenewalUseCase
	PaymentComplete    *usecases.PaymentCompleteUseCase
	PaymentFailed      *usecases.PaymentFailedUseCase

	RenewalScheduler *scheduler.RenewalScheduler
}

// Options selects which optional subsystems the entry point needs.
type Options struct {
	// WithScheduler wires Redis locking and the renewal scheduler.
	WithScheduler bool
}

// Build wires the full graph from loaded configuration.
func Build(cfg *config.Config, log logger.Interface, opts Options) (*Container, error) {
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		DB:     db,
		Logger: log,
	}

	// Strict delivery: a subscriber failure surfaces to the publishing use
	// case, which rolls half-applied transitions back.
	c.Dispatcher = events.NewStrictEventDispatcher(log)

	c.OrderStore = repository.NewOrderStore(db, log)
	c.OrderLedger = repository.NewOrderLedger(db, log)
	c.OrderQuery = order.NewQuery(c.OrderStore, c.OrderLedger)
	c.Notes = repository.NewNoteRecorder(db, log)

	caps := gateway.NewFullCapabilityResolver()
	env := gateway.NewConfigEnvironmentChecker(cfg.Billing.StagingSite)
	c.SubscriptionRepo = repository.NewSubscriptionRepository(db, c.OrderQuery, caps, env, log)

	c.CreateSubscription = usecases.NewCreateSubscriptionUseCase(c.SubscriptionRepo, log)
	c.GetSubscription = usecases.NewGetSubscriptionUseCase(c.SubscriptionRepo, log)
	c.UpdateStatus = usecases.NewUpdateStatusUseCase(c.SubscriptionRepo, c.Notes, c.Dispatcher, log)
	c.UpdateDates = usecases.NewUpdateDatesUseCase(c.SubscriptionRepo, c.Notes, c.Dispatcher, log)
	c.CalculateDate = usecases.NewCalculateDateUseCase(c.SubscriptionRepo, log)
	c.PaymentComplete = usecases.NewPaymentCompleteUseCase(
		c.SubscriptionRepo, c.OrderStore, c.OrderLedger, c.UpdateStatus, c.Dispatcher, log)
	c.PaymentFailed = usecases.NewPaymentFailedUseCase(
		c.SubscriptionRepo, c.OrderStore, c.OrderLedger, c.UpdateStatus, c.Dispatcher,
		cfg.Billing.MaxFailedPayments, log)
	c.ProcessRenewal = usecases.NewProcessRenewalUseCase(
		c.SubscriptionRepo, c.OrderStore, c.OrderLedger, c.UpdateStatus, c.PaymentComplete,
		c.Notes, c.Dispatcher, log)

	if cfg.Email.Enabled {
		listener := notification.NewEmailListener(&cfg.Email, cfg.Email.From, log)
		if err := listener.Register(c.Dispatcher); err != nil {
			return nil, fmt.Errorf("failed to register email listener: %w", err)
		}
	}

	if opts.WithScheduler {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		c.Redis = redisClient

		lockTTL := time.Duration(cfg.Scheduler.LockTTLSeconds) * time.Second
		lock := cache.NewRenewalLock(redisClient, lockTTL, log)
		c.RenewalScheduler = scheduler.NewRenewalScheduler(
			c.SubscriptionRepo, c.ProcessRenewal, lock, &cfg.Scheduler, log)
	}

	return c, nil
}

// Close releases the container's external connections.
func (c *Container) Close() {
	if c.RenewalScheduler != nil {
		c.RenewalScheduler.Stop()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warnw("failed to close redis client", "error", err)
		}
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				c.Logger.Warnw("failed to close database", "error", err)
			}
		}
	}
}
