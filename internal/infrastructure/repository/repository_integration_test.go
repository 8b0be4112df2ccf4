package repository

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"subcycle/internal/domain/order"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/infrastructure/gateway"
	"subcycle/internal/infrastructure/persistence/models"
	"subcycle/internal/shared/biztime"
	"subcycle/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SubscriptionModel{},
		&models.OrderModel{},
		&models.SubscriptionOrderModel{},
		&models.SubscriptionNoteModel{},
	)
	require.NoError(t, err)

	return db
}

func setupRepositories(t *testing.T) (*gorm.DB, subscription.Repository, order.Store, order.Ledger) {
	db := setupTestDB(t)
	log := logger.NewLoggerWithSlog(slog.New(slog.DiscardHandler))

	store := NewOrderStore(db, log)
	ledger := NewOrderLedger(db, log)
	repo := NewSubscriptionRepository(db, order.NewQuery(store, ledger),
		gateway.NewFullCapabilityResolver(), gateway.NewConfigEnvironmentChecker(false), log)

	return db, repo, store, ledger
}

func createTestSubscription(t *testing.T, repo subscription.Repository) *subscription.Subscription {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	sub, err := subscription.NewSubscription(vo.PeriodMonth, 1, start, 1500)
	require.NoError(t, err)

	err = repo.Create(context.Background(), sub)
	require.NoError(t, err)
	require.NotZero(t, sub.ID())
	return sub
}

func TestSubscriptionRepository_CreateAndGet(t *testing.T) {
	_, repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		sub := createTestSubscription(t, repo)
		require.NoError(t, sub.UpdateDates(map[vo.DateType]time.Time{
			vo.DateTrialEnd:    time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC),
			vo.DateNextPayment: time.Date(2026, 2, 15, 10, 0, 1, 0, time.UTC),
		}))
		require.NoError(t, repo.Update(ctx, sub))

		found, err := repo.GetByID(ctx, sub.ID())
		require.NoError(t, err)
		assert.Equal(t, sub.ID(), found.ID())
		assert.Equal(t, vo.StatusPending, found.Status())
		assert.Equal(t, vo.PeriodMonth, found.BillingPeriod())
		assert.Equal(t, int64(1500), found.TotalCents())
		assert.Equal(t, sub.Date(vo.DateStart), found.Date(vo.DateStart))
		assert.Equal(t, sub.Date(vo.DateTrialEnd), found.Date(vo.DateTrialEnd))
		assert.Equal(t, sub.Date(vo.DateNextPayment), found.Date(vo.DateNextPayment))
	})

	t.Run("not found", func(t *testing.T) {
		found, err := repo.GetByID(ctx, 99999)
		assert.Nil(t, found)
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})
}

func TestSubscriptionRepository_SaveDates(t *testing.T) {
	_, repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	sub := createTestSubscription(t, repo)
	nextPayment := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, sub.UpdateDates(map[vo.DateType]time.Time{vo.DateNextPayment: nextPayment}))
	require.NoError(t, repo.SaveDates(ctx, sub))

	found, err := repo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, nextPayment, found.Date(vo.DateNextPayment))

	// A deleted date must come back as NULL, not the stale value.
	require.NoError(t, sub.DeleteDate(vo.DateNextPayment))
	require.NoError(t, repo.SaveDates(ctx, sub))

	found, err = repo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.True(t, found.Date(vo.DateNextPayment).IsZero())
}

func TestSubscriptionRepository_UpdatePersistsStatusAndCounters(t *testing.T) {
	_, repo, _, _ := setupRepositories(t)
	ctx := context.Background()

	sub := createTestSubscription(t, repo)
	require.NoError(t, sub.SetStatus(vo.StatusActive))
	sub.IncrementSuspensionCount()
	require.NoError(t, repo.Update(ctx, sub))

	found, err := repo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.StatusActive, found.Status())
	assert.Equal(t, 1, found.SuspensionCount())
	assert.Equal(t, sub.Version(), found.Version())
}

func TestSubscriptionRepository_ListDueForRenewal(t *testing.T) {
	_, repo, _, _ := setupRepositories(t)
	ctx := context.Background()
	now := biztime.NowUTC()

	due := createTestSubscription(t, repo)
	require.NoError(t, due.SetStatus(vo.StatusActive))
	require.NoError(t, due.UpdateDates(map[vo.DateType]time.Time{vo.DateNextPayment: now.Add(-time.Hour)}))
	require.NoError(t, repo.Update(ctx, due))

	notYetDue := createTestSubscription(t, repo)
	require.NoError(t, notYetDue.SetStatus(vo.StatusActive))
	require.NoError(t, notYetDue.UpdateDates(map[vo.DateType]time.Time{vo.DateNextPayment: now.Add(30 * 24 * time.Hour)}))
	require.NoError(t, repo.Update(ctx, notYetDue))

	// Pending subscriptions never renew, due date or not.
	pending := createTestSubscription(t, repo)
	require.NoError(t, pending.UpdateDates(map[vo.DateType]time.Time{vo.DateNextPayment: now.Add(-time.Hour)}))
	require.NoError(t, repo.Update(ctx, pending))

	ids, err := repo.ListDueForRenewal(ctx, now, 50)
	require.NoError(t, err)
	assert.Equal(t, []uint{due.ID()}, ids)
}

func TestOrderStore(t *testing.T) {
	db := setupTestDB(t)
	log := logger.NewLoggerWithSlog(slog.New(slog.DiscardHandler))
	store := NewOrderStore(db, log)
	ctx := context.Background()

	t.Run("create renewal and mark paid", func(t *testing.T) {
		created, err := store.CreateRenewal(ctx, 1, 1500)
		require.NoError(t, err)
		require.NotZero(t, created.ID())
		assert.Equal(t, order.StatusPending, created.Status())

		require.NoError(t, store.MarkPaid(ctx, created.ID(), "txn_abc"))

		found, err := store.Get(ctx, created.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.IsPaid())
		assert.Equal(t, order.StatusProcessing, found.Status())
	})

	t.Run("update status", func(t *testing.T) {
		created, err := store.CreateRenewal(ctx, 1, 1500)
		require.NoError(t, err)

		require.NoError(t, store.UpdateStatus(ctx, created.ID(), order.StatusFailed))

		found, err := store.Get(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, order.StatusFailed, found.Status())
	})

	t.Run("missing order is nil, not an error", func(t *testing.T) {
		found, err := store.Get(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestOrderLedger(t *testing.T) {
	db := setupTestDB(t)
	log := logger.NewLoggerWithSlog(slog.New(slog.DiscardHandler))
	ledger := NewOrderLedger(db, log)
	ctx := context.Background()

	require.NoError(t, ledger.Link(ctx, 1, 3, order.RelationRenewal))
	require.NoError(t, ledger.Link(ctx, 1, 9, order.RelationRenewal))
	require.NoError(t, ledger.Link(ctx, 1, 5, order.RelationSwitch))
	// Replayed link stays idempotent.
	require.NoError(t, ledger.Link(ctx, 1, 9, order.RelationRenewal))

	ids, err := ledger.RelatedIDs(ctx, 1, order.RelationRenewal)
	require.NoError(t, err)
	assert.Equal(t, []uint{9, 3}, ids)

	ids, err = ledger.RelatedIDs(ctx, 1, order.RelationSwitch)
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, ids)

	ids, err = ledger.RelatedIDs(ctx, 2, order.RelationRenewal)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNoteRecorder(t *testing.T) {
	db := setupTestDB(t)
	log := logger.NewLoggerWithSlog(slog.New(slog.DiscardHandler))
	recorder := NewNoteRecorder(db, log)
	ctx := context.Background()

	require.NoError(t, recorder.RecordNote(ctx, 1, "Status changed from pending to active."))
	require.NoError(t, recorder.RecordNote(ctx, 1, "Payment received."))
	require.NoError(t, recorder.RecordNote(ctx, 2, "Unrelated subscription."))

	notes, err := recorder.ListNotes(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Payment received.", notes[0].Note)
	assert.Equal(t, "Status changed from pending to active.", notes[1].Note)
}
