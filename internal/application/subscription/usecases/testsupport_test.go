package usecases

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"subcycle/internal/domain/order"
	"subcycle/internal/domain/shared/events"
	"subcycle/internal/domain/subscription"
	vo "subcycle/internal/domain/subscription/valueobjects"
	"subcycle/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.DiscardHandler))
}

// --- repository fake ---

type fakeRepo struct {
	subs    map[uint]*subscription.Subscription
	updates int
}

func (r *fakeRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub.ID() == 0 {
		if err := sub.SetID(uint(len(r.subs) + 1)); err != nil {
			return err
		}
	}
	r.subs[sub.ID()] = sub
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	sub, ok := r.subs[id]
	if !ok {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (r *fakeRepo) Update(ctx context.Context, sub *subscription.Subscription) error {
	r.updates++
	r.subs[sub.ID()] = sub
	return nil
}

func (r *fakeRepo) SaveDates(ctx context.Context, sub *subscription.Subscription) error {
	r.subs[sub.ID()] = sub
	return nil
}

func (r *fakeRepo) ListDueForRenewal(ctx context.Context, before time.Time, limit int) ([]uint, error) {
	var ids []uint
	for id, sub := range r.subs {
		next := sub.Date(vo.DateNextPayment)
		if sub.Status() == vo.StatusActive && !next.IsZero() && !next.After(before) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// --- order store fake ---

type fakeOrderStore struct {
	orders      map[uint]*order.Order
	nextID      uint
	createFails int // fail this many CreateRenewal calls before succeeding
	createCalls int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[uint]*order.Order{}, nextID: 100}
}

func (s *fakeOrderStore) Get(ctx context.Context, id uint) (*order.Order, error) {
	return s.orders[id], nil
}

func (s *fakeOrderStore) CreateRenewal(ctx context.Context, subscriptionID uint, totalCents int64) (*order.Order, error) {
	s.createCalls++
	if s.createFails > 0 {
		s.createFails--
		return nil, errors.New("order system unavailable")
	}

	s.nextID++
	ord := order.ReconstructOrder(s.nextID, order.StatusPending, totalCents,
		time.Now().UTC(), time.Time{}, time.Time{})
	s.orders[s.nextID] = ord
	return ord, nil
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, id uint, status order.Status) error {
	ord, ok := s.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	s.orders[id] = order.ReconstructOrder(ord.ID(), status, ord.TotalCents(),
		ord.DateCreated(), ord.DatePaid(), ord.DateCompleted())
	return nil
}

func (s *fakeOrderStore) MarkPaid(ctx context.Context, id uint, transactionID string) error {
	ord, ok := s.orders[id]
	if !ok {
		return errors.New("order not found")
	}
	s.orders[id] = order.ReconstructOrder(ord.ID(), order.StatusProcessing, ord.TotalCents(),
		ord.DateCreated(), time.Now().UTC(), ord.DateCompleted())
	return nil
}

// addOrder seeds an order directly.
func (s *fakeOrderStore) addOrder(id uint, status order.Status, paid time.Time, totalCents int64) {
	s.orders[id] = order.ReconstructOrder(id, status, totalCents,
		time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), paid, time.Time{})
}

// --- ledger fake ---

type fakeLedger struct {
	links map[order.Relation][]uint
	errOn map[order.Relation]error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		links: map[order.Relation][]uint{},
		errOn: map[order.Relation]error{},
	}
}

func (l *fakeLedger) RelatedIDs(ctx context.Context, subscriptionID uint, relation order.Relation) ([]uint, error) {
	if err := l.errOn[relation]; err != nil {
		return nil, err
	}
	return l.links[relation], nil
}

func (l *fakeLedger) Link(ctx context.Context, subscriptionID, orderID uint, relation order.Relation) error {
	l.links[relation] = append(l.links[relation], orderID)
	return nil
}

// --- collaborator fakes ---

type fakeCaps struct {
	features  map[subscription.Feature]bool
	automatic bool
}

func (c *fakeCaps) Supports(ctx context.Context, sub *subscription.Subscription, feature subscription.Feature) bool {
	return c.features[feature]
}

func (c *fakeCaps) HasAvailableAutomaticMethod(ctx context.Context, sub *subscription.Subscription) bool {
	return c.automatic
}

type fakeEnv struct{ staging bool }

func (e *fakeEnv) IsStagingSite() bool { return e.staging }

type fakeNotes struct {
	notes []string
}

func (n *fakeNotes) RecordNote(ctx context.Context, subscriptionID uint, note string) error {
	n.notes = append(n.notes, note)
	return nil
}

type capturingPublisher struct {
	events []events.DomainEvent
}

func (p *capturingPublisher) Publish(event events.DomainEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.GetEventType())
	}
	return types
}

// --- harness ---

type harness struct {
	repo      *fakeRepo
	store     *fakeOrderStore
	ledger    *fakeLedger
	notes     *fakeNotes
	publisher *capturingPublisher
	caps      *fakeCaps

	updateStatus    *UpdateStatusUseCase
	updateDates     *UpdateDatesUseCase
	processRenewal  *ProcessRenewalUseCase
	paymentComplete *PaymentCompleteUseCase
	paymentFailed   *PaymentFailedUseCase
}

// newHarness wires the use cases over fakes. The gateway supports every
// feature except scheduled payments, so pending-cancel reactivation stays
// possible without manual renewal.
func newHarness(t *testing.T, maxFailedPayments int) *harness {
	t.Helper()

	h := &harness{
		repo:      &fakeRepo{subs: map[uint]*subscription.Subscription{}},
		store:     newFakeOrderStore(),
		ledger:    newFakeLedger(),
		notes:     &fakeNotes{},
		publisher: &capturingPublisher{},
		caps: &fakeCaps{
			features: map[subscription.Feature]bool{
				subscription.FeatureSuspension:   true,
				subscription.FeatureReactivation: true,
				subscription.FeatureCancellation: true,
				subscription.FeatureDateChanges:  true,
			},
			automatic: true,
		},
	}

	log := testLogger()
	h.updateStatus = NewUpdateStatusUseCase(h.repo, h.notes, h.publisher, log)
	h.updateDates = NewUpdateDatesUseCase(h.repo, h.notes, h.publisher, log)
	h.paymentComplete = NewPaymentCompleteUseCase(h.repo, h.store, h.ledger, h.updateStatus, h.publisher, log)
	h.paymentFailed = NewPaymentFailedUseCase(h.repo, h.store, h.ledger, h.updateStatus, h.publisher, maxFailedPayments, log)
	h.processRenewal = NewProcessRenewalUseCase(h.repo, h.store, h.ledger, h.updateStatus, h.paymentComplete, h.notes, h.publisher, log)
	return h
}

// addSubscription reconstructs a hydrated subscription and registers it.
func (h *harness) addSubscription(t *testing.T, status vo.Status, dates map[vo.DateType]time.Time, totalCents int64) *subscription.Subscription {
	t.Helper()

	if dates == nil {
		dates = map[vo.DateType]time.Time{}
	}
	if _, ok := dates[vo.DateStart]; !ok {
		dates[vo.DateStart] = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	}

	sub, err := subscription.ReconstructSubscription(subscription.SubscriptionParams{
		ID:         1,
		Status:     status,
		Dates:      dates,
		Period:     vo.PeriodMonth,
		Interval:   1,
		TotalCents: totalCents,
		Version:    1,
		CreatedAt:  dates[vo.DateStart],
		UpdatedAt:  dates[vo.DateStart],
	})
	require.NoError(t, err)

	sub.AttachCollaborators(order.NewQuery(h.store, h.ledger), h.caps, &fakeEnv{})
	h.repo.subs[sub.ID()] = sub
	return sub
}

// seedRenewal seeds a linked renewal order.
func (h *harness) seedRenewal(id uint, status order.Status, paid time.Time) {
	h.store.addOrder(id, status, paid, 1500)
	h.ledger.links[order.RelationRenewal] = append(h.ledger.links[order.RelationRenewal], id)
}
