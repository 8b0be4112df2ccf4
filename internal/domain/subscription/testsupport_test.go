package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"subcycle/internal/domain/order"
	vo "subcycle/internal/domain/subscription/valueobjects"
)

// --- fakes ---

type fakeOrderStore struct {
	orders map[uint]*order.Order
}

func (s *fakeOrderStore) Get(ctx context.Context, id uint) (*order.Order, error) {
	return s.orders[id], nil
}

func (s *fakeOrderStore) CreateRenewal(ctx context.Context, subscriptionID uint, totalCents int64) (*order.Order, error) {
	panic("not used in domain tests")
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, id uint, status order.Status) error {
	panic("not used in domain tests")
}

func (s *fakeOrderStore) MarkPaid(ctx context.Context, id uint, transactionID string) error {
	panic("not used in domain tests")
}

type fakeLedger struct {
	links        map[order.Relation][]uint
	relatedCalls int
}

func (l *fakeLedger) RelatedIDs(ctx context.Context, subscriptionID uint, relation order.Relation) ([]uint, error) {
	l.relatedCalls++
	return l.links[relation], nil
}

func (l *fakeLedger) Link(ctx context.Context, subscriptionID, orderID uint, relation order.Relation) error {
	if l.links == nil {
		l.links = make(map[order.Relation][]uint)
	}
	l.links[relation] = append(l.links[relation], orderID)
	return nil
}

type fakeCapabilities struct {
	features  map[Feature]bool
	automatic bool
}

func (c *fakeCapabilities) Supports(ctx context.Context, sub *Subscription, feature Feature) bool {
	return c.features[feature]
}

func (c *fakeCapabilities) HasAvailableAutomaticMethod(ctx context.Context, sub *Subscription) bool {
	return c.automatic
}

type fakeEnvironment struct {
	staging bool
}

func (e *fakeEnvironment) IsStagingSite() bool {
	return e.staging
}

// --- builders ---

func allFeatures() *fakeCapabilities {
	return &fakeCapabilities{
		features: map[Feature]bool{
			FeatureSuspension:        true,
			FeatureReactivation:      true,
			FeatureCancellation:      true,
			FeatureDateChanges:       true,
			FeatureScheduledPayments: true,
		},
		automatic: true,
	}
}

type testFixture struct {
	sub    *Subscription
	store  *fakeOrderStore
	ledger *fakeLedger
}

// newTestSubscription reconstructs a hydrated subscription with fake
// collaborators attached.
func newTestSubscription(t *testing.T, status vo.Status, dates map[vo.DateType]time.Time) *testFixture {
	t.Helper()

	if dates == nil {
		dates = map[vo.DateType]time.Time{}
	}
	if _, ok := dates[vo.DateStart]; !ok {
		dates[vo.DateStart] = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	}

	sub, err := ReconstructSubscription(SubscriptionParams{
		ID:       1,
		Status:   status,
		Dates:    dates,
		Period:   vo.PeriodMonth,
		Interval: 1,

		TotalCents: 1500,
		Version:    1,
		CreatedAt:  dates[vo.DateStart],
		UpdatedAt:  dates[vo.DateStart],
	})
	require.NoError(t, err)

	store := &fakeOrderStore{orders: map[uint]*order.Order{}}
	ledger := &fakeLedger{links: map[order.Relation][]uint{}}
	sub.AttachCollaborators(order.NewQuery(store, ledger), allFeatures(), &fakeEnvironment{})

	return &testFixture{sub: sub, store: store, ledger: ledger}
}

// addOrder registers an order in the fake store and links it in the ledger.
func (f *testFixture) addOrder(id uint, status order.Status, paid time.Time, relation order.Relation) {
	f.store.orders[id] = order.ReconstructOrder(id, status, 1500,
		time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), paid, time.Time{})
	f.ledger.links[relation] = append(f.ledger.links[relation], id)
}
