package order

import "context"

// Store is the consumed interface over the external order system.
// Get returns (nil, nil) when the order no longer exists; the engine treats
// dangling ledger references as absent, not as errors.
type Store interface {
	Get(ctx context.Context, id uint) (*Order, error)
	CreateRenewal(ctx context.Context, subscriptionID uint, totalCents int64) (*Order, error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
	MarkPaid(ctx context.Context, id uint, transactionID string) error
}

// Ledger is the consumed interface over the external relation ledger,
// keyed (subscription_id, relation) -> ordered set of order ids.
// The parent relation is not in the ledger; it lives on the subscription.
type Ledger interface {
	RelatedIDs(ctx context.Context, subscriptionID uint, relation Relation) ([]uint, error)
	Link(ctx context.Context, subscriptionID, orderID uint, relation Relation) error
}
