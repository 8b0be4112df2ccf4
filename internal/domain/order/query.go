package order

import (
	"context"
	"fmt"
	"sort"
)

// Query resolves, orders and deduplicates the set of orders related to a
// subscription. IDs come back descending, so the highest id is the defined
// "last order" tie-break; the ledger does not guarantee id order equals
// chronological order across relation types.
type Query struct {
	store  Store
	ledger Ledger
}

func NewQuery(store Store, ledger Ledger) *Query {
	return &Query{
		store:  store,
		ledger: ledger,
	}
}

// RelatedOrderIDs returns the deduplicated, descending-id set of order ids
// related to the subscription through the given relation. parentOrderID is
// the subscription's originating order (0 when none, e.g. admin-created).
func (q *Query) RelatedOrderIDs(ctx context.Context, subscriptionID, parentOrderID uint, relation Relation) ([]uint, error) {
	return q.collectIDs(ctx, subscriptionID, parentOrderID, []Relation{relation})
}

// LastOrder returns the related order with the highest id among the
// requested relation types, or nil when none exists. Orders the ledger
// still references but the store no longer holds are skipped.
func (q *Query) LastOrder(ctx context.Context, subscriptionID, parentOrderID uint, relations ...Relation) (*Order, error) {
	ids, err := q.collectIDs(ctx, subscriptionID, parentOrderID, relations)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		ord, err := q.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load order %d: %w", id, err)
		}
		if ord != nil {
			return ord, nil
		}
	}
	return nil, nil
}

// RelatedOrders loads the related orders newest-first, skipping ids the
// store no longer resolves.
func (q *Query) RelatedOrders(ctx context.Context, subscriptionID, parentOrderID uint, relations ...Relation) ([]*Order, error) {
	ids, err := q.collectIDs(ctx, subscriptionID, parentOrderID, relations)
	if err != nil {
		return nil, err
	}

	orders := make([]*Order, 0, len(ids))
	for _, id := range ids {
		ord, err := q.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load order %d: %w", id, err)
		}
		if ord == nil {
			continue
		}
		orders = append(orders, ord)
	}
	return orders, nil
}

func (q *Query) collectIDs(ctx context.Context, subscriptionID, parentOrderID uint, relations []Relation) ([]uint, error) {
	seen := make(map[uint]bool)
	var ids []uint

	for _, rel := range ExpandRelations(relations) {
		var candidates []uint
		if rel == RelationParent {
			candidates = []uint{parentOrderID}
		} else {
			related, err := q.ledger.RelatedIDs(ctx, subscriptionID, rel)
			if err != nil {
				return nil, fmt.Errorf("failed to query %s order ids: %w", rel, err)
			}
			candidates = related
		}
		for _, id := range candidates {
			if id == 0 || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids, nil
}
