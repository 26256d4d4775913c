package service

import (
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

// Buckets maps a bucket name to its orders, input order preserved.
type Buckets map[string][]model.Order

// bucketOf maps a backend status to its bucket. REJECTED shares the
// CANCELLED bucket.
func bucketOf(status string) (string, bool) {
	switch status {
	case enum.OrderStatusRejected:
		return enum.OrderStatusCancelled, true
	case enum.OrderStatusIncoming, enum.OrderStatusPreparing, enum.OrderStatusReadyForPickup,
		enum.OrderStatusCollected, enum.OrderStatusDelivered, enum.OrderStatusCancelled:
		return status, true
	}
	return "", false
}

// Classify partitions orders by status into the six dashboard buckets.
// Every bucket is present and non-nil. Orders with an unknown status land in
// no bucket but remain part of the ALL view.
func Classify(orders []model.Order) Buckets {
	b := make(Buckets, len(enum.Buckets))
	for _, name := range enum.Buckets {
		b[name] = []model.Order{}
	}
	for _, o := range orders {
		if name, ok := bucketOf(o.Status); ok {
			b[name] = append(b[name], o)
		}
	}
	return b
}

// View resolves a tab: ALL returns the unfiltered list, any other name its
// bucket (nil for unknown names).
func (b Buckets) View(name string, all []model.Order) []model.Order {
	if name == enum.BucketAll {
		return all
	}
	return b[name]
}

// Stats are the overview cards shown above the order tabs.
type Stats struct {
	TotalOrders int           `json:"total_orders"`
	Completed   int           `json:"completed"`
	Active      int           `json:"active"`
	Cancelled   int           `json:"cancelled"`
	Revenue     RevenueFigure `json:"revenue"`
}

// ComputeStats derives the overview cards from the full list and its buckets.
func ComputeStats(all []model.Order, b Buckets) Stats {
	return Stats{
		TotalOrders: len(all),
		Completed:   len(b[enum.OrderStatusDelivered]),
		Active:      len(b[enum.OrderStatusPreparing]) + len(b[enum.OrderStatusReadyForPickup]),
		Cancelled:   len(b[enum.OrderStatusCancelled]),
		Revenue:     Revenue(b[enum.OrderStatusDelivered]),
	}
}
