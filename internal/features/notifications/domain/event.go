package domain

import (
	"time"

	orders "fulfillment-tracker/internal/features/orders/domain"
)

// EventKind names the kind of state change an event carries.
type EventKind string

const (
	// KindOrderStatusUpdate is broadcast after an order status transition.
	KindOrderStatusUpdate EventKind = "order-status-update"
	// KindTrackingUpdate is broadcast after a simulated position change.
	KindTrackingUpdate EventKind = "tracking-update"
	// KindReturnRequestUpdate is sent to the buyer after any return transition.
	KindReturnRequestUpdate EventKind = "return-request-update"
	// KindRefundProcessed is sent to the buyer after a refund completed.
	KindRefundProcessed EventKind = "refund-processed"
)

// Private reports whether events of this kind are restricted to the buyer and admins.
func (k EventKind) Private() bool {
	return k == KindReturnRequestUpdate || k == KindRefundProcessed
}

// Topics.
const (
	TopicBroadcast = "broadcast"
	TopicAdmin     = "admin"
	buyerPrefix    = "buyer:"
)

// BuyerTopic is the private topic of a buyer.
func BuyerTopic(buyerID string) string {
	return buyerPrefix + buyerID
}

// Snapshot is the read-only projection of an order sent to observers.
type Snapshot struct {
	OrderID           string                 `json:"order_id"`
	OrderNumber       string                 `json:"order_number"`
	Status            orders.OrderStatus     `json:"status"`
	Buyer             orders.Buyer           `json:"buyer"`
	Tracking          *orders.Tracking       `json:"tracking,omitempty"`
	EstimatedDelivery *time.Time             `json:"estimated_delivery,omitempty"`
	Timeline          []orders.TimelineEntry `json:"status_timeline"`
	// Item is set on return and refund events.
	Item *ItemSnapshot `json:"item,omitempty"`
	// ReturnInfo is set on return and refund events.
	ReturnInfo *orders.ReturnInfo `json:"return_info,omitempty"`
}

// ItemSnapshot is the line item a return event refers to.
type ItemSnapshot struct {
	Index         int                  `json:"index"`
	ProductID     string               `json:"product_id"`
	Name          string               `json:"name"`
	ReturnRequest orders.ReturnRequest `json:"return_request"`
}

// NewSnapshot projects an order. Mutable parts are copied so later changes to o are not observed.
func NewSnapshot(o *orders.Order) Snapshot {
	s := Snapshot{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Buyer:       o.Buyer,
		Timeline:    copyTimeline(o.StatusTimeline),
	}
	if o.Tracking != nil {
		tracking := *o.Tracking
		tracking.CurrentLocation = o.CurrentLocation()
		s.Tracking = &tracking
		if !tracking.EstimatedDelivery.IsZero() {
			eta := tracking.EstimatedDelivery
			s.EstimatedDelivery = &eta
		}
	}
	return s
}

func copyTimeline(entries []orders.TimelineEntry) []orders.TimelineEntry {
	if entries == nil {
		return nil
	}
	out := make([]orders.TimelineEntry, len(entries))
	for i, e := range entries {
		if e.Location != nil {
			loc := *e.Location
			e.Location = &loc
		}
		out[i] = e
	}
	return out
}

// NewItemSnapshot projects an order and one of its items.
func NewItemSnapshot(o *orders.Order, index int) Snapshot {
	s := NewSnapshot(o)
	info := o.ReturnInfo
	s.ReturnInfo = &info
	if item, err := o.Item(index); err == nil {
		s.Item = &ItemSnapshot{
			Index:         index,
			ProductID:     item.ProductID,
			Name:          item.Name,
			ReturnRequest: item.Return,
		}
	}
	return s
}

// Event is a snapshot plus the kind of change that produced it.
type Event struct {
	Kind      EventKind `json:"kind"`
	Snapshot  Snapshot  `json:"snapshot"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Message is an event addressed to one topic.
type Message struct {
	Topic string `json:"topic"`
	Event Event  `json:"event"`
}
