package domain

import (
	"fmt"
	"time"
)

const (
	// ReturnWindow is how long after delivery a buyer may request a return.
	ReturnWindow = 7 * 24 * time.Hour
	// EstimatedDeliveryLead is the delivery estimate assigned when tracking starts.
	EstimatedDeliveryLead = 3 * 24 * time.Hour
)

// PaymentMethod is how the buyer paid; it selects the refund path.
type PaymentMethod string

const (
	// PaymentGateway orders were charged through the payment gateway.
	PaymentGateway PaymentMethod = "gateway"
	// PaymentWallet orders were paid from the buyer's store wallet.
	PaymentWallet PaymentMethod = "wallet"
	// PaymentCashOnDelivery orders were paid to the courier.
	PaymentCashOnDelivery PaymentMethod = "cod"
)

// RefundStatus is the order-level refund rollup state.
type RefundStatus string

const (
	// RefundStatusNone means no item has been refunded.
	RefundStatusNone RefundStatus = ""
	// RefundStatusCompleted means at least one refund has been executed.
	RefundStatusCompleted RefundStatus = "completed"
)

// Order is a purchase record with its fulfillment and return state.
type Order struct {
	// ID is the unique identifier of the order.
	ID string `json:"id"`
	// OrderNumber is the human-readable number shown to the buyer. Immutable.
	OrderNumber string `json:"order_number"`
	// Buyer identifies who placed the order.
	Buyer Buyer `json:"buyer"`
	// Status is the current fulfillment status.
	Status OrderStatus `json:"status"`
	// StatusTimeline is the append-only audit log of status changes.
	StatusTimeline []TimelineEntry `json:"status_timeline"`
	// Items are the purchased line items in order.
	Items []Item `json:"items"`
	// ShippingAddress is where the order is delivered.
	ShippingAddress string `json:"shipping_address,omitempty"`
	// TotalAmount is the amount charged, in minor units.
	TotalAmount int64 `json:"total_amount"`
	// Tracking is the live shipment state; nil until tracking starts.
	Tracking *Tracking `json:"tracking,omitempty"`
	// Delivery holds the delivery facts; set once on entering delivered.
	Delivery *Delivery `json:"delivery,omitempty"`
	// ReturnInfo is the order-level return and refund rollup.
	ReturnInfo ReturnInfo `json:"return_info"`
	// PaymentMethod is how the order was paid. Immutable.
	PaymentMethod PaymentMethod `json:"payment_method"`
	// Payment carries the gateway or wallet references. Immutable.
	Payment Payment `json:"payment"`
	// CancelledAt is set on entering cancelled.
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	// CancelledBy is the actor who cancelled the order.
	CancelledBy string `json:"cancelled_by,omitempty"`
	// CreatedAt is when the order was placed.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is stamped by the store on every save.
	UpdatedAt time.Time `json:"updated_at"`
	// Version is the optimistic concurrency token maintained by the store.
	Version int64 `json:"version"`
}

// Buyer identifies the customer of an order.
type Buyer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Location is a point on the synthetic route.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	// Label names the nearest waypoint.
	Label string `json:"label,omitempty"`
}

// TimelineEntry is one status change in the audit log.
type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Location  *Location   `json:"location,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	UpdatedBy string      `json:"updated_by"`
}

// Tracking is the live shipment block.
type Tracking struct {
	TrackingNumber    string    `json:"tracking_number"`
	CurrentLocation   *Location `json:"current_location,omitempty"`
	EstimatedDelivery time.Time `json:"estimated_delivery"`
	LastUpdate        time.Time `json:"last_update"`
}

// Delivery holds the terminal delivery facts.
type Delivery struct {
	DeliveredDate       time.Time `json:"delivered_date"`
	DeliveryTime        string    `json:"delivery_time"`
	RecipientName       string    `json:"recipient_name"`
	ReturnWindowExpires time.Time `json:"return_window_expires"`
	DeliveredBy         string    `json:"delivered_by,omitempty"`
}

// ReturnInfo is the order-level rollup of item refunds.
type ReturnInfo struct {
	TotalReturnedItems  int          `json:"total_returned_items"`
	TotalRefundAmount   int64        `json:"total_refund_amount"`
	RefundStatus        RefundStatus `json:"refund_status,omitempty"`
	RefundTransactionID string       `json:"refund_transaction_id,omitempty"`
	RefundProcessedAt   *time.Time   `json:"refund_processed_at,omitempty"`
	RefundProcessedBy   string       `json:"refund_processed_by,omitempty"`
}

// Payment carries references to how the order was charged.
type Payment struct {
	// GatewayOrderID is the gateway's order reference.
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	// GatewayPaymentID is the captured payment refunds are issued against.
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
	// WalletTransactionID is the wallet debit for wallet-paid orders.
	WalletTransactionID string `json:"wallet_transaction_id,omitempty"`
}

// Item is one product line of an order.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	// Price is the unit price at purchase time, in minor units.
	Price  int64         `json:"price"`
	Return ReturnRequest `json:"return_request"`
}

// Subtotal is the price of the whole line.
func (i Item) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Item returns the line item at index or ErrNotFound.
func (o *Order) Item(index int) (*Item, error) {
	if index < 0 || index >= len(o.Items) {
		return nil, fmt.Errorf("%w: item index %d", ErrNotFound, index)
	}
	return &o.Items[index], nil
}

// CurrentLocation returns the live tracking position, if any.
func (o *Order) CurrentLocation() *Location {
	if o.Tracking == nil || o.Tracking.CurrentLocation == nil {
		return nil
	}
	loc := *o.Tracking.CurrentLocation
	return &loc
}

// ApplyStatus sets the status and appends the audit entry, stamping delivery or cancellation facts.
// Delivery facts are set once; re-entering delivered keeps the original ones.
func (o *Order) ApplyStatus(to OrderStatus, actorID, notes string, now time.Time) {
	o.StatusTimeline = append(o.StatusTimeline, TimelineEntry{
		Status:    to,
		Timestamp: now,
		Location:  o.CurrentLocation(),
		Notes:     notes,
		UpdatedBy: actorID,
	})
	o.Status = to

	switch to {
	case StatusDelivered:
		if o.Delivery == nil {
			o.Delivery = &Delivery{
				DeliveredDate:       now,
				DeliveryTime:        now.Format("15:04"),
				RecipientName:       o.Buyer.Name,
				ReturnWindowExpires: now.Add(ReturnWindow),
				DeliveredBy:         actorID,
			}
		}
	case StatusCancelled:
		cancelledAt := now
		o.CancelledAt = &cancelledAt
		o.CancelledBy = actorID
	}
}

// EnsureTracking creates the tracking block if needed.
// An existing tracking number or estimate is never overwritten. Reports whether anything changed.
func (o *Order) EnsureTracking(now time.Time, newTrackingNumber func() string) bool {
	changed := false
	if o.Tracking == nil {
		o.Tracking = &Tracking{}
		changed = true
	}
	if o.Tracking.TrackingNumber == "" {
		o.Tracking.TrackingNumber = newTrackingNumber()
		changed = true
	}
	if o.Tracking.EstimatedDelivery.IsZero() {
		o.Tracking.EstimatedDelivery = now.Add(EstimatedDeliveryLead)
		changed = true
	}
	if changed {
		o.Tracking.LastUpdate = now
	}
	return changed
}

// CheckReturnEligible verifies a return can be requested at now.
func (o *Order) CheckReturnEligible(now time.Time) error {
	if o.Status != StatusDelivered || o.Delivery == nil {
		return ErrorState("request return", string(o.Status))
	}
	if now.After(o.Delivery.ReturnWindowExpires) {
		return Validationf("return window expired at %s", o.Delivery.ReturnWindowExpires.Format(time.RFC3339))
	}
	return nil
}

// RecordRefund rolls a completed item refund into the order's ReturnInfo.
func (o *Order) RecordRefund(amount int64, transactionID, actorID string, now time.Time) {
	processedAt := now
	o.ReturnInfo.TotalReturnedItems++
	o.ReturnInfo.TotalRefundAmount += amount
	o.ReturnInfo.RefundStatus = RefundStatusCompleted
	o.ReturnInfo.RefundTransactionID = transactionID
	o.ReturnInfo.RefundProcessedAt = &processedAt
	o.ReturnInfo.RefundProcessedBy = actorID
}
