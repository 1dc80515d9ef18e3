package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func newOrder() *Order {
	return &Order{
		ID:            "ord-1",
		OrderNumber:   "ORD-1001",
		Buyer:         Buyer{ID: "user-1", Name: "Asha Rao"},
		Status:        StatusPending,
		PaymentMethod: PaymentGateway,
		Items: []Item{
			{ProductID: "p-1", Name: "Kettle", Quantity: 2, Price: 500},
		},
	}
}

func TestApplyStatus_TimelineIsAppendOnly(t *testing.T) {
	o := newOrder()
	o.ApplyStatus(StatusProcessing, "admin-1", "packing", now)
	first := o.StatusTimeline[0]

	o.Tracking = &Tracking{CurrentLocation: &Location{Latitude: 1, Longitude: 2, Label: "hub"}}
	o.ApplyStatus(StatusShipped, "admin-2", "", now.Add(time.Hour))

	require.Len(t, o.StatusTimeline, 2)
	assert.Equal(t, first, o.StatusTimeline[0])
	assert.Equal(t, StatusShipped, o.StatusTimeline[1].Status)
	assert.Equal(t, "admin-2", o.StatusTimeline[1].UpdatedBy)
	require.NotNil(t, o.StatusTimeline[1].Location)
	assert.Equal(t, "hub", o.StatusTimeline[1].Location.Label)

	o.Tracking.CurrentLocation.Label = "moved"
	assert.Equal(t, "hub", o.StatusTimeline[1].Location.Label)
}

func TestApplyStatus_Delivered(t *testing.T) {
	o := newOrder()
	o.ApplyStatus(StatusDelivered, "admin-1", "", now)

	require.NotNil(t, o.Delivery)
	assert.Equal(t, now, o.Delivery.DeliveredDate)
	assert.Equal(t, 7*24*time.Hour, o.Delivery.ReturnWindowExpires.Sub(o.Delivery.DeliveredDate))
	assert.Equal(t, "Asha Rao", o.Delivery.RecipientName)
	assert.Equal(t, "10:30", o.Delivery.DeliveryTime)

	o.ApplyStatus(StatusDelivered, "admin-2", "again", now.Add(48*time.Hour))
	assert.Equal(t, now, o.Delivery.DeliveredDate)
	assert.Len(t, o.StatusTimeline, 2)
}

func TestApplyStatus_Cancelled(t *testing.T) {
	o := newOrder()
	o.ApplyStatus(StatusCancelled, "admin-9", "buyer asked", now)

	require.NotNil(t, o.CancelledAt)
	assert.Equal(t, now, *o.CancelledAt)
	assert.Equal(t, "admin-9", o.CancelledBy)
}

func TestEnsureTracking(t *testing.T) {
	calls := 0
	gen := func() string {
		calls++
		return "TRK-NEW"
	}

	o := newOrder()
	assert.True(t, o.EnsureTracking(now, gen))
	assert.Equal(t, "TRK-NEW", o.Tracking.TrackingNumber)
	assert.Equal(t, now.Add(3*24*time.Hour), o.Tracking.EstimatedDelivery)

	assert.False(t, o.EnsureTracking(now.Add(time.Hour), gen))
	assert.Equal(t, 1, calls)
	assert.Equal(t, now.Add(3*24*time.Hour), o.Tracking.EstimatedDelivery)

	existing := newOrder()
	existing.Tracking = &Tracking{TrackingNumber: "TRK-OLD"}
	assert.True(t, existing.EnsureTracking(now, gen))
	assert.Equal(t, "TRK-OLD", existing.Tracking.TrackingNumber)
}

func TestItem(t *testing.T) {
	o := newOrder()

	item, err := o.Item(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), item.Subtotal())

	item.Return.Status = ReturnRequested
	assert.Equal(t, ReturnRequested, o.Items[0].Return.Status)

	_, err = o.Item(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = o.Item(-1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckReturnEligible(t *testing.T) {
	o := newOrder()
	assert.ErrorIs(t, o.CheckReturnEligible(now), ErrInvalidState)

	o.ApplyStatus(StatusDelivered, "admin-1", "", now)
	assert.NoError(t, o.CheckReturnEligible(now.Add(6*24*time.Hour)))
	assert.ErrorIs(t, o.CheckReturnEligible(now.Add(8*24*time.Hour)), ErrValidation)
}

func TestRecordRefund(t *testing.T) {
	o := newOrder()
	o.RecordRefund(1000, "re_1", "admin-1", now)
	o.RecordRefund(250, "re_2", "admin-2", now.Add(time.Minute))

	assert.Equal(t, 2, o.ReturnInfo.TotalReturnedItems)
	assert.Equal(t, int64(1250), o.ReturnInfo.TotalRefundAmount)
	assert.Equal(t, RefundStatusCompleted, o.ReturnInfo.RefundStatus)
	assert.Equal(t, "re_2", o.ReturnInfo.RefundTransactionID)
	assert.Equal(t, "admin-2", o.ReturnInfo.RefundProcessedBy)
}

func TestRefundPath(t *testing.T) {
	o := newOrder()
	assert.Equal(t, RefundPathGateway, o.RefundPath(RefundOriginal))
	assert.Equal(t, RefundPathWallet, o.RefundPath(RefundToWallet))

	o.PaymentMethod = PaymentWallet
	assert.Equal(t, RefundPathWallet, o.RefundPath(RefundOriginal))

	o.PaymentMethod = PaymentCashOnDelivery
	assert.Equal(t, RefundPathWallet, o.RefundPath(RefundOriginal))
}
