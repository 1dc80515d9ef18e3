package adapters

import (
	"context"
	"errors"
	"testing"

	"fulfillment-tracker/internal/features/orders/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
)

type fakeRefundAPI struct {
	params []*stripe.RefundParams
	refund *stripe.Refund
	err    error
}

func (f *fakeRefundAPI) New(params *stripe.RefundParams) (*stripe.Refund, error) {
	f.params = append(f.params, params)
	return f.refund, f.err
}

func TestStripeGateway_Refund(t *testing.T) {
	api := &fakeRefundAPI{refund: &stripe.Refund{ID: "re_123", Status: stripe.RefundStatusSucceeded}}
	gw := newStripeGateway(api, "acct_1")
	ctx := context.Background()

	res, err := gw.Refund(ctx, "pi_1", 1000, "refund_ord-1_0")
	require.NoError(t, err)
	assert.Equal(t, "re_123", res.TransactionID)

	require.Len(t, api.params, 1)
	p := api.params[0]
	assert.Equal(t, "pi_1", *p.PaymentIntent)
	assert.Equal(t, int64(1000), *p.Amount)
	assert.Equal(t, "refund_ord-1_0", *p.IdempotencyKey)
	assert.Equal(t, "acct_1", *p.StripeAccount)
	assert.Equal(t, ctx, p.Context)
}

func TestStripeGateway_Failures(t *testing.T) {
	t.Run("APIError", func(t *testing.T) {
		gw := newStripeGateway(&fakeRefundAPI{err: errors.New("card_declined")}, "")
		_, err := gw.Refund(context.Background(), "pi_1", 1000, "k")
		assert.ErrorIs(t, err, domain.ErrGatewayFailure)
		assert.ErrorContains(t, err, "card_declined")
	})

	t.Run("FailedStatus", func(t *testing.T) {
		gw := newStripeGateway(&fakeRefundAPI{refund: &stripe.Refund{ID: "re_1", Status: stripe.RefundStatusFailed}}, "")
		_, err := gw.Refund(context.Background(), "pi_1", 1000, "k")
		assert.ErrorIs(t, err, domain.ErrGatewayFailure)
	})

	t.Run("MissingPaymentID", func(t *testing.T) {
		api := &fakeRefundAPI{}
		gw := newStripeGateway(api, "")
		_, err := gw.Refund(context.Background(), "", 1000, "k")
		assert.ErrorIs(t, err, domain.ErrGatewayFailure)
		assert.Empty(t, api.params)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		gw := newStripeGateway(&fakeRefundAPI{}, "")
		_, err := gw.Refund(context.Background(), "pi_1", 0, "k")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway(" ", "", nil)
	assert.Error(t, err)
}
