package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"
)

type stripeRefundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// StripeGateway implements ports.RefundGateway with Stripe refunds on payment intents.
type StripeGateway struct {
	refunds stripeRefundAPI
	account string
}

// NewStripeGateway creates a StripeGateway. httpClient carries the timeout and request logging.
func NewStripeGateway(apiKey, accountID string, httpClient *http.Client) (*StripeGateway, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("stripe: api key is required")
	}

	sc := client.New(apiKey, stripe.NewBackends(httpClient))
	return newStripeGateway(sc.Refunds, accountID), nil
}

func newStripeGateway(refunds stripeRefundAPI, accountID string) *StripeGateway {
	return &StripeGateway{
		refunds: refunds,
		account: strings.TrimSpace(accountID),
	}
}

// Refund refunds amount minor units of the payment intent paymentID.
// Retrying with the same idempotencyKey never refunds twice.
func (g *StripeGateway) Refund(ctx context.Context, paymentID string, amount int64, idempotencyKey string) (ports.RefundResult, error) {
	if strings.TrimSpace(paymentID) == "" {
		return ports.RefundResult{}, fmt.Errorf("%w: order has no gateway payment id", domain.ErrGatewayFailure)
	}
	if amount <= 0 {
		return ports.RefundResult{}, domain.Validationf("refund amount must be positive, got %d", amount)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
		Amount:        stripe.Int64(amount),
	}
	params.Context = ctx
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	if g.account != "" {
		params.SetStripeAccount(g.account)
	}

	refund, err := g.refunds.New(params)
	if err != nil {
		return ports.RefundResult{}, fmt.Errorf("%w: stripe refund of %s: %w", domain.ErrGatewayFailure, paymentID, err)
	}
	if refund == nil || refund.ID == "" {
		return ports.RefundResult{}, fmt.Errorf("%w: stripe returned no refund for %s", domain.ErrGatewayFailure, paymentID)
	}
	if refund.Status == stripe.RefundStatusFailed || refund.Status == stripe.RefundStatusCanceled {
		return ports.RefundResult{}, fmt.Errorf("%w: stripe refund %s is %s", domain.ErrGatewayFailure, refund.ID, refund.Status)
	}

	logger.Named("stripe").Info("Refund created",
		zap.String("payment_intent", paymentID),
		zap.String("refund_id", refund.ID),
		zap.Int64("amount", amount),
		zap.String("status", string(refund.Status)),
	)

	return ports.RefundResult{TransactionID: refund.ID}, nil
}
