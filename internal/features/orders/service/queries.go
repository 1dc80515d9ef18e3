package service

import (
	"context"

	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/ports"
)

// QueryService serves the read paths over orders and wallets.
type QueryService struct {
	store ports.OrderStore
}

// NewQueryService creates a new instance of QueryService.
func NewQueryService(store ports.OrderStore) *QueryService {
	return &QueryService{
		store: store,
	}
}

// ReturnRequestView is one item-level return as listed to admins.
type ReturnRequestView struct {
	OrderID       string               `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Buyer         domain.Buyer         `json:"buyer"`
	ItemIndex     int                  `json:"item_index"`
	ProductID     string               `json:"product_id"`
	Name          string               `json:"name"`
	Quantity      int                  `json:"quantity"`
	Price         int64                `json:"price"`
	ReturnRequest domain.ReturnRequest `json:"return_request"`
}

// Stats aggregates order and return counters.
type Stats struct {
	OrdersByStatus  map[domain.OrderStatus]int  `json:"orders_by_status"`
	ReturnsByStatus map[domain.ReturnStatus]int `json:"returns_by_status"`
	RefundedItems   int                         `json:"refunded_items"`
	RefundedAmount  int64                       `json:"refunded_amount"`
}

// Wallet is a buyer's balance with its ledger.
type Wallet struct {
	UserID  string               `json:"user_id"`
	Balance int64                `json:"balance"`
	Ledger  []domain.WalletEntry `json:"ledger"`
}

// GetOrder retrieves an order by ID.
func (s *QueryService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.store.Get(ctx, orderID)
}

// ListReturnRequests lists item returns across orders, optionally filtered by status.
// Items that never entered the return lifecycle are not listed.
func (s *QueryService) ListReturnRequests(ctx context.Context, status *domain.ReturnStatus) ([]ReturnRequestView, error) {
	matches := func(item domain.Item) bool {
		current := item.Return.CurrentStatus()
		if status != nil {
			return current == *status
		}
		return current != domain.ReturnNone
	}

	found, err := s.store.Find(ctx, func(o *domain.Order) bool {
		for _, item := range o.Items {
			if matches(item) {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	views := make([]ReturnRequestView, 0, len(found))
	for _, o := range found {
		for i, item := range o.Items {
			if !matches(item) {
				continue
			}
			views = append(views, ReturnRequestView{
				OrderID:       o.ID,
				OrderNumber:   o.OrderNumber,
				Buyer:         o.Buyer,
				ItemIndex:     i,
				ProductID:     item.ProductID,
				Name:          item.Name,
				Quantity:      item.Quantity,
				Price:         item.Price,
				ReturnRequest: item.Return,
			})
		}
	}
	return views, nil
}

// Stats counts orders by status and item returns by return status.
func (s *QueryService) Stats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	all, err := s.store.Find(ctx, nil)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		OrdersByStatus:  byStatus,
		ReturnsByStatus: make(map[domain.ReturnStatus]int, len(domain.ReturnStatuses)),
	}
	for _, rs := range domain.ReturnStatuses {
		stats.ReturnsByStatus[rs] = 0
	}
	for _, o := range all {
		for _, item := range o.Items {
			stats.ReturnsByStatus[item.Return.CurrentStatus()]++
		}
		stats.RefundedItems += o.ReturnInfo.TotalReturnedItems
		stats.RefundedAmount += o.ReturnInfo.TotalRefundAmount
	}
	return stats, nil
}

// Wallet returns a buyer's wallet balance and ledger.
func (s *QueryService) Wallet(ctx context.Context, userID string) (*Wallet, error) {
	if userID == "" {
		return nil, domain.Validationf("user id is required")
	}

	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.store.Ledger(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Wallet{UserID: userID, Balance: balance, Ledger: ledger}, nil
}
