package service

import (
	"context"

	orders "fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/tracking/domain"
)

// TrackingView is the live tracking state of an order as shown to buyers.
type TrackingView struct {
	OrderID  string             `json:"order_id"`
	Status   orders.OrderStatus `json:"status"`
	Tracking *orders.Tracking   `json:"tracking,omitempty"`
	// Active reports whether a simulation is currently moving the shipment.
	Active bool `json:"active"`
	// Route lists the waypoints of the shipment in travel order.
	Route []orders.Location `json:"route"`
	// Waypoint is the index in Route the order's status maps to; -1 for cancelled orders.
	Waypoint int `json:"waypoint"`
}

// View builds the tracking view of an order.
func (s *Simulator) View(ctx context.Context, orderID string) (*TrackingView, error) {
	order, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	route := domain.NewRoute(orderID, s.cfg.Base)
	waypoint, ok := domain.TargetIndex(order.Status)
	if !ok {
		waypoint = -1
	}

	return &TrackingView{
		OrderID:  order.ID,
		Status:   order.Status,
		Tracking: order.Tracking,
		Active:   s.Active(orderID),
		Route:    route[:],
		Waypoint: waypoint,
	}, nil
}
