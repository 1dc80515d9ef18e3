package domain

import (
	"fmt"
	"strings"
)

// OrderStatus represents the fulfillment state of an order.
type OrderStatus string

const (
	// StatusPending indicates the order has been placed and awaits processing.
	StatusPending OrderStatus = "pending"
	// StatusProcessing indicates the order is being packed; tracking starts here.
	StatusProcessing OrderStatus = "processing"
	// StatusShipped indicates the order has left the warehouse.
	StatusShipped OrderStatus = "shipped"
	// StatusOutForDelivery indicates the order is on the final route.
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	// StatusDelivered indicates the order reached the buyer. Terminal.
	StatusDelivered OrderStatus = "delivered"
	// StatusCancelled indicates the order was cancelled. Terminal.
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is a member of the status enum.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further fulfillment happens in s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// InFlight reports whether a shipment simulation should be running in s.
func (s OrderStatus) InFlight() bool {
	return s == StatusProcessing || s == StatusShipped || s == StatusOutForDelivery
}

// ParseOrderStatus converts user input into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", Validationf("unknown order status %q", raw)
	}
	return s, nil
}

// TransitionPolicy decides which order status changes are legal.
type TransitionPolicy struct {
	name string
	// adjacency is nil for the permissive policy.
	adjacency map[OrderStatus][]OrderStatus
}

// Policy names.
const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

var strictAdjacency = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

func init() {
	if err := validateAdjacency(strictAdjacency); err != nil {
		panic(err)
	}
}

// validateAdjacency checks that the table covers every status and references only known statuses.
func validateAdjacency(table map[OrderStatus][]OrderStatus) error {
	for _, s := range OrderStatuses {
		if _, ok := table[s]; !ok {
			return fmt.Errorf("adjacency table is missing status %q", s)
		}
	}
	for from, targets := range table {
		if !from.Valid() {
			return fmt.Errorf("adjacency table has unknown source status %q", from)
		}
		for _, to := range targets {
			if !to.Valid() {
				return fmt.Errorf("adjacency table has unknown target status %q from %q", to, from)
			}
		}
	}
	return nil
}

// PermissivePolicy allows any status to be set from any status, for manual correction by admins.
func PermissivePolicy() TransitionPolicy {
	return TransitionPolicy{name: PolicyPermissive}
}

// StrictPolicy enforces the forward-only adjacency table; cancellation is allowed from any non-terminal status.
func StrictPolicy() TransitionPolicy {
	return TransitionPolicy{name: PolicyStrict, adjacency: strictAdjacency}
}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (TransitionPolicy, error) {
	switch name {
	case PolicyPermissive:
		return PermissivePolicy(), nil
	case PolicyStrict:
		return StrictPolicy(), nil
	default:
		return TransitionPolicy{}, fmt.Errorf("unknown transition policy %q", name)
	}
}

// Name returns the policy name.
func (p TransitionPolicy) Name() string {
	return p.name
}

// Check returns ErrInvalidTransition when from→to is not allowed.
func (p TransitionPolicy) Check(from, to OrderStatus) error {
	if p.adjacency == nil {
		return nil
	}
	for _, allowed := range p.adjacency[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Allowed lists the statuses reachable from from. A nil result means any status.
func (p TransitionPolicy) Allowed(from OrderStatus) []OrderStatus {
	if p.adjacency == nil {
		return nil
	}
	return append([]OrderStatus{}, p.adjacency[from]...)
}
