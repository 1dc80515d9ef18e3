package domain

import (
	"hash/fnv"
	"math/rand/v2"

	orders "fulfillment-tracker/internal/features/orders/domain"
)

// WaypointCount is the number of stops on every synthetic route.
const WaypointCount = 5

// WaypointNames label the route stops in travel order.
var WaypointNames = [WaypointCount]string{
	"Warehouse",
	"Distribution Hub",
	"Sorting Facility",
	"Neighborhood Center",
	"Final Route",
}

const (
	// originSpread bounds how far, in degrees, an order's warehouse is placed from the base coordinate.
	originSpread = 0.05
	// legLength is the distance in degrees covered between two consecutive waypoints.
	legLength = 0.02
	// JitterRadius bounds the random offset, in degrees, of a simulated position around its waypoint.
	JitterRadius = 0.002
)

// Route is the fixed, ordered list of waypoints of one order.
type Route [WaypointCount]orders.Location

// NewRoute derives the route of an order from the base coordinate.
// The same order id always yields the same route.
func NewRoute(orderID string, base orders.Location) Route {
	h := fnv.New64a()
	h.Write([]byte(orderID))
	seed := h.Sum64()

	// Two independent fractions in [-0.5, 0.5) from the hash halves.
	fx := float64(seed&0xffff)/0x10000 - 0.5
	fy := float64((seed>>16)&0xffff)/0x10000 - 0.5
	// Heading of the route: one of eight compass directions.
	dir := compass[(seed>>32)%uint64(len(compass))]

	start := orders.Location{
		Latitude:  base.Latitude + fx*originSpread*2,
		Longitude: base.Longitude + fy*originSpread*2,
	}

	var r Route
	for i := range r {
		r[i] = orders.Location{
			Latitude:  start.Latitude + dir[0]*legLength*float64(i),
			Longitude: start.Longitude + dir[1]*legLength*float64(i),
			Label:     WaypointNames[i],
		}
	}
	return r
}

var compass = [8][2]float64{
	{1, 0}, {0.7071, 0.7071}, {0, 1}, {-0.7071, 0.7071},
	{-1, 0}, {-0.7071, -0.7071}, {0, -1}, {0.7071, -0.7071},
}

// TargetIndex maps an order status to its waypoint index.
// Cancelled orders have no waypoint.
func TargetIndex(status orders.OrderStatus) (int, bool) {
	switch status {
	case orders.StatusPending:
		return 0, true
	case orders.StatusProcessing:
		return 1, true
	case orders.StatusShipped:
		return 2, true
	case orders.StatusOutForDelivery:
		return 3, true
	case orders.StatusDelivered:
		return 4, true
	default:
		return 0, false
	}
}

// Advance returns the cursor for status. The cursor never moves backward and saturates at the last waypoint.
func Advance(cursor int, status orders.OrderStatus) int {
	target, ok := TargetIndex(status)
	if !ok || target < cursor {
		return cursor
	}
	return min(target, WaypointCount-1)
}

// Jitter returns a point within JitterRadius of loc on each axis.
func Jitter(loc orders.Location, rng *rand.Rand) orders.Location {
	return orders.Location{
		Latitude:  loc.Latitude + (rng.Float64()*2-1)*JitterRadius,
		Longitude: loc.Longitude + (rng.Float64()*2-1)*JitterRadius,
		Label:     loc.Label,
	}
}
