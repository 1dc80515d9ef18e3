package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	notify "fulfillment-tracker/internal/features/notifications/domain"
	orders "fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory ports.OrderStore with version checks.
type memStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemStore(list ...*orders.Order) *memStore {
	s := &memStore{docs: make(map[string][]byte)}
	for _, o := range list {
		o.Version = 1
		s.docs[o.ID], _ = json.Marshal(o)
	}
	return s
}

func (s *memStore) Get(_ context.Context, id string) (*orders.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", orders.ErrNotFound, id)
	}
	var o orders.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *memStore) Save(_ context.Context, o *orders.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stored orders.Order
	if data, ok := s.docs[o.ID]; ok {
		_ = json.Unmarshal(data, &stored)
	}
	if stored.Version != o.Version {
		return orders.ErrPersistenceConflict
	}
	o.Version++
	s.docs[o.ID], _ = json.Marshal(o)
	return nil
}

func (s *memStore) Find(ctx context.Context, match func(*orders.Order) bool) ([]*orders.Order, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var out []*orders.Order
	for _, id := range ids {
		o, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if match(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

// setStatus changes the status behind the simulator's back.
func (s *memStore) setStatus(t *testing.T, id string, status orders.OrderStatus) {
	t.Helper()
	o, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	o.Status = status
	require.NoError(t, s.Save(context.Background(), o))
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []orders.Order
}

func (n *recordingNotifier) Broadcast(_ context.Context, kind notify.EventKind, o *orders.Order) {
	if kind != notify.KindTrackingUpdate {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, *o)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func (n *recordingNotifier) lastLabel() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return ""
	}
	last := n.events[len(n.events)-1]
	if last.Tracking == nil || last.Tracking.CurrentLocation == nil {
		return ""
	}
	return last.Tracking.CurrentLocation.Label
}

var testBase = orders.Location{Latitude: 28.6139, Longitude: 77.2090}

func order(id string, status orders.OrderStatus) *orders.Order {
	return &orders.Order{ID: id, OrderNumber: "ORD-" + id, Status: status}
}

func newTestSimulator(t *testing.T, tick time.Duration, list ...*orders.Order) (*Simulator, *memStore, *recordingNotifier) {
	store := newMemStore(list...)
	n := &recordingNotifier{}
	sim := NewSimulator(store, n, Config{TickInterval: tick, Base: testBase})
	t.Cleanup(func() { _ = sim.Shutdown(context.Background()) })
	return sim, store, n
}

const (
	wait = 2 * time.Second
	poll = 5 * time.Millisecond
)

func TestSimulator_StartAssignsTrackingAndMoves(t *testing.T) {
	sim, store, n := newTestSimulator(t, 10*time.Millisecond, order("ord-1", orders.StatusProcessing))
	ctx := context.Background()

	require.NoError(t, sim.Start(ctx, "ord-1"))
	assert.True(t, sim.Active("ord-1"))

	assert.Eventually(t, func() bool { return n.count() >= 2 }, wait, poll)
	assert.Equal(t, domain.WaypointNames[1], n.lastLabel())

	stored, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.NotNil(t, stored.Tracking)
	assert.NotEmpty(t, stored.Tracking.TrackingNumber)
	assert.False(t, stored.Tracking.EstimatedDelivery.IsZero())

	wp := domain.NewRoute("ord-1", testBase)[1]
	loc := stored.Tracking.CurrentLocation
	require.NotNil(t, loc)
	assert.InDelta(t, wp.Latitude, loc.Latitude, domain.JitterRadius)
	assert.InDelta(t, wp.Longitude, loc.Longitude, domain.JitterRadius)
}

func TestSimulator_StartTwiceKeepsOneHandleAndNumber(t *testing.T) {
	o := order("ord-1", orders.StatusProcessing)
	o.Tracking = &orders.Tracking{TrackingNumber: "TRK-KEEP"}
	sim, store, _ := newTestSimulator(t, time.Hour, o)
	ctx := context.Background()

	require.NoError(t, sim.Start(ctx, "ord-1"))
	require.NoError(t, sim.Start(ctx, "ord-1"))
	assert.Equal(t, 1, sim.Count())

	stored, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "TRK-KEEP", stored.Tracking.TrackingNumber)
}

func TestSimulator_Stop(t *testing.T) {
	sim, _, _ := newTestSimulator(t, time.Hour, order("ord-1", orders.StatusShipped))
	ctx := context.Background()

	sim.Stop("unknown")

	require.NoError(t, sim.Start(ctx, "ord-1"))
	sim.Stop("ord-1")
	assert.False(t, sim.Active("ord-1"))
	assert.Equal(t, 0, sim.Count())

	sim.Stop("ord-1")
}

func TestSimulator_StatusChangedJumpsToWaypoint(t *testing.T) {
	sim, store, n := newTestSimulator(t, time.Hour, order("ord-1", orders.StatusProcessing))
	ctx := context.Background()

	require.NoError(t, sim.Start(ctx, "ord-1"))
	assert.Eventually(t, func() bool { return n.lastLabel() == domain.WaypointNames[1] }, wait, poll)

	store.setStatus(t, "ord-1", orders.StatusOutForDelivery)
	sim.StatusChanged("ord-1")
	assert.Eventually(t, func() bool { return n.lastLabel() == domain.WaypointNames[3] }, wait, poll)

	// A regression never moves the shipment backward.
	store.setStatus(t, "ord-1", orders.StatusProcessing)
	before := n.count()
	sim.StatusChanged("ord-1")
	assert.Eventually(t, func() bool { return n.count() > before }, wait, poll)
	assert.Equal(t, domain.WaypointNames[3], n.lastLabel())
}

func TestSimulator_EndsOnTerminalStatus(t *testing.T) {
	sim, store, n := newTestSimulator(t, time.Hour, order("ord-1", orders.StatusShipped))
	ctx := context.Background()

	require.NoError(t, sim.Start(ctx, "ord-1"))
	assert.Eventually(t, func() bool { return n.count() >= 1 }, wait, poll)

	store.setStatus(t, "ord-1", orders.StatusCancelled)
	sim.StatusChanged("ord-1")

	assert.Eventually(t, func() bool { return !sim.Active("ord-1") }, wait, poll)
}

func TestSimulator_StartRejectsTerminalOrder(t *testing.T) {
	sim, _, _ := newTestSimulator(t, time.Hour, order("ord-1", orders.StatusDelivered))

	err := sim.Start(context.Background(), "ord-1")
	assert.ErrorIs(t, err, orders.ErrInvalidState)
	assert.False(t, sim.Active("ord-1"))

	err = sim.Start(context.Background(), "missing")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestSimulator_Rearm(t *testing.T) {
	sim, _, _ := newTestSimulator(t, time.Hour,
		order("a", orders.StatusProcessing),
		order("b", orders.StatusOutForDelivery),
		order("c", orders.StatusDelivered),
		order("d", orders.StatusPending),
		order("e", orders.StatusCancelled),
	)

	armed, err := sim.Rearm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, armed)
	assert.True(t, sim.Active("a"))
	assert.True(t, sim.Active("b"))
	assert.False(t, sim.Active("c"))
	assert.False(t, sim.Active("d"))
}

func TestSimulator_ReconcileStopsStaleSimulations(t *testing.T) {
	sim, store, n := newTestSimulator(t, time.Hour,
		order("a", orders.StatusShipped),
		order("b", orders.StatusShipped),
	)
	ctx := context.Background()

	require.NoError(t, sim.Start(ctx, "a"))
	require.NoError(t, sim.Start(ctx, "b"))
	assert.Eventually(t, func() bool { return n.count() >= 2 }, wait, poll)

	// The stop call for "a" was missed.
	store.setStatus(t, "a", orders.StatusDelivered)

	assert.Equal(t, 1, sim.Reconcile(ctx))
	assert.False(t, sim.Active("a"))
	assert.True(t, sim.Active("b"))
}

func TestSimulator_Shutdown(t *testing.T) {
	sim, _, _ := newTestSimulator(t, 5*time.Millisecond, order("a", orders.StatusShipped))
	ctx := context.Background()

	require.NoError(t, sim.Start(ctx, "a"))

	shutdownCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	require.NoError(t, sim.Shutdown(shutdownCtx))
	assert.Equal(t, 0, sim.Count())

	assert.ErrorIs(t, sim.Start(ctx, "a"), ErrSimulatorClosed)
}

func TestSimulator_View(t *testing.T) {
	sim, _, _ := newTestSimulator(t, time.Hour, order("a", orders.StatusShipped), order("b", orders.StatusCancelled))
	ctx := context.Background()

	v, err := sim.View(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Waypoint)
	assert.Len(t, v.Route, domain.WaypointCount)
	assert.False(t, v.Active)

	v, err = sim.View(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, -1, v.Waypoint)

	_, err = sim.View(ctx, "missing")
	assert.ErrorIs(t, err, orders.ErrNotFound)
}
