package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/metrics"
	notify "fulfillment-tracker/internal/features/notifications/domain"
	orders "fulfillment-tracker/internal/features/orders/domain"
	orderservice "fulfillment-tracker/internal/features/orders/service"
	"fulfillment-tracker/internal/features/tracking/domain"
	"fulfillment-tracker/internal/features/tracking/ports"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ErrSimulatorClosed is returned by Start after Shutdown.
var ErrSimulatorClosed = errors.New("simulator is shut down")

const ensureTrackingAttempts = 3

// Config configures a Simulator.
type Config struct {
	// TickInterval is the period between position updates.
	TickInterval time.Duration
	// Base anchors every generated route.
	Base orders.Location
}

// Simulator owns the running shipment simulations, at most one per order.
// Each simulation is a goroutine driven by tick, status-changed and stop events.
type Simulator struct {
	store    ports.OrderStore
	notifier ports.Notifier
	cfg      Config

	now               func() time.Time
	newTrackingNumber func() string

	root       context.Context
	cancelRoot context.CancelFunc
	wg         sync.WaitGroup

	mu      sync.Mutex
	handles map[string]*handle
	closed  bool
}

// handle is the live state of one simulation.
type handle struct {
	cancel        context.CancelFunc
	statusChanged chan struct{}
}

// NewSimulator creates a Simulator. Simulations run until stopped, until their order
// reaches a terminal status, or until Shutdown.
func NewSimulator(store ports.OrderStore, notifier ports.Notifier, cfg Config) *Simulator {
	root, cancel := context.WithCancel(context.Background())
	return &Simulator{
		store:             store,
		notifier:          notifier,
		cfg:               cfg,
		now:               func() time.Time { return time.Now().UTC() },
		newTrackingNumber: func() string { return "TRK-" + ulid.Make().String() },
		root:              root,
		cancelRoot:        cancel,
		handles:           make(map[string]*handle),
	}
}

// Start arms the simulation of an order, replacing a running one.
// A missing tracking number or delivery estimate is assigned; existing ones are kept.
func (s *Simulator) Start(ctx context.Context, orderID string) error {
	if s.isClosed() {
		return ErrSimulatorClosed
	}

	if err := s.ensureTracking(ctx, orderID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSimulatorClosed
	}

	if old, ok := s.handles[orderID]; ok {
		old.cancel()
	}

	simCtx, cancel := context.WithCancel(s.root)
	h := &handle{
		cancel:        cancel,
		statusChanged: make(chan struct{}, 1),
	}
	s.handles[orderID] = h
	metrics.ActiveSimulations.Set(float64(len(s.handles)))

	s.wg.Add(1)
	go s.run(simCtx, orderID, h)

	logger.Named("simulator").Info("Tracking simulation started", zap.String("order_id", orderID))
	return nil
}

func (s *Simulator) ensureTracking(ctx context.Context, orderID string) error {
	return orderservice.RetryOnConflict(ctx, ensureTrackingAttempts, func() error {
		order, err := s.store.Get(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return fmt.Errorf("%w: cannot track order in status %s", orders.ErrInvalidState, order.Status)
		}
		if !order.EnsureTracking(s.now(), s.newTrackingNumber) {
			return nil
		}
		return s.store.Save(ctx, order)
	})
}

// Stop cancels the simulation of an order. It is a no-op when none is running.
// A write already in progress completes.
func (s *Simulator) Stop(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.handles[orderID]
	if !ok {
		return
	}
	delete(s.handles, orderID)
	h.cancel()
	metrics.ActiveSimulations.Set(float64(len(s.handles)))

	logger.Named("simulator").Info("Tracking simulation stopped", zap.String("order_id", orderID))
}

// StatusChanged wakes the simulation of an order so it moves to the new waypoint now.
func (s *Simulator) StatusChanged(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.handles[orderID]
	if !ok {
		return
	}
	select {
	case h.statusChanged <- struct{}{}:
	default:
		// A wake-up is already pending.
	}
}

// Active reports whether a simulation is running for the order.
func (s *Simulator) Active(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[orderID]
	return ok
}

// Count returns the number of running simulations.
func (s *Simulator) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

func (s *Simulator) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// release drops the handle when the simulation ended by itself.
func (s *Simulator) release(orderID string, h *handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handles[orderID] == h {
		delete(s.handles, orderID)
		metrics.ActiveSimulations.Set(float64(len(s.handles)))
	}
}

func (s *Simulator) run(ctx context.Context, orderID string, h *handle) {
	defer s.wg.Done()
	defer h.cancel()
	defer s.release(orderID, h)

	route := domain.NewRoute(orderID, s.cfg.Base)
	rng := newRand(orderID)
	cursor := 0

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		if s.step(ctx, orderID, route, rng, &cursor) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-h.statusChanged:
		}
	}
}

// step performs one read-modify-write of the simulated position.
// It reports true when the simulation must end.
func (s *Simulator) step(ctx context.Context, orderID string, route domain.Route, rng *rand.Rand, cursor *int) bool {
	if ctx.Err() != nil {
		return true
	}
	// Once started, the write is not aborted by Stop.
	wctx := context.WithoutCancel(ctx)
	log := logger.Named("simulator").With(zap.String("order_id", orderID))

	order, err := s.store.Get(wctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		metrics.SimulationTicksTotal.WithLabelValues("missing").Inc()
		log.Warn("Order disappeared, ending simulation")
		return true
	}
	if err != nil {
		metrics.SimulationTicksTotal.WithLabelValues("error").Inc()
		log.Error("Failed to read order", zap.Error(err))
		return false
	}

	if order.Status.Terminal() {
		metrics.SimulationTicksTotal.WithLabelValues("terminal").Inc()
		log.Info("Order reached terminal status, ending simulation", zap.String("status", string(order.Status)))
		return true
	}

	*cursor = domain.Advance(*cursor, order.Status)
	position := domain.Jitter(route[*cursor], rng)
	now := s.now()

	order.EnsureTracking(now, s.newTrackingNumber)
	order.Tracking.CurrentLocation = &position
	order.Tracking.LastUpdate = now

	if err := s.store.Save(wctx, order); err != nil {
		if errors.Is(err, orders.ErrPersistenceConflict) {
			// The admin write wins; the next tick re-reads.
			metrics.SimulationTicksTotal.WithLabelValues("conflict").Inc()
			log.Debug("Position write lost to a concurrent update")
			return false
		}
		metrics.SimulationTicksTotal.WithLabelValues("error").Inc()
		log.Error("Failed to save position", zap.Error(err))
		return false
	}

	metrics.SimulationTicksTotal.WithLabelValues("moved").Inc()
	s.notifier.Broadcast(wctx, notify.KindTrackingUpdate, order)
	return false
}

func newRand(orderID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(orderID))
	return rand.New(rand.NewPCG(h.Sum64(), uint64(time.Now().UnixNano())))
}

// Rearm starts a simulation for every in-flight order. Terminal orders are never re-armed.
func (s *Simulator) Rearm(ctx context.Context) (int, error) {
	inFlight, err := s.store.Find(ctx, func(o *orders.Order) bool {
		return o.Status.InFlight()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list in-flight orders: %w", err)
	}

	armed := 0
	for _, o := range inFlight {
		if err := s.Start(ctx, o.ID); err != nil {
			logger.Named("simulator").Warn("Failed to re-arm simulation",
				zap.String("order_id", o.ID),
				zap.Error(err),
			)
			continue
		}
		armed++
	}
	return armed, nil
}

// Reconcile stops every simulation whose order is terminal or gone. It returns how many were stopped.
func (s *Simulator) Reconcile(ctx context.Context) int {
	s.mu.Lock()
	ids := make([]string, 0, len(s.handles))
	for id := range s.handles {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	stopped := 0
	for _, id := range ids {
		order, err := s.store.Get(ctx, id)
		switch {
		case errors.Is(err, orders.ErrNotFound):
		case err != nil:
			logger.Named("simulator").Warn("Sweep could not read order", zap.String("order_id", id), zap.Error(err))
			continue
		case !order.Status.Terminal():
			continue
		}
		s.Stop(id)
		stopped++
	}
	return stopped
}

// RunSweeper calls Reconcile every interval until ctx is done.
func (s *Simulator) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Reconcile(ctx); n > 0 {
				logger.Named("simulator").Info("Sweep stopped stale simulations", zap.Int("stopped", n))
			}
		}
	}
}

// Shutdown stops every simulation and waits for in-flight writes, bounded by ctx.
func (s *Simulator) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for id, h := range s.handles {
		h.cancel()
		delete(s.handles, id)
	}
	metrics.ActiveSimulations.Set(0)
	s.mu.Unlock()

	s.cancelRoot()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("simulations did not finish: %w", ctx.Err())
	}
}
