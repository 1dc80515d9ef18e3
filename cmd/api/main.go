package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/core/config"
	"fulfillment-tracker/internal/core/httpclient"
	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/server"
	notifyadapter "fulfillment-tracker/internal/features/notifications/adapters"
	notifyhandler "fulfillment-tracker/internal/features/notifications/handler"
	notifyports "fulfillment-tracker/internal/features/notifications/ports"
	notifyservice "fulfillment-tracker/internal/features/notifications/service"
	orderadapter "fulfillment-tracker/internal/features/orders/adapters"
	orderdomain "fulfillment-tracker/internal/features/orders/domain"
	orderhandler "fulfillment-tracker/internal/features/orders/handler"
	orderservice "fulfillment-tracker/internal/features/orders/service"
	trackinghandler "fulfillment-tracker/internal/features/tracking/handler"
	trackingservice "fulfillment-tracker/internal/features/tracking/service"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// @title Fulfillment Tracker API
// @version 1.0
// @description Order status lifecycle, simulated shipment tracking, returns and refunds with live notifications.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("transition_policy", cfg.Lifecycle.TransitionPolicy),
		zap.String("notify_transport", cfg.Notify.Transport),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Redis and run Health Check
	redisAdapter, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisAdapter.Close()

	if err := redisAdapter.Ping(ctx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	store := orderadapter.NewRedisOrderStore(redisAdapter)

	gateway, err := orderadapter.NewStripeGateway(
		cfg.Stripe.APIKey,
		cfg.Stripe.AccountID,
		httpclient.NewClient("stripe", cfg.Stripe.Timeout),
	)
	if err != nil {
		l.Fatal("Failed to initialize refund gateway", zap.Error(err))
	}

	// Initialize Notification Fan-out
	hub := notifyservice.NewHub(cfg.Notify.Buffer)
	defer hub.Close()

	var publisher notifyports.Publisher = hub
	if cfg.Notify.Transport == config.TransportRedis {
		bus := notifyadapter.NewRedisBus(redisAdapter, cfg.Notify.Channel)
		ready := make(chan struct{})
		relayErr := make(chan error, 1)
		go func() {
			relayErr <- bus.Relay(ctx, hub, ready)
		}()

		select {
		case <-ready:
		case err := <-relayErr:
			l.Fatal("Failed to start notification relay", zap.Error(err))
		}
		publisher = bus
	}
	emitter := notifyservice.NewEmitter(publisher)

	// Initialize Tracking Simulator
	simulator := trackingservice.NewSimulator(store, emitter, trackingservice.Config{
		TickInterval: cfg.Tracking.TickInterval,
		Base: orderdomain.Location{
			Latitude:  cfg.Tracking.BaseLatitude,
			Longitude: cfg.Tracking.BaseLongitude,
		},
	})

	policy, err := orderdomain.PolicyByName(cfg.Lifecycle.TransitionPolicy)
	if err != nil {
		l.Fatal("Invalid transition policy", zap.Error(err))
	}

	// Initialize Order Services & Handlers
	lifecycle := orderservice.NewLifecycleService(store, simulator, emitter, policy)
	returns := orderservice.NewReturnService(store, gateway, emitter, cfg.Stripe.Timeout)
	queries := orderservice.NewQueryService(store)

	orderHdl := orderhandler.NewOrderHandler(queries, returns, cfg.Lifecycle.ConflictRetries)
	adminHdl := orderhandler.NewAdminHandler(lifecycle, returns, queries, cfg.Lifecycle.ConflictRetries)
	trackingHdl := trackinghandler.NewTrackingHandler(simulator)
	eventsHdl := notifyhandler.NewEventsHandler(hub)

	srv := server.New(cfg, redisAdapter)

	// Register Routes
	srv.App.Get("/orders/:id", orderHdl.GetOrder)
	srv.App.Get("/orders/:id/tracking", trackingHdl.GetTracking)
	srv.App.Post("/orders/:id/items/:index/return", orderHdl.RequestReturn)
	srv.App.Get("/users/:id/wallet", orderHdl.GetWallet)

	admin := srv.App.Group("/admin")
	admin.Patch("/orders/:id/status", adminHdl.UpdateStatus)
	admin.Post("/orders/:id/items/:index/return/approve", adminHdl.ApproveReturn)
	admin.Post("/orders/:id/items/:index/return/reject", adminHdl.RejectReturn)
	admin.Post("/orders/:id/items/:index/return/received", adminHdl.MarkReceived)
	admin.Post("/orders/:id/items/:index/return/refund", adminHdl.ProcessRefund)
	admin.Get("/returns", adminHdl.ListReturns)
	admin.Get("/stats", adminHdl.Stats)

	srv.App.Get("/events", eventsHdl.Broadcast)
	srv.App.Get("/events/buyers/:buyerId", eventsHdl.Buyer)
	srv.App.Get("/events/admin", eventsHdl.Admin)

	// Re-arm simulations lost with the previous process
	armed, err := simulator.Rearm(ctx)
	if err != nil {
		l.Error("Failed to re-arm tracking simulations", zap.Error(err))
	} else {
		l.Info("Tracking simulations re-armed", zap.Int("count", armed))
	}
	go simulator.RunSweeper(ctx, cfg.Tracking.SweepInterval)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			l.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		l.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Close SSE streams first so the server does not wait on them.
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("Server shutdown failed", zap.Error(err))
	}
	if err := simulator.Shutdown(shutdownCtx); err != nil {
		l.Error("Simulator shutdown failed", zap.Error(err))
	}

	l.Info("Application stopped")
}
