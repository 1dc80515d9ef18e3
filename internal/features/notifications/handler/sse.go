package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/features/notifications/domain"
	"fulfillment-tracker/internal/features/notifications/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const keepAliveInterval = 15 * time.Second

// EventsHandler streams notification events to observers as Server-Sent Events.
type EventsHandler struct {
	hub *service.Hub
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *service.Hub) *EventsHandler {
	return &EventsHandler{
		hub: hub,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// Broadcast godoc
// @Summary Stream public order events
// @Description Server-Sent Events stream of order-status-update and tracking-update events for every order
// @Tags events
// @Produce text/event-stream
// @Success 200 {object} domain.Event
// @Router /events [get]
func (h *EventsHandler) Broadcast(c *fiber.Ctx) error {
	return h.stream(c, domain.TopicBroadcast)
}

// Buyer godoc
// @Summary Stream a buyer's events
// @Description Public events plus the buyer's private return-request-update and refund-processed events
// @Tags events
// @Produce text/event-stream
// @Param buyerId path string true "Buyer ID"
// @Success 200 {object} domain.Event
// @Failure 400 {object} ErrorResponse
// @Router /events/buyers/{buyerId} [get]
func (h *EventsHandler) Buyer(c *fiber.Ctx) error {
	buyerID := c.Params("buyerId")
	if buyerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "buyer id is required",
			RayID:   rayID(c),
		})
	}
	return h.stream(c, domain.TopicBroadcast, domain.BuyerTopic(buyerID))
}

// Admin godoc
// @Summary Stream admin events
// @Description Public events plus every buyer's return and refund events
// @Tags events
// @Produce text/event-stream
// @Success 200 {object} domain.Event
// @Router /events/admin [get]
func (h *EventsHandler) Admin(c *fiber.Ctx) error {
	return h.stream(c, domain.TopicBroadcast, domain.TopicAdmin)
}

func (h *EventsHandler) stream(c *fiber.Ctx, topics ...string) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(topics...)
	id := rayID(c)
	log := logger.Named("sse").With(zap.String("ray_id", id), zap.Strings("topics", topics))
	log.Debug("Observer connected")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		defer log.Debug("Observer disconnected")

		fmt.Fprint(w, "retry: 3000\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := writeEvent(w, event); err != nil {
					log.Warn("Failed to encode event", zap.Error(err))
					continue
				}
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
			}

			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

// writeEvent renders one event in text/event-stream framing.
func writeEvent(w io.Writer, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, data)
	return err
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}
