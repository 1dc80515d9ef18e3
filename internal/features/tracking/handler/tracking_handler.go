package handler

import (
	"context"
	"errors"
	"net/http"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/metrics"
	orders "fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Viewer builds tracking views.
type Viewer interface {
	View(ctx context.Context, orderID string) (*service.TrackingView, error)
}

// TrackingHandler handles HTTP requests for shipment tracking.
type TrackingHandler struct {
	viewer Viewer
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(viewer Viewer) *TrackingHandler {
	return &TrackingHandler{
		viewer: viewer,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// GetTracking godoc
// @Summary Get live tracking for an order
// @Description Returns the tracking block, the synthetic route and whether a simulation is moving the shipment
// @Tags tracking
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} service.TrackingView
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/{id}/tracking [get]
func (h *TrackingHandler) GetTracking(c *fiber.Ctx) error {
	orderID := c.Params("id")

	view, err := h.viewer.View(c.UserContext(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Message: "order not found",
				RayID:   rayID(c),
			})
		}

		metrics.OperationErrorsTotal.WithLabelValues("get_tracking").Inc()
		logger.Get().Error("Failed to build tracking view",
			zap.String("order_id", orderID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID(c),
		})
	}

	return c.JSON(view)
}

func rayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
