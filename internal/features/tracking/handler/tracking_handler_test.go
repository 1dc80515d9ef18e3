package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	orders "fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/tracking/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubViewer returns a fixed view or error.
type stubViewer struct {
	view *service.TrackingView
	err  error
}

func (s *stubViewer) View(_ context.Context, orderID string) (*service.TrackingView, error) {
	if s.err != nil {
		return nil, s.err
	}
	v := *s.view
	v.OrderID = orderID
	return &v, nil
}

func newApp(v Viewer) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Get("/orders/:id/tracking", NewTrackingHandler(v).GetTracking)
	return app
}

// TestTrackingHandler_GetTracking_Success verifies the view is rendered.
func TestTrackingHandler_GetTracking_Success(t *testing.T) {
	app := newApp(&stubViewer{view: &service.TrackingView{
		Status:   orders.StatusShipped,
		Tracking: &orders.Tracking{TrackingNumber: "TRK-1"},
		Active:   true,
		Route:    []orders.Location{{Label: "Warehouse"}},
		Waypoint: 2,
	}})

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/ord-1/tracking", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ord-1", body["order_id"])
	assert.Equal(t, "shipped", body["status"])
	assert.Equal(t, true, body["active"])
	assert.Equal(t, float64(2), body["waypoint"])
	assert.Equal(t, "TRK-1", body["tracking"].(map[string]any)["tracking_number"])
}

// TestTrackingHandler_GetTracking_NotFound verifies missing orders map to 404.
func TestTrackingHandler_GetTracking_NotFound(t *testing.T) {
	app := newApp(&stubViewer{err: fmt.Errorf("%w: ord-x", orders.ErrNotFound)})

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/ord-x/tracking", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "test-ray-id", body.RayID)
}

// TestTrackingHandler_GetTracking_InternalError verifies store failures are not echoed.
func TestTrackingHandler_GetTracking_InternalError(t *testing.T) {
	app := newApp(&stubViewer{err: errors.New("redis: connection refused")})

	resp, err := app.Test(httptest.NewRequest("GET", "/orders/ord-1/tracking", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal Server Error", body.Message)
}
