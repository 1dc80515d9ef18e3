package handler

import (
	"net/http"
	"strings"

	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminIDHeader carries the authenticated administrator identity set by the upstream auth layer.
const AdminIDHeader = "X-Admin-ID"

// AdminHandler handles administrator HTTP requests: status transitions and the return workflow.
type AdminHandler struct {
	lifecycle *service.LifecycleService
	returns   *service.ReturnService
	queries   *service.QueryService
	retries   int
}

// NewAdminHandler creates a new instance of AdminHandler.
func NewAdminHandler(l *service.LifecycleService, r *service.ReturnService, q *service.QueryService, retries int) *AdminHandler {
	return &AdminHandler{
		lifecycle: l,
		returns:   r,
		queries:   q,
		retries:   retries,
	}
}

// TransitionBody is the payload of a status change.
type TransitionBody struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// ApproveBody is the payload of a return approval.
type ApproveBody struct {
	ShippingLabel string `json:"shipping_label"`
	Notes         string `json:"notes"`
}

// RejectBody is the payload of a return rejection.
type RejectBody struct {
	Reason string `json:"reason"`
}

// ReceivedBody is the payload confirming a returned item arrived.
type ReceivedBody struct {
	TrackingNumber string `json:"tracking_number"`
}

// RefundBody is the payload of a refund. Method is "original" (default) or "wallet".
type RefundBody struct {
	Method string `json:"method"`
}

// itemAction is the common shape of the item-level admin actions.
type itemAction func(c *fiber.Ctx, orderID string, index int, actorID string) (*domain.Order, error)

func (h *AdminHandler) actor(c *fiber.Ctx) (string, bool) {
	id := strings.TrimSpace(c.Get(AdminIDHeader))
	return id, id != ""
}

func (h *AdminHandler) runItemAction(c *fiber.Ctx, operation string, action itemAction) error {
	orderID := c.Params("id")

	actorID, ok := h.actor(c)
	if !ok {
		return badRequest(c, AdminIDHeader+" header is required")
	}

	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "item index must be an integer")
	}

	var order *domain.Order
	err = service.RetryOnConflict(c.UserContext(), h.retries, func() error {
		var err error
		order, err = action(c, orderID, index, actorID)
		return err
	})
	if err != nil {
		return writeError(c, operation, err,
			zap.String("order_id", orderID),
			zap.Int("item_index", index),
			zap.String("actor_id", actorID),
		)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// UpdateStatus handles an order status transition.
// @Summary Change order status
// @Description Moves the order to a new status, records the timeline entry and starts or stops the tracking simulation.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Admin-ID header string true "Admin ID"
// @Param body body TransitionBody true "Target status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")

	actorID, ok := h.actor(c)
	if !ok {
		return badRequest(c, AdminIDHeader+" header is required")
	}

	var body TransitionBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	status, err := domain.ParseOrderStatus(body.Status)
	if err != nil {
		return writeError(c, "transition", err, zap.String("order_id", orderID))
	}

	var order *domain.Order
	err = service.RetryOnConflict(c.UserContext(), h.retries, func() error {
		var err error
		order, err = h.lifecycle.Transition(c.UserContext(), orderID, status, actorID, body.Notes)
		return err
	})
	if err != nil {
		return writeError(c, "transition", err,
			zap.String("order_id", orderID),
			zap.String("status", string(status)),
			zap.String("actor_id", actorID),
		)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// ApproveReturn handles a return approval.
// @Summary Approve a return
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param index path int true "Item index"
// @Param X-Admin-ID header string true "Admin ID"
// @Param body body ApproveBody false "Shipping label and notes"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/orders/{id}/items/{index}/return/approve [post]
func (h *AdminHandler) ApproveReturn(c *fiber.Ctx) error {
	var body ApproveBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	return h.runItemAction(c, "approve_return", func(c *fiber.Ctx, orderID string, index int, actorID string) (*domain.Order, error) {
		return h.returns.Approve(c.UserContext(), orderID, index, actorID, body.ShippingLabel, body.Notes)
	})
}

// RejectReturn handles a return rejection.
// @Summary Reject a return
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param index path int true "Item index"
// @Param X-Admin-ID header string true "Admin ID"
// @Param body body RejectBody true "Rejection reason"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/orders/{id}/items/{index}/return/reject [post]
func (h *AdminHandler) RejectReturn(c *fiber.Ctx) error {
	var body RejectBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	return h.runItemAction(c, "reject_return", func(c *fiber.Ctx, orderID string, index int, actorID string) (*domain.Order, error) {
		return h.returns.Reject(c.UserContext(), orderID, index, actorID, body.Reason)
	})
}

// MarkReceived handles the confirmation that a returned item arrived.
// @Summary Mark a return as received
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param index path int true "Item index"
// @Param X-Admin-ID header string true "Admin ID"
// @Param body body ReceivedBody true "Return tracking number"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/orders/{id}/items/{index}/return/received [post]
func (h *AdminHandler) MarkReceived(c *fiber.Ctx) error {
	var body ReceivedBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	return h.runItemAction(c, "mark_returned", func(c *fiber.Ctx, orderID string, index int, _ string) (*domain.Order, error) {
		return h.returns.MarkReturned(c.UserContext(), orderID, index, body.TrackingNumber)
	})
}

// ProcessRefund handles the refund of a returned item.
// @Summary Refund a returned item
// @Description Refunds price times quantity through the payment gateway or the buyer's wallet.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param index path int true "Item index"
// @Param X-Admin-ID header string true "Admin ID"
// @Param body body RefundBody false "Refund method"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /admin/orders/{id}/items/{index}/return/refund [post]
func (h *AdminHandler) ProcessRefund(c *fiber.Ctx) error {
	var body RefundBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	method, err := domain.ParseRefundMethod(body.Method)
	if err != nil {
		return writeError(c, "process_refund", err)
	}

	return h.runItemAction(c, "process_refund", func(c *fiber.Ctx, orderID string, index int, actorID string) (*domain.Order, error) {
		return h.returns.ProcessRefund(c.UserContext(), orderID, index, actorID, method)
	})
}

// ListReturns handles the listing of return requests across orders.
// @Summary List return requests
// @Tags admin
// @Produce json
// @Param status query string false "Return status filter"
// @Success 200 {array} service.ReturnRequestView
// @Failure 400 {object} ErrorResponse
// @Router /admin/returns [get]
func (h *AdminHandler) ListReturns(c *fiber.Ctx) error {
	var filter *domain.ReturnStatus
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseReturnStatus(raw)
		if err != nil {
			return writeError(c, "list_returns", err)
		}
		filter = &status
	}

	views, err := h.queries.ListReturnRequests(c.UserContext(), filter)
	if err != nil {
		return writeError(c, "list_returns", err)
	}

	return c.JSON(views)
}

// Stats handles the order and return statistics request.
// @Summary Order and return statistics
// @Tags admin
// @Produce json
// @Success 200 {object} service.Stats
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.queries.Stats(c.UserContext())
	if err != nil {
		return writeError(c, "stats", err)
	}

	return c.JSON(stats)
}
