package handler

import (
	"net/http"
	"strings"

	"fulfillment-tracker/internal/features/orders/domain"
	"fulfillment-tracker/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BuyerIDHeader carries the authenticated buyer identity set by the upstream auth layer.
const BuyerIDHeader = "X-User-ID"

// OrderHandler handles buyer-facing HTTP requests related to orders.
type OrderHandler struct {
	queries *service.QueryService
	returns *service.ReturnService
	retries int
}

// NewOrderHandler creates a new instance of OrderHandler.
// retries bounds how often a write is re-run after a concurrent modification.
func NewOrderHandler(q *service.QueryService, r *service.ReturnService, retries int) *OrderHandler {
	return &OrderHandler{
		queries: q,
		returns: r,
		retries: retries,
	}
}

// ReturnRequestBody is the payload of a buyer return request.
type ReturnRequestBody struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

// GetOrder handles the request to retrieve an order.
// @Summary Get Order by ID
// @Description Fetch the order with its status timeline, tracking and return state.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	order, err := h.queries.GetOrder(c.UserContext(), orderID)
	if err != nil {
		return writeError(c, "get_order", err, zap.String("order_id", orderID))
	}

	return c.Status(http.StatusOK).JSON(order)
}

// RequestReturn handles a buyer's return request for one line item.
// @Summary Request a return
// @Description Opens a return for a delivered item within the return window.
// @Tags returns
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param index path int true "Item index"
// @Param X-User-ID header string true "Buyer ID"
// @Param body body ReturnRequestBody true "Return reason"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/items/{index}/return [post]
func (h *OrderHandler) RequestReturn(c *fiber.Ctx) error {
	orderID := c.Params("id")

	buyerID := strings.TrimSpace(c.Get(BuyerIDHeader))
	if buyerID == "" {
		return badRequest(c, BuyerIDHeader+" header is required")
	}

	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "item index must be an integer")
	}

	var body ReturnRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	var order *domain.Order
	err = service.RetryOnConflict(c.UserContext(), h.retries, func() error {
		var err error
		order, err = h.returns.RequestReturn(c.UserContext(), orderID, index, buyerID, body.Reason, body.Description)
		return err
	})
	if err != nil {
		return writeError(c, "request_return", err,
			zap.String("order_id", orderID),
			zap.Int("item_index", index),
		)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// GetWallet handles the request to read a buyer's wallet.
// @Summary Get wallet
// @Description Wallet balance in minor units and the ledger of credits.
// @Tags wallet
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} service.Wallet
// @Failure 400 {object} ErrorResponse
// @Router /users/{id}/wallet [get]
func (h *OrderHandler) GetWallet(c *fiber.Ctx) error {
	userID := c.Params("id")

	wallet, err := h.queries.Wallet(c.UserContext(), userID)
	if err != nil {
		return writeError(c, "get_wallet", err, zap.String("user_id", userID))
	}

	return c.JSON(wallet)
}
