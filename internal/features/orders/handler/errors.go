package handler

import (
	"errors"
	"net/http"

	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/features/orders/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// statusFor maps the domain error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrPersistenceConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGatewayFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and renders it. Internal errors are not echoed to the client.
func writeError(c *fiber.Ctx, operation string, err error, fields ...zap.Field) error {
	status := statusFor(err)
	id := rayID(c)

	fields = append(fields,
		zap.String("operation", operation),
		zap.String("ray_id", id),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		logger.Get().Error("Request failed", fields...)
	} else {
		logger.Get().Warn("Request rejected", fields...)
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal Server Error"
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   id,
	})
}
