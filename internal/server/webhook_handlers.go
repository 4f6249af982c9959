package server

import (
	"log/slog"

	"anex/internal/middleware"
	"anex/internal/models"

	"github.com/gofiber/fiber/v2"
)

// webhookPayload is the common envelope for vendor webhook deliveries.
type webhookPayload struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
	Error       *struct {
		ErrorCode    string `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"error"`
}

// TransactionsWebhook handles POST /api/webhooks/transactions. Update codes
// trigger a sync for the named item; everything else is only logged.
func (s *Server) TransactionsWebhook(c *fiber.Ctx) error {
	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid webhook payload"))
	}

	middleware.Logger.InfoContext(c.Context(), "transactions webhook received",
		slog.String("code", payload.WebhookCode),
		slog.String("item_id", payload.ItemID))

	switch payload.WebhookCode {
	case "SYNC_UPDATES_AVAILABLE", "DEFAULT_UPDATE", "INITIAL_UPDATE", "HISTORICAL_UPDATE", "TRANSACTIONS_REMOVED":
		result, err := s.finance.Sync(c.Context(), payload.ItemID)
		if err != nil {
			middleware.Logger.ErrorContext(c.Context(), "webhook-triggered sync failed",
				slog.String("item_id", payload.ItemID),
				slog.String("error", err.Error()))
			// The vendor retries on non-2xx; a missing item will never
			// succeed, so acknowledge those.
			return c.JSON(fiber.Map{"status": "error"})
		}
		return c.JSON(fiber.Map{"status": "synced", "result": result})
	default:
		return c.JSON(fiber.Map{"status": "ignored"})
	}
}

// ItemWebhook handles POST /api/webhooks/item. Item lifecycle events are
// recorded but not acted on; re-link flows are driven from the client.
func (s *Server) ItemWebhook(c *fiber.Ctx) error {
	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid webhook payload"))
	}

	attrs := []any{
		slog.String("code", payload.WebhookCode),
		slog.String("item_id", payload.ItemID),
	}
	if payload.Error != nil {
		attrs = append(attrs, slog.String("vendor_error", payload.Error.ErrorCode))
	}

	switch payload.WebhookCode {
	case "ITEM_LOGIN_REQUIRED", "PENDING_EXPIRATION", "NEW_ACCOUNTS_AVAILABLE":
		middleware.Logger.WarnContext(c.Context(), "item needs attention", attrs...)
	default:
		middleware.Logger.InfoContext(c.Context(), "item webhook received", attrs...)
	}

	return c.JSON(fiber.Map{"status": "acknowledged"})
}
