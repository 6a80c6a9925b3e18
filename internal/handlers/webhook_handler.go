package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"foliosh/folio-api/internal/models"
	"foliosh/folio-api/internal/services"
)

const signatureHeader = "X-Webhook-Signature"

type WebhookHandler struct {
	deleter services.DeletionWorker
	secret  string
}

func NewWebhookHandler(deleter services.DeletionWorker, secret string) *WebhookHandler {
	return &WebhookHandler{deleter: deleter, secret: secret}
}

// HandleIdentityEvent handles POST /webhooks/identity. The response is sent
// before any deletion work happens: the event is acknowledged and handed to
// the background worker, keeping webhook latency flat. Delivery is
// at-least-once, so the deletion path must be (and is) idempotent.
func (h *WebhookHandler) HandleIdentityEvent(c *fiber.Ctx) error {
	if h.secret == "" {
		slog.Error("webhook secret is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Webhook configuration error",
		})
	}

	if !h.verifySignature(c.Body(), c.Get(signatureHeader)) {
		slog.Warn("webhook signature verification failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event payload",
		})
	}

	if event.Data.ID == "" {
		slog.Error("invalid user id in webhook event", "eventType", event.Type)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	slog.Info("received identity webhook", "eventType", event.Type, "userId", event.Data.ID)

	if event.Type == "user.deleted" {
		h.deleter.Enqueue(event.Data.ID)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Webhook accepted",
	})
}

// HandleSelfDelete handles DELETE /api/v1/user: the authenticated variant of
// account deletion, performed synchronously so the client can confirm.
func (h *WebhookHandler) HandleSelfDelete(c *fiber.Ctx) error {
	uid := userID(c)

	if err := h.deleter.DeleteUserData(c.Context(), uid); err != nil {
		slog.Error("self deletion failed", "userId", uid, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete account",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account deleted successfully",
	})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
