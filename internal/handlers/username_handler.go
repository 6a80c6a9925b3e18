package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"foliosh/folio-api/internal/models"
	"foliosh/folio-api/internal/services"
)

type UsernameHandler struct {
	usernames services.UsernameService
}

func NewUsernameHandler(usernames services.UsernameService) *UsernameHandler {
	return &UsernameHandler{usernames: usernames}
}

// HandleGet handles GET /api/v1/username.
func (h *UsernameHandler) HandleGet(c *fiber.Ctx) error {
	username, err := h.usernames.Lookup(userID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if username == "" {
		return c.JSON(fiber.Map{"username": nil})
	}
	return c.JSON(fiber.Map{"username": username})
}

// HandleUpdate handles POST /api/v1/username (rename).
func (h *UsernameHandler) HandleUpdate(c *fiber.Ctx) error {
	uid := userID(c)

	var req models.UsernameUpdateRequest
	if err := c.BodyParser(&req); err != nil || req.Username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username is required",
		})
	}

	username, err := h.usernames.Update(uid, req.Username)
	if err != nil {
		var conflict *services.ConflictError
		if errors.As(err, &conflict) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": conflict.Reason,
			})
		}
		slog.Error("update username failed", "userId", uid, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"username": username})
}

// HandleCheck handles GET /api/v1/username/check?username=.
func (h *UsernameHandler) HandleCheck(c *fiber.Ctx) error {
	candidate := c.Query("username")
	if candidate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Username is required",
		})
	}

	availability, err := h.usernames.CheckAvailability(candidate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(models.AvailabilityResponse{
		Available: availability.Available,
		Reason:    availability.Reason,
	})
}
