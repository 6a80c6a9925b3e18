package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"foliosh/folio-api/internal/models"
	"foliosh/folio-api/internal/repositories"
)

type PublicHandler struct {
	resumeRepo   repositories.ResumeRepository
	usernameRepo repositories.UsernameRepository
}

func NewPublicHandler(
	resumeRepo repositories.ResumeRepository,
	usernameRepo repositories.UsernameRepository,
) *PublicHandler {
	return &PublicHandler{
		resumeRepo:   resumeRepo,
		usernameRepo: usernameRepo,
	}
}

// HandleProfile handles GET /p/:username, the public profile route. Content
// resolves only when the record is live AND structured data exists; every
// other case is the same not-found, so draft profiles are indistinguishable
// from missing ones.
func (h *PublicHandler) HandleProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	lookup, err := h.usernameRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	record, err := h.resumeRepo.FindByUserID(lookup.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if record.Status != models.StatusLive || !record.HasResumeData() {
		return notFound(c)
	}

	return c.JSON(fiber.Map{
		"username":   lookup.Username,
		"resumeData": record.ResumeData,
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Profile not found",
	})
}
