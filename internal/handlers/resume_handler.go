package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"foliosh/folio-api/internal/models"
	"foliosh/folio-api/internal/repositories"
	"foliosh/folio-api/internal/resume"
	"foliosh/folio-api/internal/services"
)

type ResumeHandler struct {
	resumeRepo repositories.ResumeRepository
	storage    services.StorageService
}

func NewResumeHandler(
	resumeRepo repositories.ResumeRepository,
	storage services.StorageService,
) *ResumeHandler {
	return &ResumeHandler{
		resumeRepo: resumeRepo,
		storage:    storage,
	}
}

// HandleGet handles GET /api/v1/resume.
func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	record, err := h.resumeRepo.FindByUserID(userID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(fiber.Map{"resume": nil})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"resume": record})
}

// HandleUpdate handles PUT /api/v1/resume, the manual-edit path. Structured
// data goes through the validator before it is persisted; edits do not touch
// fields the body omits.
func (h *ResumeHandler) HandleUpdate(c *fiber.Ctx) error {
	uid := userID(c)

	var req models.ResumeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	update := repositories.ResumeUpdate{}

	if req.Status != nil {
		status := models.ResumeStatus(*req.Status)
		if status != models.StatusDraft && status != models.StatusLive {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Status must be draft or live",
			})
		}
		update.Status = repositories.Set(status)
	}

	if req.FileName != nil {
		update.FileName = repositories.Set(*req.FileName)
	}

	if len(req.ResumeData) > 0 {
		data, err := resume.Validate(req.ResumeData)
		if err != nil {
			var verr *resume.ValidationError
			if errors.As(err, &verr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error":   "Invalid resume data",
					"details": verr.Fields,
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid resume data",
			})
		}

		payload, err := json.Marshal(data)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
		update.ResumeData = repositories.Set(datatypes.JSON(payload))
	}

	record, err := h.resumeRepo.Upsert(uid, update)
	if err != nil {
		slog.Error("update resume failed", "userId", uid, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"resume": record})
}

// HandleStatus handles PATCH /api/v1/resume. The status flag itself is a
// plain two-state toggle; going live without structured data is rejected
// here, at the caller-facing layer.
func (h *ResumeHandler) HandleStatus(c *fiber.Ctx) error {
	uid := userID(c)

	var req models.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	status := models.ResumeStatus(req.Status)
	if status != models.StatusDraft && status != models.StatusLive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status must be draft or live",
		})
	}

	record, err := h.resumeRepo.FindByUserID(uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No resume to publish",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if status == models.StatusLive && !record.HasResumeData() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Generate your resume before publishing",
		})
	}

	record, err = h.resumeRepo.Upsert(uid, repositories.ResumeUpdate{
		Status: repositories.Set(status),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"resume": record})
}

// HandleClearFile handles POST /api/v1/resume/clear-file. The three file
// fields go away together; structured data stays untouched.
func (h *ResumeHandler) HandleClearFile(c *fiber.Ctx) error {
	uid := userID(c)

	record, err := h.resumeRepo.FindByUserID(uid)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if record != nil && record.FileURL != nil {
		if key, ok := h.storage.ObjectKeyFromURL(*record.FileURL); ok {
			if err := h.storage.Delete(c.Context(), key); err != nil {
				slog.Warn("failed to delete stored file", "userId", uid, "error", err)
			}
		}
	}

	_, err = h.resumeRepo.Upsert(uid, repositories.ResumeUpdate{
		FileName: repositories.Clear[string](),
		FileURL:  repositories.Clear[string](),
		FileSize: repositories.Clear[int64](),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
