package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"foliosh/folio-api/internal/models"
	"foliosh/folio-api/internal/repositories"
	"foliosh/folio-api/internal/services"
)

type GenerateHandler struct {
	resumeRepo repositories.ResumeRepository
	pdfParser  services.PDFParserService
	generator  services.GeneratorService
	usernames  services.UsernameService
}

func NewGenerateHandler(
	resumeRepo repositories.ResumeRepository,
	pdfParser services.PDFParserService,
	generator services.GeneratorService,
	usernames services.UsernameService,
) *GenerateHandler {
	return &GenerateHandler{
		resumeRepo: resumeRepo,
		pdfParser:  pdfParser,
		generator:  generator,
		usernames:  usernames,
	}
}

// HandleGenerate handles POST /api/v1/generate. Extraction and structured
// parsing both run lazily: cached results are reused until a new upload
// invalidates them, so repeated calls are cheap and idempotent.
func (h *GenerateHandler) HandleGenerate(c *fiber.Ctx) error {
	uid := userID(c)

	record, err := h.resumeRepo.FindByUserID(uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Upload a resume before generating",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if record.FileURL == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Upload a resume before generating",
		})
	}

	if record.FileContent == nil {
		slog.Info("extracting pdf content before generation", "userId", uid)

		text, err := h.pdfParser.ExtractFromURL(c.Context(), *record.FileURL)
		if err != nil {
			// Extraction failures are fatal for this request; the user
			// re-uploads or retries. Internals stay in the log.
			slog.Error("pdf extraction failed", "userId", uid, "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Failed to read the uploaded PDF",
			})
		}

		record, err = h.resumeRepo.Upsert(uid, repositories.ResumeUpdate{
			FileContent: repositories.Set(text),
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
	}

	usedFallback := false
	if !record.HasResumeData() && record.FileContent != nil {
		slog.Info("generating resume data", "userId", uid)

		data, fallback := h.generator.Generate(c.Context(), *record.FileContent)
		usedFallback = fallback

		payload, err := json.Marshal(data)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}

		record, err = h.resumeRepo.Upsert(uid, repositories.ResumeUpdate{
			ResumeData: repositories.Set(datatypes.JSON(payload)),
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
	}

	username, err := h.usernames.Ensure(uid, displayName(c))
	if err != nil {
		slog.Error("failed to ensure username", "userId", uid, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(models.GenerateResponse{
		Resume:       record,
		Username:     username,
		UsedFallback: usedFallback,
	})
}
