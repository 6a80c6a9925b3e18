package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"foliosh/folio-api/internal/models"
	"foliosh/folio-api/internal/repositories"
	"foliosh/folio-api/internal/services"
)

type UploadHandler struct {
	resumeRepo  repositories.ResumeRepository
	storage     services.StorageService
	maxFileSize int64
}

func NewUploadHandler(
	resumeRepo repositories.ResumeRepository,
	storage services.StorageService,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		resumeRepo:  resumeRepo,
		storage:     storage,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /api/v1/upload. Replaces the user's stored PDF
// and invalidates the cached extraction and structured data so the next
// generate run starts from the new file.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	uid := userID(c)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	contentType := file.Header.Get(fiber.HeaderContentType)
	if contentType != "application/pdf" {
		slog.Warn("invalid upload type", "userId", uid, "contentType", contentType)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only PDF files are allowed",
		})
	}

	if file.Size > h.maxFileSize {
		slog.Warn("upload too large", "userId", uid, "fileSize", file.Size)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File size must be less than 10MB",
		})
	}

	// Delete the previous object before the new one replaces it.
	existing, err := h.resumeRepo.FindByUserID(uid)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	if existing != nil && existing.FileURL != nil {
		if key, ok := h.storage.ObjectKeyFromURL(*existing.FileURL); ok {
			if err := h.storage.Delete(c.Context(), key); err != nil {
				slog.Warn("failed to delete old file", "userId", uid, "error", err)
			}
		}
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer src.Close()

	objectKey := fmt.Sprintf("%s/%d-%s", uid, time.Now().UnixMilli(), file.Filename)
	fileURL, err := h.storage.Upload(c.Context(), objectKey, src, file.Size, contentType)
	if err != nil {
		slog.Error("upload failed", "userId", uid, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload file",
		})
	}

	_, err = h.resumeRepo.Upsert(uid, repositories.ResumeUpdate{
		FileName:    repositories.Set(file.Filename),
		FileURL:     repositories.Set(fileURL),
		FileSize:    repositories.Set(file.Size),
		FileContent: repositories.Clear[string](),
		ResumeData:  repositories.Clear[datatypes.JSON](),
	})
	if err != nil {
		slog.Error("failed to store upload", "userId", uid, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	slog.Info("upload successful", "userId", uid, "fileName", file.Filename)

	return c.JSON(models.UploadResponse{
		FileName: file.Filename,
		FileURL:  fileURL,
		FileSize: file.Size,
	})
}
