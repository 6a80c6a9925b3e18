package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"foliosh/folio-api/internal/models"
)

type ResumeRepository interface {
	FindByUserID(userID string) (*models.Resume, error)
	Upsert(userID string, update ResumeUpdate) (*models.Resume, error)
	DeleteByUserID(userID string) error
}

// ResumeUpdate is a partial write against a user's resume row. Unset fields
// are left unchanged, cleared fields become NULL.
type ResumeUpdate struct {
	Status      Field[models.ResumeStatus]
	FileName    Field[string]
	FileURL     Field[string]
	FileSize    Field[int64]
	FileContent Field[string]
	ResumeData  Field[datatypes.JSON]
}

func (u ResumeUpdate) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	u.Status.Apply(updates, "status")
	u.FileName.Apply(updates, "file_name")
	u.FileURL.Apply(updates, "file_url")
	u.FileSize.Apply(updates, "file_size")
	u.FileContent.Apply(updates, "file_content")
	u.ResumeData.Apply(updates, "resume_data")
	return updates
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// FindByUserID implements ResumeRepository.
func (r *resumeRepository) FindByUserID(userID string) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.Where("user_id = ?", userID).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &resume, nil
}

// Upsert implements ResumeRepository. Creates the row on first write, merges
// on subsequent writes.
func (r *resumeRepository) Upsert(userID string, update ResumeUpdate) (*models.Resume, error) {
	existing, err := r.FindByUserID(userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		resume := &models.Resume{
			ID:        uuid.New(),
			UserID:    userID,
			Status:    models.StatusDraft,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		applyToModel(resume, update)

		if err := r.db.Create(resume).Error; err != nil {
			return nil, fmt.Errorf("failed to create resume: %w", err)
		}
		return resume, nil
	}

	updates := update.updates()
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		result := r.db.Model(&models.Resume{}).
			Where("user_id = ?", userID).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update resume: %w", result.Error)
		}
	}

	return r.FindByUserID(userID)
}

// DeleteByUserID implements ResumeRepository. Deleting a non-existent record
// is a no-op: deletion events are delivered at least once.
func (r *resumeRepository) DeleteByUserID(userID string) error {
	result := r.db.Where("user_id = ?", userID).Delete(&models.Resume{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete resume: %w", result.Error)
	}
	return nil
}

func applyToModel(resume *models.Resume, update ResumeUpdate) {
	if status, ok := update.Status.Value(); ok {
		resume.Status = status
	}
	if name, ok := update.FileName.Value(); ok {
		resume.FileName = &name
	}
	if url, ok := update.FileURL.Value(); ok {
		resume.FileURL = &url
	}
	if size, ok := update.FileSize.Value(); ok {
		resume.FileSize = &size
	}
	if content, ok := update.FileContent.Value(); ok {
		resume.FileContent = &content
	}
	if data, ok := update.ResumeData.Value(); ok {
		resume.ResumeData = data
	}
}
