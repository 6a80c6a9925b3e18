package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"foliosh/folio-api/internal/models"
)

type UsernameRepository interface {
	FindByUserID(userID string) (*models.Username, error)
	FindByUsername(username string) (*models.Username, error)
	ExistsByUsername(username string) (bool, error)
	Create(userID, username string) (*models.Username, error)
	UpdateUsername(userID, username string) (*models.Username, error)
	DeleteByUserID(userID string) error
}

type usernameRepository struct {
	db *gorm.DB
}

func NewUsernameRepository(db *gorm.DB) UsernameRepository {
	return &usernameRepository{db: db}
}

// FindByUserID implements UsernameRepository.
func (r *usernameRepository) FindByUserID(userID string) (*models.Username, error) {
	var record models.Username
	if err := r.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find username: %w", err)
	}
	return &record, nil
}

// FindByUsername implements UsernameRepository. Lookup is case-insensitive:
// usernames are stored lowercase.
func (r *usernameRepository) FindByUsername(username string) (*models.Username, error) {
	var record models.Username
	if err := r.db.Where("username = ?", strings.ToLower(username)).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find username: %w", err)
	}
	return &record, nil
}

// ExistsByUsername implements UsernameRepository.
func (r *usernameRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Username{}).
		Where("username = ?", strings.ToLower(username)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// Create implements UsernameRepository. A unique-constraint violation maps to
// ErrConflict so racing allocations can retry with a different candidate.
func (r *usernameRepository) Create(userID, username string) (*models.Username, error) {
	record := &models.Username{
		ID:        uuid.New(),
		UserID:    userID,
		Username:  strings.ToLower(username),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := r.db.Create(record).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create username: %w", err)
	}
	return record, nil
}

// UpdateUsername implements UsernameRepository. Creates the row when the user
// has none yet.
func (r *usernameRepository) UpdateUsername(userID, username string) (*models.Username, error) {
	existing, err := r.FindByUserID(userID)
	if errors.Is(err, ErrNotFound) {
		return r.Create(userID, username)
	}
	if err != nil {
		return nil, err
	}

	result := r.db.Model(&models.Username{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"username":   strings.ToLower(username),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update username: %w", result.Error)
	}

	existing.Username = strings.ToLower(username)
	return existing, nil
}

// DeleteByUserID implements UsernameRepository. Idempotent.
func (r *usernameRepository) DeleteByUserID(userID string) error {
	result := r.db.Where("user_id = ?", userID).Delete(&models.Username{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete username: %w", result.Error)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Driver-specific messages the gorm translator may miss.
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
