package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ResumeStatus string

const (
	StatusDraft ResumeStatus = "draft"
	StatusLive  ResumeStatus = "live"
)

// Resume is the single persisted record per user: file metadata, the cached
// extracted text and the validated structured data. File fields are cleared
// together; FileContent and ResumeData are invalidated on every new upload.
type Resume struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	UserID      string         `gorm:"type:text;uniqueIndex;not null" json:"userId"`
	Status      ResumeStatus   `gorm:"type:text;not null;default:'draft'" json:"status"`
	FileName    *string        `gorm:"type:text" json:"fileName"`
	FileURL     *string        `gorm:"type:text" json:"fileUrl"`
	FileSize    *int64         `gorm:"type:bigint" json:"fileSize"`
	FileContent *string        `gorm:"type:text" json:"-"`
	ResumeData  datatypes.JSON `gorm:"type:jsonb" json:"resumeData"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Resume) TableName() string {
	return "resumes"
}

// HasResumeData reports whether validated structured data is present.
func (r *Resume) HasResumeData() bool {
	return len(r.ResumeData) > 0 && string(r.ResumeData) != "null"
}

// Username maps a user to their public profile slug. One row per user,
// mutable, never duplicated.
type Username struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"type:text;uniqueIndex;not null" json:"userId"`
	Username  string    `gorm:"type:text;uniqueIndex;not null" json:"username"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Username) TableName() string {
	return "usernames"
}
