package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foliosh/folio-api/internal/models"
	"foliosh/folio-api/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single in-memory database only survives on one connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Resume{}, &models.Username{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func TestResumeRepository_UpsertCreatesThenMerges(t *testing.T) {
	repo := repositories.NewResumeRepository(setupTestDB(t))

	created, err := repo.Upsert("user-1", repositories.ResumeUpdate{
		FileName: repositories.Set("resume.pdf"),
		FileURL:  repositories.Set("https://cdn.example.com/u/resume.pdf"),
		FileSize: repositories.Set(int64(1024)),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, created.Status)
	require.NotNil(t, created.FileName)
	assert.Equal(t, "resume.pdf", *created.FileName)

	merged, err := repo.Upsert("user-1", repositories.ResumeUpdate{
		ResumeData: repositories.Set(datatypes.JSON(`{"header":{"name":"X"}}`)),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, merged.ID)
	require.NotNil(t, merged.FileName)
	assert.Equal(t, "resume.pdf", *merged.FileName)
	assert.True(t, merged.HasResumeData())
}

func TestResumeRepository_ClearFieldLeavesOthersUntouched(t *testing.T) {
	repo := repositories.NewResumeRepository(setupTestDB(t))

	_, err := repo.Upsert("user-1", repositories.ResumeUpdate{
		FileURL:    repositories.Set("https://cdn.example.com/u/resume.pdf"),
		ResumeData: repositories.Set(datatypes.JSON(`{"header":{"name":"X"}}`)),
	})
	require.NoError(t, err)

	updated, err := repo.Upsert("user-1", repositories.ResumeUpdate{
		FileURL: repositories.Clear[string](),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.FileURL)
	assert.True(t, updated.HasResumeData(), "clearing the file must not touch structured data")
}

func TestResumeRepository_FindMissing(t *testing.T) {
	repo := repositories.NewResumeRepository(setupTestDB(t))

	_, err := repo.FindByUserID("nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestResumeRepository_DeleteIdempotent(t *testing.T) {
	repo := repositories.NewResumeRepository(setupTestDB(t))

	_, err := repo.Upsert("user-1", repositories.ResumeUpdate{
		FileName: repositories.Set("resume.pdf"),
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByUserID("user-1"))
	require.NoError(t, repo.DeleteByUserID("user-1"), "second delete must be a no-op")

	_, err = repo.FindByUserID("user-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
