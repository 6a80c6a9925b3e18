package handlers_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"foliosh/folio-api/internal/handlers"
	"foliosh/folio-api/internal/models"
	"foliosh/folio-api/internal/repositories"
)

// memResumeRepo is an in-memory repositories.ResumeRepository for handler
// tests.
type memResumeRepo struct {
	mu      sync.Mutex
	records map[string]*models.Resume
}

func newMemResumeRepo() *memResumeRepo {
	return &memResumeRepo{records: make(map[string]*models.Resume)}
}

func (r *memResumeRepo) FindByUserID(userID string) (*models.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.records[userID]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memResumeRepo) Upsert(userID string, update repositories.ResumeUpdate) (*models.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[userID]
	if !ok {
		record = &models.Resume{
			ID:     uuid.New(),
			UserID: userID,
			Status: models.StatusDraft,
		}
		r.records[userID] = record
	}

	updates := map[string]interface{}{}
	update.Status.Apply(updates, "status")
	update.FileName.Apply(updates, "file_name")
	update.FileURL.Apply(updates, "file_url")
	update.FileSize.Apply(updates, "file_size")
	update.FileContent.Apply(updates, "file_content")
	update.ResumeData.Apply(updates, "resume_data")

	for column, value := range updates {
		switch column {
		case "status":
			if value != nil {
				record.Status = value.(models.ResumeStatus)
			}
		case "file_name":
			record.FileName = asStringPtr(value)
		case "file_url":
			record.FileURL = asStringPtr(value)
		case "file_size":
			if value == nil {
				record.FileSize = nil
			} else {
				size := value.(int64)
				record.FileSize = &size
			}
		case "file_content":
			record.FileContent = asStringPtr(value)
		case "resume_data":
			if value == nil {
				record.ResumeData = nil
			} else {
				record.ResumeData = value.(datatypes.JSON)
			}
		}
	}

	copied := *record
	return &copied, nil
}

func asStringPtr(value interface{}) *string {
	if value == nil {
		return nil
	}
	s := value.(string)
	return &s
}

func (r *memResumeRepo) DeleteByUserID(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, userID)
	return nil
}

func (r *memResumeRepo) seed(record *models.Resume) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.UserID] = record
}

// memUsernameRepo is an in-memory repositories.UsernameRepository.
type memUsernameRepo struct {
	mu       sync.Mutex
	byUserID map[string]*models.Username
}

func newMemUsernameRepo() *memUsernameRepo {
	return &memUsernameRepo{byUserID: make(map[string]*models.Username)}
}

func (r *memUsernameRepo) FindByUserID(userID string) (*models.Username, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.byUserID[userID]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *memUsernameRepo) FindByUsername(username string) (*models.Username, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	username = strings.ToLower(username)
	for _, record := range r.byUserID {
		if record.Username == username {
			copied := *record
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memUsernameRepo) ExistsByUsername(username string) (bool, error) {
	_, err := r.FindByUsername(username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memUsernameRepo) Create(userID, username string) (*models.Username, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := &models.Username{
		ID:       uuid.New(),
		UserID:   userID,
		Username: strings.ToLower(username),
	}
	r.byUserID[userID] = record
	copied := *record
	return &copied, nil
}

func (r *memUsernameRepo) UpdateUsername(userID, username string) (*models.Username, error) {
	return r.Create(userID, username)
}

func (r *memUsernameRepo) DeleteByUserID(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUserID, userID)
	return nil
}

// stubDeleter records deletion requests without doing any work.
type stubDeleter struct {
	mu       sync.Mutex
	enqueued []string
	deleted  []string
}

func (d *stubDeleter) Start(ctx context.Context) {}
func (d *stubDeleter) Stop()                     {}

func (d *stubDeleter) Enqueue(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, userID)
}

func (d *stubDeleter) DeleteUserData(ctx context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, userID)
	return nil
}

func (d *stubDeleter) enqueuedUsers() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.enqueued...)
}

// noopStorage satisfies services.StorageService without a bucket.
type noopStorage struct{}

func (noopStorage) Upload(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	return "http://storage.local/resumes/" + objectKey, nil
}

func (noopStorage) Delete(ctx context.Context, objectKey string) error { return nil }

func (noopStorage) ObjectKeyFromURL(fileURL string) (string, bool) {
	key := strings.TrimPrefix(fileURL, "http://storage.local/resumes/")
	return key, key != fileURL
}

const testJWTSecret = "test-secret"

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func signedToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": "Jane Doe",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func decodeBody(t *testing.T, resp io.Reader) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp).Decode(&body))
	return body
}

func sampleResumeJSON() datatypes.JSON {
	return datatypes.JSON(`{"header":{"name":"Jane Doe","shortAbout":"","location":"","contacts":{},"skills":[]},"summary":"","workExperience":[],"projects":[],"education":[]}`)
}

func TestPublicProfileGating(t *testing.T) {
	resumeRepo := newMemResumeRepo()
	usernameRepo := newMemUsernameRepo()

	_, err := usernameRepo.Create("user-live", "jane-doe")
	require.NoError(t, err)
	_, err = usernameRepo.Create("user-draft", "john-doe")
	require.NoError(t, err)
	_, err = usernameRepo.Create("user-empty", "no-data")
	require.NoError(t, err)

	resumeRepo.seed(&models.Resume{
		ID: uuid.New(), UserID: "user-live",
		Status: models.StatusLive, ResumeData: sampleResumeJSON(),
	})
	resumeRepo.seed(&models.Resume{
		ID: uuid.New(), UserID: "user-draft",
		Status: models.StatusDraft, ResumeData: sampleResumeJSON(),
	})
	resumeRepo.seed(&models.Resume{
		ID: uuid.New(), UserID: "user-empty",
		Status: models.StatusLive,
	})

	app := fiber.New()
	handler := handlers.NewPublicHandler(resumeRepo, usernameRepo)
	app.Get("/p/:username", handler.HandleProfile)

	tests := []struct {
		name       string
		username   string
		wantStatus int
	}{
		{"live with data resolves", "jane-doe", fiber.StatusOK},
		{"draft is hidden", "john-doe", fiber.StatusNotFound},
		{"live without data is hidden", "no-data", fiber.StatusNotFound},
		{"unknown username", "nobody-here", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/p/"+tt.username, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeBody(t, resp.Body)
			if tt.wantStatus == fiber.StatusOK {
				assert.Equal(t, "jane-doe", body["username"])
				assert.NotNil(t, body["resumeData"])
			} else {
				assert.Equal(t, "Profile not found", body["error"])
			}
		})
	}
}

func TestStatusToggleRequiresResumeData(t *testing.T) {
	resumeRepo := newMemResumeRepo()
	resumeRepo.seed(&models.Resume{
		ID: uuid.New(), UserID: "user-1", Status: models.StatusDraft,
	})

	app := newAuthedApp(resumeRepo)

	resp := doJSON(t, app, "PATCH", "/api/v1/resume", `{"status":"live"}`, signedToken(t, "user-1"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, "Generate your resume before publishing", body["error"])

	record, err := resumeRepo.FindByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, record.Status)
}

func TestStatusToggleGoesLive(t *testing.T) {
	resumeRepo := newMemResumeRepo()
	resumeRepo.seed(&models.Resume{
		ID: uuid.New(), UserID: "user-1",
		Status: models.StatusDraft, ResumeData: sampleResumeJSON(),
	})

	app := newAuthedApp(resumeRepo)

	resp := doJSON(t, app, "PATCH", "/api/v1/resume", `{"status":"live"}`, signedToken(t, "user-1"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	record, err := resumeRepo.FindByUserID("user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusLive, record.Status)

	// Going back to draft needs no structured data check.
	resp = doJSON(t, app, "PATCH", "/api/v1/resume", `{"status":"draft"}`, signedToken(t, "user-1"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStatusToggleRejectsUnknownStatus(t *testing.T) {
	resumeRepo := newMemResumeRepo()
	app := newAuthedApp(resumeRepo)

	resp := doJSON(t, app, "PATCH", "/api/v1/resume", `{"status":"published"}`, signedToken(t, "user-1"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResumeUpdateValidatesStructuredData(t *testing.T) {
	resumeRepo := newMemResumeRepo()
	app := newAuthedApp(resumeRepo)

	payload := `{"resumeData":{"header":{"name":""},"summary":"x"}}`
	resp := doJSON(t, app, "PUT", "/api/v1/resume", payload, signedToken(t, "user-1"))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "Invalid resume data", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestResumeUpdatePersistsValidData(t *testing.T) {
	resumeRepo := newMemResumeRepo()
	app := newAuthedApp(resumeRepo)

	payload := `{"resumeData":{"header":{"name":"Jane Doe"},"summary":"Engineer"}}`
	resp := doJSON(t, app, "PUT", "/api/v1/resume", payload, signedToken(t, "user-1"))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	record, err := resumeRepo.FindByUserID("user-1")
	require.NoError(t, err)
	assert.True(t, record.HasResumeData())
}

func TestRequireAuth(t *testing.T) {
	resumeRepo := newMemResumeRepo()
	app := newAuthedApp(resumeRepo)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/resume", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/resume", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
		signed, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/api/v1/resume", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/resume", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, "user-1"))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestWebhookDeletionFlow(t *testing.T) {
	deleter := &stubDeleter{}
	handler := handlers.NewWebhookHandler(deleter, "webhook-secret")

	app := fiber.New()
	app.Post("/webhooks/identity", handler.HandleIdentityEvent)

	payload := `{"type":"user.deleted","data":{"id":"user-9"}}`

	t.Run("missing signature", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhooks/identity", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, deleter.enqueuedUsers())
	})

	t.Run("bad signature", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhooks/identity", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Signature", "deadbeef")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, deleter.enqueuedUsers())
	})

	t.Run("valid deletion event", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhooks/identity", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Signature", sign("webhook-secret", payload))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		assert.Equal(t, []string{"user-9"}, deleter.enqueuedUsers())
	})

	t.Run("other event types are acknowledged but ignored", func(t *testing.T) {
		other := `{"type":"user.updated","data":{"id":"user-9"}}`
		req := httptest.NewRequest("POST", "/webhooks/identity", strings.NewReader(other))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Signature", sign("webhook-secret", other))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
		assert.Equal(t, []string{"user-9"}, deleter.enqueuedUsers())
	})
}

func TestWebhookRejectsWhenUnconfigured(t *testing.T) {
	handler := handlers.NewWebhookHandler(&stubDeleter{}, "")

	app := fiber.New()
	app.Post("/webhooks/identity", handler.HandleIdentityEvent)

	req := httptest.NewRequest("POST", "/webhooks/identity", strings.NewReader(`{}`))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func newAuthedApp(resumeRepo *memResumeRepo) *fiber.App {
	app := fiber.New()
	handler := handlers.NewResumeHandler(resumeRepo, noopStorage{})
	authed := app.Group("/api/v1", handlers.RequireAuth(testJWTSecret))
	authed.Get("/resume", handler.HandleGet)
	authed.Put("/resume", handler.HandleUpdate)
	authed.Patch("/resume", handler.HandleStatus)
	authed.Post("/resume/clear-file", handler.HandleClearFile)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}
