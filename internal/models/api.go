package models

import "encoding/json"

type UploadResponse struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	FileSize int64  `json:"fileSize"`
}

type GenerateResponse struct {
	Resume       *Resume `json:"resume"`
	Username     string  `json:"username"`
	UsedFallback bool    `json:"usedFallback"`
}

// ResumeUpdateRequest is the PUT body for manual edits. Pointer fields keep
// "absent" distinguishable from an explicit value.
type ResumeUpdateRequest struct {
	Status     *string         `json:"status"`
	FileName   *string         `json:"fileName"`
	ResumeData json.RawMessage `json:"resumeData"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=draft live"`
}

type UsernameUpdateRequest struct {
	Username string `json:"username" validate:"required"`
}

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// WebhookEvent is the identity provider's event envelope. Only user.deleted
// is acted on; delivery is at-least-once so handling must be idempotent.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}
