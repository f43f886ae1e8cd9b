package models

import "time"

type UploadResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	FileCount int       `json:"file_count"`
}

type DownloadResponse struct {
	Code      string         `json:"code"`
	ExpiresAt time.Time      `json:"expires_at"`
	Files     []DownloadFile `json:"files"`
}
