// Package documents implements the document domain for Warden. It
// provides types, data access, and business logic for source document
// upload, text capture, metadata management, and blob storage
// integration.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document statuses.
const (
	StatusUploaded = "uploaded"
	StatusReady    = "ready"
)

// Document represents an uploaded source document. The uuid is the sole
// identity; filenames are display metadata and may repeat across
// uploads. Text holds extraction-ready content when the format supports
// it, empty otherwise.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count"`
	StorageKey  string    `json:"storage_key"`
	Text        string    `json:"text,omitempty"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// CreateCommand carries the data needed to upload and register a new
// document. Data holds the raw file bytes. PageCount and Text are
// optional, extracted by the caller when the format supports them.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
	Text        string
}

// BatchResult reports the outcome of a single file within a batch
// upload. On success, Document is populated and Error is empty.
type BatchResult struct {
	Document *Document `json:"document,omitempty"`
	Filename string    `json:"filename"`
	Error    string    `json:"error,omitempty"`
}
