package ports

import (
	"context"
	"time"
)

// ScanView is the read model returned to clients: the scan record joined
// with the uploader's email and role. Uploader fields are empty when the
// back-reference dangles.
type ScanView struct {
	ID               int64     `json:"id"`
	PatientName      string    `json:"patient_name"`
	PatientID        string    `json:"patient_id"`
	ScanType         string    `json:"scan_type"`
	Region           string    `json:"region"`
	ImageURL         string    `json:"image_url"`
	ImageBytes       int64     `json:"image_bytes,omitempty"`
	ImageContentType string    `json:"image_content_type,omitempty"`
	UploadDate       time.Time `json:"upload_date"`
	UploadedBy       string    `json:"uploaded_by,omitempty"`
	UploaderEmail    string    `json:"uploader_email,omitempty"`
	UploaderRole     string    `json:"uploader_role,omitempty"`
}

// SearchScansInput carries the raw search parameters as received over HTTP.
type SearchScansInput struct {
	Query    string
	Region   string
	ScanType string
}

// InsertScanInput carries all data needed to persist a new scan record.
// The image has already been stored externally; only its reference travels
// through here.
type InsertScanInput struct {
	PatientName      string
	PatientID        string
	ScanType         string
	Region           string
	ImageURL         string
	ImageKey         string
	ImageBytes       int64
	ImageContentType string
	UploaderID       string
}

// ScanService defines the use-case operations over scan records.
type ScanService interface {
	ListAll(ctx context.Context) ([]ScanView, error)
	GetByID(ctx context.Context, id int64) (*ScanView, error)
	GetByPatientID(ctx context.Context, patientID string) ([]ScanView, error)
	Search(ctx context.Context, input SearchScansInput) ([]ScanView, error)
	// History returns the caller's own uploads, newest first, capped at 50.
	History(ctx context.Context, uploaderID string) ([]ScanView, error)
	Stats(ctx context.Context) (*ScanStats, error)
	Insert(ctx context.Context, input InsertScanInput) (*ScanView, error)
}
