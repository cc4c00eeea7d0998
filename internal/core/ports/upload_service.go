package ports

import (
	"context"
	"io"
)

// UploadScanInput carries one multipart upload request: the patient metadata
// fields plus exactly one image file.
type UploadScanInput struct {
	PatientName string
	PatientID   string
	ScanType    string
	Region      string

	File        io.Reader
	FileName    string
	Size        int64
	ContentType string

	UploaderID string
}

// UploadService validates and stores a scan image, then records its metadata.
// Field validation precedes file checks, which precede the storage call; the
// metadata insert only happens after storage succeeds.
type UploadService interface {
	Upload(ctx context.Context, input UploadScanInput) (*ScanView, error)
}
