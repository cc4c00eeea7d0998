package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

// maxUploadBytes is the hard cap on a single scan image (10 MiB).
const maxUploadBytes = 10 << 20

// allowedImageTypes is the allow-list of accepted image content types, mapped
// to the extension used for the stored object key.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadService runs the upload pipeline: field validation, file validation,
// external storage write, then the metadata insert. The ordering is fixed so
// a storage failure never leaves a scan record pointing at a missing asset.
// The converse (stored asset with no record, when the insert fails) is an
// accepted leak; the orphaned key is logged.
type UploadService struct {
	scans   ports.ScanService
	storage ports.ObjectStorage
	log     zerolog.Logger
}

func NewUploadService(scans ports.ScanService, storage ports.ObjectStorage, log zerolog.Logger) *UploadService {
	return &UploadService{scans: scans, storage: storage, log: log}
}

func (s *UploadService) Upload(ctx context.Context, input ports.UploadScanInput) (*ports.ScanView, error) {
	// Field validation comes first: it is cheap and fails before the more
	// expensive, less reversible storage write.
	if err := domain.ValidatePatientName(input.PatientName); err != nil {
		return nil, err
	}
	if err := domain.ValidatePatientID(input.PatientID); err != nil {
		return nil, err
	}
	if !domain.ScanType(input.ScanType).Valid() {
		return nil, fmt.Errorf("%w: unknown scan type %q", domain.ErrInvalidInput, input.ScanType)
	}
	if !domain.Region(input.Region).Valid() {
		return nil, fmt.Errorf("%w: unknown region %q", domain.ErrInvalidInput, input.Region)
	}

	ext, err := validateFile(input)
	if err != nil {
		return nil, err
	}

	key := objectKey(input.UploaderID, ext)
	stored, err := s.storage.Upload(ctx, key, input.File, input.Size, input.ContentType)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("scan image upload failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	view, err := s.scans.Insert(ctx, ports.InsertScanInput{
		PatientName:      input.PatientName,
		PatientID:        input.PatientID,
		ScanType:         input.ScanType,
		Region:           input.Region,
		ImageURL:         stored.URL,
		ImageKey:         stored.Key,
		ImageBytes:       stored.Bytes,
		ImageContentType: stored.ContentType,
		UploaderID:       input.UploaderID,
	})
	if err != nil {
		// The asset is already in external storage with no record referencing
		// it. Not rolled back; log the key so it can be reclaimed manually.
		s.log.Warn().Err(err).Str("orphaned_key", stored.Key).Msg("scan insert failed after successful upload")
		return nil, err
	}

	return view, nil
}

// validateFile enforces the allow-listed content types and the size cap,
// returning the object-key extension for the detected type.
func validateFile(input ports.UploadScanInput) (string, error) {
	if input.File == nil || input.Size == 0 {
		return "", fmt.Errorf("%w: scan image is required", domain.ErrInvalidFile)
	}
	if input.Size > maxUploadBytes {
		return "", fmt.Errorf("%w: scan image exceeds 10 MiB", domain.ErrInvalidFile)
	}

	contentType := input.ContentType
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", domain.ErrInvalidFile, input.ContentType)
	}
	return ext, nil
}

// objectKey builds a collision-free storage key, grouped by uploader.
func objectKey(uploaderID, ext string) string {
	return path.Join("scans", uploaderID, uuid.NewString()+ext)
}
