package ports

import (
	"context"

	"github.com/oralvis/oralvis-api/internal/core/domain"
)

// ScanSearchFilter carries the parameters of a free-text scan search.
// Query is matched as a substring of patient_name (case-insensitive) or
// patient_id (uppercase-normalized); Region and ScanType are optional
// exact-match filters AND-combined with the query.
type ScanSearchFilter struct {
	Query    string
	Region   domain.Region
	ScanType domain.ScanType
	Limit    int
}

// UploaderCount is one row of the top-uploaders aggregate. Email is resolved
// by the service layer; the repository only fills UploaderID and Count.
type UploaderCount struct {
	UploaderID string `json:"uploader_id"`
	Email      string `json:"email"`
	Count      int64  `json:"count"`
}

// ScanStats is the dentist-facing aggregate view over all scans.
type ScanStats struct {
	TotalScans     int64            `json:"total_scans"`
	UniquePatients int64            `json:"unique_patients"`
	RecentUploads  int64            `json:"recent_uploads"`
	ScansByRegion  map[string]int64 `json:"scans_by_region"`
	ScansByType    map[string]int64 `json:"scans_by_scan_type"`
	TopUploaders   []UploaderCount  `json:"top_uploaders"`
}

// ScanRepository defines persistence operations for scan records.
// All list results are ordered by upload_date descending.
type ScanRepository interface {
	// Insert persists a new scan, assigning the next monotonic ID, and
	// returns the stored record.
	Insert(ctx context.Context, scan *domain.Scan) (*domain.Scan, error)
	FindByID(ctx context.Context, id int64) (*domain.Scan, error)
	FindAll(ctx context.Context) ([]*domain.Scan, error)
	// FindByPatientID matches the normalized (uppercase) patient ID exactly.
	FindByPatientID(ctx context.Context, patientID string) ([]*domain.Scan, error)
	Search(ctx context.Context, filter ScanSearchFilter) ([]*domain.Scan, error)
	// FindByUploader returns only scans whose uploaded_by equals uploaderID.
	FindByUploader(ctx context.Context, uploaderID string, limit int) ([]*domain.Scan, error)
	Stats(ctx context.Context) (*ScanStats, error)
}
