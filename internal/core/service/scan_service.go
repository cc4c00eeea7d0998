package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

const (
	searchMinQueryLen = 2
	searchResultLimit = 50
	historyLimit      = 50
)

// StatsCache abstracts the short-lived cache in front of the stats aggregate
// (Redis). A nil-safe no-op implementation is acceptable in tests.
type StatsCache interface {
	Get(ctx context.Context) (*ports.ScanStats, bool, error)
	Set(ctx context.Context, stats *ports.ScanStats) error
	Invalidate(ctx context.Context) error
}

// ScanService implements the read and insert operations over scan records.
type ScanService struct {
	scans ports.ScanRepository
	users ports.UserRepository
	cache StatsCache
	log   zerolog.Logger
}

func NewScanService(scans ports.ScanRepository, users ports.UserRepository, cache StatsCache, log zerolog.Logger) *ScanService {
	return &ScanService{scans: scans, users: users, cache: cache, log: log}
}

// ListAll returns every scan, newest first, joined with uploader identity.
// There is no per-dentist scoping: all dentists see all scans.
func (s *ScanService) ListAll(ctx context.Context) ([]ports.ScanView, error) {
	scans, err := s.scans.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, scans)
}

func (s *ScanService) GetByID(ctx context.Context, id int64) (*ports.ScanView, error) {
	scan, err := s.scans.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.toViews(ctx, []*domain.Scan{scan})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ScanService) GetByPatientID(ctx context.Context, patientID string) ([]ports.ScanView, error) {
	normalized := domain.NormalizePatientID(patientID)
	if len(normalized) < 3 {
		return nil, fmt.Errorf("%w: patient id must be at least 3 characters", domain.ErrInvalidInput)
	}

	scans, err := s.scans.FindByPatientID(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, scans)
}

// Search runs a substring match on patient name or patient ID, AND-combined
// with the optional exact-match filters. Queries shorter than two characters
// are rejected before any repository call.
func (s *ScanService) Search(ctx context.Context, input ports.SearchScansInput) ([]ports.ScanView, error) {
	query := strings.TrimSpace(input.Query)
	if len(query) < searchMinQueryLen {
		return nil, fmt.Errorf("%w: search query must be at least %d characters", domain.ErrInvalidInput, searchMinQueryLen)
	}

	filter := ports.ScanSearchFilter{Query: query, Limit: searchResultLimit}
	if input.Region != "" {
		region := domain.Region(input.Region)
		if !region.Valid() {
			return nil, fmt.Errorf("%w: unknown region %q", domain.ErrInvalidInput, input.Region)
		}
		filter.Region = region
	}
	if input.ScanType != "" {
		scanType := domain.ScanType(input.ScanType)
		if !scanType.Valid() {
			return nil, fmt.Errorf("%w: unknown scan type %q", domain.ErrInvalidInput, input.ScanType)
		}
		filter.ScanType = scanType
	}

	scans, err := s.scans.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, scans)
}

// History is the technician self-view: only scans uploaded by uploaderID.
func (s *ScanService) History(ctx context.Context, uploaderID string) ([]ports.ScanView, error) {
	if uploaderID == "" {
		return nil, domain.ErrForbidden
	}
	scans, err := s.scans.FindByUploader(ctx, uploaderID, historyLimit)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, scans)
}

// Stats serves the aggregate view, preferring a fresh cached copy.
func (s *ScanService) Stats(ctx context.Context) (*ports.ScanStats, error) {
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx); err != nil {
			s.log.Warn().Err(err).Msg("stats cache read failed, recomputing")
		} else if ok {
			return cached, nil
		}
	}

	stats, err := s.scans.Stats(ctx)
	if err != nil {
		return nil, err
	}

	// Resolve uploader emails for the leaderboard.
	ids := make([]string, 0, len(stats.TopUploaders))
	for _, u := range stats.TopUploaders {
		ids = append(ids, u.UploaderID)
	}
	uploaders, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i, u := range stats.TopUploaders {
		if user, ok := uploaders[u.UploaderID]; ok {
			stats.TopUploaders[i].Email = user.Email
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.log.Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}

// Insert validates, normalizes, and persists a new scan record. The upload
// date is always set server-side.
func (s *ScanService) Insert(ctx context.Context, input ports.InsertScanInput) (*ports.ScanView, error) {
	if err := domain.ValidatePatientName(input.PatientName); err != nil {
		return nil, err
	}
	if err := domain.ValidatePatientID(input.PatientID); err != nil {
		return nil, err
	}
	scanType := domain.ScanType(input.ScanType)
	if !scanType.Valid() {
		return nil, fmt.Errorf("%w: unknown scan type %q", domain.ErrInvalidInput, input.ScanType)
	}
	region := domain.Region(input.Region)
	if !region.Valid() {
		return nil, fmt.Errorf("%w: unknown region %q", domain.ErrInvalidInput, input.Region)
	}
	if input.ImageURL == "" {
		return nil, fmt.Errorf("%w: image url is required", domain.ErrInvalidInput)
	}
	if input.UploaderID == "" {
		return nil, fmt.Errorf("%w: uploader is required", domain.ErrInvalidInput)
	}

	scan := &domain.Scan{
		PatientName:      strings.TrimSpace(input.PatientName),
		PatientID:        domain.NormalizePatientID(input.PatientID),
		ScanType:         scanType,
		Region:           region,
		ImageURL:         input.ImageURL,
		ImageKey:         input.ImageKey,
		ImageBytes:       input.ImageBytes,
		ImageContentType: input.ImageContentType,
		UploadDate:       time.Now().UTC(),
		UploadedBy:       input.UploaderID,
	}

	created, err := s.scans.Insert(ctx, scan)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("stats cache invalidation failed")
		}
	}

	s.log.Info().Int64("scan_id", created.ID).Str("patient_id", created.PatientID).Str("uploaded_by", created.UploadedBy).Msg("scan recorded")

	views, err := s.toViews(ctx, []*domain.Scan{created})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// toViews joins scans with their uploader's email and role. Dangling
// uploader references yield empty uploader fields rather than an error.
func (s *ScanService) toViews(ctx context.Context, scans []*domain.Scan) ([]ports.ScanView, error) {
	idSet := make(map[string]struct{})
	for _, scan := range scans {
		if scan.UploadedBy != "" {
			idSet[scan.UploadedBy] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	uploaders := map[string]*domain.User{}
	if len(ids) > 0 {
		var err error
		uploaders, err = s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	views := make([]ports.ScanView, len(scans))
	for i, scan := range scans {
		view := ports.ScanView{
			ID:               scan.ID,
			PatientName:      scan.PatientName,
			PatientID:        scan.PatientID,
			ScanType:         string(scan.ScanType),
			Region:           string(scan.Region),
			ImageURL:         scan.ImageURL,
			ImageBytes:       scan.ImageBytes,
			ImageContentType: scan.ImageContentType,
			UploadDate:       scan.UploadDate,
			UploadedBy:       scan.UploadedBy,
		}
		if uploader, ok := uploaders[scan.UploadedBy]; ok {
			view.UploaderEmail = uploader.Email
			view.UploaderRole = uploader.Role
		}
		views[i] = view
	}
	return views, nil
}
