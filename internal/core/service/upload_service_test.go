package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

type stubStorage struct {
	calls   int
	lastKey string
	err     error
}

func (s *stubStorage) Upload(_ context.Context, key string, _ io.Reader, size int64, contentType string) (*ports.StoredObject, error) {
	s.calls++
	s.lastKey = key
	if s.err != nil {
		return nil, s.err
	}
	return &ports.StoredObject{
		Key:         key,
		URL:         "https://assets.example.com/" + key,
		Bytes:       size,
		ContentType: contentType,
	}, nil
}

// stubInsertService is the minimal ScanService needed by the upload pipeline.
type stubInsertService struct {
	inserts   int
	lastInput ports.InsertScanInput
	err       error
}

func (s *stubInsertService) ListAll(context.Context) ([]ports.ScanView, error) { return nil, nil }
func (s *stubInsertService) GetByID(context.Context, int64) (*ports.ScanView, error) {
	return nil, nil
}
func (s *stubInsertService) GetByPatientID(context.Context, string) ([]ports.ScanView, error) {
	return nil, nil
}
func (s *stubInsertService) Search(context.Context, ports.SearchScansInput) ([]ports.ScanView, error) {
	return nil, nil
}
func (s *stubInsertService) History(context.Context, string) ([]ports.ScanView, error) {
	return nil, nil
}
func (s *stubInsertService) Stats(context.Context) (*ports.ScanStats, error) { return nil, nil }

func (s *stubInsertService) Insert(_ context.Context, input ports.InsertScanInput) (*ports.ScanView, error) {
	s.inserts++
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &ports.ScanView{
		ID:          1,
		PatientName: input.PatientName,
		PatientID:   input.PatientID,
		ScanType:    input.ScanType,
		Region:      input.Region,
		ImageURL:    input.ImageURL,
		UploadedBy:  input.UploaderID,
	}, nil
}

func validUpload() ports.UploadScanInput {
	return ports.UploadScanInput{
		PatientName: "Jane Doe",
		PatientID:   "P001",
		ScanType:    "RGB",
		Region:      "Frontal",
		File:        strings.NewReader("jpeg-bytes"),
		FileName:    "scan.jpg",
		Size:        9,
		ContentType: "image/jpeg",
		UploaderID:  "u1",
	}
}

func TestUploadService_Upload_Success(t *testing.T) {
	storage := &stubStorage{}
	scans := &stubInsertService{}
	svc := NewUploadService(scans, storage, zerolog.Nop())

	view, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if storage.calls != 1 {
		t.Fatalf("expected exactly one storage call, got %d", storage.calls)
	}
	if !strings.HasPrefix(storage.lastKey, "scans/u1/") || !strings.HasSuffix(storage.lastKey, ".jpg") {
		t.Fatalf("unexpected object key: %q", storage.lastKey)
	}
	if scans.inserts != 1 {
		t.Fatalf("expected one metadata insert, got %d", scans.inserts)
	}
	if scans.lastInput.ImageURL != "https://assets.example.com/"+storage.lastKey {
		t.Fatalf("insert did not receive the stored URL: %q", scans.lastInput.ImageURL)
	}
	if view.ID != 1 {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestUploadService_Upload_FieldValidationPrecedesStorage(t *testing.T) {
	cases := map[string]func(*ports.UploadScanInput){
		"bad name":     func(in *ports.UploadScanInput) { in.PatientName = "1" },
		"bad id":       func(in *ports.UploadScanInput) { in.PatientID = "p!" },
		"bad type":     func(in *ports.UploadScanInput) { in.ScanType = "XRAY" },
		"bad region":   func(in *ports.UploadScanInput) { in.Region = "Molar" },
	}
	for name, mutate := range cases {
		storage := &stubStorage{}
		scans := &stubInsertService{}
		svc := NewUploadService(scans, storage, zerolog.Nop())

		input := validUpload()
		mutate(&input)
		if _, err := svc.Upload(context.Background(), input); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
		if storage.calls != 0 || scans.inserts != 0 {
			t.Fatalf("%s: invalid fields must not reach storage or insert", name)
		}
	}
}

func TestUploadService_Upload_RejectsBadFiles(t *testing.T) {
	cases := map[string]func(*ports.UploadScanInput){
		"missing file":   func(in *ports.UploadScanInput) { in.File = nil },
		"empty file":     func(in *ports.UploadScanInput) { in.Size = 0 },
		"oversize":       func(in *ports.UploadScanInput) { in.Size = maxUploadBytes + 1 },
		"wrong type":     func(in *ports.UploadScanInput) { in.ContentType = "application/pdf" },
		"type smuggling": func(in *ports.UploadScanInput) { in.ContentType = "text/html;charset=utf-8" },
	}
	for name, mutate := range cases {
		storage := &stubStorage{}
		scans := &stubInsertService{}
		svc := NewUploadService(scans, storage, zerolog.Nop())

		input := validUpload()
		mutate(&input)
		if _, err := svc.Upload(context.Background(), input); !errors.Is(err, domain.ErrInvalidFile) {
			t.Fatalf("%s: expected ErrInvalidFile, got %v", name, err)
		}
		if storage.calls != 0 {
			t.Fatalf("%s: rejected file must not reach storage", name)
		}
	}
}

func TestUploadService_Upload_AcceptsContentTypeParams(t *testing.T) {
	storage := &stubStorage{}
	svc := NewUploadService(&stubInsertService{}, storage, zerolog.Nop())

	input := validUpload()
	input.ContentType = "image/png; charset=binary"
	if _, err := svc.Upload(context.Background(), input); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if !strings.HasSuffix(storage.lastKey, ".png") {
		t.Fatalf("extension should follow the base content type: %q", storage.lastKey)
	}
}

func TestUploadService_Upload_StorageFailure(t *testing.T) {
	storage := &stubStorage{err: errors.New("connection refused")}
	scans := &stubInsertService{}
	svc := NewUploadService(scans, storage, zerolog.Nop())

	if _, err := svc.Upload(context.Background(), validUpload()); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if scans.inserts != 0 {
		t.Fatalf("storage failure must not record metadata")
	}
}

func TestUploadService_Upload_InsertFailureAfterStore(t *testing.T) {
	storage := &stubStorage{}
	scans := &stubInsertService{err: errors.New("write conflict")}
	svc := NewUploadService(scans, storage, zerolog.Nop())

	_, err := svc.Upload(context.Background(), validUpload())
	if err == nil {
		t.Fatalf("expected insert error to surface")
	}
	if storage.calls != 1 {
		t.Fatalf("asset should already be stored when the insert fails")
	}
}
