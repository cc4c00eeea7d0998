package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/oralvis/oralvis-api/internal/api/middleware"
	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

// stubScanService is a canned-response ports.ScanService shared by the scan
// and upload handler tests.
type stubScanService struct {
	views      []ports.ScanView
	stats      *ports.ScanStats
	err        error
	lastSearch ports.SearchScansInput
	lastID     int64
	historyFor string
}

func (s *stubScanService) ListAll(context.Context) ([]ports.ScanView, error) {
	return s.views, s.err
}

func (s *stubScanService) GetByID(_ context.Context, id int64) (*ports.ScanView, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &s.views[0], nil
}

func (s *stubScanService) GetByPatientID(context.Context, string) ([]ports.ScanView, error) {
	return s.views, s.err
}

func (s *stubScanService) Search(_ context.Context, input ports.SearchScansInput) ([]ports.ScanView, error) {
	s.lastSearch = input
	return s.views, s.err
}

func (s *stubScanService) History(_ context.Context, uploaderID string) ([]ports.ScanView, error) {
	s.historyFor = uploaderID
	return s.views, s.err
}

func (s *stubScanService) Stats(context.Context) (*ports.ScanStats, error) {
	return s.stats, s.err
}

func (s *stubScanService) Insert(context.Context, ports.InsertScanInput) (*ports.ScanView, error) {
	return nil, errors.New("not used")
}

func sampleView() ports.ScanView {
	return ports.ScanView{
		ID:            7,
		PatientName:   "Jane Doe",
		PatientID:     "P001",
		ScanType:      "RGB",
		Region:        "Frontal",
		ImageURL:      "https://assets.example.com/scans/u1/7.jpg",
		UploadDate:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UploadedBy:    "u1",
		UploaderEmail: "technician@oralvis.com",
		UploaderRole:  domain.RoleTechnician,
	}
}

// newDentistContext builds a request context carrying a verified dentist
// identity, as the Auth middleware would have left it.
func newDentistContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserID, "d1")
	c.Set(middleware.CtxEmail, "dentist@oralvis.com")
	c.Set(middleware.CtxRole, domain.RoleDentist)
	return c, rec
}

func TestScanHandler_List(t *testing.T) {
	svc := &stubScanService{views: []ports.ScanView{sampleView()}}
	h := NewScanHandler(svc)

	c, rec := newDentistContext("/scans/")
	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Count int `json:"count"`
		Scans []struct {
			PatientName   string `json:"patientName"`
			PatientID     string `json:"patientId"`
			UploaderEmail string `json:"uploaderEmail"`
		} `json:"scans"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Scans) != 1 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Scans[0].PatientName != "Jane Doe" || resp.Scans[0].PatientID != "P001" || resp.Scans[0].UploaderEmail != "technician@oralvis.com" {
		t.Fatalf("unexpected scan payload: %+v", resp.Scans[0])
	}
}

func TestScanHandler_List_MissingIdentity(t *testing.T) {
	h := NewScanHandler(&stubScanService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/scans/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	he, ok := h.List(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %v", he)
	}
}

func TestScanHandler_Get(t *testing.T) {
	svc := &stubScanService{views: []ports.ScanView{sampleView()}}
	h := NewScanHandler(svc)

	c, rec := newDentistContext("/scans/7")
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if svc.lastID != 7 {
		t.Fatalf("expected service call with id 7, got %d", svc.lastID)
	}

	var resp struct {
		Scan struct {
			ID int64 `json:"id"`
		} `json:"scan"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Scan.ID != 7 {
		t.Fatalf("unexpected scan: %+v", resp.Scan)
	}
}

func TestScanHandler_Get_NonNumericID(t *testing.T) {
	svc := &stubScanService{}
	h := NewScanHandler(svc)

	c, _ := newDentistContext("/scans/abc")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := h.Get(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if svc.lastID != 0 {
		t.Fatalf("service must not be called with a non-numeric id")
	}
}

func TestScanHandler_Get_NotFound(t *testing.T) {
	h := NewScanHandler(&stubScanService{err: domain.ErrScanNotFound})

	c, _ := newDentistContext("/scans/99")
	c.SetParamNames("id")
	c.SetParamValues("99")

	if err := h.Get(c); !errors.Is(err, domain.ErrScanNotFound) {
		t.Fatalf("expected ErrScanNotFound to propagate, got %v", err)
	}
}

func TestScanHandler_Search_ForwardsParams(t *testing.T) {
	svc := &stubScanService{}
	h := NewScanHandler(svc)

	c, rec := newDentistContext("/scans/search?query=jane&region=Frontal&scanType=RGB")
	if err := h.Search(c); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := ports.SearchScansInput{Query: "jane", Region: "Frontal", ScanType: "RGB"}
	if svc.lastSearch != want {
		t.Fatalf("expected %+v forwarded, got %+v", want, svc.lastSearch)
	}
}

func TestScanHandler_Stats(t *testing.T) {
	h := NewScanHandler(&stubScanService{stats: &ports.ScanStats{TotalScans: 3, UniquePatients: 2}})

	c, rec := newDentistContext("/scans/stats")
	if err := h.Stats(c); err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	var resp struct {
		Statistics struct {
			TotalScans     int64 `json:"total_scans"`
			UniquePatients int64 `json:"unique_patients"`
		} `json:"statistics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Statistics.TotalScans != 3 || resp.Statistics.UniquePatients != 2 {
		t.Fatalf("unexpected stats: %+v", resp.Statistics)
	}
}
