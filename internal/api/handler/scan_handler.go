package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

// ScanHandler serves the dentist-facing read operations.
type ScanHandler struct {
	service ports.ScanService
}

func NewScanHandler(service ports.ScanService) *ScanHandler {
	return &ScanHandler{service: service}
}

// List handles GET /scans/ — every scan, newest first, with uploader identity.
//
// @Summary      List all scans
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  scanListResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /scans/ [get]
func (h *ScanHandler) List(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	views, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scanListResponse{Count: len(views), Scans: toScanResponses(views)})
}

// Get handles GET /scans/:id.
//
// @Summary      Get a scan by ID
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Scan ID"
// @Success      200  {object}  scanDetailResponse
// @Failure      404  {object}  map[string]string
// @Router       /scans/{id} [get]
func (h *ScanHandler) Get(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: scan id must be numeric", domain.ErrInvalidInput)
	}

	view, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scanDetailResponse{Scan: toScanResponse(*view)})
}

// GetByPatient handles GET /scans/patient/:patientId — exact match on the
// uppercase-normalized patient ID.
//
// @Summary      Get scans for a patient
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Param        patientId  path      string  true  "Patient ID"
// @Success      200        {object}  scanListResponse
// @Failure      400        {object}  map[string]string
// @Router       /scans/patient/{patientId} [get]
func (h *ScanHandler) GetByPatient(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	views, err := h.service.GetByPatientID(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scanListResponse{Count: len(views), Scans: toScanResponses(views)})
}

// Search handles GET /scans/search?query=&region=&scanType=.
//
// @Summary      Search scans by patient name or ID
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Param        query     query     string  true   "Substring of patient name or ID (min 2 chars)"
// @Param        region    query     string  false  "Exact region filter"
// @Param        scanType  query     string  false  "Exact scan type filter"
// @Success      200       {object}  scanListResponse
// @Failure      400       {object}  map[string]string
// @Router       /scans/search [get]
func (h *ScanHandler) Search(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	views, err := h.service.Search(c.Request().Context(), ports.SearchScansInput{
		Query:    c.QueryParam("query"),
		Region:   c.QueryParam("region"),
		ScanType: c.QueryParam("scanType"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scanListResponse{Count: len(views), Scans: toScanResponses(views)})
}

// Stats handles GET /scans/stats.
//
// @Summary      Aggregate statistics over all scans
// @Tags         scans
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Failure      401  {object}  map[string]string
// @Router       /scans/stats [get]
func (h *ScanHandler) Stats(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{Statistics: stats})
}
