package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oralvis/oralvis-api/internal/api/metrics"
	"github.com/oralvis/oralvis-api/internal/core/domain"
	"github.com/oralvis/oralvis-api/internal/core/ports"
)

// UploadHandler serves the technician-facing upload pipeline.
type UploadHandler struct {
	uploads ports.UploadService
	scans   ports.ScanService
}

func NewUploadHandler(uploads ports.UploadService, scans ports.ScanService) *UploadHandler {
	return &UploadHandler{uploads: uploads, scans: scans}
}

// uploadForm carries the multipart metadata fields. The validator runs a
// first structural pass; the service layer re-checks against the stricter
// domain rules before anything irreversible happens.
type uploadForm struct {
	PatientName string `form:"patientName" validate:"required,min=2,max=50"`
	PatientID   string `form:"patientId"   validate:"required,alphanum,min=3,max=20"`
	ScanType    string `form:"scanType"    validate:"required,oneof=RGB"`
	Region      string `form:"region"      validate:"required,oneof=Frontal 'Upper Arch' 'Lower Arch'"`
}

// Upload handles POST /upload/ — one scan image plus patient metadata.
//
// @Summary      Upload a scan image
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        patientName  formData  string  true  "Patient name (2-50 chars)"
// @Param        patientId    formData  string  true  "Patient ID (3-20 alphanumeric)"
// @Param        scanType     formData  string  true  "Scan type"  Enums(RGB)
// @Param        region       formData  string  true  "Region"     Enums(Frontal, Upper Arch, Lower Arch)
// @Param        scanImage    formData  file    true  "Scan image (JPEG/PNG/WebP, max 10 MiB)"
// @Success      201  {object}  scanDetailResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /upload/ [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var form uploadForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form payload")
	}
	if err := c.Validate(&form); err != nil {
		metrics.UploadsRejectedTotal.WithLabelValues("invalid_field").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fileHeader, err := c.FormFile("scanImage")
	if err != nil {
		metrics.UploadsRejectedTotal.WithLabelValues("invalid_file").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "scanImage file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	view, err := h.uploads.Upload(c.Request().Context(), ports.UploadScanInput{
		PatientName: form.PatientName,
		PatientID:   form.PatientID,
		ScanType:    form.ScanType,
		Region:      form.Region,
		File:        file,
		FileName:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		UploaderID:  identity.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			metrics.UploadsRejectedTotal.WithLabelValues("invalid_field").Inc()
		case errors.Is(err, domain.ErrInvalidFile):
			metrics.UploadsRejectedTotal.WithLabelValues("invalid_file").Inc()
		case errors.Is(err, domain.ErrStorageUnavailable):
			metrics.UploadsRejectedTotal.WithLabelValues("storage_error").Inc()
		default:
			metrics.UploadsRejectedTotal.WithLabelValues("insert_error").Inc()
		}
		return err
	}

	metrics.ScansUploadedTotal.WithLabelValues(view.Region, view.ScanType).Inc()
	return c.JSON(http.StatusCreated, scanDetailResponse{Scan: toScanResponse(*view)})
}

// History handles GET /upload/history — the caller's own uploads only.
//
// @Summary      List the caller's upload history
// @Tags         upload
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  uploadHistoryResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /upload/history [get]
func (h *UploadHandler) History(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	views, err := h.scans.History(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, uploadHistoryResponse{Count: len(views), Uploads: toScanResponses(views)})
}
