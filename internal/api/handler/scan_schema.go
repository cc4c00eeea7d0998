package handler

import (
	"time"

	"github.com/oralvis/oralvis-api/internal/core/ports"
)

// Response-only types owned by the transport layer, kept separate from the
// ports DTOs so the JSON contract is not coupled to internal changes.

type scanResponse struct {
	ID               int64     `json:"id"`
	PatientName      string    `json:"patientName"`
	PatientID        string    `json:"patientId"`
	ScanType         string    `json:"scanType"`
	Region           string    `json:"region"`
	ImageURL         string    `json:"imageUrl"`
	ImageBytes       int64     `json:"imageBytes,omitempty"`
	ImageContentType string    `json:"imageContentType,omitempty"`
	UploadDate       time.Time `json:"uploadDate"`
	UploadedBy       string    `json:"uploadedBy,omitempty"`
	UploaderEmail    string    `json:"uploaderEmail,omitempty"`
	UploaderRole     string    `json:"uploaderRole,omitempty"`
}

type scanListResponse struct {
	Count int            `json:"count"`
	Scans []scanResponse `json:"scans"`
}

type uploadHistoryResponse struct {
	Count   int            `json:"count"`
	Uploads []scanResponse `json:"uploads"`
}

type scanDetailResponse struct {
	Scan scanResponse `json:"scan"`
}

type statsResponse struct {
	Statistics *ports.ScanStats `json:"statistics"`
}

func toScanResponse(v ports.ScanView) scanResponse {
	return scanResponse{
		ID:               v.ID,
		PatientName:      v.PatientName,
		PatientID:        v.PatientID,
		ScanType:         v.ScanType,
		Region:           v.Region,
		ImageURL:         v.ImageURL,
		ImageBytes:       v.ImageBytes,
		ImageContentType: v.ImageContentType,
		UploadDate:       v.UploadDate.UTC(),
		UploadedBy:       v.UploadedBy,
		UploaderEmail:    v.UploaderEmail,
		UploaderRole:     v.UploaderRole,
	}
}

func toScanResponses(views []ports.ScanView) []scanResponse {
	out := make([]scanResponse, len(views))
	for i, v := range views {
		out[i] = toScanResponse(v)
	}
	return out
}
