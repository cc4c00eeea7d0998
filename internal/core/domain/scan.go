package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ScanType identifies the imaging mode of an uploaded scan.
type ScanType string

const (
	ScanTypeRGB ScanType = "RGB"
)

// Region identifies the oral region captured by a scan.
type Region string

const (
	RegionFrontal   Region = "Frontal"
	RegionUpperArch Region = "Upper Arch"
	RegionLowerArch Region = "Lower Arch"
)

var ErrScanNotFound = errors.New("scan not found")
var ErrInvalidInput = errors.New("invalid input")
var ErrInvalidFile = errors.New("invalid file")
var ErrStorageUnavailable = errors.New("storage unavailable")

// Valid reports whether t is a known scan type.
func (t ScanType) Valid() bool {
	return t == ScanTypeRGB
}

// Valid reports whether r is a known region.
func (r Region) Valid() bool {
	switch r {
	case RegionFrontal, RegionUpperArch, RegionLowerArch:
		return true
	}
	return false
}

// Scan is a metadata record describing one uploaded dental image. Scans are
// insert-only: no update or delete path exists.
type Scan struct {
	ID               int64     `json:"id" bson:"_id"`
	PatientName      string    `json:"patient_name" bson:"patient_name"`
	PatientID        string    `json:"patient_id" bson:"patient_id"`
	ScanType         ScanType  `json:"scan_type" bson:"scan_type"`
	Region           Region    `json:"region" bson:"region"`
	ImageURL         string    `json:"image_url" bson:"image_url"`
	ImageKey         string    `json:"-" bson:"image_key,omitempty"`
	ImageBytes       int64     `json:"image_bytes,omitempty" bson:"image_bytes,omitempty"`
	ImageContentType string    `json:"image_content_type,omitempty" bson:"image_content_type,omitempty"`
	UploadDate       time.Time `json:"upload_date" bson:"upload_date"`
	// UploadedBy references User.ID. The reference is non-owning: it may
	// dangle if the uploader account is ever removed out of band.
	UploadedBy string `json:"uploaded_by,omitempty" bson:"uploaded_by,omitempty"`
}

var patientNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z -]{1,49}$`)
var patientIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)

// ValidatePatientName checks the trimmed name against the 2-50 chars,
// letters/spaces/hyphens rule.
func ValidatePatientName(name string) error {
	if !patientNamePattern.MatchString(strings.TrimSpace(name)) {
		return fmt.Errorf("%w: patient name must be 2-50 letters, spaces or hyphens", ErrInvalidInput)
	}
	return nil
}

// ValidatePatientID checks the 3-20 alphanumeric rule. Case is not checked
// here; callers normalize with NormalizePatientID before persisting.
func ValidatePatientID(id string) error {
	if !patientIDPattern.MatchString(id) {
		return fmt.Errorf("%w: patient id must be 3-20 alphanumeric characters", ErrInvalidInput)
	}
	return nil
}

// NormalizePatientID returns the canonical stored form of a patient ID.
// All reads and writes go through this so lookups stay case-insensitive.
func NormalizePatientID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
