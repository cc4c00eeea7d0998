// Package metrics defines and registers all custom Prometheus metrics for
// the OralVis scan records API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Collectors are registered with the default registry via promauto at
// package load; the /metrics endpoint is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "oralvis"

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "success", "invalid_credentials", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// ScansUploadedTotal counts successfully recorded scans.
// Labels:
//   - region: the oral region of the scan (e.g. "Frontal")
//   - scan_type: the imaging mode (e.g. "RGB")
var ScansUploadedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_uploaded_total",
		Help:      "Total number of scan records created, by region and scan type.",
	},
	[]string{"region", "scan_type"},
)

// UploadsRejectedTotal counts uploads that failed before a record was created.
// Label:
//   - reason: "invalid_field", "invalid_file", "storage_error", "insert_error"
var UploadsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_rejected_total",
		Help:      "Total number of rejected scan uploads, by reason.",
	},
	[]string{"reason"},
)

// StorageUploadDuration measures the external object storage write.
var StorageUploadDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "storage_upload_duration_seconds",
		Help:      "Duration of scan image writes to external object storage.",
		Buckets:   prometheus.DefBuckets,
	},
)
