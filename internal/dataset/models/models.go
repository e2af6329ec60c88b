package models

import (
	"path/filepath"
	"strings"
	"time"

	"govdash/internal/backend"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
)

// DatasetType is the backend's category label for an uploaded CSV. The value
// is sent verbatim as the multipart dataset_type field.
type DatasetType string

const (
	TypeEnrolmentDensity DatasetType = "Enrolment Density"
	TypeUpdateActivity   DatasetType = "Update Activity"
	TypeMigrationSignals DatasetType = "Migration Signals"
	TypeLifecycleGaps    DatasetType = "Lifecycle Gaps"
)

// DatasetTypes lists the selectable types in console order.
var DatasetTypes = []DatasetType{
	TypeEnrolmentDensity,
	TypeUpdateActivity,
	TypeMigrationSignals,
	TypeLifecycleGaps,
}

func ParseDatasetType(s string) (DatasetType, error) {
	t := DatasetType(strings.TrimSpace(s))
	for _, known := range DatasetTypes {
		if t == known {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unsupported dataset type: "+s)
}

// Log statuses as the backend reports them.
const (
	LogSuccess    = "Success"
	LogProcessing = "Processing"
	LogFailed     = "Failed"
)

// StatusKey is the localisation key for a log status.
func StatusKey(status string) string {
	switch status {
	case LogSuccess:
		return "dm_status_success"
	case LogProcessing:
		return "dm_status_processing"
	default:
		return "dm_status_failed"
	}
}

// UploadState tracks one upload through the console.
type UploadState string

const (
	StateUploading UploadState = "uploading"
	StateSucceeded UploadState = "succeeded"
	StateFailed    UploadState = "failed"
)

// Progress bounds for the simulated progress bar.
const (
	ProgressStart   = 10
	ProgressStep    = 10
	ProgressCeiling = 90
	ProgressDone    = 100
	ProgressFailed  = 0
)

// NextProgress advances an in-flight upload by one tick. It never passes
// ProgressCeiling; only completion reaches ProgressDone.
func NextProgress(p int) int {
	if p+ProgressStep >= ProgressCeiling {
		return ProgressCeiling
	}
	return p + ProgressStep
}

// Upload is the console's view of one upload. Progress is simulated while
// the backend works; Indicative is always true to say so.
type Upload struct {
	ID          string      `json:"id"`
	FileName    string      `json:"fileName"`
	Type        DatasetType `json:"type"`
	SizeBytes   int64       `json:"sizeBytes"`
	UploaderID  string      `json:"uploaderId"`
	State       UploadState `json:"state"`
	Progress    int         `json:"progress"`
	Indicative  bool        `json:"indicative"`
	RecordCount int64       `json:"recordCount,omitempty"`
	MergedInto  string      `json:"mergedInto,omitempty"`
	Error       string      `json:"error,omitempty"`
	StartedAt   time.Time   `json:"startedAt"`
	FinishedAt  *time.Time  `json:"finishedAt,omitempty"`
}

// Done reports whether the upload has finished either way.
func (u *Upload) Done() bool {
	return u.State != StateUploading
}

// StartUploadRequest is a validated upload ready to send.
type StartUploadRequest struct {
	FileName string
	Type     string
	Content  []byte
	Uploader domain.Principal
}

// Validate checks the file name, type and size against maxBytes.
func (r *StartUploadRequest) Validate(maxBytes int64) (DatasetType, error) {
	if r.Uploader.Role != domain.RoleDataSupervisor {
		return "", dErrors.New(dErrors.CodeForbidden, "only data supervisors can upload datasets")
	}
	name := strings.TrimSpace(filepath.Base(r.FileName))
	if name == "" || name == "." || !strings.EqualFold(filepath.Ext(name), ".csv") {
		return "", dErrors.New(dErrors.CodeValidation, "file must be a .csv")
	}
	r.FileName = name
	if len(r.Content) == 0 {
		return "", dErrors.New(dErrors.CodeValidation, "file is empty")
	}
	if maxBytes > 0 && int64(len(r.Content)) > maxBytes {
		return "", dErrors.New(dErrors.CodeValidation, "file exceeds the upload size limit")
	}
	return ParseDatasetType(r.Type)
}

// Stats is the console header.
type Stats struct {
	TotalRecords  int64  `json:"totalRecords"`
	TotalDatasets int64  `json:"totalDatasets"`
	LastUpdate    string `json:"lastUpdate"`
}

// DeriveStats sums successful record counts over the list, newest first.
// LastUpdate is the newest entry's timestamp, or "N/A" when the list is empty.
func DeriveStats(logs []backend.UploadLog) Stats {
	st := Stats{TotalDatasets: int64(len(logs)), LastUpdate: "N/A"}
	for _, l := range logs {
		if l.Status == LogSuccess {
			st.TotalRecords += l.RecordCount
		}
	}
	if len(logs) > 0 {
		st.LastUpdate = logs[0].Timestamp
	}
	return st
}

// LogView is one audit row with its status label.
type LogView struct {
	backend.UploadLog
	StatusKey   string `json:"statusKey"`
	StatusLabel string `json:"statusLabel"`
	// Local is true for rows the backend has not reported yet.
	Local bool `json:"local"`
}

// Notice mirrors a snapshot notice in the console language.
type Notice struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Console is the data supervisor's page.
type Console struct {
	Stats        Stats         `json:"stats"`
	StatsSource  string        `json:"statsSource"` // "backend" or "derived"
	Logs         []LogView     `json:"logs"`
	DatasetTypes []DatasetType `json:"datasetTypes"`
	Uploads      []Upload      `json:"uploads"`
	Notices      []Notice      `json:"notices"`
}
