package backend

// TrendPoint is one month of a metric's history.
type TrendPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DistributionBucket is one slice of a breakdown (age band, update type, flow direction).
type DistributionBucket struct {
	Range string  `json:"range"`
	Count float64 `json:"count"`
}

// Analytics is the backend's per-layer trend, breakdown and next-month forecast.
type Analytics struct {
	Trend           []TrendPoint         `json:"trend"`
	AgeDistribution []DistributionBucket `json:"ageDistribution"`
	Forecast        *float64             `json:"forecast,omitempty"`
}

// Stats summarises everything ingested so far.
type Stats struct {
	TotalRecords  int64  `json:"totalRecords"`
	TotalDatasets int64  `json:"totalDatasets"`
	LastUpdate    string `json:"lastUpdate"`
}

// UploadLog is one row of the backend's ingestion audit trail.
type UploadLog struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	Type        string `json:"type"`
	SizeBytes   int64  `json:"sizeBytes"`
	RecordCount int64  `json:"recordCount"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	UploaderID  string `json:"uploaderId"`
}

// UploadResult acknowledges a merged CSV.
type UploadResult struct {
	Status      string `json:"status"`
	RecordCount int64  `json:"recordCount"`
	MergedInto  string `json:"mergedInto"`
}

// CreateActionRequest is the payload of POST /api/create-action.
type CreateActionRequest struct {
	RegionID       string `json:"region_id"`
	RegionName     string `json:"region_name"`
	Recommendation string `json:"recommendation"`
	TriggerReason  string `json:"trigger_reason"`
	UserID         string `json:"user_id"`
	UserRole       string `json:"user_role"`
}

// CreateActionResponse carries the backend-assigned action id.
type CreateActionResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// User is the identity the backend returns on login. The password column the
// backend echoes is never decoded.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type statusResponse struct {
	Status string `json:"status"`
}
