package responses

import (
	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/app/services"
	"github.com/pnt-cleaner/internal/engine"
)

// ErrorResponse error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse generic success body
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// CleanRecordResponse result of cleaning one record
type CleanRecordResponse struct {
	RulesVersion     string               `json:"rules_version"`
	Result           models.CleanedRecord `json:"result"`
	Failed           bool                 `json:"failed"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
	CacheHit         bool                 `json:"cache_hit"`
}

// CleanValueResponse result of cleaning one value
type CleanValueResponse struct {
	RulesVersion string              `json:"rules_version"`
	Field        models.CleanedField `json:"field"`
}

// RulesResponse the dispatch table
type RulesResponse struct {
	RulesVersion string              `json:"rules_version"`
	Rules        []services.RuleInfo `json:"rules"`
}

// BatchCleanResponse a job was accepted
type BatchCleanResponse struct {
	JobID        string `json:"job_id"`
	TotalRecords int    `json:"total_records"`
	Message      string `json:"message"`
}

// JobStatusResponse progress of a job
type JobStatusResponse struct {
	JobID     string       `json:"job_id"`
	Status    string       `json:"status"`
	Progress  float64      `json:"progress"` // 0.0 - 1.0
	Processed int          `json:"processed"`
	Total     int          `json:"total"`
	Stats     engine.Stats `json:"stats"`
	Error     string       `json:"error,omitempty"`
}

// NewJobStatusResponse builds the response of a job status
func NewJobStatusResponse(s services.JobStatus) JobStatusResponse {
	return JobStatusResponse{
		JobID:     s.JobID,
		Status:    s.Status,
		Progress:  s.Progress(),
		Processed: s.Processed,
		Total:     s.Total,
		Stats:     s.Stats,
		Error:     s.Error,
	}
}

// ResourcesResponse loaded lists and catalogs
type ResourcesResponse struct {
	Lists    []services.ResourceInfo `json:"lists"`
	Catalogs []services.ResourceInfo `json:"catalogs"`
}

// HealthCheckResponse health check body
type HealthCheckResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Uptime       string            `json:"uptime"`
	RulesVersion string            `json:"rules_version"`
	Services     map[string]string `json:"services"`
}
