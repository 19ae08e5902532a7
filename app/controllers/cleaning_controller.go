package controllers

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/app/requests"
	"github.com/pnt-cleaner/app/responses"
	"github.com/pnt-cleaner/app/services"
	"go.uber.org/zap"
)

// Observer receives per-request cleaning events; *metrics.Metrics implements it
type Observer interface {
	ObserveRecord(rec models.CleanedRecord)
	ObserveCache(hit bool)
}

type nopObserver struct{}

func (nopObserver) ObserveRecord(models.CleanedRecord) {}
func (nopObserver) ObserveCache(bool)                  {}

// CleaningController handles record cleaning requests
type CleaningController struct {
	cleaningService *services.CleaningService
	observer        Observer
	logger          *zap.Logger
}

// NewCleaningController creates a CleaningController; observer may be nil
func NewCleaningController(cleaningService *services.CleaningService, observer Observer, logger *zap.Logger) *CleaningController {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleaningController{
		cleaningService: cleaningService,
		observer:        observer,
		logger:          logger,
	}
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: code, Message: message})
}

// CleanRecord cleans a single record
func (cc *CleaningController) CleanRecord(c *gin.Context) {
	var req requests.CleanRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}
	if len(req.Record.Columns) == 0 {
		badRequest(c, "EMPTY_RECORD", "Record has no columns")
		return
	}

	startTime := time.Now()
	useCache := req.CacheRequested() && cc.cleaningService.CacheEnabled()

	result, hit, err := cc.cleaningService.CleanRecord(c.Request.Context(), req.Record.Record, useCache)
	if err != nil {
		if errors.Is(err, models.ErrTypeMismatch) {
			c.JSON(http.StatusUnprocessableEntity, responses.ErrorResponse{
				Error:   "TYPE_MISMATCH",
				Message: err.Error(),
			})
			return
		}
		cc.logger.Error("Cannot clean record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "CLEAN_ERROR",
			Message: "Cannot clean record: " + err.Error(),
		})
		return
	}

	if useCache {
		cc.observer.ObserveCache(hit)
	}
	cc.observer.ObserveRecord(result)

	c.JSON(http.StatusOK, responses.CleanRecordResponse{
		RulesVersion:     cc.cleaningService.RulesVersion(),
		Result:           result,
		Failed:           result.Failed(),
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         hit,
	})
}

// CleanValue cleans one value with the rule of its column
func (cc *CleaningController) CleanValue(c *gin.Context) {
	var req requests.CleanValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}

	field, err := cc.cleaningService.CleanValue(req.Column, req.Value)
	switch {
	case errors.Is(err, services.ErrUnknownColumn):
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   "UNKNOWN_COLUMN",
			Message: err.Error(),
		})
		return
	case err != nil:
		code := "FIELD_FAILED"
		if errors.Is(err, models.ErrTypeMismatch) {
			code = "TYPE_MISMATCH"
		}
		c.JSON(http.StatusUnprocessableEntity, responses.ErrorResponse{Error: code, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, responses.CleanValueResponse{
		RulesVersion: cc.cleaningService.RulesVersion(),
		Field:        field,
	})
}

// GetRules lists the rule applied to every known column
func (cc *CleaningController) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, responses.RulesResponse{
		RulesVersion: cc.cleaningService.RulesVersion(),
		Rules:        cc.cleaningService.Rules(),
	})
}

// BatchClean starts a background job
func (cc *CleaningController) BatchClean(c *gin.Context) {
	var req requests.BatchCleanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", "Invalid request: "+err.Error())
		return
	}

	jobID, err := cc.cleaningService.SubmitJob(req.RecordList())
	if errors.Is(err, services.ErrTooManyRecords) {
		badRequest(c, "TOO_MANY_RECORDS", err.Error())
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "JOB_ERROR",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, responses.BatchCleanResponse{
		JobID:        jobID,
		TotalRecords: len(req.Records),
		Message:      "Job created",
	})
}

func jobNotFound(c *gin.Context, err error) {
	c.JSON(http.StatusNotFound, responses.ErrorResponse{
		Error:   "JOB_NOT_FOUND",
		Message: "Job not found: " + err.Error(),
	})
}

// GetJobStatus reports job progress
func (cc *CleaningController) GetJobStatus(c *gin.Context) {
	status, err := cc.cleaningService.JobStatus(c.Param("jobID"))
	if err != nil {
		jobNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.NewJobStatusResponse(status))
}

// GetJobResults returns job results as JSON, or NDJSON with ?format=ndjson
// and optional gzip with ?gzip=1
func (cc *CleaningController) GetJobResults(c *gin.Context) {
	results, err := cc.cleaningService.JobResults(c.Param("jobID"))
	if errors.Is(err, services.ErrJobNotDone) {
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   "JOB_NOT_DONE",
			Message: err.Error(),
		})
		return
	}
	if err != nil {
		jobNotFound(c, err)
		return
	}

	if c.Query("format") == "ndjson" {
		cc.streamNDJSON(c, results, c.Query("gzip") == "1")
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Job results",
		Data:    results,
	})
}

// HealthCheck service health
func (cc *CleaningController) HealthCheck(c *gin.Context) {
	cacheState := "disabled"
	if cc.cleaningService.CacheEnabled() {
		cacheState = "healthy"
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:       "healthy",
		Timestamp:    time.Now().Format(time.RFC3339),
		Uptime:       time.Since(cc.cleaningService.StartTime()).Round(time.Second).String(),
		RulesVersion: cc.cleaningService.RulesVersion(),
		Services: map[string]string{
			"cleaner": "healthy",
			"cache":   cacheState,
		},
	})
}

// streamNDJSON writes one cleaned record per line
func (cc *CleaningController) streamNDJSON(c *gin.Context, results []models.CleanedRecord, gzipEnabled bool) {
	c.Header("Content-Type", "application/x-ndjson")
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
	}
	c.Status(http.StatusOK)

	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{ResponseWriter: c.Writer, gzWriter: gzWriter}
	}

	encoder := json.NewEncoder(writer)
	for i, result := range results {
		if err := encoder.Encode(result); err != nil {
			cc.logger.Error("Cannot encode NDJSON line", zap.Error(err))
			return
		}
		if (i+1)%500 == 0 {
			writer.Flush()
		}
	}
	writer.Flush()
}

// gzipResponseWriter compresses the response body
type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}
