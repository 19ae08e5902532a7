package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/helpers/utils"
	"github.com/pnt-cleaner/internal/engine"
	"github.com/pnt-cleaner/internal/sinks"
	"go.uber.org/zap"
)

// MaxJobRecords upper bound of records in one batch job
const MaxJobRecords = 20000

// Job states
const (
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

var (
	ErrUnknownColumn  = errors.New("column has no cleaning rule")
	ErrJobNotFound    = errors.New("job not found")
	ErrJobNotDone     = errors.New("job has not finished")
	ErrTooManyRecords = fmt.Errorf("a job accepts at most %d records", MaxJobRecords)
)

// RuleInfo public view of a dispatch rule
type RuleInfo struct {
	Column    string   `json:"column"`
	Kind      string   `json:"kind"`
	Resources []string `json:"resources,omitempty"`
}

// JobStatus progress of a batch job
type JobStatus struct {
	JobID     string       `json:"job_id"`
	Status    string       `json:"status"`
	Processed int          `json:"processed"`
	Total     int          `json:"total"`
	Stats     engine.Stats `json:"stats"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Progress fraction of records processed
func (s JobStatus) Progress() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Processed) / float64(s.Total)
}

type job struct {
	status  JobStatus
	results *sinks.MemorySink
	done    chan struct{}
}

// CleaningService cleans records for the HTTP API, with an optional result
// cache and in-memory batch jobs
type CleaningService struct {
	processor    *engine.Processor
	poolConfig   engine.PoolConfig
	cache        ICacheService
	rulesVersion string
	logger       *zap.Logger
	startTime    time.Time
	jobSinks     []engine.Sink

	mu   sync.RWMutex
	jobs map[string]*job
}

// NewCleaningService creates a CleaningService; cache may be nil
func NewCleaningService(processor *engine.Processor, poolConfig engine.PoolConfig, cache ICacheService, rulesVersion string, logger *zap.Logger) *CleaningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleaningService{
		processor:    processor,
		poolConfig:   poolConfig,
		cache:        cache,
		rulesVersion: rulesVersion,
		logger:       logger,
		startTime:    time.Now(),
		jobs:         make(map[string]*job),
	}
}

// RulesVersion version of the rule set in use
func (cs *CleaningService) RulesVersion() string { return cs.rulesVersion }

// StartTime when the service was created
func (cs *CleaningService) StartTime() time.Time { return cs.startTime }

// CacheEnabled reports whether results are cached
func (cs *CleaningService) CacheEnabled() bool { return cs.cache != nil }

// Cache the result cache, nil when disabled
func (cs *CleaningService) Cache() ICacheService { return cs.cache }

// AddJobSink registers a sink that also receives the records of every batch job
func (cs *CleaningService) AddJobSink(s engine.Sink) {
	cs.jobSinks = append(cs.jobSinks, s)
}

// Fingerprint cache key of a record under the current rules version
func (cs *CleaningService) Fingerprint(rec models.Record) (string, error) {
	return Fingerprint(cs.rulesVersion, rec)
}

// Fingerprint hashes the rules version and the record's ordered columns and values
func Fingerprint(rulesVersion string, rec models.Record) (string, error) {
	h := sha256.New()
	h.Write([]byte(rulesVersion))
	h.Write([]byte{0})
	enc := json.NewEncoder(h)
	for _, col := range rec.Columns {
		if err := enc.Encode([2]interface{}{col, rec.Values[col]}); err != nil {
			return "", fmt.Errorf("fingerprint column %s: %w", col, err)
		}
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

// CleanRecord cleans one record, consulting the cache when useCache is set.
// The bool result reports a cache hit.
func (cs *CleaningService) CleanRecord(ctx context.Context, rec models.Record, useCache bool) (models.CleanedRecord, bool, error) {
	useCache = useCache && cs.cache != nil

	var key string
	if useCache {
		var err error
		if key, err = cs.Fingerprint(rec); err != nil {
			return models.CleanedRecord{}, false, err
		}
		cached, found, err := cs.cache.Get(ctx, key)
		if err != nil {
			cs.logger.Warn("Cache lookup failed", zap.Error(err))
		} else if found {
			return *cached, true, nil
		}
	}

	result, err := cs.process(rec)
	if err != nil {
		return models.CleanedRecord{}, false, err
	}

	if useCache {
		if err := cs.cache.Set(ctx, key, &result); err != nil {
			cs.logger.Warn("Cache store failed", zap.Error(err), zap.String("record_id", result.RecordID))
		}
	}
	return result, false, nil
}

func (cs *CleaningService) process(rec models.Record) (models.CleanedRecord, error) {
	if cs.poolConfig.Strict {
		return cs.processor.ProcessStrict(rec)
	}
	return cs.processor.Process(rec), nil
}

// CleanValue cleans a single value of column
func (cs *CleaningService) CleanValue(column string, raw models.RawValue) (models.CleanedField, error) {
	if _, ok := cs.processor.Dispatcher().Rule(engine.Column(column)); !ok {
		return models.CleanedField{}, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	return cs.processor.CleanField("", column, raw)
}

// Rules the dispatch table in column order
func (cs *CleaningService) Rules() []RuleInfo {
	rules := cs.processor.Dispatcher().Rules()
	out := make([]RuleInfo, len(rules))
	for i, r := range rules {
		out[i] = RuleInfo{Column: string(r.Column), Kind: string(r.Kind), Resources: r.Resources}
	}
	return out
}

// SubmitJob starts cleaning records in the background and returns the job id
func (cs *CleaningService) SubmitJob(records []models.Record) (string, error) {
	if len(records) > MaxJobRecords {
		return "", ErrTooManyRecords
	}

	jobID := utils.GenerateUUID()
	now := time.Now()
	j := &job{
		status: JobStatus{
			JobID:     jobID,
			Status:    JobStatusRunning,
			Total:     len(records),
			CreatedAt: now,
			UpdatedAt: now,
		},
		results: sinks.NewMemorySink(),
		done:    make(chan struct{}),
	}

	cs.mu.Lock()
	cs.jobs[jobID] = j
	cs.mu.Unlock()

	go cs.runJob(j, records)
	return jobID, nil
}

func (cs *CleaningService) runJob(j *job, records []models.Record) {
	defer close(j.done)

	pool := engine.NewPool(cs.processor, cs.poolConfig, cs.logger)
	progress := &jobProgress{service: cs, job: j}
	out := append([]engine.Sink{j.results, progress}, cs.jobSinks...)
	stats, err := pool.Run(context.Background(), engine.NewSliceSource(records), out...)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	j.status.Stats = stats
	j.status.UpdatedAt = time.Now()
	if err != nil {
		j.status.Status = JobStatusFailed
		j.status.Error = err.Error()
		cs.logger.Error("Batch job failed", zap.String("job_id", j.status.JobID), zap.Error(err))
		return
	}
	j.status.Status = JobStatusDone
	cs.logger.Info("Batch job completed",
		zap.String("job_id", j.status.JobID),
		zap.Int("records", stats.Records))
}

// jobProgress counts written records of a job
type jobProgress struct {
	service *CleaningService
	job     *job
}

func (p *jobProgress) Write(_ context.Context, records []models.CleanedRecord) error {
	p.service.mu.Lock()
	defer p.service.mu.Unlock()
	p.job.status.Processed += len(records)
	p.job.status.UpdatedAt = time.Now()
	return nil
}

func (p *jobProgress) Close() error { return nil }

// JobStatus current status of a job
func (cs *CleaningService) JobStatus(jobID string) (JobStatus, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	j, ok := cs.jobs[jobID]
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}
	return j.status, nil
}

// JobResults cleaned records of a finished job, in submission order
func (cs *CleaningService) JobResults(jobID string) ([]models.CleanedRecord, error) {
	cs.mu.RLock()
	j, ok := cs.jobs[jobID]
	cs.mu.RUnlock()
	if !ok {
		return nil, ErrJobNotFound
	}

	select {
	case <-j.done:
	default:
		return nil, ErrJobNotDone
	}
	return j.results.Records(), nil
}

// WaitJob blocks until the job finishes or ctx ends
func (cs *CleaningService) WaitJob(ctx context.Context, jobID string) (JobStatus, error) {
	cs.mu.RLock()
	j, ok := cs.jobs[jobID]
	cs.mu.RUnlock()
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}

	select {
	case <-j.done:
		return cs.JobStatus(jobID)
	case <-ctx.Done():
		return JobStatus{}, ctx.Err()
	}
}
