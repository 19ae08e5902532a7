package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pnt-cleaner/app/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source yields records until io.EOF
type Source interface {
	Next(ctx context.Context) (models.Record, error)
	Close() error
}

// Sink persists cleaned records. Sinks own quoting and escaping.
type Sink interface {
	Write(ctx context.Context, records []models.CleanedRecord) error
	Close() error
}

// PoolConfig worker pool settings
type PoolConfig struct {
	Workers   int  // records cleaned in parallel
	BatchSize int  // records per sink write
	Strict    bool // abort the run on the first field failure
}

// Stats counters of one run
type Stats struct {
	Records   int           `json:"records"`
	Cleaned   int           `json:"cleaned"`
	Rejected  int           `json:"rejected"`
	Absent    int           `json:"absent"`
	Untouched int           `json:"untouched"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Add counts the fields of one record
func (s *Stats) Add(rec models.CleanedRecord) {
	s.Records++
	for _, f := range rec.Fields {
		switch f.Status {
		case models.StatusCleaned:
			s.Cleaned++
		case models.StatusRejected:
			s.Rejected++
		case models.StatusAbsent:
			s.Absent++
		case models.StatusUntouched:
			s.Untouched++
		case models.StatusFailed:
			s.Failed++
		}
	}
}

// Pool cleans records in parallel. Output order always equals input order.
type Pool struct {
	processor *Processor
	config    PoolConfig
	logger    *zap.Logger
}

// NewPool creates a Pool
func NewPool(processor *Processor, config PoolConfig, logger *zap.Logger) *Pool {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{processor: processor, config: config, logger: logger}
}

// ProcessBatch cleans a batch; result i belongs to record i
func (p *Pool) ProcessBatch(ctx context.Context, records []models.Record) ([]models.CleanedRecord, error) {
	out := make([]models.CleanedRecord, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)
	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if p.config.Strict {
				cleaned, err := p.processor.ProcessStrict(rec)
				if err != nil {
					return err
				}
				out[i] = cleaned
				return nil
			}
			out[i] = p.processor.Process(rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Run drains src batch by batch and writes every batch to all sinks.
// Closing src and sinks is left to the caller.
func (p *Pool) Run(ctx context.Context, src Source, sinks ...Sink) (Stats, error) {
	start := time.Now()
	var stats Stats

	batch := make([]models.Record, 0, p.config.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		cleaned, err := p.ProcessBatch(ctx, batch)
		if err != nil {
			return err
		}
		for _, sink := range sinks {
			if err := sink.Write(ctx, cleaned); err != nil {
				return fmt.Errorf("write batch: %w", err)
			}
		}
		for _, rec := range cleaned {
			stats.Add(rec)
		}
		p.logger.Debug("Batch cleaned", zap.Int("records", len(cleaned)), zap.Int("total", stats.Records))
		batch = batch[:0]
		return nil
	}

	for {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read record %d: %w", stats.Records+len(batch)+1, err)
		}
		batch = append(batch, rec)
		if len(batch) >= p.config.BatchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	p.logger.Info("Cleaning run finished",
		zap.Int("records", stats.Records),
		zap.Int("cleaned", stats.Cleaned),
		zap.Int("rejected", stats.Rejected),
		zap.Int("failed", stats.Failed),
		zap.Duration("took", stats.Duration))
	return stats, nil
}

// SliceSource a Source over records held in memory
type SliceSource struct {
	records []models.Record
	next    int
}

// NewSliceSource creates a SliceSource
func NewSliceSource(records []models.Record) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next(ctx context.Context) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}
	if s.next >= len(s.records) {
		return models.Record{}, io.EOF
	}
	rec := s.records[s.next]
	s.next++
	return rec, nil
}

func (s *SliceSource) Close() error { return nil }
