package sinks

import (
	"context"
	"sync"

	"github.com/pnt-cleaner/app/models"
)

// MemorySink keeps every written record in memory
type MemorySink struct {
	mu      sync.Mutex
	records []models.CleanedRecord
	closed  bool
}

// NewMemorySink creates an empty MemorySink
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Write(_ context.Context, records []models.CleanedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

// Records a copy of everything written so far, in write order
func (s *MemorySink) Records() []models.CleanedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CleanedRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Closed reports whether Close was called
func (s *MemorySink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
