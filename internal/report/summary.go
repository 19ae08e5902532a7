package report

import (
	"context"
	"io"
	"sync"

	"github.com/pnt-cleaner/app/models"
	"github.com/spf13/afero"
)

// FailureSheet name of the sheet listing failed fields
const FailureSheet = "Errores"

// maxFailures caps the failure sheet
const maxFailures = 10000

// ColumnSummary status counts of one column over a run
type ColumnSummary struct {
	Column    string `json:"column"`
	Rule      string `json:"rule,omitempty"`
	Cleaned   int    `json:"cleaned"`
	Rejected  int    `json:"rejected"`
	Absent    int    `json:"absent"`
	Untouched int    `json:"untouched"`
	Failed    int    `json:"failed"`
}

// Failure one failed field
type Failure struct {
	RecordID string `json:"record_id"`
	Column   string `json:"column"`
	Raw      string `json:"raw"`
	Error    string `json:"error"`
}

// SummarySink collects per-column status counts of a cleaning run.
// It is an engine sink, so it can run next to the persisting sinks.
type SummarySink struct {
	mu       sync.Mutex
	order    []string
	columns  map[string]*ColumnSummary
	failures []Failure
	records  int
}

// NewSummarySink creates an empty SummarySink
func NewSummarySink() *SummarySink {
	return &SummarySink{columns: make(map[string]*ColumnSummary)}
}

func (s *SummarySink) Write(_ context.Context, records []models.CleanedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		s.records++
		for _, f := range rec.Fields {
			c := s.columns[f.Column]
			if c == nil {
				c = &ColumnSummary{Column: f.Column}
				s.columns[f.Column] = c
				s.order = append(s.order, f.Column)
			}
			if c.Rule == "" {
				c.Rule = f.Rule
			}
			switch f.Status {
			case models.StatusCleaned:
				c.Cleaned++
			case models.StatusRejected:
				c.Rejected++
			case models.StatusAbsent:
				c.Absent++
			case models.StatusUntouched:
				c.Untouched++
			case models.StatusFailed:
				c.Failed++
				if len(s.failures) < maxFailures {
					s.failures = append(s.failures, Failure{
						RecordID: rec.RecordID,
						Column:   f.Column,
						Raw:      f.Raw.String(),
						Error:    f.Error,
					})
				}
			}
		}
	}
	return nil
}

func (s *SummarySink) Close() error { return nil }

// Records number of records seen
func (s *SummarySink) Records() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Columns per-column counts in first-seen order
func (s *SummarySink) Columns() []ColumnSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ColumnSummary, len(s.order))
	for i, col := range s.order {
		out[i] = *s.columns[col]
	}
	return out
}

// Failures failed fields, at most maxFailures
func (s *SummarySink) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Failure(nil), s.failures...)
}

// WriteWorkbook writes the summary and failure sheets
func (s *SummarySink) WriteWorkbook(out io.Writer) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	columns := s.Columns()
	rows := make([][]interface{}, len(columns))
	for i, c := range columns {
		rows[i] = []interface{}{c.Column, c.Rule, c.Cleaned, c.Rejected, c.Absent, c.Untouched, c.Failed}
	}
	header := []string{"Columna", "Regla", "Limpios", "Rechazados", "Ausentes", "Sin regla", "Fallidos"}
	if err := wb.addSheet(SummarySheet, header, rows); err != nil {
		return err
	}

	failures := s.Failures()
	rows = make([][]interface{}, len(failures))
	for i, f := range failures {
		rows[i] = []interface{}{f.RecordID, f.Column, f.Raw, f.Error}
	}
	if err := wb.addSheet(FailureSheet, []string{"Registro", "Columna", "Valor", "Error"}, rows); err != nil {
		return err
	}
	return wb.writeTo(out)
}

// SaveWorkbook writes the summary workbook to path on fs
func (s *SummarySink) SaveWorkbook(fs afero.Fs, path string) error {
	return saveFile(fs, path, s.WriteWorkbook)
}
