// Package sources reads procurement records for the cleaning engine.
package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pnt-cleaner/app/models"
	"github.com/spf13/afero"
)

// CSVSource reads records from a CSV export with a header row. Empty cells
// are absent values; every other cell is text.
type CSVSource struct {
	file   afero.File
	reader *csv.Reader
	header []string
	row    int
}

// OpenCSV opens path on fs and reads its header
func OpenCSV(fs afero.Fs, path string) (*CSVSource, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}
	return &CSVSource{file: f, reader: reader, header: header}, nil
}

// Header the column names in file order
func (s *CSVSource) Header() []string { return s.header }

func (s *CSVSource) Next(ctx context.Context) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}
	cells, err := s.reader.Read()
	if errors.Is(err, io.EOF) {
		return models.Record{}, io.EOF
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("read row %d: %w", s.row+1, err)
	}
	s.row++

	rec := models.NewRecord()
	for i, col := range s.header {
		if i >= len(cells) || cells[i] == "" {
			rec.Set(col, models.Absent())
			continue
		}
		rec.Set(col, models.Text(cells[i]))
	}
	return rec, nil
}

func (s *CSVSource) Close() error { return s.file.Close() }
