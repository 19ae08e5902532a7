package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/pnt-cleaner/app/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Dominant value types of a column
const (
	TypeInteger = "Integer"
	TypeFloat   = "Float"
	TypeString  = "String"
)

// SummarySheet name of the overview sheet in both workbooks
const SummarySheet = "Resumen"

// RecordSource yields raw records until io.EOF
type RecordSource interface {
	Next(ctx context.Context) (models.Record, error)
}

// ValueCount frequency of one distinct value
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnVariation distinct values of one column
type ColumnVariation struct {
	Column       string       `json:"column"`
	Unique       int          `json:"unique"`
	Total        int          `json:"total"`
	DominantType string       `json:"dominant_type"`
	Observation  string       `json:"observation"`
	Suggestion   string       `json:"suggestion"`
	Values       []ValueCount `json:"values"` // most frequent first
}

// Variation result of a variation analysis
type Variation struct {
	Records int               `json:"records"`
	Columns []ColumnVariation `json:"columns"`
	Missing []string          `json:"missing"` // requested columns never seen
	Empty   []string          `json:"empty"`   // columns seen with no values
}

type columnTally struct {
	counts    map[string]int
	texts     int
	numbers   int
	fractions int
}

// Analyzer counts value variations per column. Absent values are not counted.
type Analyzer struct {
	columns []string
	tallies map[string]*columnTally
	seen    map[string]bool
	records int
	logger  *zap.Logger
}

// NewAnalyzer analyzes the given columns, or every column seen when empty
func NewAnalyzer(columns []string, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		columns: columns,
		tallies: make(map[string]*columnTally),
		seen:    make(map[string]bool),
		logger:  logger,
	}
}

// Add counts one record
func (a *Analyzer) Add(rec models.Record) {
	a.records++
	for _, col := range rec.Columns {
		if !a.seen[col] {
			a.seen[col] = true
			if len(a.columns) == 0 {
				a.columns = append(a.columns, col)
			}
		}
		v := rec.Values[col]
		if v.IsAbsent() {
			continue
		}
		t := a.tallies[col]
		if t == nil {
			t = &columnTally{counts: make(map[string]int)}
			a.tallies[col] = t
		}
		t.counts[v.String()]++
		if n, ok := v.AsNumber(); ok {
			t.numbers++
			if n != math.Trunc(n) {
				t.fractions++
			}
		} else {
			t.texts++
		}
	}
}

// AddAll drains src into the analyzer
func (a *Analyzer) AddAll(ctx context.Context, src RecordSource) error {
	for {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read record %d: %w", a.records+1, err)
		}
		a.Add(rec)
	}
}

// Result the analysis so far, columns in requested order
func (a *Analyzer) Result() Variation {
	out := Variation{Records: a.records}
	for _, col := range a.columns {
		if !a.seen[col] {
			out.Missing = append(out.Missing, col)
			a.logger.Warn("Column not found in source", zap.String("column", col))
			continue
		}
		t := a.tallies[col]
		if t == nil {
			out.Empty = append(out.Empty, col)
			a.logger.Warn("Column has no values", zap.String("column", col))
			continue
		}
		out.Columns = append(out.Columns, t.variation(col))
	}
	return out
}

func (t *columnTally) variation(col string) ColumnVariation {
	values := make([]ValueCount, 0, len(t.counts))
	total := 0
	for v, c := range t.counts {
		values = append(values, ValueCount{Value: v, Count: c})
		total += c
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})

	cv := ColumnVariation{
		Column:       col,
		Unique:       len(values),
		Total:        total,
		DominantType: t.dominantType(),
		Values:       values,
	}
	cv.Observation = observation(values, total)
	cv.Suggestion = suggestion(cv.DominantType)
	return cv
}

func (t *columnTally) dominantType() string {
	switch {
	case t.numbers > t.texts && t.fractions > 0:
		return TypeFloat
	case t.numbers > t.texts:
		return TypeInteger
	default:
		return TypeString
	}
}

func observation(values []ValueCount, total int) string {
	if len(values) <= 1 {
		return "Columna constante"
	}
	top := values[:2]
	share := float64(top[0].Count+top[1].Count) / float64(total) * 100
	return fmt.Sprintf("Valores concentrados en [%s, %s] con %.1f%%", top[0].Value, top[1].Value, share)
}

func suggestion(dominant string) string {
	if dominant == TypeString {
		return "Normalización de texto (strip, lower, regex)"
	}
	return "Detección de outliers (Z-score/IQR) y estandarización"
}

// WriteVariation writes the variation workbook: a summary sheet plus one
// frequency sheet per column.
func WriteVariation(out io.Writer, v Variation) error {
	wb, err := newWorkbook()
	if err != nil {
		return err
	}
	defer wb.close()

	namer := NewSheetNamer(SummarySheet)
	summary := make([][]interface{}, 0, len(v.Columns))
	for _, c := range v.Columns {
		summary = append(summary, []interface{}{c.Column, c.Unique, c.DominantType, c.Total, c.Observation, c.Suggestion})
	}
	header := []string{"Columna", "Valores Únicos", "Tipo Predominante", "Frecuencia Total", "Observaciones", "Algoritmo Sugerido"}
	if err := wb.addSheet(SummarySheet, header, summary); err != nil {
		return err
	}

	for _, c := range v.Columns {
		rows := make([][]interface{}, len(c.Values))
		for i, vc := range c.Values {
			rows[i] = []interface{}{vc.Value, vc.Count}
		}
		if err := wb.addSheet(namer.Name(c.Column), []string{"Valor", "Frecuencia"}, rows); err != nil {
			return err
		}
	}
	return wb.writeTo(out)
}

// SaveVariation writes the variation workbook to path on fs
func SaveVariation(fs afero.Fs, path string, v Variation) error {
	return saveFile(fs, path, func(w io.Writer) error { return WriteVariation(w, v) })
}
