// Package report writes spreadsheet reports about procurement columns:
// the variation analysis of raw values and the summary of a cleaning run.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName = 31
	maxColWidth  = 60
	minColWidth  = 10
)

// SheetNamer produces unique, valid worksheet names
type SheetNamer struct {
	used map[string]bool
}

// NewSheetNamer creates a SheetNamer with names already taken
func NewSheetNamer(reserved ...string) *SheetNamer {
	n := &SheetNamer{used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[strings.ToLower(r)] = true
	}
	return n
}

// Name transliterates s to ASCII, drops characters Excel forbids in sheet
// names, truncates to 31 characters and appends _2, _3... on collisions.
func (n *SheetNamer) Name(s string) string {
	base := sanitizeSheetName(s)
	name := base
	for i := 2; n.used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	n.used[strings.ToLower(name)] = true
	return name
}

func sanitizeSheetName(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return -1
		}
		return r
	}, s)
	s = strings.Trim(strings.TrimSpace(s), "'")
	if s == "" {
		s = "Hoja"
	}
	return truncate(s, maxSheetName)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// workbook wraps an excelize file with the header style shared by reports
type workbook struct {
	file        *excelize.File
	headerStyle int
	first       bool
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &workbook{file: f, headerStyle: style, first: true}, nil
}

// addSheet writes a table; the first sheet replaces excelize's default one
func (w *workbook) addSheet(name string, header []string, rows [][]interface{}) error {
	if w.first {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
		w.first = false
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	headerRow := make([]interface{}, len(header))
	widths := make([]int, len(header))
	for i, h := range header {
		headerRow[i] = h
		widths[i] = utf8.RuneCountInString(h) + 2
	}
	if err := w.file.SetSheetRow(name, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := w.file.SetCellStyle(name, "A1", last, w.headerStyle); err != nil {
		return fmt.Errorf("style header of %s: %w", name, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.file.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+2, name, err)
		}
		for j, v := range row {
			if j < len(widths) {
				if l := utf8.RuneCountInString(fmt.Sprint(v)) + 2; l > widths[j] {
					widths[j] = l
				}
			}
		}
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width = max(minColWidth, min(width, maxColWidth))
		if err := w.file.SetColWidth(name, col, col, float64(width)); err != nil {
			return fmt.Errorf("size column %s of %s: %w", col, name, err)
		}
	}
	return nil
}

func (w *workbook) writeTo(out io.Writer) error {
	w.file.SetActiveSheet(0)
	if _, err := w.file.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (w *workbook) close() error { return w.file.Close() }

// saveFile creates path on fs and writes the workbook produced by write into it
func saveFile(fs afero.Fs, path string, write func(io.Writer) error) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
