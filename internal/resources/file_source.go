package resources

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/spf13/afero"
)

const utf8BOM = "\uFEFF"

// FileSource reads lists from <dir>/<name>.txt and catalogs from
// <dir>/<table>.csv (header row naming the key and name columns).
type FileSource struct {
	fs  afero.Fs
	dir string
}

// NewFileSource creates a FileSource; a nil fs means the OS filesystem
func NewFileSource(fs afero.Fs, dir string) *FileSource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileSource{fs: fs, dir: dir}
}

// LoadList reads one entry per line, trimmed, skipping blank lines
func (s *FileSource) LoadList(ctx context.Context, name string) (reflist.List, error) {
	path := filepath.Join(s.dir, name+".txt")
	f, err := s.fs.Open(path)
	if err != nil {
		return reflist.List{}, listUnavailable(name, err)
	}
	defer f.Close()

	list := reflist.List{Name: name}
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, utf8BOM)
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		list.Lines = append(list.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return reflist.List{}, listUnavailable(name, fmt.Errorf("read %s: %w", path, err))
	}
	return list, ctx.Err()
}

// LoadCatalog reads a CSV export of the catalog table. Rows with an empty
// name are skipped.
func (s *FileSource) LoadCatalog(ctx context.Context, spec rules.CatalogSpec) (catalog.Catalog, error) {
	path := filepath.Join(s.dir, spec.Table+".csv")
	f, err := s.fs.Open(path)
	if err != nil {
		return catalog.Catalog{}, catalogUnavailable(spec.Table, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return catalog.Catalog{}, catalogUnavailable(spec.Table, fmt.Errorf("read header of %s: %w", path, err))
	}
	keyIdx, nameIdx, err := columnIndexes(header, spec)
	if err != nil {
		return catalog.Catalog{}, catalogUnavailable(spec.Table, err)
	}

	cat := catalog.Catalog{Name: spec.Table}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return catalog.Catalog{}, catalogUnavailable(spec.Table, fmt.Errorf("read %s: %w", path, err))
		}
		if nameIdx >= len(record) || strings.TrimSpace(record[nameIdx]) == "" {
			continue
		}
		row := catalog.Row{Name: strings.TrimSpace(record[nameIdx])}
		row.Key = row.Name
		if keyIdx >= 0 && keyIdx < len(record) {
			row.Key = strings.TrimSpace(record[keyIdx])
		}
		cat.Rows = append(cat.Rows, row)
	}
	return cat, ctx.Err()
}

// columnIndexes locates the key and name columns; key is -1 when the spec has none
func columnIndexes(header []string, spec rules.CatalogSpec) (int, int, error) {
	keyIdx, nameIdx := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
		switch {
		case strings.EqualFold(h, spec.NameColumn):
			nameIdx = i
		case spec.KeyColumn != "" && strings.EqualFold(h, spec.KeyColumn):
			keyIdx = i
		}
	}
	if nameIdx < 0 {
		return 0, 0, fmt.Errorf("column %s not found in header", spec.NameColumn)
	}
	if spec.KeyColumn != "" && keyIdx < 0 {
		return 0, 0, fmt.Errorf("column %s not found in header", spec.KeyColumn)
	}
	return keyIdx, nameIdx, nil
}
