// Package catalog resolves free-text values to canonical catalog entries.
package catalog

import (
	"strings"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/pnt-cleaner/internal/normalizer"
)

// Row one catalog entry
type Row struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Catalog a read-only table of canonical names
type Catalog struct {
	Name string `json:"name"`
	Rows []Row  `json:"rows"`
}

// Index a catalog with names normalized once
type Index struct {
	name string
	rows []Row
	norm []string
}

// NewIndex normalizes the catalog names
func NewIndex(c Catalog) *Index {
	idx := &Index{name: c.Name, rows: c.Rows, norm: make([]string, len(c.Rows))}
	for i, row := range c.Rows {
		idx.norm[i] = normalizer.Normalize(row.Name)
	}
	return idx
}

// Name returns the catalog name
func (idx *Index) Name() string { return idx.name }

// Len returns the number of rows
func (idx *Index) Len() int { return len(idx.rows) }

// KeyFor returns the key of the first row whose normalized name equals norm
func (idx *Index) KeyFor(norm string) (string, bool) {
	for i, n := range idx.norm {
		if n == norm {
			return idx.rows[i].Key, true
		}
	}
	return "", false
}

// Matcher resolves a value against a catalog index
type Matcher interface {
	Resolve(value string, idx *Index) models.Value
}

// Resolver whitelist resolution: substring first, then partial fuzzy match
type Resolver struct {
	scorer    *fuzzy.Scorer
	threshold float64
}

// NewResolver creates a Resolver
func NewResolver(scorer *fuzzy.Scorer, threshold float64) *Resolver {
	if scorer == nil {
		scorer = fuzzy.Default()
	}
	return &Resolver{scorer: scorer, threshold: threshold}
}

// Resolve returns the normalized catalog entry for value, or Rejected.
//  1. the first entry containing the normalized value as a substring
//  2. otherwise the first entry whose partial ratio reaches the threshold
func (r *Resolver) Resolve(value string, idx *Index) models.Value {
	norm := normalizer.Normalize(value)
	if norm == "" {
		return models.Rejected
	}

	for _, entry := range idx.norm {
		if strings.Contains(entry, norm) {
			return models.TextValue(entry)
		}
	}

	for _, entry := range idx.norm {
		if r.scorer.PartialRatio(norm, entry) >= r.threshold {
			return models.TextValue(entry)
		}
	}

	return models.Rejected
}
