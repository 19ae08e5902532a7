// Package resources loads reference lists and catalogs once per run and
// hands them to the rule engine as a read-only Set.
package resources

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/rules"
)

// ErrResourceUnavailable a list or catalog could not be loaded. An empty
// resource is not unavailable.
var ErrResourceUnavailable = errors.New("resource unavailable")

// Kind of resource
type Kind string

const (
	KindList    Kind = "list"
	KindCatalog Kind = "catalog"
)

// ResourceError load failure of one named resource
type ResourceError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s unavailable", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %s unavailable: %v", e.Kind, e.Name, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrResourceUnavailable) succeed
func (e *ResourceError) Is(target error) bool {
	return target == ErrResourceUnavailable
}

func listUnavailable(name string, err error) error {
	return &ResourceError{Kind: KindList, Name: name, Err: err}
}

func catalogUnavailable(name string, err error) error {
	return &ResourceError{Kind: KindCatalog, Name: name, Err: err}
}

// ListSource loads a reference list by name
type ListSource interface {
	LoadList(ctx context.Context, name string) (reflist.List, error)
}

// CatalogSource loads a catalog table
type CatalogSource interface {
	LoadCatalog(ctx context.Context, spec rules.CatalogSpec) (catalog.Catalog, error)
}

// ChainListSource tries each source in order and falls back on
// ErrResourceUnavailable. Other errors stop the chain.
type ChainListSource []ListSource

func (c ChainListSource) LoadList(ctx context.Context, name string) (reflist.List, error) {
	var errs []error
	for _, src := range c {
		list, err := src.LoadList(ctx, name)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, ErrResourceUnavailable) {
			return reflist.List{}, err
		}
		errs = append(errs, err)
	}
	return reflist.List{}, listUnavailable(name, errors.Join(errs...))
}

// ChainCatalogSource is ChainListSource for catalogs
type ChainCatalogSource []CatalogSource

func (c ChainCatalogSource) LoadCatalog(ctx context.Context, spec rules.CatalogSpec) (catalog.Catalog, error) {
	var errs []error
	for _, src := range c {
		cat, err := src.LoadCatalog(ctx, spec)
		if err == nil {
			return cat, nil
		}
		if !errors.Is(err, ErrResourceUnavailable) {
			return catalog.Catalog{}, err
		}
		errs = append(errs, err)
	}
	return catalog.Catalog{}, catalogUnavailable(spec.Table, errors.Join(errs...))
}

// Set the resources of one run. Read-only once built.
type Set struct {
	lists    map[string]reflist.List
	catalogs map[string]catalog.Catalog
}

// NewSet builds a Set; catalogs are keyed by their Name
func NewSet(lists []reflist.List, catalogs []catalog.Catalog) *Set {
	s := &Set{
		lists:    make(map[string]reflist.List, len(lists)),
		catalogs: make(map[string]catalog.Catalog, len(catalogs)),
	}
	for _, l := range lists {
		s.lists[l.Name] = l
	}
	for _, c := range catalogs {
		s.catalogs[c.Name] = c
	}
	return s
}

// List returns a loaded list
func (s *Set) List(name string) (reflist.List, error) {
	l, ok := s.lists[name]
	if !ok {
		return reflist.List{}, listUnavailable(name, errors.New("not loaded"))
	}
	return l, nil
}

// Catalog returns a loaded catalog by table name
func (s *Set) Catalog(table string) (catalog.Catalog, error) {
	c, ok := s.catalogs[table]
	if !ok {
		return catalog.Catalog{}, catalogUnavailable(table, errors.New("not loaded"))
	}
	return c, nil
}

// ListNames sorted names of loaded lists
func (s *Set) ListNames() []string {
	return sortedKeys(s.lists)
}

// CatalogNames sorted names of loaded catalogs
func (s *Set) CatalogNames() []string {
	return sortedKeys(s.catalogs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
