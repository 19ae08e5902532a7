package resources

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/meilisearch/meilisearch-go"
	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/rules"
	"go.uber.org/zap"
)

const meiliPageSize = 1000

// MeiliSearcher the part of a Meilisearch index used to page through documents
type MeiliSearcher interface {
	Search(query string, request *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error)
}

// MeiliSource loads catalogs from Meilisearch indexes named
// <prefix><table>. Documents carry key, name and position.
type MeiliSource struct {
	index  func(uid string) MeiliSearcher
	logger *zap.Logger
	prefix string
}

// NewMeiliSource creates a MeiliSource on a Meilisearch client
func NewMeiliSource(client meilisearch.ServiceManager, prefix string, logger *zap.Logger) *MeiliSource {
	return newMeiliSource(func(uid string) MeiliSearcher { return client.Index(uid) }, prefix, logger)
}

func newMeiliSource(index func(uid string) MeiliSearcher, prefix string, logger *zap.Logger) *MeiliSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeiliSource{index: index, logger: logger, prefix: prefix}
}

// IndexUID index holding a catalog table
func (s *MeiliSource) IndexUID(table string) string { return s.prefix + table }

// LoadCatalog pages through every document of the index
func (s *MeiliSource) LoadCatalog(ctx context.Context, spec rules.CatalogSpec) (catalog.Catalog, error) {
	uid := s.IndexUID(spec.Table)
	index := s.index(uid)

	type positioned struct {
		pos int
		row catalog.Row
	}
	var docs []positioned

	for offset := int64(0); ; offset += meiliPageSize {
		if err := ctx.Err(); err != nil {
			return catalog.Catalog{}, err
		}
		result, err := index.Search("", &meilisearch.SearchRequest{Limit: meiliPageSize, Offset: offset})
		if err != nil {
			return catalog.Catalog{}, catalogUnavailable(spec.Table, fmt.Errorf("search index %s: %w", uid, err))
		}

		for _, hit := range result.Hits {
			hitMap, ok := hit.(map[string]interface{})
			if !ok {
				continue
			}
			name := stringField(hitMap["name"])
			if name == "" {
				continue
			}
			row := catalog.Row{Key: stringField(hitMap["key"]), Name: name}
			if row.Key == "" {
				row.Key = name
			}
			pos := len(docs)
			if p, ok := hitMap["position"].(float64); ok {
				pos = int(p)
			}
			docs = append(docs, positioned{pos: pos, row: row})
		}

		if int64(len(result.Hits)) < meiliPageSize {
			break
		}
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].pos < docs[j].pos })
	cat := catalog.Catalog{Name: spec.Table, Rows: make([]catalog.Row, len(docs))}
	for i, d := range docs {
		cat.Rows[i] = d.row
	}

	s.logger.Debug("Loaded catalog from Meilisearch", zap.String("index", uid), zap.Int("rows", len(cat.Rows)))
	return cat, nil
}

// CatalogDocuments converts a catalog to the documents LoadCatalog reads
func CatalogDocuments(cat catalog.Catalog) []map[string]interface{} {
	docs := make([]map[string]interface{}, len(cat.Rows))
	for i, r := range cat.Rows {
		docs[i] = map[string]interface{}{
			"id":       strconv.Itoa(i),
			"key":      r.Key,
			"name":     r.Name,
			"position": i,
		}
	}
	return docs
}

// SeedCatalog uploads a catalog into its index in batches
func (s *MeiliSource) SeedCatalog(client meilisearch.ServiceManager, cat catalog.Catalog) error {
	uid := s.IndexUID(cat.Name)
	index := client.Index(uid)
	docs := CatalogDocuments(cat)

	for i := 0; i < len(docs); i += meiliPageSize {
		end := i + meiliPageSize
		if end > len(docs) {
			end = len(docs)
		}
		task, err := index.AddDocuments(docs[i:end], "id")
		if err != nil {
			return fmt.Errorf("add documents %d-%d to %s: %w", i, end, uid, err)
		}
		s.logger.Info("Queued catalog batch",
			zap.String("index", uid),
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}
	return nil
}

func stringField(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
