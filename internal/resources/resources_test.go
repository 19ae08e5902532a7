package resources

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/meilisearch/meilisearch-go"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	municipalitySpec = rules.CatalogSpec{Table: "municipio_qro", KeyColumn: "clave", NameColumn: "nombre"}
	countrySpec      = rules.CatalogSpec{Table: "paises", NameColumn: "nombre"}
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestFileSource_LoadList(t *testing.T) {
	fs := memFS(t, map[string]string{
		"lists/adj_domicilios_blacklist.txt": "\uFEFFNo aplica\r\n\r\n  Sin dato \nNA\n",
		"lists/empty.txt":                    "",
	})
	src := NewFileSource(fs, "lists")

	list, err := src.LoadList(context.Background(), "adj_domicilios_blacklist")
	require.NoError(t, err)
	assert.Equal(t, "adj_domicilios_blacklist", list.Name)
	assert.Equal(t, []string{"No aplica", "Sin dato", "NA"}, list.Lines)

	empty, err := src.LoadList(context.Background(), "empty")
	require.NoError(t, err, "an empty list is not unavailable")
	assert.Empty(t, empty.Lines)

	_, err = src.LoadList(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))

	var resErr *ResourceError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, KindList, resErr.Kind)
	assert.Equal(t, "missing", resErr.Name)
}

func TestFileSource_LoadCatalog(t *testing.T) {
	fs := memFS(t, map[string]string{
		"catalogs/municipio_qro.csv": "clave,nombre\n1,Amealco de Bonfil\n14,Querétaro\n15,\n",
		"catalogs/paises.csv":        "nombre\nMéxico\nFrancia\n",
		"catalogs/bad.csv":           "id,descripcion\n1,x\n",
	})
	src := NewFileSource(fs, "catalogs")

	cat, err := src.LoadCatalog(context.Background(), municipalitySpec)
	require.NoError(t, err)
	assert.Equal(t, "municipio_qro", cat.Name)
	assert.Equal(t, []catalog.Row{
		{Key: "1", Name: "Amealco de Bonfil"},
		{Key: "14", Name: "Querétaro"},
	}, cat.Rows)

	countries, err := src.LoadCatalog(context.Background(), countrySpec)
	require.NoError(t, err)
	assert.Equal(t, catalog.Row{Key: "México", Name: "México"}, countries.Rows[0])

	_, err = src.LoadCatalog(context.Background(), rules.CatalogSpec{Table: "bad", KeyColumn: "clave", NameColumn: "nombre"})
	assert.True(t, errors.Is(err, ErrResourceUnavailable))

	_, err = src.LoadCatalog(context.Background(), rules.CatalogSpec{Table: "nope", NameColumn: "nombre"})
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
}

func newRedisSource(t *testing.T) (*RedisSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSource(client, "pnt:", nil), mr
}

func TestRedisSource_Lists(t *testing.T) {
	src, mr := newRedisSource(t)
	ctx := context.Background()

	_, err := mr.Lpush("pnt:list:mxn", "pesos")
	require.NoError(t, err)

	list, err := src.LoadList(ctx, "mxn")
	require.NoError(t, err)
	assert.Equal(t, []string{"pesos"}, list.Lines)

	require.NoError(t, src.StoreList(ctx, reflist.List{Name: "usd", Lines: []string{"dolares", "usd"}}))
	list, err = src.LoadList(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, []string{"dolares", "usd"}, list.Lines)

	_, err = src.LoadList(ctx, "missing")
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
}

func TestRedisSource_Catalogs(t *testing.T) {
	src, mr := newRedisSource(t)
	ctx := context.Background()

	mr.HSet("pnt:catalog:municipio_qro", "14", "Querétaro", "2", "Arroyo Seco", "1", "Amealco de Bonfil")

	cat, err := src.LoadCatalog(ctx, municipalitySpec)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Row{
		{Key: "1", Name: "Amealco de Bonfil"},
		{Key: "2", Name: "Arroyo Seco"},
		{Key: "14", Name: "Querétaro"},
	}, cat.Rows, "numeric keys sort numerically")

	countries := catalog.Catalog{Name: "paises", Rows: []catalog.Row{{Key: "Mexico", Name: "Mexico"}, {Key: "Francia", Name: "Francia"}}}
	require.NoError(t, src.StoreCatalog(ctx, countrySpec, countries))
	loaded, err := src.LoadCatalog(ctx, countrySpec)
	require.NoError(t, err)
	assert.Equal(t, countries.Rows, loaded.Rows)

	_, err = src.LoadCatalog(ctx, rules.CatalogSpec{Table: "entidad_federativa", KeyColumn: "clave", NameColumn: "nombre"})
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
}

func TestCatalogQuery(t *testing.T) {
	query, args, err := CatalogQuery(municipalitySpec)
	require.NoError(t, err)
	assert.Equal(t, "SELECT CAST(clave AS TEXT), CAST(nombre AS TEXT) FROM municipio_qro WHERE nombre IS NOT NULL", query)
	assert.Empty(t, args)

	query, _, err = CatalogQuery(countrySpec)
	require.NoError(t, err)
	assert.Equal(t, "SELECT CAST(nombre AS TEXT), CAST(nombre AS TEXT) FROM paises WHERE nombre IS NOT NULL", query)
}

func TestPostgresSource_LoadCatalog(t *testing.T) {
	t.Run("Should load rows in table order", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		rows := mockPool.NewRows([]string{"clave", "nombre"}).
			AddRow("1", "Amealco de Bonfil").
			AddRow("14", "Querétaro")
		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT CAST(clave AS TEXT), CAST(nombre AS TEXT) FROM municipio_qro")).
			WillReturnRows(rows)

		cat, err := NewPostgresSource(mockPool, nil).LoadCatalog(context.Background(), municipalitySpec)
		require.NoError(t, err)
		assert.Equal(t, []catalog.Row{{Key: "1", Name: "Amealco de Bonfil"}, {Key: "14", Name: "Querétaro"}}, cat.Rows)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should report query failures as unavailable", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery("SELECT (.+) FROM paises").WillReturnError(errors.New("relation does not exist"))

		_, err = NewPostgresSource(mockPool, nil).LoadCatalog(context.Background(), countrySpec)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrResourceUnavailable))
		assert.Contains(t, err.Error(), "relation does not exist")
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

type fakeMeiliIndex struct {
	docs     []interface{}
	requests []meilisearch.SearchRequest
	err      error
}

func (f *fakeMeiliIndex) Search(_ string, req *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error) {
	f.requests = append(f.requests, *req)
	if f.err != nil {
		return nil, f.err
	}
	start := int(req.Offset)
	if start > len(f.docs) {
		start = len(f.docs)
	}
	end := start + int(req.Limit)
	if end > len(f.docs) {
		end = len(f.docs)
	}
	return &meilisearch.SearchResponse{Hits: f.docs[start:end], EstimatedTotalHits: int64(len(f.docs))}, nil
}

func TestMeiliSource_LoadCatalog(t *testing.T) {
	var docs []interface{}
	for _, d := range CatalogDocuments(catalog.Catalog{Name: "paises", Rows: []catalog.Row{{Key: "Mexico", Name: "Mexico"}, {Key: "Francia", Name: "Francia"}}}) {
		doc := map[string]interface{}{}
		for k, v := range d {
			doc[k] = v
		}
		doc["position"] = float64(d["position"].(int))
		docs = append(docs, doc)
	}
	// reversed hit order, position restores table order
	docs[0], docs[1] = docs[1], docs[0]

	index := &fakeMeiliIndex{docs: docs}
	src := newMeiliSource(func(uid string) MeiliSearcher {
		assert.Equal(t, "pnt_paises", uid)
		return index
	}, "pnt_", nil)

	cat, err := src.LoadCatalog(context.Background(), countrySpec)
	require.NoError(t, err)
	assert.Equal(t, []catalog.Row{{Key: "Mexico", Name: "Mexico"}, {Key: "Francia", Name: "Francia"}}, cat.Rows)
	require.Len(t, index.requests, 1)
	assert.Equal(t, int64(meiliPageSize), index.requests[0].Limit)

	failing := newMeiliSource(func(string) MeiliSearcher { return &fakeMeiliIndex{err: errors.New("index not found")} }, "", nil)
	_, err = failing.LoadCatalog(context.Background(), countrySpec)
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
}

func TestChainListSource(t *testing.T) {
	primary := NewFileSource(memFS(t, map[string]string{"a/mxn.txt": "pesos\n"}), "a")
	secondary := NewFileSource(memFS(t, map[string]string{"b/usd.txt": "dolares\n"}), "b")
	chain := ChainListSource{primary, secondary}

	list, err := chain.LoadList(context.Background(), "usd")
	require.NoError(t, err)
	assert.Equal(t, []string{"dolares"}, list.Lines)

	_, err = chain.LoadList(context.Background(), "eur")
	assert.True(t, errors.Is(err, ErrResourceUnavailable))
}

func TestLoader_Load(t *testing.T) {
	cfg := rules.MustDefault()
	files := map[string]string{}
	for _, name := range cfg.ListNamesInUse() {
		files["res/"+name+".txt"] = "No aplica\n"
	}
	for _, spec := range cfg.Catalogs.All() {
		header := spec.NameColumn
		row := "Ejemplo"
		if spec.KeyColumn != "" {
			header = spec.KeyColumn + "," + spec.NameColumn
			row = "1,Ejemplo"
		}
		files["res/"+spec.Table+".csv"] = header + "\n" + row + "\n"
	}
	src := NewFileSource(memFS(t, files), "res")

	set, err := NewLoader(src, src, nil).Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, set.ListNames(), len(cfg.ListNamesInUse()))
	assert.Len(t, set.CatalogNames(), 4)

	list, err := set.List(cfg.Lists.AddressBlacklist)
	require.NoError(t, err)
	assert.Equal(t, []string{"No aplica"}, list.Lines)

	_, err = set.Catalog("unknown")
	assert.True(t, errors.Is(err, ErrResourceUnavailable))

	t.Run("Should fail the run when one resource is missing", func(t *testing.T) {
		delete(files, "res/usd.txt")
		src := NewFileSource(memFS(t, files), "res")
		_, err := NewLoader(src, src, nil).Load(context.Background(), cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrResourceUnavailable))
	})
}
