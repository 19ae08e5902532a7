package catalog

import (
	"testing"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateIndex() *Index {
	return NewIndex(Catalog{
		Name: "entidad_federativa",
		Rows: []Row{
			{Key: "9", Name: "Ciudad de México"},
			{Key: "15", Name: "México"},
			{Key: "22", Name: "Querétaro"},
			{Key: "24", Name: "San Luis Potosí"},
		},
	})
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(fuzzy.Default(), 80)
	idx := stateIndex()

	testCases := []struct {
		name     string
		input    string
		expected models.Value
	}{
		{name: "Substring returns first containing entry", input: "mexico", expected: models.TextValue("CIUDAD DE MEXICO")},
		{name: "Exact entry", input: "Querétaro", expected: models.TextValue("QUERETARO")},
		{name: "Fuzzy fallback", input: "San Luis Potosi S.L.P.", expected: models.TextValue("SAN LUIS POTOSI")},
		{name: "Misspelling", input: "Queretaroo", expected: models.TextValue("QUERETARO")},
		{name: "No match", input: "Texas", expected: models.Rejected},
		{name: "Empty", input: "", expected: models.Rejected},
		{name: "Punctuation only", input: "..", expected: models.Rejected},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Resolve(tc.input, idx))
		})
	}
}

func TestIndex_KeyFor(t *testing.T) {
	idx := stateIndex()
	assert.Equal(t, "entidad_federativa", idx.Name())
	assert.Equal(t, 4, idx.Len())

	key, ok := idx.KeyFor("QUERETARO")
	require.True(t, ok)
	assert.Equal(t, "22", key)

	_, ok = idx.KeyFor("QRO")
	assert.False(t, ok)
}

func TestCachedResolver(t *testing.T) {
	inner := &countingMatcher{inner: NewResolver(fuzzy.Default(), 80)}
	cached, err := NewCachedResolver(inner, 16)
	require.NoError(t, err)

	idx := stateIndex()
	first := cached.Resolve("Queretaro", idx)
	second := cached.Resolve("Queretaro", idx)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cached.Len())

	_, err = NewCachedResolver(inner, 0)
	assert.Error(t, err)
}

type countingMatcher struct {
	inner Matcher
	calls int
}

func (m *countingMatcher) Resolve(value string, idx *Index) models.Value {
	m.calls++
	return m.inner.Resolve(value, idx)
}
