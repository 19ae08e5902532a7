package reflist

import (
	"errors"
	"testing"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlacklist(lines ...string) *Blacklist {
	f := NewFilter(fuzzy.Default(), 90, 3)
	return f.Compile(List{Name: "adj_domicilios_blacklist", Lines: lines})
}

func TestBlacklist_Check(t *testing.T) {
	bl := newTestBlacklist("No aplica", "Sin dato", "NA", "", "  ", "Desconocido")
	ref := models.FieldRef{RecordID: "17", Column: "domicilio_fiscal_nombre_localidad"}

	testCases := []struct {
		name     string
		input    models.RawValue
		expected models.Value
	}{
		{name: "Exact hit", input: models.Text("no aplica"), expected: models.Rejected},
		{name: "Accent insensitive hit", input: models.Text("Sín Dató"), expected: models.Rejected},
		{name: "Fuzzy hit", input: models.Text("DESCONOSIDO"), expected: models.Rejected},
		{name: "Clean value is normalized", input: models.Text("  Santiago de Querétaro "), expected: models.TextValue("SANTIAGO DE QUERETARO")},
		{name: "Short line ignored", input: models.Text("NA"), expected: models.TextValue("NA")},
		{name: "Absent passes through", input: models.Absent(), expected: models.AbsentValue},
		{name: "Only punctuation normalizes to empty", input: models.Text("---"), expected: models.TextValue("")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := bl.Check(tc.input, ref)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(result), "expected %v, got %v", tc.expected, result)
		})
	}
}

func TestBlacklist_TypeMismatch(t *testing.T) {
	bl := newTestBlacklist("No aplica")
	ref := models.FieldRef{RecordID: "42", Column: "numero_contrato"}

	_, err := bl.Check(models.Number(12), ref)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTypeMismatch))

	var mismatch *models.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "42", mismatch.RecordID)
	assert.Equal(t, "numero_contrato", mismatch.Column)
	assert.Contains(t, err.Error(), "numero_contrato")
}

func TestBlacklist_Compile(t *testing.T) {
	bl := newTestBlacklist("NA", "N/A", "No aplica", "x")
	assert.Equal(t, "adj_domicilios_blacklist", bl.Name())
	assert.Equal(t, 1, bl.Len(), "lines shorter than three characters after normalization are dropped")

	m, ok := bl.Match("NO APLICA")
	require.True(t, ok)
	assert.Equal(t, "NO APLICA", m.Line)
	assert.Equal(t, 100.0, m.Score)
}

func TestBlacklist_EmptyList(t *testing.T) {
	bl := newTestBlacklist()
	result, err := bl.Check(models.Text("Colonia Centro"), models.FieldRef{})
	require.NoError(t, err)
	assert.Equal(t, models.TextValue("COLONIA CENTRO"), result)
}
