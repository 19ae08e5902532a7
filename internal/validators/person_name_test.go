package validators

import (
	"testing"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personNameFunc() Func {
	cfg := rules.MustDefault()
	named := reflist.NewFilter(fuzzy.Default(), 90, 3).Compile(reflist.List{
		Name:  "adj_nombre_adjudicado",
		Lines: []string{"Persona moral", "No disponible", "S.N.R."},
	})

	return PersonName(PersonNameConfig{
		Blacklists:       []*reflist.Blacklist{addressBlacklist(), named},
		CompanySuffixes:  cfg.CompanySuffixes,
		Titles:           cfg.ProfessionalTitles,
		SuffixThreshold:  cfg.Thresholds.CompanySuffix,
		TitleThreshold:   cfg.Thresholds.Title,
		ReviewTokenLimit: cfg.PersonName.ReviewTokenLimit,
		ReviewPrefix:     cfg.PersonName.ReviewPrefix,
		RejectAnyDigit:   cfg.PersonName.RejectAnyDigit,
		Scorer:           fuzzy.Default(),
	})
}

func TestPersonName(t *testing.T) {
	runCases(t, personNameFunc(), []valueCase{
		{name: "Title stripped", input: models.Text("Lic. Juan Pérez López"), expected: models.TextValue("JUAN PEREZ LOPEZ")},
		{name: "Titles compared one token at a time", input: models.Text("C.P. Ana Gómez"), expected: models.TextValue("P ANA GOMEZ")},
		{name: "Stacked titles", input: models.Text("Ing. Arq. Rosa Ruiz"), expected: models.TextValue("ROSA RUIZ")},
		{name: "Plain name", input: models.Text("Guadalupe"), expected: models.TextValue("GUADALUPE")},
		{name: "Suffix letters inside a name", input: models.Text("Luis Carlos Pérez"), expected: models.Rejected},
		{name: "Civil association letters inside a name", input: models.Text("María Cruz"), expected: models.Rejected},
		{name: "Suffix cut by the end", input: models.Text("Grupo Norte SA DE CV"), expected: models.Rejected},
		{name: "Long name flagged", input: models.Text("Lic. María Fernanda de la Luz Ramírez"), expected: models.TextValue("--MARIA FERNANDA DE LA LUZ RAMIREZ")},
		{name: "Company suffix", input: models.Text("Construcciones del Bajío S.A. de C.V."), expected: models.Rejected},
		{name: "Company suffix without dots", input: models.Text("Servicios Integrales SA de CV"), expected: models.Rejected},
		{name: "Civil association", input: models.Text("Fundación Ayuda A.C."), expected: models.Rejected},
		{name: "Only titles", input: models.Text("Ing. Civil"), expected: models.Rejected},
		{name: "Numeric text", input: models.Text("12345"), expected: models.Rejected},
		{name: "Float text", input: models.Text("12.5"), expected: models.Rejected},
		{name: "Digit inside", input: models.Text("Juan 2"), expected: models.Rejected},
		{name: "Address blacklist", input: models.Text("No aplica"), expected: models.Rejected},
		{name: "Named blacklist", input: models.Text("Persona Moral"), expected: models.Rejected},
		{name: "Dotted blacklist entry", input: models.Text("S.N.R."), expected: models.Rejected},
		{name: "Punctuation only", input: models.Text("--"), expected: models.Rejected},
		{name: "Number", input: models.Number(42), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestPersonName_ReviewLimitConfigurable(t *testing.T) {
	fn := PersonName(PersonNameConfig{
		ReviewTokenLimit: 2,
		ReviewPrefix:     "--",
		SuffixThreshold:  90,
		TitleThreshold:   90,
	})

	result, err := fn(models.Text("Ana Sofía Gómez"), testRef)
	require.NoError(t, err)
	assert.Equal(t, models.TextValue("--ANA SOFIA GOMEZ"), result)

	result, err = fn(models.Text("Ana Gómez"), testRef)
	require.NoError(t, err)
	assert.Equal(t, models.TextValue("ANA GOMEZ"), result)
}

func TestFreeText(t *testing.T) {
	runCases(t, FreeText(addressBlacklist(), ""), []valueCase{
		{name: "Normalized", input: models.Text("Dirección de Obras Públicas"), expected: models.TextValue("DIRECCION DE OBRAS PUBLICAS")},
		{name: "Numeric", input: models.Text("123"), expected: models.Rejected},
		{name: "Blacklisted", input: models.Text("Sin dato"), expected: models.Rejected},
		{name: "Hyphen dropped", input: models.Text("FISM-DF 2023"), expected: models.TextValue("FISMDF 2023")},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})

	withHyphen := FreeText(addressBlacklist(), "-")
	runCases(t, withHyphen, []valueCase{
		{name: "Hyphen kept", input: models.Text("fism-df 2023"), expected: models.TextValue("FISM-DF 2023")},
		{name: "Blacklisted", input: models.Text("Desconocido"), expected: models.Rejected},
	})
	requireTypeMismatch(t, withHyphen, models.Number(3))
}

func TestAmount(t *testing.T) {
	fn := Amount()
	runCases(t, fn, []valueCase{
		{name: "Plain", input: models.Text("1500.50"), expected: models.DecimalValue(decimal.RequireFromString("1500.5"))},
		{name: "Formatted", input: models.Text("$1,500.50"), expected: models.DecimalValue(decimal.RequireFromString("1500.50"))},
		{name: "Number", input: models.Number(250), expected: models.DecimalValue(decimal.NewFromInt(250))},
		{name: "Negative kept", input: models.Text("-10"), expected: models.DecimalValue(decimal.NewFromInt(-10))},
		{name: "Zero", input: models.Text("0"), expected: models.Rejected},
		{name: "Zero number", input: models.Number(0), expected: models.Rejected},
		{name: "Garbage", input: models.Text("mil pesos"), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}
