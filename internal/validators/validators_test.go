package validators

import (
	"errors"
	"testing"

	"github.com/pnt-cleaner/app/models"
	"github.com/pnt-cleaner/internal/catalog"
	"github.com/pnt-cleaner/internal/fuzzy"
	"github.com/pnt-cleaner/internal/reflist"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type valueCase struct {
	name     string
	input    models.RawValue
	expected models.Value
}

var testRef = models.FieldRef{RecordID: "101", Column: "test_column"}

func runCases(t *testing.T, fn Func, cases []valueCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := fn(tc.input, testRef)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(result), "input %q: expected %s(%s), got %s(%s)",
				tc.input.String(), tc.expected.Kind, tc.expected, result.Kind, result)
		})
	}
}

func requireTypeMismatch(t *testing.T, fn Func, v models.RawValue) {
	t.Helper()
	_, err := fn(v, testRef)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrTypeMismatch))

	var mismatch *models.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, testRef.RecordID, mismatch.RecordID)
	assert.Equal(t, testRef.Column, mismatch.Column)
}

func addressBlacklist() *reflist.Blacklist {
	return reflist.NewFilter(fuzzy.Default(), 90, 3).Compile(reflist.List{
		Name:  "adj_domicilios_blacklist",
		Lines: []string{"No aplica", "Sin dato", "NA", "Desconocido"},
	})
}

func TestFiscalYear(t *testing.T) {
	runCases(t, FiscalYear(2021, 2023), []valueCase{
		{name: "In range text", input: models.Text("2022"), expected: models.IntegerValue(2022)},
		{name: "Lower bound", input: models.Text(" 2021 "), expected: models.IntegerValue(2021)},
		{name: "Upper bound number", input: models.Number(2023), expected: models.IntegerValue(2023)},
		{name: "Float truncates", input: models.Number(2022.9), expected: models.IntegerValue(2022)},
		{name: "Below range", input: models.Text("2020"), expected: models.Rejected},
		{name: "Above range", input: models.Number(2024), expected: models.Rejected},
		{name: "Not a number", input: models.Text("abc"), expected: models.Rejected},
		{name: "Decimal text", input: models.Text("2022.0"), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestDate(t *testing.T) {
	runCases(t, Date(), []valueCase{
		{name: "Day first", input: models.Text("25/10/2023"), expected: models.TextValue("2023-10-25")},
		{name: "Ambiguous reads day first", input: models.Text("05/03/2023"), expected: models.TextValue("2023-03-05")},
		{name: "Month first fallback", input: models.Text("10/25/2023"), expected: models.TextValue("2023-10-25")},
		{name: "ISO", input: models.Text("2023-10-25"), expected: models.TextValue("2023-10-25")},
		{name: "ISO with time", input: models.Text("2023-10-25 14:30:00"), expected: models.TextValue("2023-10-25")},
		{name: "Impossible date", input: models.Text("31/02/2023"), expected: models.Rejected},
		{name: "Garbage", input: models.Text("no es fecha"), expected: models.Rejected},
		{name: "Empty", input: models.Text("  "), expected: models.Rejected},
		{name: "Epoch-like digits", input: models.Text("1698192000"), expected: models.Rejected},
		{name: "Number", input: models.Number(45223), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestRFC(t *testing.T) {
	fn := RFC([]string{"XXXX"})
	runCases(t, fn, []valueCase{
		{name: "Valid", input: models.Text("LUCL7610256SA"), expected: models.TextValue("LUCL7610256SA")},
		{name: "Whitespace and case", input: models.Text(" lucl761025 6sa "), expected: models.TextValue("LUCL7610256SA")},
		{name: "Legal entity", input: models.Text("ABC8001011A2"), expected: models.TextValue("ABC8001011A2")},
		{name: "Invalid prefix", input: models.Text("XXXX111111XXX"), expected: models.Rejected},
		{name: "Embedded", input: models.Text("RFC: LUCL7610256SA"), expected: models.TextValue("LUCL7610256SA")},
		{name: "Two embedded", input: models.Text("LUCL7610256SA/ABC8001011A2"), expected: models.TextValue("LUCL7610256SA, ABC8001011A2")},
		{name: "Duplicates collapse", input: models.Text("LUCL7610256SA LUCL7610256SA"), expected: models.TextValue("LUCL7610256SA")},
		{name: "Bad month", input: models.Text("LUCL7613256SA"), expected: models.Rejected},
		{name: "No id", input: models.Text("SIN RFC"), expected: models.Rejected},
		{name: "Empty", input: models.Text(""), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
	requireTypeMismatch(t, fn, models.Number(7610256))
}

func TestEnumeration(t *testing.T) {
	fn := Enumeration(rules.MustDefault().StreetTypes)
	runCases(t, fn, []valueCase{
		{name: "Exact", input: models.Text("Calle"), expected: models.TextValue("CALLE")},
		{name: "Accents ignored", input: models.Text("prolongacion"), expected: models.TextValue("PROLONGACION")},
		{name: "Spacing ignored", input: models.Text("  Eje   vial "), expected: models.TextValue("EJE VIAL")},
		{name: "Not a member", input: models.Text("Calle 5"), expected: models.Rejected},
		{name: "Empty", input: models.Text(""), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
	requireTypeMismatch(t, fn, models.Number(1))
}

func TestStreetName(t *testing.T) {
	runCases(t, StreetName(), []valueCase{
		{name: "Keeps enye", input: models.Text("Av. Niños Héroes"), expected: models.TextValue("AV NIÑOS HEROES")},
		{name: "Punctuation and spaces", input: models.Text("Calle 5 de Mayo,  Col. Centro"), expected: models.TextValue("CALLE 5 DE MAYO COL CENTRO")},
		{name: "Single letter", input: models.Text("a"), expected: models.TextValue("A")},
		{name: "Single digit", input: models.Text("5"), expected: models.TextValue("5")},
		{name: "Single symbol", input: models.Text("#"), expected: models.Rejected},
		{name: "Only punctuation", input: models.Text("..."), expected: models.Rejected},
		{name: "Empty", input: models.Text(""), expected: models.Rejected},
		{name: "Number", input: models.Number(12), expected: models.TextValue("12")},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestExteriorNumber(t *testing.T) {
	runCases(t, ExteriorNumber(), []valueCase{
		{name: "Hyphen kept", input: models.Text("12-b"), expected: models.TextValue("12-B")},
		{name: "Number", input: models.Number(120), expected: models.TextValue("120")},
		{name: "Kilometer", input: models.Text("Km. 5"), expected: models.TextValue("KM 5")},
		{name: "No digit", input: models.Text("S/N"), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestInteriorNumber(t *testing.T) {
	runCases(t, InteriorNumber(rules.MustDefault().InteriorNumberRejections), []valueCase{
		{name: "Letter", input: models.Text("b"), expected: models.TextValue("B")},
		{name: "Two letters", input: models.Text("AB"), expected: models.TextValue("AB")},
		{name: "With digit", input: models.Text("Depto 3"), expected: models.TextValue("DEPTO 3")},
		{name: "Rejected marker", input: models.Text("sn"), expected: models.Rejected},
		{name: "Slash marker", input: models.Text("n/a"), expected: models.Rejected},
		{name: "Single N", input: models.Text("N"), expected: models.Rejected},
		{name: "Long word", input: models.Text("ABC"), expected: models.Rejected},
		{name: "Hyphen only", input: models.Text("-"), expected: models.Rejected},
		{name: "Double hyphen", input: models.Text("--"), expected: models.Rejected},
		{name: "Letter and hyphen", input: models.Text("B-"), expected: models.Rejected},
		{name: "Empty", input: models.Text(""), expected: models.Rejected},
		{name: "Number", input: models.Number(4), expected: models.TextValue("4")},
	})
}

func TestPostalCode(t *testing.T) {
	runCases(t, PostalCode(), []valueCase{
		{name: "Five digits", input: models.Text("23000"), expected: models.TextValue("23000")},
		{name: "Four digits", input: models.Text("2300"), expected: models.Rejected},
		{name: "Decimal-looking", input: models.Text("230.00"), expected: models.TextValue("23000")},
		{name: "Decimal-looking too short", input: models.Text("230.5"), expected: models.Rejected},
		{name: "Number", input: models.Number(76000), expected: models.TextValue("76000")},
		{name: "Letters", input: models.Text("7600a"), expected: models.Rejected},
		{name: "Six digits", input: models.Text("123456"), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestKeyLookup(t *testing.T) {
	idx := catalog.NewIndex(catalog.Catalog{Name: "municipio_qro", Rows: []catalog.Row{
		{Key: "1", Name: "Amealco de Bonfil"},
		{Key: "14", Name: "Querétaro"},
	}})

	runCases(t, KeyLookup(addressBlacklist(), idx), []valueCase{
		{name: "Name to key", input: models.Text("Querétaro"), expected: models.TextValue("14")},
		{name: "Name to key case", input: models.Text("AMEALCO DE BONFIL"), expected: models.TextValue("1")},
		{name: "Code with zeros", input: models.Text("014"), expected: models.TextValue("14")},
		{name: "Code as float", input: models.Text("14.0"), expected: models.TextValue("14")},
		{name: "Code as number", input: models.Number(14), expected: models.TextValue("14")},
		{name: "Unknown name kept", input: models.Text("Corregidora"), expected: models.TextValue("CORREGIDORA")},
		{name: "Blacklisted", input: models.Text("No aplica"), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestCountry(t *testing.T) {
	idx := catalog.NewIndex(catalog.Catalog{Name: "paises", Rows: []catalog.Row{
		{Key: "México", Name: "México"},
		{Key: "Francia", Name: "Francia"},
		{Key: "Estados Unidos de América", Name: "Estados Unidos de América"},
	}})
	fn := Country(addressBlacklist(), map[string]string{"MX": "MEXICO"}, catalog.NewResolver(fuzzy.Default(), 80), idx)

	runCases(t, fn, []valueCase{
		{name: "Alias", input: models.Text("mx"), expected: models.TextValue("MEXICO")},
		{name: "Catalog exact", input: models.Text("francia"), expected: models.TextValue("FRANCIA")},
		{name: "Catalog substring", input: models.Text("Estados Unidos"), expected: models.TextValue("ESTADOS UNIDOS DE AMERICA")},
		{name: "Not in catalog", input: models.Text("Narnia"), expected: models.Rejected},
		{name: "Blacklisted", input: models.Text("Sin dato"), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
	requireTypeMismatch(t, fn, models.Number(52))
}

func TestCurrency(t *testing.T) {
	fn := Currency([]CurrencyList{
		{Code: "MXN", Lines: []string{"MXN", "Peso mexicano", "pesos", ""}},
		{Code: "USD", Lines: []string{"USD", "Dólar", "dolares americanos"}},
	})

	runCases(t, fn, []valueCase{
		{name: "Code", input: models.Text("mxn"), expected: models.TextValue("MXN")},
		{name: "Spelling", input: models.Text("Pesos"), expected: models.TextValue("MXN")},
		{name: "Accent", input: models.Text("dolar"), expected: models.TextValue("USD")},
		{name: "Phrase", input: models.Text("Dólares Americanos"), expected: models.TextValue("USD")},
		{name: "Unknown", input: models.Text("Euro"), expected: models.Rejected},
		{name: "Empty never matches blank line", input: models.Text(""), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestPaymentMethod(t *testing.T) {
	cfg := rules.MustDefault()
	groups := make([]KeywordGroup, 0, len(cfg.PaymentMethods))
	for _, p := range cfg.PaymentMethods {
		groups = append(groups, KeywordGroup{Label: p.Label, Keywords: p.Keywords})
	}

	runCases(t, PaymentMethod(groups, fuzzy.Default(), cfg.Thresholds.PaymentMethod), []valueCase{
		{name: "Transfer", input: models.Text("Transferencia electrónica"), expected: models.TextValue("TRANSFERENCIA BANCARIA")},
		{name: "Transfer abbreviation", input: models.Text("TRANSF. SPEI"), expected: models.TextValue("TRANSFERENCIA BANCARIA")},
		{name: "Cash", input: models.Text("efectivo"), expected: models.TextValue("EFECTIVO")},
		{name: "Cash synonym", input: models.Text("Pago de contado"), expected: models.TextValue("EFECTIVO")},
		{name: "Unknown", input: models.Text("Cheque"), expected: models.Rejected},
		{name: "Absent", input: models.Absent(), expected: models.AbsentValue},
	})
}

func TestCatalogMatch(t *testing.T) {
	idx := catalog.NewIndex(catalog.Catalog{Name: "tipo_procedimiento", Rows: []catalog.Row{
		{Name: "Licitación pública"},
		{Name: "Invitación a cuando menos tres personas"},
	}})
	fn := CatalogMatch(catalog.NewResolver(fuzzy.Default(), 80), idx)

	runCases(t, fn, []valueCase{
		{name: "Substring", input: models.Text("licitacion"), expected: models.TextValue("LICITACION PUBLICA")},
		{name: "Fuzzy", input: models.Text("Invitacion a cuando menos 3 personas"), expected: models.TextValue("INVITACION A CUANDO MENOS TRES PERSONAS")},
		{name: "No match", input: models.Text("Adjudicación directa"), expected: models.Rejected},
	})
}
