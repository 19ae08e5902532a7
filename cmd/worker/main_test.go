package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pnt-cleaner/internal/report"
	"github.com/pnt-cleaner/internal/rules"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	cfg := rules.MustDefault()
	files := map[string]string{
		cfg.Lists.AddressBlacklist + ".txt":       "No aplica\n",
		cfg.Lists.NameBlacklist + ".txt":          "Persona moral\n",
		cfg.Lists.FirstSurnameBlacklist + ".txt":  "Sin apellido\n",
		cfg.Lists.SecondSurnameBlacklist + ".txt": "Sin apellido\n",
		cfg.Lists.CompanyBlacklist + ".txt":       "Persona fisica\n",
		"mxn.txt":                                 "MXN\nPesos\n",
		"usd.txt":                                 "USD\nDolares\n",
		"municipio_qro.csv":                       "clave,nombre\n14,Querétaro\n",
		"entidad_federativa.csv":                  "clave,nombre\n22,Querétaro\n",
		"paises.csv":                              "nombre\nMéxico\n",
		"tipo_procedimiento.csv":                  "tipo\nAdjudicación directa\n",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join("res", name), []byte(content), 0o644))
	}

	csv := "id_procedimiento,tipo_moneda,rfc_adjudicado,observaciones\n" +
		"101,pesos,XXXX010101AAA,x\n" +
		"102,,,\n" +
		"103,usd,,nota\n"
	require.NoError(t, afero.WriteFile(fs, "adj.csv", []byte(csv), 0o644))
	return fs
}

func run(t *testing.T, fs afero.Fs, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd(fs)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error", "--resources-dir", "res"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCleanCommand(t *testing.T) {
	fs := newFs(t)
	out, stderr, err := run(t, fs, "clean", "--input", "adj.csv", "--script", "out.sql", "--summary", "resumen.xlsx", "--workers", "2", "--batch-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, ": 3 records in ")
	assert.Contains(t, stderr, "missing column: ejercicio")

	script, err := afero.ReadFile(fs, "out.sql")
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE procedimientos_adj SET tipo_moneda = 'MXN', rfc_adjudicado = NULL WHERE id_procedimiento = 101;\n"+
			"UPDATE procedimientos_adj SET tipo_moneda = 'USD' WHERE id_procedimiento = 103;\n",
		string(script))

	f, err := fs.Open("resumen.xlsx")
	require.NoError(t, err)
	defer f.Close()
	book, err := excelize.OpenReader(f)
	require.NoError(t, err)
	assert.Contains(t, book.GetSheetList(), report.SummarySheet)
}

func TestCleanCommand_UnknownSink(t *testing.T) {
	_, _, err := run(t, newFs(t), "clean", "--input", "adj.csv", "--sinks", "kafka")
	assert.EqualError(t, err, `unknown sink "kafka"`)
}

func TestCleanCommand_InvalidWorkers(t *testing.T) {
	_, _, err := run(t, newFs(t), "clean", "--input", "adj.csv", "--workers", "0")
	assert.ErrorContains(t, err, "worker.workers")
}

func TestAnalyzeCommand(t *testing.T) {
	fs := newFs(t)
	out, stderr, err := run(t, fs, "analyze", "--input", "adj.csv", "--output", "var.xlsx", "--columns", "tipo_moneda,ejercicio")
	require.NoError(t, err)
	assert.Contains(t, out, "3 records, 1 columns analyzed, written to var.xlsx")
	assert.Contains(t, stderr, "missing column: ejercicio")

	f, err := fs.Open("var.xlsx")
	require.NoError(t, err)
	defer f.Close()
	book, err := excelize.OpenReader(f)
	require.NoError(t, err)
	assert.Equal(t, []string{report.SummarySheet, "tipo_moneda"}, book.GetSheetList())
}

func TestRulesCommand(t *testing.T) {
	fs := newFs(t)
	out, _, err := run(t, fs, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "rules version "+rules.MustDefault().Version)
	assert.Regexp(t, `domicilio_fiscal_clave_municipio\s+\S+\s+adj_domicilios_blacklist, municipio_qro`, out)

	out, _, err = run(t, fs, "rules", "--dump")
	require.NoError(t, err)
	assert.Equal(t, string(rules.DefaultYAML()), out)
}

func TestSeedCommand_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("PNT_REDIS_URL", "redis://"+mr.Addr())

	out, _, err := run(t, newFs(t), "seed-resources")
	require.NoError(t, err)
	assert.Equal(t, "redis: 7 lists, 4 catalogs\n", out)

	lines, err := mr.List("pnt:list:mxn")
	require.NoError(t, err)
	assert.Equal(t, []string{"MXN", "Pesos"}, lines)
	assert.True(t, mr.Exists("pnt:catalog:municipio_qro"))
}

func TestSeedCommand_UnknownTarget(t *testing.T) {
	_, _, err := run(t, newFs(t), "seed-resources", "--targets", "s3")
	assert.EqualError(t, err, `unknown seed target "s3"`)
}
