package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cierres/internal/export"
	"github.com/MrJamesThe3rd/cierres/internal/snapshot"
)

const marchSheet = `Nom_centro;Lin_negocio;Estado;Venta;Coste
Centro A;Mant.;Cerrado;1000;800
Centro B;Obras;Abierto;500;450
TOTAL;;;1500;1250
`

func setupEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HISTORY_BACKEND", "file")
	t.Setenv("HISTORY_PATH", filepath.Join(dir, "history.json"))
	t.Setenv("CLIENTS_PATH", filepath.Join(dir, "clients.yaml"))
	t.Setenv("LOG_LEVEL", "error")

	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func TestCLI_IngestListRemove(t *testing.T) {
	dir := setupEnv(t)

	sheetPath := filepath.Join(dir, "Cierre_Marzo_2024.csv")
	require.NoError(t, os.WriteFile(sheetPath, []byte(marchSheet), 0o644))

	out, err := run(t, "ingest", sheetPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Marzo 2024 (Cierre_Marzo_2024.csv): 2 rows, 1 discarded")

	out, err = run(t, "history", "list", "--json")
	require.NoError(t, err)

	var items []*snapshot.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Marzo 2024", items[0].Period)

	out, err = run(t, "history", "rm", "0")
	require.NoError(t, err)
	assert.Equal(t, "removed Marzo 2024\n", out)

	_, err = run(t, "history", "rm", "0")
	require.Error(t, err)
}

func TestCLI_IngestMissingFile(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "ingest", "does-not-exist.xlsx")
	require.EqualError(t, err, "file not found: does-not-exist.xlsx")
}

func TestCLI_Export(t *testing.T) {
	dir := setupEnv(t)
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "export", "template", "-o", outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "cierres_template.xlsx")+"\n", out)

	_, err = run(t, "export", "snapshot", "-o", outDir)
	require.ErrorIs(t, err, export.ErrNoSnapshot)

	_, err = run(t, "export", "pdf")
	require.ErrorIs(t, err, export.ErrUnknownKind)
}

func TestParseExportKind(t *testing.T) {
	type testCase struct {
		name  string
		input string
		want  export.Kind
	}

	tests := []testCase{
		{name: "Alias", input: "summary", want: export.KindSummary},
		{name: "Alias upper case", input: "CSV", want: export.KindCSV},
		{name: "File name", input: "backup.json", want: export.KindBackup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExportKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
