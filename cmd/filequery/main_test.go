package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = `date,region,amount
2024-01-05,north,10
2024-01-20,south,20
2024-02-03,north,20
`

func writeSales(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0o600))
	return path
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("query as csv", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{
			"-f", "csv",
			"-q", "SELECT region, SUM(amount) AS total FROM sales GROUP BY region ORDER BY region",
			writeSales(t),
		}, nil, &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, "region,total\nnorth,30\nsouth,20\n", stdout.String())
	})

	t.Run("fallback is logged", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"-f", "jsonl", "-q", "show me everything", writeSales(t)}, nil, &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, 3, bytes.Count(stdout.Bytes(), []byte("\n")))
		assert.Contains(t, stderr.String(), "level=warn")
	})

	t.Run("write to file", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "result.tsv")
		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"-o", out, "-q", "SELECT region FROM sales LIMIT 1", writeSales(t)}, nil, &stdout, &stderr)
		require.NoError(t, err)
		assert.Empty(t, stdout.String())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "region\nnorth\n", string(data))
	})

	t.Run("describe", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		require.NoError(t, run(context.Background(), []string{"-describe", writeSales(t)}, nil, &stdout, &stderr))
		assert.Contains(t, stdout.String(), `"name": "sales"`)
		assert.Contains(t, stdout.String(), `"type": "DATE"`)
	})

	t.Run("export to sqlite", func(t *testing.T) {
		t.Parallel()

		db := filepath.Join(t.TempDir(), "export.db")
		var stdout, stderr bytes.Buffer
		require.NoError(t, run(context.Background(), []string{"-sqlite.export", db, writeSales(t)}, nil, &stdout, &stderr))
		assert.Equal(t, "sales: 3 rows\n", stdout.String())

		stdout.Reset()
		err := run(context.Background(), []string{
			"-f", "csv",
			"-db", "sqlite:" + db,
			"-q", "SELECT region FROM sales WHERE amount > 15 ORDER BY date",
			writeSales(t),
		}, nil, &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, "region\nsouth\nnorth\n", stdout.String())
	})

	t.Run("table from standard input", func(t *testing.T) {
		t.Parallel()

		stdin := strings.NewReader("name\tage\nalice\t30\nbob\t25\n")
		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{
			"-f", "csv",
			"-stdin.type", "tsv",
			"-stdin.table", "people",
			"-q", "SELECT name FROM people WHERE age > 26",
			"-",
		}, stdin, &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, "name\nalice\n", stdout.String())
	})

	t.Run("config file and flag override", func(t *testing.T) {
		t.Parallel()

		cfgPath := filepath.Join(t.TempDir(), "filequery.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("max_result_rows: 1\n"), 0o600))

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{
			"-config.file", cfgPath,
			"-f", "csv",
			"-q", "SELECT region FROM sales",
			writeSales(t),
		}, nil, &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, "region\nnorth\n", stdout.String())

		stdout.Reset()
		err = run(context.Background(), []string{
			"-config.file=" + cfgPath,
			"-query.max-result-rows=2",
			"-f", "csv",
			"-q", "SELECT region FROM sales",
			writeSales(t),
		}, nil, &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, "region\nnorth\nsouth\n", stdout.String())
	})

	errorCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing query", args: []string{"sales.csv"}, want: "-q is required"},
		{name: "unknown format", args: []string{"-f", "yaml", "-q", "SELECT 1", "sales.csv"}, want: "output format"},
		{name: "unknown log level", args: []string{"-log.level", "trace", "-q", "SELECT 1", "sales.csv"}, want: "unknown log level"},
		{name: "database without driver", args: []string{"-db", "warehouse.db", "-q", "SELECT 1", "sales.csv"}, want: "-db must be driver:dsn"},
		{name: "no sources", args: []string{"-q", "SELECT 1"}, want: "at least one source"},
		{name: "unknown stdin type", args: []string{"-stdin.type", "json", "-q", "SELECT 1", "-"}, want: "-stdin.type"},
		{name: "missing config file", args: []string{"-config.file", "/nonexistent/filequery.yaml", "-q", "SELECT 1"}, want: "filequery.yaml"},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, nil, &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigFileArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "absent", args: []string{"-q", "SELECT 1"}, want: ""},
		{name: "separate value", args: []string{"-config.file", "a.yaml"}, want: "a.yaml"},
		{name: "double dash with equals", args: []string{"--config.file=b.yaml", "x.csv"}, want: "b.yaml"},
		{name: "positional lookalike", args: []string{"config.file", "c.yaml"}, want: ""},
		{name: "missing value", args: []string{"-config.file"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, configFileArg(tt.args))
		})
	}
}
