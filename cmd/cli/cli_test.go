package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSampleThenScore(t *testing.T) {
	dir := t.TempDir()
	sample := filepath.Join(dir, "sample.csv")

	out, err := run(t, "sample", "-n", "15", "--seed", "7", "-o", sample)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 15 startups")

	scoredPath := filepath.Join(dir, "scored.xlsx")
	out, err = run(t, "score", sample, "-o", scoredPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Scored 15 rows")

	f, err := excelize.OpenFile(scoredPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 16)
	assert.Contains(t, rows[0], "risk_score")

	out, err = run(t, "score", sample, "--limit", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "Startups: 15"))
	assert.Len(t, lines, 6)
}

func TestSample_IsDeterministic(t *testing.T) {
	a, err := run(t, "sample", "-n", "5", "--seed", "3")
	require.NoError(t, err)
	b, err := run(t, "sample", "-n", "5", "--seed", "3")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = run(t, "sample", "-n", "0")
	assert.Error(t, err)
}

func TestScore_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.csv")
	require.NoError(t, os.WriteFile(path, []byte("company,burn_rate\nA,1\n"), 0o644))

	_, err := run(t, "score", path, "--missing", "zero")
	assert.ErrorContains(t, err, "missing-value policy")

	_, err = run(t, "score", path, "-o", filepath.Join(dir, "out.json"))
	assert.Error(t, err)

	_, err = run(t, "score", filepath.Join(dir, "absent.csv"))
	assert.ErrorContains(t, err, "no rows")
}

func TestProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clusters.csv")
	csv := "cluster_label,x,y\nA,1,2\nB,2,1\nA,3,5\nC,4,3\nA,5,4\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	points := filepath.Join(dir, "points.csv")
	out, err := run(t, "project", path, "-o", points)
	require.NoError(t, err)
	assert.Contains(t, out, "Explained variance")
	lines := strings.Split(out, "\n")
	assert.Equal(t, []string{"A", "3"}, strings.Fields(lines[1]))

	data, err := os.ReadFile(points)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PCA1,PCA2,cluster_label\n"))

	_, err = run(t, "project", path, "--label", "segment")
	assert.ErrorContains(t, err, "segment")
}

func TestDatasets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state_heatmap.csv"), []byte("state,value\nCA,1\n"), 0o644))

	out, err := run(t, "datasets", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "state_heatmap")

	out, err = run(t, "datasets", "--dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No CSV datasets")
}
