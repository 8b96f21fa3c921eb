package loader

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Scorecard/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeriesCSVSingleSeries(t *testing.T) {
	path := writeFile(t, "series.csv",
		"time,value\n"+
			"2024-01-01,0.5\n"+
			"2024-01-02,-0.25\n"+
			"2024-01-03,\n")

	series, err := LoadSeriesCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 3)

	k1 := models.Key{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 0.5, series[k1])

	k3 := models.Key{Time: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}
	assert.True(t, math.IsNaN(series[k3]), "empty cell loads as missing")
}

func TestLoadSeriesCSVWithEntity(t *testing.T) {
	path := writeFile(t, "series.csv",
		"time,entity,value\n"+
			"2024-01-01,EUR/USD,1.5\n"+
			"2024-01-01,GBP/USD,-2.0\n")

	series, err := LoadSeriesCSV(path)
	require.NoError(t, err)
	require.Len(t, series, 2)

	k := models.Key{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Entity: "GBP/USD"}
	assert.Equal(t, -2.0, series[k])
}

func TestLoadSeriesCSVTimestampLayouts(t *testing.T) {
	path := writeFile(t, "series.csv",
		"time,value\n"+
			"2024-01-01T15:04:05Z,1\n"+
			"2024-01-02 15:04:05,2\n"+
			"2024-01-03,3\n")

	series, err := LoadSeriesCSV(path)
	require.NoError(t, err)
	assert.Len(t, series, 3)
}

func TestLoadSeriesCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad header", "date,value\n2024-01-01,1\n"},
		{"bad value", "time,value\n2024-01-01,abc\n"},
		{"bad time", "time,value\nyesterday,1\n"},
		{"duplicate key", "time,value\n2024-01-01,1\n2024-01-01,2\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "series.csv", tt.content)
			_, err := LoadSeriesCSV(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := writeFile(t, "runs.yaml", `
runs:
  - name: model1_train
    predictions: train_pred.csv
    outcomes: train_true.csv
  - name: model1_test
    predictions: test_pred.csv
    outcomes: test_true.csv
`)

	manifest, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, manifest.Runs, 2)
	assert.Equal(t, "model1_train", manifest.Runs[0].Name)
	assert.Equal(t, "test_pred.csv", manifest.Runs[1].Predictions)
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no runs", "runs: []\n"},
		{"unnamed run", "runs:\n  - predictions: a.csv\n    outcomes: b.csv\n"},
		{"missing files", "runs:\n  - name: x\n"},
		{"duplicate names", "runs:\n  - name: x\n    predictions: a.csv\n    outcomes: b.csv\n  - name: x\n    predictions: c.csv\n    outcomes: d.csv\n"},
		{"not yaml", "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "runs.yaml", tt.content)
			_, err := LoadManifest(path)
			assert.Error(t, err)
		})
	}
}
