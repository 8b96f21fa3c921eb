package loader

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Alias1177/Scorecard/models"
)

// Accepted timestamp layouts for the time column.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LoadSeriesCSV reads a key-indexed series from a CSV file. The file
// must have a header of either "time,value" or "time,entity,value".
// An empty value cell marks a missing observation and loads as NaN.
// Duplicate keys are structural errors: each key must identify one
// observation.
func LoadSeriesCSV(path string) (models.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}

	hasEntity, err := parseHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	series := make(models.Series, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2 // 1-based, after the header

		key := models.Key{}
		key.Time, err = parseTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", path, line, err)
		}
		valueCell := row[1]
		if hasEntity {
			key.Entity = row[1]
			valueCell = row[2]
		}

		value := math.NaN()
		if valueCell != "" {
			value, err = strconv.ParseFloat(valueCell, 64)
			if err != nil {
				return nil, fmt.Errorf("read %s line %d: bad value %q", path, line, valueCell)
			}
		}

		if _, exists := series[key]; exists {
			return nil, fmt.Errorf("read %s line %d: duplicate key %q", path, line, key)
		}
		series[key] = value
	}

	return series, nil
}

func parseHeader(header []string) (hasEntity bool, err error) {
	cols := make([]string, len(header))
	for i, c := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(c))
	}
	switch {
	case len(cols) == 2 && cols[0] == "time" && cols[1] == "value":
		return false, nil
	case len(cols) == 3 && cols[0] == "time" && cols[1] == "entity" && cols[2] == "value":
		return true, nil
	default:
		return false, fmt.Errorf("header must be time,value or time,entity,value, got %q", strings.Join(header, ","))
	}
}

func parseTime(cell string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad time %q", cell)
}

// Manifest names the runs for a comparison: each run points at a
// prediction file and an outcome file.
type Manifest struct {
	Runs []ManifestRun `yaml:"runs"`
}

// ManifestRun is one named prediction/outcome pair in a manifest.
type ManifestRun struct {
	Name        string `yaml:"name"`
	Predictions string `yaml:"predictions"`
	Outcomes    string `yaml:"outcomes"`
}

// LoadManifest reads and validates a YAML run manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Runs) == 0 {
		return nil, fmt.Errorf("manifest %s: no runs defined", path)
	}

	seen := make(map[string]bool, len(m.Runs))
	for i, run := range m.Runs {
		if run.Name == "" {
			return nil, fmt.Errorf("manifest %s: run %d has no name", path, i)
		}
		if run.Predictions == "" || run.Outcomes == "" {
			return nil, fmt.Errorf("manifest %s: run %q needs predictions and outcomes files", path, run.Name)
		}
		if seen[run.Name] {
			return nil, fmt.Errorf("manifest %s: duplicate run name %q", path, run.Name)
		}
		seen[run.Name] = true
	}

	return &m, nil
}
