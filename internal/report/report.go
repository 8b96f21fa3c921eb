package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/Alias1177/Scorecard/models"
)

// FormatScorecard creates a human-readable summary of one scorecard.
func FormatScorecard(title string, sc *models.Scorecard) string {
	output := fmt.Sprintf("\n===== %s =====\n", title)
	for _, name := range sc.Names() {
		value, _ := sc.Get(name)
		output += fmt.Sprintf("%-24s %s\n", name, formatValue(value))
	}
	return output
}

// FormatGrouped renders a metrics-by-group table, one column per group
// key in sorted order. NaN cells mark sparse groups where a metric was
// undefined.
func FormatGrouped(title string, grouped models.GroupedScorecard[string]) string {
	output := fmt.Sprintf("\n===== %s =====\n", title)
	keys := sortedGroupKeys(grouped)
	if len(keys) == 0 {
		return output + "no groups\n"
	}

	output += fmt.Sprintf("%-24s", "metric")
	for _, k := range keys {
		output += fmt.Sprintf(" %14s", k)
	}
	output += "\n"

	for _, name := range grouped[keys[0]].Names() {
		output += fmt.Sprintf("%-24s", name)
		for _, k := range keys {
			value, _ := grouped[k].Get(name)
			output += fmt.Sprintf(" %14s", formatValue(value))
		}
		output += "\n"
	}
	return output
}

// FormatComparison renders a metrics-by-run table with run names as
// columns in sorted order.
func FormatComparison(table models.ComparisonTable) string {
	grouped := make(models.GroupedScorecard[string], len(table))
	for name, sc := range table {
		grouped[name] = sc
	}
	return FormatGrouped("RUN COMPARISON", grouped)
}

// WriteScorecardCSV writes one scorecard as metric,value rows. NaN
// values are written as empty cells so spreadsheet tools treat them as
// missing rather than text.
func WriteScorecardCSV(w io.Writer, sc *models.Scorecard) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, name := range sc.Names() {
		value, _ := sc.Get(name)
		if err := cw.Write([]string{name, csvValue(value)}); err != nil {
			return fmt.Errorf("write csv row %q: %w", name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGroupedCSV writes a metric-by-group matrix with group keys as
// column headers.
func WriteGroupedCSV(w io.Writer, grouped models.GroupedScorecard[string]) error {
	keys := sortedGroupKeys(grouped)
	if len(keys) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"metric"}, keys...)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, name := range grouped[keys[0]].Names() {
		row := make([]string, 0, len(keys)+1)
		row = append(row, name)
		for _, k := range keys {
			value, _ := grouped[k].Get(name)
			row = append(row, csvValue(value))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %q: %w", name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparisonCSV writes a metric-by-run matrix with run names as
// column headers.
func WriteComparisonCSV(w io.Writer, table models.ComparisonTable) error {
	grouped := make(models.GroupedScorecard[string], len(table))
	for name, sc := range table {
		grouped[name] = sc
	}
	return WriteGroupedCSV(w, grouped)
}

func sortedGroupKeys(grouped models.GroupedScorecard[string]) []string {
	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

func csvValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
