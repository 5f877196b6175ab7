// Package report turns score records into per-exam summary tables and drives
// the scoring of one company/model/input combination.
package report

import (
	"strconv"

	"github.com/pavelanni/kokushi/internal/model"
)

// Fixed summary columns. Per-area columns of the pharmacist exam sit between
// the head and the tail.
var (
	headColumns = []string{"test_type", "year", "total_score", "must_score"}
	tailColumns = []string{"pass_or_not", "failed_by_forbidden"}
)

const areaTotalSuffix = "_total"

// Summary is one exam's score table across years. A nil cell is empty.
type Summary struct {
	Columns []string
	Rows    [][]any
}

// BuildSummary flattens records into a table. Area buckets become a score
// column and a "<area>_total" column, in the order areas are first seen.
func BuildSummary(records []model.ScoreRecord) Summary {
	var areaCols []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, a := range rec.Areas() {
			if seen[a.Name] {
				continue
			}
			seen[a.Name] = true
			areaCols = append(areaCols, a.Name, a.Name+areaTotalSuffix)
		}
	}

	s := Summary{Columns: make([]string, 0, len(headColumns)+len(areaCols)+len(tailColumns))}
	s.Columns = append(s.Columns, headColumns...)
	s.Columns = append(s.Columns, areaCols...)
	s.Columns = append(s.Columns, tailColumns...)

	for _, rec := range records {
		row := make([]any, len(s.Columns))
		row[0] = string(rec.ExamType)
		row[1] = rec.Year
		row[2] = rec.Total()
		row[3] = rec.Required()

		areas := make(map[string]model.Bucket)
		for _, a := range rec.Areas() {
			areas[a.Name] = a
		}
		for i := 0; i < len(areaCols); i += 2 {
			if a, ok := areas[areaCols[i]]; ok {
				row[len(headColumns)+i] = a.Score
				row[len(headColumns)+i+1] = a.Attainable
			}
		}

		row[len(row)-2] = rec.Pass
		row[len(row)-1] = rec.FailedByForbidden
		s.Rows = append(s.Rows, row)
	}
	return s
}

// formatCell renders a cell the way the summary tables have always been
// written: booleans as True/False and empty cells as "".
func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return ""
	}
}
