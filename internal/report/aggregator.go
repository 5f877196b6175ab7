package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pavelanni/kokushi/internal/dataset"
	"github.com/pavelanni/kokushi/internal/i18n"
	"github.com/pavelanni/kokushi/internal/model"
	"github.com/pavelanni/kokushi/internal/scoring"
)

// Recorder persists records and history rows next to the file outputs.
type Recorder interface {
	SaveRecord(c model.Combination, rec model.ScoreRecord) error
	ReplaceHistory(c model.Combination, exam model.ExamType, year int, section string, rows []model.HistoryEntry) error
}

// Aggregator scores every configured exam and year for a combination and
// writes one summary table per exam.
type Aggregator struct {
	Layout   dataset.Layout
	Registry *scoring.Registry
	Exams    []model.ExamType
	Years    []int
	XLSX     bool
	Recorder Recorder
}

// Run scores one combination. It returns ErrMissingInput before writing
// anything when the combination has no results directory.
func (a *Aggregator) Run(ctx context.Context, c model.Combination) ([]model.ScoreRecord, error) {
	if err := a.Layout.CheckInput(c); err != nil {
		return nil, err
	}

	exams := a.Exams
	if len(exams) == 0 {
		exams = a.Registry.Types()
	}

	files := a.Layout.Files(c)
	var sink scoring.HistorySink = files
	if a.Recorder != nil {
		sink = teeSink{files: files, rec: a.Recorder, combo: c}
	}

	var all []model.ScoreRecord
	for _, exam := range exams {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		dir := a.Layout.ExamScoreDir(c, exam)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return all, fmt.Errorf("create %s: %w", dir, err)
		}

		records := make([]model.ScoreRecord, 0, len(a.Years))
		for _, year := range a.Years {
			rec, err := a.Registry.Score(exam, year, files, sink)
			if err != nil {
				return all, fmt.Errorf("%s: %w", c, err)
			}
			if a.Recorder != nil {
				if err := a.Recorder.SaveRecord(c, rec); err != nil {
					return all, fmt.Errorf("%s: save record: %w", c, err)
				}
			}
			slog.Info("scored exam",
				"combination", c.String(),
				"exam", i18n.ExamName(ctx, exam),
				"year", year,
				"total", rec.Total(),
				"pass", rec.Pass,
				"failed_by_forbidden", rec.FailedByForbidden,
			)
			records = append(records, rec)
		}

		summary := BuildSummary(records)
		if err := SaveCSV(a.Layout.SummaryPath(c, exam, ".csv"), summary); err != nil {
			return all, err
		}
		if a.XLSX {
			if err := SaveXLSX(a.Layout.SummaryPath(c, exam, ".xlsx"), summary); err != nil {
				return all, err
			}
		}
		all = append(all, records...)
	}
	return all, nil
}

// teeSink writes history to disk and to the recorder.
type teeSink struct {
	files *dataset.Files
	rec   Recorder
	combo model.Combination
}

func (t teeSink) WriteHistory(exam model.ExamType, year int, section string, rows []model.HistoryEntry) error {
	if err := t.files.WriteHistory(exam, year, section, rows); err != nil {
		return err
	}
	return t.rec.ReplaceHistory(t.combo, exam, year, section, rows)
}
