// Package dataset maps exams, years and sections onto the on-disk layout of
// answer keys, model predictions and score outputs.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavelanni/kokushi/internal/model"
)

// ErrMissingInput is returned when a combination has no prediction directory.
var ErrMissingInput = errors.New("results not found")

// Layout holds the three roots the scorer reads from and writes to.
//
//	<data>/<exam>/<exam>_<year>_<section>.json
//	<results>/<company>/<model>/<input>/<exam>/<exam>_<year>_<section>_pred.json
//	<scores>/<company>/<model>/<input>/<exam>/<exam>_<year>_<section>_history.json
//	<scores>/<company>/<model>/<input>/<exam>/total_scores.csv
type Layout struct {
	DataDir    string
	ResultsDir string
	ScoreDir   string
}

const summaryBase = "total_scores"

func sectionFile(exam model.ExamType, year int, section, suffix string) string {
	return fmt.Sprintf("%s_%d_%s%s.json", exam, year, strings.ToLower(section), suffix)
}

// GroundTruthPath returns the answer key file of one section.
func (l Layout) GroundTruthPath(exam model.ExamType, year int, section string) string {
	return filepath.Join(l.DataDir, string(exam), sectionFile(exam, year, section, ""))
}

// ResultDir returns the prediction root of a combination.
func (l Layout) ResultDir(c model.Combination) string {
	return filepath.Join(l.ResultsDir, c.Company, c.Model, c.InputType)
}

// PredictionPath returns the prediction file of one section.
func (l Layout) PredictionPath(c model.Combination, exam model.ExamType, year int, section string) string {
	return filepath.Join(l.ResultDir(c), string(exam), sectionFile(exam, year, section, "_pred"))
}

// ExamScoreDir returns the directory that receives one exam's outputs.
func (l Layout) ExamScoreDir(c model.Combination, exam model.ExamType) string {
	return filepath.Join(l.ScoreDir, c.Company, c.Model, c.InputType, string(exam))
}

// HistoryPath returns the history file of one section.
func (l Layout) HistoryPath(c model.Combination, exam model.ExamType, year int, section string) string {
	return filepath.Join(l.ExamScoreDir(c, exam), sectionFile(exam, year, section, "_history"))
}

// SummaryPath returns the summary table of one exam with the given extension
// (".csv", ".xlsx").
func (l Layout) SummaryPath(c model.Combination, exam model.ExamType, ext string) string {
	return filepath.Join(l.ExamScoreDir(c, exam), summaryBase+ext)
}

// CheckInput verifies the combination's prediction directory exists.
func (l Layout) CheckInput(c model.Combination) error {
	dir := l.ResultDir(c)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w for %s: %s", ErrMissingInput, c, dir)
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w for %s: %s is not a directory", ErrMissingInput, c, dir)
	}
	return nil
}
