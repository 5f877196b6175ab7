package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/kokushi/internal/model"
)

var validate = validator.New()

// Files reads one combination's inputs and writes its history files. It
// satisfies scoring.Source and scoring.HistorySink.
type Files struct {
	layout Layout
	combo  model.Combination
}

// Files binds the layout to one combination.
func (l Layout) Files(c model.Combination) *Files {
	return &Files{layout: l, combo: c}
}

// Questions loads and validates the answer key of one section.
func (f *Files) Questions(exam model.ExamType, year int, section string) ([]model.Question, error) {
	path := f.layout.GroundTruthPath(exam, year, section)
	var questions []model.Question
	if err := readJSON(path, &questions); err != nil {
		return nil, err
	}
	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("%s: question %d: %w", path, i, err)
		}
	}
	return questions, nil
}

// Predictions loads the model answers of one section.
func (f *Files) Predictions(exam model.ExamType, year int, section string) ([]model.Prediction, error) {
	var preds []model.Prediction
	if err := readJSON(f.layout.PredictionPath(f.combo, exam, year, section), &preds); err != nil {
		return nil, err
	}
	return preds, nil
}

// WriteHistory writes one section's history rows, replacing any earlier file.
func (f *Files) WriteHistory(exam model.ExamType, year int, section string, rows []model.HistoryEntry) error {
	path := f.layout.HistoryPath(f.combo, exam, year, section)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if rows == nil {
		rows = []model.HistoryEntry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
