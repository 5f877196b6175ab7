package dataset

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pavelanni/kokushi/internal/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newLayout(t *testing.T) Layout {
	t.Helper()
	root := t.TempDir()
	return Layout{
		DataDir:    filepath.Join(root, "exams"),
		ResultsDir: filepath.Join(root, "results"),
		ScoreDir:   filepath.Join(root, "scoring"),
	}
}

var combo = model.Combination{Company: "acme", Model: "m-1", InputType: "text"}

func TestLayoutPaths(t *testing.T) {
	l := Layout{DataDir: "exams", ResultsDir: "results", ScoreDir: "scoring"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ground truth", l.GroundTruthPath(model.ExamPhysician, 2020, "B"), "exams/医師/医師_2020_b.json"},
		{"prediction", l.PredictionPath(combo, model.ExamPharmacist, 2024, "a1"), "results/acme/m-1/text/薬剤/薬剤_2024_a1_pred.json"},
		{"history", l.HistoryPath(combo, model.ExamNurse, 2021, "A"), "scoring/acme/m-1/text/看護/看護_2021_a_history.json"},
		{"summary", l.SummaryPath(combo, model.ExamNurse, ".csv"), "scoring/acme/m-1/text/看護/total_scores.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != filepath.FromSlash(tt.want) {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{
		"openai/gpt-4o/text",
		"openai/gpt-4o/multimodal",
		"anthropic/claude/text",
		"anthropic/.cache/text",
	} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeFile(t, filepath.Join(root, "README.md"), "notes")
	writeFile(t, filepath.Join(root, "openai", "gpt-4o", "run.log"), "log")

	got, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []model.Combination{
		{Company: "anthropic", Model: "claude", InputType: "text"},
		{Company: "openai", Model: "gpt-4o", InputType: "multimodal"},
		{Company: "openai", Model: "gpt-4o", InputType: "text"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d combinations, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("combination %d: got %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := Discover(filepath.Join(root, "missing")); err == nil {
		t.Error("expected error for missing results root")
	}
}

func TestFilesLoadAndHistory(t *testing.T) {
	l := newLayout(t)
	writeFile(t, l.GroundTruthPath(model.ExamDentist, 2022, "A"), `[
		{"index": "1-1", "answer": "a", "points": "3", "human_accuracy": 0.91, "text_only": true, "kinki": ["b", "c"]},
		{"index": 2, "answer": "", "points": 1.0, "human_accuracy": null, "text_only": false, "kinki": "", "corrected_question_index": "2"}
	]`)
	writeFile(t, l.PredictionPath(combo, model.ExamDentist, 2022, "A"), `[{"pred": "a"}, {"pred": "<b>"}]`)

	f := l.Files(combo)
	qs, err := f.Questions(model.ExamDentist, 2022, "A")
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[0].Points != 3 || qs[1].Points != 1 {
		t.Errorf("points = %d, %d; want 3, 1", qs[0].Points, qs[1].Points)
	}
	if qs[0].Kinki != "bc" {
		t.Errorf("kinki = %q, want %q", qs[0].Kinki, "bc")
	}
	if qs[1].Index != "2" {
		t.Errorf("numeric index = %q, want %q", qs[1].Index, "2")
	}
	if qs[0].Corrected() || !qs[1].Corrected() {
		t.Errorf("corrected flags = %v, %v; want false, true", qs[0].Corrected(), qs[1].Corrected())
	}

	preds, err := f.Predictions(model.ExamDentist, 2022, "A")
	if err != nil {
		t.Fatalf("Predictions: %v", err)
	}
	if len(preds) != 2 || preds[1].Pred != "<b>" {
		t.Fatalf("unexpected predictions: %v", preds)
	}

	subject := "物理"
	rows := []model.HistoryEntry{{
		Year: 2022, Section: "A", Index: "1-1", Subject: &subject,
		Pred: "A", Answer: "A", Points: 3, HumanAccuracy: qs[0].HumanAccuracy,
	}}
	if err := f.WriteHistory(model.ExamDentist, 2022, "A", rows); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	data, err := os.ReadFile(l.HistoryPath(combo, model.ExamDentist, 2022, "A"))
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "\n    {\n        \"year\": 2022,") {
		t.Errorf("history not indented with four spaces:\n%s", text)
	}
	if !strings.Contains(text, `"subject": "物理"`) {
		t.Errorf("subject should be written unescaped:\n%s", text)
	}
	if strings.Contains(text, "kinki") {
		t.Errorf("kinki should be omitted when unset:\n%s", text)
	}

	var back []model.HistoryEntry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(back) != 1 || back[0].Pred != "A" || string(back[0].HumanAccuracy) != "0.91" {
		t.Errorf("unexpected history: %+v", back)
	}
}

func TestHistoryKeepsKinkiShape(t *testing.T) {
	l := newLayout(t)
	writeFile(t, l.GroundTruthPath(model.ExamPhysician, 2024, "C"), `[
		{"index": "1", "answer": "a", "points": 1, "human_accuracy": 0.5, "text_only": true, "kinki": ["B", "C"]},
		{"index": "2", "answer": "b", "points": 1, "human_accuracy": 0.5, "text_only": true, "kinki": "D"}
	]`)

	f := l.Files(combo)
	qs, err := f.Questions(model.ExamPhysician, 2024, "C")
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	rows := make([]model.HistoryEntry, len(qs))
	for i, q := range qs {
		rows[i] = model.HistoryEntry{Year: 2024, Section: "C", Index: q.Index, Kinki: q.KinkiJSON()}
	}
	if err := f.WriteHistory(model.ExamPhysician, 2024, "C", rows); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}

	data, err := os.ReadFile(l.HistoryPath(combo, model.ExamPhysician, 2024, "C"))
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	var back []struct {
		Kinki any `json:"kinki"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if list, ok := back[0].Kinki.([]any); !ok || len(list) != 2 || list[0] != "B" {
		t.Errorf("list kinki written as %#v, want [B C]", back[0].Kinki)
	}
	if back[1].Kinki != "D" {
		t.Errorf("string kinki written as %#v, want D", back[1].Kinki)
	}
}

func TestQuestionsValidation(t *testing.T) {
	l := newLayout(t)
	writeFile(t, l.GroundTruthPath(model.ExamNurse, 2020, "A"), `[{"answer": "a", "points": 1, "text_only": true}]`)
	if _, err := l.Files(combo).Questions(model.ExamNurse, 2020, "A"); err == nil {
		t.Fatal("expected validation error for question without index")
	}

	writeFile(t, l.GroundTruthPath(model.ExamNurse, 2020, "B"), `[{"index": "1-1", "answer": "a", "points": "many"}]`)
	if _, err := l.Files(combo).Questions(model.ExamNurse, 2020, "B"); err == nil {
		t.Fatal("expected parse error for non-numeric points")
	}

	if _, err := l.Files(combo).Questions(model.ExamNurse, 2020, "C"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestCheckInput(t *testing.T) {
	l := newLayout(t)
	if err := l.CheckInput(combo); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if err := os.MkdirAll(l.ResultDir(combo), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := l.CheckInput(combo); err != nil {
		t.Fatalf("CheckInput: %v", err)
	}
}
