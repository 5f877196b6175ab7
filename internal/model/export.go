package model

import "time"

// ScoreExport is the top-level JSON structure for exporting persisted scores.
type ScoreExport struct {
	ExportedAt time.Time      `json:"exported_at"`
	Results    []StoredResult `json:"results"`
}

// StoredResult is one persisted score record together with the run that
// produced it.
type StoredResult struct {
	Combination
	RunID    string      `json:"run_id"`
	ScoredAt time.Time   `json:"scored_at"`
	Total    int         `json:"total_score"`
	Required int         `json:"must_score"`
	Record   ScoreRecord `json:"record"`
}

// RunInfo describes one invocation of the scorer.
type RunInfo struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Years      []int      `json:"years"`
	ExamTypes  []ExamType `json:"exams"`
}
