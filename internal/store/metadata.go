package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/kokushi/internal/model"
)

// CreateRun records the start of a scoring run.
func (s *Store) CreateRun(info model.RunInfo) error {
	years, err := json.Marshal(info.Years)
	if err != nil {
		return err
	}
	exams, err := json.Marshal(info.ExamTypes)
	if err != nil {
		return err
	}
	startedAt := info.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	_, err = s.db.Exec(
		`INSERT INTO runs (id, started_at, years, exams) VALUES (?, ?, ?, ?)`,
		info.ID, startedAt, string(years), string(exams),
	)
	return err
}

// FinishRun stamps the end time of a run.
func (s *Store) FinishRun(id string) error {
	res, err := s.db.Exec(`UPDATE runs SET finished_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(id string) (model.RunInfo, error) {
	row := s.db.QueryRow(`SELECT id, started_at, finished_at, years, exams FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]model.RunInfo, error) {
	rows, err := s.db.Query(`SELECT id, started_at, finished_at, years, exams FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []model.RunInfo
	for rows.Next() {
		info, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (model.RunInfo, error) {
	var info model.RunInfo
	var years, exams string
	if err := sc.Scan(&info.ID, &info.StartedAt, &info.FinishedAt, &years, &exams); err != nil {
		return info, err
	}
	if err := json.Unmarshal([]byte(years), &info.Years); err != nil {
		return info, fmt.Errorf("decode years of run %s: %w", info.ID, err)
	}
	if err := json.Unmarshal([]byte(exams), &info.ExamTypes); err != nil {
		return info, fmt.Errorf("decode exams of run %s: %w", info.ID, err)
	}
	return info, nil
}
