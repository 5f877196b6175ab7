package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/kokushi/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		years TEXT NOT NULL DEFAULT '[]',
		exams TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS score_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		company TEXT NOT NULL,
		model TEXT NOT NULL,
		input_type TEXT NOT NULL,
		test_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		total_score INTEGER NOT NULL,
		must_score INTEGER NOT NULL,
		violations INTEGER NOT NULL DEFAULT 0,
		failed_by_forbidden INTEGER NOT NULL DEFAULT 0,
		pass_or_not INTEGER NOT NULL DEFAULT 0,
		buckets TEXT NOT NULL DEFAULT '[]',
		scored_at DATETIME NOT NULL,
		UNIQUE (company, model, input_type, test_type, year),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company TEXT NOT NULL,
		model TEXT NOT NULL,
		input_type TEXT NOT NULL,
		test_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		section TEXT NOT NULL,
		position INTEGER NOT NULL,
		question_index TEXT NOT NULL,
		text_only INTEGER NOT NULL DEFAULT 0,
		kinki TEXT,
		subject TEXT,
		pred TEXT NOT NULL,
		answer TEXT NOT NULL,
		points INTEGER NOT NULL,
		human_accuracy TEXT
	);

	CREATE INDEX IF NOT EXISTS history_section
		ON history (company, model, input_type, test_type, year, section);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRecord inserts or replaces the record of one exam year for a
// combination. The latest run wins.
func (s *Store) SaveRecord(runID string, c model.Combination, rec model.ScoreRecord) error {
	buckets, err := json.Marshal(rec.Buckets)
	if err != nil {
		return fmt.Errorf("marshal buckets: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO score_records (run_id, company, model, input_type, test_type, year,
			total_score, must_score, violations, failed_by_forbidden, pass_or_not, buckets, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(company, model, input_type, test_type, year) DO UPDATE SET
			run_id = excluded.run_id,
			total_score = excluded.total_score,
			must_score = excluded.must_score,
			violations = excluded.violations,
			failed_by_forbidden = excluded.failed_by_forbidden,
			pass_or_not = excluded.pass_or_not,
			buckets = excluded.buckets,
			scored_at = excluded.scored_at`,
		runID, c.Company, c.Model, c.InputType, rec.ExamType, rec.Year,
		rec.Total(), rec.Required(), rec.Violations, rec.FailedByForbidden, rec.Pass, string(buckets), time.Now(),
	)
	return err
}

// ListRecords returns the stored records ordered by combination, exam and
// year. An empty company returns every combination.
func (s *Store) ListRecords(company string) ([]model.StoredResult, error) {
	query := `SELECT run_id, company, model, input_type, test_type, year, total_score, must_score,
			violations, failed_by_forbidden, pass_or_not, buckets, scored_at
		FROM score_records WHERE 1=1`
	var args []any
	if company != "" {
		query += ` AND company = ?`
		args = append(args, company)
	}
	query += ` ORDER BY company, model, input_type, test_type, year`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.StoredResult
	for rows.Next() {
		var r model.StoredResult
		var buckets string
		if err := rows.Scan(&r.RunID, &r.Company, &r.Model, &r.InputType, &r.Record.ExamType, &r.Record.Year,
			&r.Total, &r.Required, &r.Record.Violations, &r.Record.FailedByForbidden, &r.Record.Pass,
			&buckets, &r.ScoredAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(buckets), &r.Record.Buckets); err != nil {
			return nil, fmt.Errorf("decode buckets of %s %s %d: %w", r.Combination, r.Record.ExamType, r.Record.Year, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ReplaceHistory swaps the stored rows of one section for rows.
func (s *Store) ReplaceHistory(c model.Combination, exam model.ExamType, year int, section string, rows []model.HistoryEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM history
		 WHERE company = ? AND model = ? AND input_type = ? AND test_type = ? AND year = ? AND section = ?`,
		c.Company, c.Model, c.InputType, exam, year, section,
	)
	if err != nil {
		return err
	}

	for i, r := range rows {
		_, err := tx.Exec(
			`INSERT INTO history (company, model, input_type, test_type, year, section, position,
				question_index, text_only, kinki, subject, pred, answer, points, human_accuracy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.Company, c.Model, c.InputType, exam, year, section, i,
			r.Index, r.TextOnly, rawText(r.Kinki), r.Subject, r.Pred, r.Answer, r.Points, rawText(r.HumanAccuracy),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetHistory returns the stored rows of one section in question order.
func (s *Store) GetHistory(c model.Combination, exam model.ExamType, year int, section string) ([]model.HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT year, section, question_index, text_only, kinki, subject, pred, answer, points, human_accuracy
		 FROM history
		 WHERE company = ? AND model = ? AND input_type = ? AND test_type = ? AND year = ? AND section = ?
		 ORDER BY position`,
		c.Company, c.Model, c.InputType, exam, year, section,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var kinki, subject, accuracy sql.NullString
		if err := rows.Scan(&e.Year, &e.Section, &e.Index, &e.TextOnly, &kinki, &subject,
			&e.Pred, &e.Answer, &e.Points, &accuracy); err != nil {
			return nil, err
		}
		if kinki.Valid {
			e.Kinki = []byte(kinki.String)
		}
		if subject.Valid {
			e.Subject = &subject.String
		}
		if accuracy.Valid {
			e.HumanAccuracy = []byte(accuracy.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// rawText stores raw JSON as text, or NULL when absent.
func rawText(raw []byte) *string {
	if raw == nil {
		return nil
	}
	v := string(raw)
	return &v
}

// Recorder binds the store to one run so the aggregator can persist into it.
type Recorder struct {
	s     *Store
	runID string
}

// Recorder returns a recorder that tags records with runID.
func (s *Store) Recorder(runID string) *Recorder {
	return &Recorder{s: s, runID: runID}
}

func (r *Recorder) SaveRecord(c model.Combination, rec model.ScoreRecord) error {
	return r.s.SaveRecord(r.runID, c, rec)
}

func (r *Recorder) ReplaceHistory(c model.Combination, exam model.ExamType, year int, section string, rows []model.HistoryEntry) error {
	return r.s.ReplaceHistory(c, exam, year, section, rows)
}
