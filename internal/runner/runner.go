// Package runner scores every company/model/input combination found under the
// results root.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pavelanni/kokushi/internal/dataset"
	"github.com/pavelanni/kokushi/internal/model"
	"github.com/pavelanni/kokushi/internal/report"
	"github.com/pavelanni/kokushi/internal/scoring"
	"github.com/pavelanni/kokushi/internal/store"
)

// Config controls one scoring run.
type Config struct {
	DataDir    string           `validate:"required"`
	ResultsDir string           `validate:"required"`
	ScoresDir  string           `validate:"required"`
	Years      []int            `validate:"min=1,dive,gte=1900,lte=2100"`
	Exams      []model.ExamType `validate:"dive,examtype"`
	DBPath     string
	XLSX       bool
	FailFast   bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("examtype", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseExamType(fl.Field().String())
		return ok
	})
	return v
}

// Validate checks the configuration before anything is read or written.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Result summarizes a finished run.
type Result struct {
	RunID        string
	Combinations []model.Combination
	Failed       []model.Combination
	Records      int
}

// Run discovers the combinations under cfg.ResultsDir and scores them one at a
// time. A failing combination is logged and skipped; the returned error joins
// every failure. With FailFast the run stops at the first failure.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{RunID: uuid.NewString()}
	log := slog.With("run", res.RunID)

	combos, err := dataset.Discover(cfg.ResultsDir)
	if err != nil {
		return res, err
	}
	res.Combinations = combos
	if len(combos) == 0 {
		log.Warn("no results found", "results", cfg.ResultsDir)
		return res, nil
	}

	agg := &report.Aggregator{
		Layout: dataset.Layout{
			DataDir:    cfg.DataDir,
			ResultsDir: cfg.ResultsDir,
			ScoreDir:   cfg.ScoresDir,
		},
		Registry: scoring.DefaultRegistry(),
		Exams:    cfg.Exams,
		Years:    cfg.Years,
		XLSX:     cfg.XLSX,
	}

	if cfg.DBPath != "" {
		db, err := store.New(cfg.DBPath)
		if err != nil {
			return res, err
		}
		defer db.Close()

		info := model.RunInfo{
			ID:        res.RunID,
			StartedAt: time.Now(),
			Years:     cfg.Years,
			ExamTypes: agg.Registry.Types(),
		}
		if len(cfg.Exams) > 0 {
			info.ExamTypes = cfg.Exams
		}
		if err := db.CreateRun(info); err != nil {
			return res, fmt.Errorf("record run: %w", err)
		}
		defer func() {
			if err := db.FinishRun(res.RunID); err != nil {
				log.Error("failed to finish run", "error", err)
			}
		}()
		agg.Recorder = db.Recorder(res.RunID)
	}

	log.Info("scoring started", "combinations", len(combos), "years", cfg.Years)
	var errs []error
	for _, c := range combos {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		records, err := agg.Run(ctx, c)
		if err != nil {
			log.Error("combination failed", "combination", c.String(), "error", err)
			res.Failed = append(res.Failed, c)
			errs = append(errs, err)
			if cfg.FailFast {
				break
			}
			continue
		}
		res.Records += len(records)
		log.Info("combination scored", "combination", c.String(), "records", len(records))
	}

	log.Info("scoring finished",
		"combinations", len(combos),
		"failed", len(res.Failed),
		"records", res.Records,
	)
	return res, errors.Join(errs...)
}
