package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appI18n "github.com/pavelanni/kokushi/internal/i18n"
	"github.com/pavelanni/kokushi/internal/model"
	"github.com/pavelanni/kokushi/internal/runner"
	"github.com/pavelanni/kokushi/internal/scoring"
	"github.com/pavelanni/kokushi/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kokushi",
		Short: "Score LLM answers against Japanese national licensing exams",
	}

	score := scoreCmd()
	root.AddCommand(score, examsCmd(), exportCmd())

	// Make "score" the default when no subcommand is given.
	root.RunE = score.RunE

	// Register score flags on root so bare `kokushi --years ...` still works.
	root.Flags().AddFlagSet(score.Flags())

	return root
}

func addLogFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score every company/model/input combination under the results root",
		RunE:  runScore,
	}
	f := cmd.Flags()
	f.String("results", "./results", "Root of model predictions (<company>/<model>/<input>/<exam>/)")
	f.String("scores", "./scoring", "Root for history files and summary tables")
	f.String("data", "./exams/JA", "Root of answer keys (<exam>/<exam>_<year>_<section>.json)")
	f.IntSlice("years", []int{2020, 2021, 2022, 2023, 2024}, "Exam years to score")
	f.StringSlice("exams", nil, "Exam types to score (default: all)")
	f.String("db", "", "SQLite database to record scores in (optional)")
	f.Bool("xlsx", false, "Also write total_scores.xlsx next to each CSV")
	f.Bool("fail-fast", false, "Stop at the first failing combination")
	f.StringP("lang", "l", "en", "Language for exam names in logs (en, ja)")
	addLogFlags(cmd)
	return cmd
}

func examsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exams",
		Short: "Print the supported exams, their sections and passing lines",
		RunE:  runExams,
	}
	f := cmd.Flags()
	f.StringP("format", "f", "table", "Output format (table, yaml, json)")
	f.StringP("lang", "l", "en", "Language for exam names and headers (en, ja)")
	addLogFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded scores as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "kokushi.db", "SQLite database path")
	f.String("company", "", "Only export records of this company")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(cmd)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("KOKUSHI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("kokushi")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/kokushi")
	v.AddConfigPath("/etc/kokushi")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// localize initializes the bundle and returns a context carrying a localizer
// for the configured language.
func localize(ctx context.Context, lang string) (context.Context, error) {
	if err := appI18n.Init(lang); err != nil {
		return ctx, fmt.Errorf("init i18n: %w", err)
	}
	return appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(lang)), nil
}

func parseExams(names []string) ([]model.ExamType, error) {
	var exams []model.ExamType
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t, ok := model.ParseExamType(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", scoring.ErrUnsupportedExam, name)
		}
		exams = append(exams, t)
	}
	return exams, nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, err := localize(cmd.Context(), v.GetString("lang"))
	if err != nil {
		return err
	}

	exams, err := parseExams(v.GetStringSlice("exams"))
	if err != nil {
		return err
	}

	cfg := runner.Config{
		DataDir:    v.GetString("data"),
		ResultsDir: v.GetString("results"),
		ScoresDir:  v.GetString("scores"),
		Years:      v.GetIntSlice("years"),
		Exams:      exams,
		DBPath:     v.GetString("db"),
		XLSX:       v.GetBool("xlsx"),
		FailFast:   v.GetBool("fail-fast"),
	}
	slog.Info("starting scorer",
		"results", cfg.ResultsDir,
		"scores", cfg.ScoresDir,
		"data", cfg.DataDir,
		"years", cfg.Years,
		"exams", cfg.Exams,
		"db", cfg.DBPath,
		"xlsx", cfg.XLSX,
	)

	res, err := runner.Run(ctx, cfg)
	if err != nil {
		if len(res.Failed) > 0 {
			for _, c := range res.Failed {
				slog.Error(appI18n.Td(ctx, "CombinationFailed", map[string]any{"Combination": c.String()}))
			}
			return fmt.Errorf("%d of %d combinations failed", len(res.Failed), len(res.Combinations))
		}
		return err
	}
	return nil
}

func runExams(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, err := localize(cmd.Context(), v.GetString("lang"))
	if err != nil {
		return err
	}

	entries := describeCatalog(ctx, scoring.Catalog())
	return writeCatalog(ctx, cmd.OutOrStdout(), v.GetString("format"), entries)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportRecords(v.GetString("company"))
	if err != nil {
		return fmt.Errorf("export records: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	slog.Info("exported records", "count", len(export.Results), "output", outPath)
	return nil
}
