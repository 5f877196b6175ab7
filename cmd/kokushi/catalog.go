package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	appI18n "github.com/pavelanni/kokushi/internal/i18n"
	"github.com/pavelanni/kokushi/internal/scoring"
)

// catalogEntry is the printable description of one exam.
type catalogEntry struct {
	Type           string        `json:"type" yaml:"type"`
	Name           string        `json:"name" yaml:"name"`
	Sections       []string      `json:"sections" yaml:"sections"`
	Buckets        []string      `json:"buckets" yaml:"buckets"`
	PassingLines   map[int][]int `json:"passing_lines,omitempty" yaml:"passing_lines,omitempty"`
	FixedLines     []int         `json:"fixed_lines,omitempty" yaml:"fixed_lines,omitempty,flow"`
	CheckForbidden bool          `json:"check_forbidden" yaml:"check_forbidden"`
	SkipCorrected  bool          `json:"skip_corrected" yaml:"skip_corrected"`
}

func describeCatalog(ctx context.Context, exams []scoring.Exam) []catalogEntry {
	entries := make([]catalogEntry, 0, len(exams))
	for _, e := range exams {
		buckets := make([]string, 0, len(e.Buckets))
		for _, b := range e.Buckets {
			buckets = append(buckets, b.Name)
		}
		entries = append(entries, catalogEntry{
			Type:           string(e.Type),
			Name:           appI18n.ExamName(ctx, e.Type),
			Sections:       e.Sections,
			Buckets:        buckets,
			PassingLines:   e.Thresholds.ByYear,
			FixedLines:     e.Thresholds.Fixed,
			CheckForbidden: e.CheckForbidden,
			SkipCorrected:  e.SkipCorrected,
		})
	}
	return entries
}

func writeCatalog(ctx context.Context, w io.Writer, format string, entries []catalogEntry) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return writeCatalogTable(ctx, w, entries)
	default:
		return fmt.Errorf("unknown format %q (table, yaml, json)", format)
	}
}

func writeCatalogTable(ctx context.Context, w io.Writer, entries []catalogEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		appI18n.T(ctx, "ColumnExam"),
		appI18n.T(ctx, "ColumnName"),
		appI18n.T(ctx, "ColumnSections"),
		appI18n.T(ctx, "ColumnBuckets"),
		appI18n.T(ctx, "ColumnForbidden"),
		appI18n.T(ctx, "ColumnPassingLines"),
	)
	for _, e := range entries {
		forbidden := appI18n.T(ctx, "No")
		if e.CheckForbidden {
			forbidden = appI18n.T(ctx, "Yes")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s (%s)\t%s\t%s\t%s\n",
			e.Type,
			e.Name,
			appI18n.Tp(ctx, "SectionCount", len(e.Sections)),
			strings.Join(e.Sections, ","),
			strings.Join(e.Buckets, ","),
			forbidden,
			formatLines(ctx, e),
		)
	}
	return tw.Flush()
}

func formatLines(ctx context.Context, e catalogEntry) string {
	if e.PassingLines == nil {
		return joinInts(e.FixedLines) + " (" + appI18n.T(ctx, "SameEveryYear") + ")"
	}
	years := scoring.Thresholds{ByYear: e.PassingLines}.Years()
	parts := make([]string, 0, len(years))
	for _, y := range years {
		parts = append(parts, strconv.Itoa(y)+":"+joinInts(e.PassingLines[y]))
	}
	return strings.Join(parts, " ")
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "/")
}
