package scoring

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/pavelanni/kokushi/internal/model"
)

// maxViolations is the number of forbidden choices an exam tolerates; one more
// fails the candidate regardless of points.
const maxViolations = 3

// Source loads the inputs of one exam section. The prediction list must be
// aligned by position with the question list.
type Source interface {
	Questions(exam model.ExamType, year int, section string) ([]model.Question, error)
	Predictions(exam model.ExamType, year int, section string) ([]model.Prediction, error)
}

// HistorySink receives the audit rows of one scored section.
type HistorySink interface {
	WriteHistory(exam model.ExamType, year int, section string, rows []model.HistoryEntry) error
}

// Router picks the bucket a scorable question counts toward.
type Router func(section string, q model.Question) (name string, kind model.BucketKind, err error)

// PassRule decides the outcome once every section has been scored.
// FailedByForbidden is already set on rec when the rule runs.
type PassRule func(year int, rec model.ScoreRecord) (bool, error)

// BucketSpec declares a fixed bucket. Fixed buckets appear in records in
// declaration order even when nothing was routed to them.
type BucketSpec struct {
	Name string
	Kind model.BucketKind
}

// Exam describes how one licensing exam is scored. CheckForbidden enables the
// kinki tally and writes kinki into history; SkipCorrected excludes questions
// carrying corrected_question_index; HistorySubject writes the subject tag
// into history.
type Exam struct {
	Type           model.ExamType
	Sections       []string
	Buckets        []BucketSpec
	Route          Router
	CheckForbidden bool
	SkipCorrected  bool
	HistorySubject bool
	Thresholds     Thresholds
	Pass           PassRule
}

// Score grades every section of the exam for one year, handing each section's
// history to sink (which may be nil) and returning the combined record.
func (e Exam) Score(year int, src Source, sink HistorySink) (model.ScoreRecord, error) {
	if _, err := e.Thresholds.For(year); err != nil {
		return model.ScoreRecord{}, fmt.Errorf("%s: %w", e.Type, err)
	}

	t := newTally(e.Buckets)
	for _, section := range e.Sections {
		questions, err := src.Questions(e.Type, year, section)
		if err != nil {
			return model.ScoreRecord{}, fmt.Errorf("%s %d %s: load questions: %w", e.Type, year, section, err)
		}
		preds, err := src.Predictions(e.Type, year, section)
		if err != nil {
			return model.ScoreRecord{}, fmt.Errorf("%s %d %s: load predictions: %w", e.Type, year, section, err)
		}

		rows, err := e.gradeSection(t, year, section, questions, preds)
		if err != nil {
			return model.ScoreRecord{}, fmt.Errorf("%s %d %s: %w", e.Type, year, section, err)
		}
		if sink != nil {
			if err := sink.WriteHistory(e.Type, year, section, rows); err != nil {
				return model.ScoreRecord{}, fmt.Errorf("%s %d %s: write history: %w", e.Type, year, section, err)
			}
		}
		slog.Debug("scored section", "exam", e.Type, "year", year, "section", section, "questions", len(questions))
	}

	rec := model.ScoreRecord{
		ExamType:   e.Type,
		Year:       year,
		Buckets:    t.buckets,
		Violations: t.violations,
	}
	if e.CheckForbidden {
		rec.FailedByForbidden = t.violations > maxViolations
	}
	pass, err := e.Pass(year, rec)
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("%s %d: %w", e.Type, year, err)
	}
	rec.Pass = pass
	return rec, nil
}

// gradeSection adds one section's points to t and returns its history rows.
func (e Exam) gradeSection(t *tally, year int, section string, questions []model.Question, preds []model.Prediction) ([]model.HistoryEntry, error) {
	if len(preds) != len(questions) {
		return nil, fmt.Errorf("%w: %d predictions for %d questions", ErrMisaligned, len(preds), len(questions))
	}

	rows := make([]model.HistoryEntry, 0, len(questions))
	for i, q := range questions {
		pred := Normalize(preds[i].Pred)
		answer := Normalize(q.Answer)
		points := int(q.Points)

		if answer != "" && !(e.SkipCorrected && q.Corrected()) {
			name, kind, err := e.Route(section, q)
			if err != nil {
				return nil, fmt.Errorf("question %s: %w", q.Index, err)
			}
			b := t.bucket(name, kind)
			b.Attainable += points
			if pred == answer {
				b.Score += points
			}
		}

		// kinki is matched as written in the key, so only uppercase sets can
		// match the normalized prediction.
		if e.CheckForbidden && q.Kinki.Contains(pred) {
			t.violations++
		}

		row := model.HistoryEntry{
			Year:          year,
			Section:       section,
			Index:         q.Index,
			TextOnly:      q.TextOnly,
			Pred:          pred,
			Answer:        answer,
			Points:        points,
			HumanAccuracy: q.HumanAccuracy,
		}
		if e.CheckForbidden {
			row.Kinki = q.KinkiJSON()
		}
		if e.HistorySubject {
			subject := q.Subject
			row.Subject = &subject
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type tally struct {
	buckets    []model.Bucket
	pos        map[string]int
	violations int
}

func newTally(specs []BucketSpec) *tally {
	t := &tally{pos: make(map[string]int, len(specs))}
	for _, s := range specs {
		t.bucket(s.Name, s.Kind)
	}
	return t
}

func (t *tally) bucket(name string, kind model.BucketKind) *model.Bucket {
	i, ok := t.pos[name]
	if !ok {
		i = len(t.buckets)
		t.pos[name] = i
		t.buckets = append(t.buckets, model.Bucket{Name: name, Kind: kind})
	}
	return &t.buckets[i]
}

// Thresholds holds an exam's published passing lines, either per year or a
// single set used for every year. Lines are ordered like the exam's buckets.
type Thresholds struct {
	ByYear map[int][]int
	Fixed  []int
}

// For returns the passing lines that apply in year.
func (th Thresholds) For(year int) ([]int, error) {
	if th.ByYear == nil {
		return th.Fixed, nil
	}
	lines, ok := th.ByYear[year]
	if !ok {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedYear, year)
	}
	return lines, nil
}

// Years returns the years with a published line, or nil for fixed thresholds.
func (th Thresholds) Years() []int {
	if th.ByYear == nil {
		return nil
	}
	years := make([]int, 0, len(th.ByYear))
	for y := range th.ByYear {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// bySection sends questions of the listed sections to the required bucket and
// everything else to the general one.
func bySection(required ...string) Router {
	return func(section string, _ model.Question) (string, model.BucketKind, error) {
		for _, s := range required {
			if s == section {
				return bucketRequired, model.BucketRequired, nil
			}
		}
		return bucketGeneral, model.BucketGeneral, nil
	}
}

// cut routes question numbers up to and including upTo into a bucket.
type cut struct {
	upTo int
	spec BucketSpec
}

// byIndexPrefix routes on the number before the hyphen of a question index.
// The last cut catches everything above the previous ones.
func byIndexPrefix(cuts ...cut) Router {
	return func(_ string, q model.Question) (string, model.BucketKind, error) {
		n, err := indexPrefix(q.Index)
		if err != nil {
			return "", "", err
		}
		for _, c := range cuts[:len(cuts)-1] {
			if n <= c.upTo {
				return c.spec.Name, c.spec.Kind, nil
			}
		}
		last := cuts[len(cuts)-1].spec
		return last.Name, last.Kind, nil
	}
}

func indexPrefix(idx model.Index) (int, error) {
	prefix, _, found := strings.Cut(string(idx), "-")
	if !found {
		return 0, fmt.Errorf("%w %q: missing \"-\"", ErrMalformedIndex, idx)
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("%w %q: prefix is not a number", ErrMalformedIndex, idx)
	}
	return n, nil
}

func single(_ string, _ model.Question) (string, model.BucketKind, error) {
	return bucketTotal, model.BucketGeneral, nil
}

// clearsAll passes when every bucket reaches its line and the forbidden tally
// did not overflow.
func clearsAll(th Thresholds) PassRule {
	return func(year int, rec model.ScoreRecord) (bool, error) {
		lines, err := th.For(year)
		if err != nil {
			return false, err
		}
		if len(lines) != len(rec.Buckets) {
			return false, fmt.Errorf("%d passing lines for %d buckets", len(lines), len(rec.Buckets))
		}
		for i, b := range rec.Buckets {
			if b.Score < lines[i] {
				return false, nil
			}
		}
		return !rec.FailedByForbidden, nil
	}
}
