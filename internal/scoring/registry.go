package scoring

import (
	"fmt"

	"github.com/pavelanni/kokushi/internal/model"
)

// Registry dispatches an exam type to its scorer.
type Registry struct {
	exams map[model.ExamType]Exam
	order []model.ExamType
}

// NewRegistry builds a registry from exam definitions. A later definition of
// the same type replaces an earlier one but keeps its position.
func NewRegistry(exams ...Exam) *Registry {
	r := &Registry{exams: make(map[model.ExamType]Exam, len(exams))}
	for _, e := range exams {
		if _, ok := r.exams[e.Type]; !ok {
			r.order = append(r.order, e.Type)
		}
		r.exams[e.Type] = e
	}
	return r
}

// DefaultRegistry returns a registry holding the full exam catalog.
func DefaultRegistry() *Registry {
	return NewRegistry(Catalog()...)
}

// Lookup returns the definition for t.
func (r *Registry) Lookup(t model.ExamType) (Exam, error) {
	e, ok := r.exams[t]
	if !ok {
		return Exam{}, fmt.Errorf("%w: %q", ErrUnsupportedExam, t)
	}
	return e, nil
}

// Types returns the registered exam types in registration order.
func (r *Registry) Types() []model.ExamType {
	out := make([]model.ExamType, len(r.order))
	copy(out, r.order)
	return out
}

// Score scores exam t for year.
func (r *Registry) Score(t model.ExamType, year int, src Source, sink HistorySink) (model.ScoreRecord, error) {
	e, err := r.Lookup(t)
	if err != nil {
		return model.ScoreRecord{}, err
	}
	return e.Score(year, src, sink)
}
