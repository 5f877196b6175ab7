package scoring

import "errors"

var (
	// ErrUnsupportedExam is returned by the dispatcher for an unknown exam type.
	ErrUnsupportedExam = errors.New("unsupported exam type")

	// ErrUnsupportedYear is returned when a year-indexed threshold table has no entry.
	ErrUnsupportedYear = errors.New("no passing line for year")

	// ErrMisaligned is returned when a prediction list does not line up with its
	// ground-truth question list.
	ErrMisaligned = errors.New("predictions not aligned with questions")

	// ErrMalformedIndex is returned when a question index has no numeric
	// "<n>-" prefix but the exam routes buckets by that prefix.
	ErrMalformedIndex = errors.New("malformed question index")

	// ErrMissingSubject is returned when a pharmacist question outside the must
	// section has no subject tag to route it by.
	ErrMissingSubject = errors.New("missing subject area")
)
