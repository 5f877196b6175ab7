package model

// BucketKind classifies a score bucket.
type BucketKind string

const (
	// BucketRequired is the mandatory section with its own passing line.
	BucketRequired BucketKind = "required"
	// BucketGeneral is any fixed, non-required bucket (general, area A, practical...).
	BucketGeneral BucketKind = "general"
	// BucketArea is a per-subject bucket created from the question's subject tag.
	BucketArea BucketKind = "area"
)

// Bucket is a named accumulator of points for one scoring category. Score is
// the sum of points of correctly answered questions; Attainable is the sum of
// points of every scorable question routed to the bucket.
type Bucket struct {
	Name       string     `json:"name"`
	Kind       BucketKind `json:"kind"`
	Score      int        `json:"score"`
	Attainable int        `json:"attainable"`
}

// ScoreRecord is the result of scoring one exam type for one year.
type ScoreRecord struct {
	ExamType          ExamType `json:"test_type"`
	Year              int      `json:"year"`
	Buckets           []Bucket `json:"buckets"`
	Violations        int      `json:"violations"`
	FailedByForbidden bool     `json:"failed_by_forbidden"`
	Pass              bool     `json:"pass_or_not"`
}

// Total returns the sum of all bucket scores.
func (r ScoreRecord) Total() int {
	total := 0
	for _, b := range r.Buckets {
		total += b.Score
	}
	return total
}

// Required returns the required-section score, or 0 for single-score exams.
func (r ScoreRecord) Required() int {
	for _, b := range r.Buckets {
		if b.Kind == BucketRequired {
			return b.Score
		}
	}
	return 0
}

// Bucket returns the bucket with the given name.
func (r ScoreRecord) Bucket(name string) (Bucket, bool) {
	for _, b := range r.Buckets {
		if b.Name == name {
			return b, true
		}
	}
	return Bucket{}, false
}

// Areas returns the per-subject buckets in first-seen order.
func (r ScoreRecord) Areas() []Bucket {
	var areas []Bucket
	for _, b := range r.Buckets {
		if b.Kind == BucketArea {
			areas = append(areas, b)
		}
	}
	return areas
}
