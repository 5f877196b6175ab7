package scoring

import (
	"fmt"

	"github.com/pavelanni/kokushi/internal/model"
)

const (
	bucketRequired  = "required"
	bucketGeneral   = "general"
	bucketAreaA     = "area_a"
	bucketAreaB     = "area_b"
	bucketPractical = "practical"
	bucketTotal     = "total"
	bucketMust      = "must"
)

// Published passing lines. These are copied from the official announcements
// and must not be derived or rounded.
var (
	// required, general
	physicianLines = map[int][]int{
		2020: {158, 217},
		2021: {160, 209},
		2022: {158, 214},
		2023: {160, 220},
		2024: {160, 230},
	}

	// required, area A, area B
	dentistLines = map[int][]int{
		2020: {64, 65, 260},
		2021: {63, 53, 236},
		2022: {64, 59, 237},
		2023: {64, 63, 257},
		2024: {64, 60, 254},
	}

	// required, general
	nurseLines = map[int][]int{
		2020: {40, 155},
		2021: {40, 159},
		2022: {40, 167},
		2023: {40, 152},
		2024: {40, 158},
	}

	// total
	pharmacistLines = map[int][]int{
		2020: {426},
		2021: {430},
		2022: {434},
		2023: {470},
		2024: {420},
	}

	// required, practical; same line every year
	therapistLines = []int{168, 43}

	publicHealthNurseLine        = []int{87}
	midwifeLine                  = []int{87}
	radiologicalTechnologistLine = []int{120}
	orthoptistLine               = []int{102}
)

const (
	// pharmacistMustLine is 70% of the must section.
	pharmacistMustLine = 126
	// Each subject area has to reach 3/10 of its attainable points.
	areaRatioNum = 3
	areaRatioDen = 10
)

var (
	requiredGeneral = []BucketSpec{
		{bucketRequired, model.BucketRequired},
		{bucketGeneral, model.BucketGeneral},
	}
	requiredPractical = []BucketSpec{
		{bucketRequired, model.BucketRequired},
		{bucketPractical, model.BucketGeneral},
	}
	singleTotal = []BucketSpec{
		{bucketTotal, model.BucketGeneral},
	}
)

// Catalog returns the definitions of every supported exam in scoring order.
func Catalog() []Exam {
	return []Exam{
		physician(),
		dentist(),
		nurse(),
		singleScore(model.ExamPublicHealthNurse, publicHealthNurseLine),
		therapist(model.ExamPhysicalTherapist),
		therapist(model.ExamOccupationalTherapist),
		singleScore(model.ExamMidwife, midwifeLine),
		singleScore(model.ExamRadiologicalTechnologist, radiologicalTechnologistLine),
		singleScore(model.ExamOrthoptist, orthoptistLine),
		pharmacist(),
	}
}

// physician: sections B and E are the required part. The answer key has no
// correction marker, so every keyed question is scored.
func physician() Exam {
	th := Thresholds{ByYear: physicianLines}
	return Exam{
		Type:           model.ExamPhysician,
		Sections:       []string{"B", "E", "A", "C", "D", "F"},
		Buckets:        requiredGeneral,
		Route:          bySection("B", "E"),
		CheckForbidden: true,
		Thresholds:     th,
		Pass:           clearsAll(th),
	}
}

func dentist() Exam {
	th := Thresholds{ByYear: dentistLines}
	required := BucketSpec{bucketRequired, model.BucketRequired}
	areaA := BucketSpec{bucketAreaA, model.BucketGeneral}
	areaB := BucketSpec{bucketAreaB, model.BucketGeneral}
	return Exam{
		Type:           model.ExamDentist,
		Sections:       []string{"A", "B", "C", "D"},
		Buckets:        []BucketSpec{required, areaA, areaB},
		Route:          byIndexPrefix(cut{20, required}, cut{45, areaA}, cut{0, areaB}),
		CheckForbidden: true,
		SkipCorrected:  true,
		Thresholds:     th,
		Pass:           clearsAll(th),
	}
}

func nurse() Exam {
	th := Thresholds{ByYear: nurseLines}
	return Exam{
		Type:          model.ExamNurse,
		Sections:      []string{"A", "B"},
		Buckets:       requiredGeneral,
		Route:         byIndexPrefix(cut{25, requiredGeneral[0]}, cut{0, requiredGeneral[1]}),
		SkipCorrected: true,
		Thresholds:    th,
		Pass:          clearsAll(th),
	}
}

func therapist(t model.ExamType) Exam {
	th := Thresholds{Fixed: therapistLines}
	return Exam{
		Type:          t,
		Sections:      []string{"A", "B"},
		Buckets:       requiredPractical,
		Route:         byIndexPrefix(cut{80, requiredPractical[0]}, cut{0, requiredPractical[1]}),
		SkipCorrected: true,
		Thresholds:    th,
		Pass:          clearsAll(th),
	}
}

func singleScore(t model.ExamType, line []int) Exam {
	th := Thresholds{Fixed: line}
	return Exam{
		Type:          t,
		Sections:      []string{"A", "B"},
		Buckets:       singleTotal,
		Route:         single,
		SkipCorrected: true,
		Thresholds:    th,
		Pass:          clearsAll(th),
	}
}

// pharmacist: section a1 is the must part; every other keyed question counts
// toward the subject area named by its answer_sub2 tag.
func pharmacist() Exam {
	th := Thresholds{ByYear: pharmacistLines}
	return Exam{
		Type:           model.ExamPharmacist,
		Sections:       []string{"a1", "a2", "a3", "b1", "b2", "b3"},
		Buckets:        []BucketSpec{{bucketMust, model.BucketRequired}},
		Route:          bySubject("a1"),
		SkipCorrected:  true,
		HistorySubject: true,
		Thresholds:     th,
		Pass:           pharmacistRule(th),
	}
}

func bySubject(mustSection string) Router {
	return func(section string, q model.Question) (string, model.BucketKind, error) {
		if section == mustSection {
			return bucketMust, model.BucketRequired, nil
		}
		if q.Subject == "" {
			return "", "", fmt.Errorf("%w: no answer_sub2 subject", ErrMissingSubject)
		}
		return q.Subject, model.BucketArea, nil
	}
}

// pharmacistRule passes when the total clears the year's line, the must
// section clears its fixed line, and every subject area reaches 30% of its
// attainable points (inclusive).
func pharmacistRule(th Thresholds) PassRule {
	return func(year int, rec model.ScoreRecord) (bool, error) {
		lines, err := th.For(year)
		if err != nil {
			return false, err
		}
		if rec.Total() < lines[0] || rec.Required() < pharmacistMustLine {
			return false, nil
		}
		for _, a := range rec.Areas() {
			if a.Score*areaRatioDen < a.Attainable*areaRatioNum {
				return false, nil
			}
		}
		return true, nil
	}
}
