package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExamType identifies a licensing exam. The value doubles as the folder name
// used for that exam's ground truth, predictions and scores on disk.
type ExamType string

const (
	ExamPhysician                ExamType = "医師"
	ExamDentist                  ExamType = "歯科"
	ExamNurse                    ExamType = "看護"
	ExamPublicHealthNurse        ExamType = "保健"
	ExamPhysicalTherapist        ExamType = "理学"
	ExamOccupationalTherapist    ExamType = "作業"
	ExamMidwife                  ExamType = "助産"
	ExamRadiologicalTechnologist ExamType = "診療"
	ExamOrthoptist               ExamType = "視能"
	ExamPharmacist               ExamType = "薬剤"
)

// ExamTypes lists every supported exam in scoring order.
var ExamTypes = []ExamType{
	ExamPhysician,
	ExamDentist,
	ExamNurse,
	ExamPublicHealthNurse,
	ExamPhysicalTherapist,
	ExamOccupationalTherapist,
	ExamMidwife,
	ExamRadiologicalTechnologist,
	ExamOrthoptist,
	ExamPharmacist,
}

// ParseExamType converts a string to an ExamType. It only checks that the
// value is one of the known exams.
func ParseExamType(s string) (ExamType, bool) {
	for _, t := range ExamTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Index is a section-relative question identifier such as "12" or "31-2".
// Ground-truth files store it either as a string or as a number.
type Index string

func (i *Index) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Index(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	*i = Index(n.String())
	return nil
}

// Points is a question's point value. Some answer keys store it as a numeric
// string; it is always used as an integer.
type Points int

func (p *Points) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}
	if n, err := strconv.Atoi(raw); err == nil {
		*p = Points(n)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("points %s: not a number", string(data))
	}
	*p = Points(int(f))
	return nil
}

// ForbiddenSet holds the answer characters that count as a forbidden choice
// (kinki). Answer keys write it as a string ("ab") or a list (["a","b"]).
type ForbiddenSet string

func (f *ForbiddenSet) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = ForbiddenSet(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("kinki: expected string or list of strings: %w", err)
	}
	*f = ForbiddenSet(strings.Join(list, ""))
	return nil
}

// Contains reports whether any rune of answer is in the set.
func (f ForbiddenSet) Contains(answer string) bool {
	for _, r := range answer {
		if strings.ContainsRune(string(f), r) {
			return true
		}
	}
	return false
}

// Question is one ground-truth exam item. KinkiRaw keeps kinki exactly as the
// answer key wrote it so history can echo it back in the same shape.
type Question struct {
	Index          Index           `json:"index" validate:"required"`
	Answer         string          `json:"answer"`
	Points         Points          `json:"points" validate:"gte=0"`
	HumanAccuracy  json.RawMessage `json:"human_accuracy"`
	TextOnly       bool            `json:"text_only"`
	Kinki          ForbiddenSet    `json:"kinki,omitempty"`
	KinkiRaw       json.RawMessage `json:"-"`
	CorrectedIndex json.RawMessage `json:"corrected_question_index,omitempty"`
	Subject        string          `json:"answer_sub2,omitempty"`
}

func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	var aux struct {
		plain
		Kinki json.RawMessage `json:"kinki"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*q = Question(aux.plain)
	if aux.Kinki != nil {
		if err := q.Kinki.UnmarshalJSON(aux.Kinki); err != nil {
			return err
		}
		q.KinkiRaw = aux.Kinki
	}
	return nil
}

// KinkiJSON returns kinki as written in the answer key. Questions built in code
// without a raw value get the set encoded as a JSON string.
func (q Question) KinkiJSON() json.RawMessage {
	if q.KinkiRaw != nil {
		return q.KinkiRaw
	}
	b, _ := json.Marshal(string(q.Kinki))
	return b
}

// Corrected reports whether the question carries a correction marker
// (withdrawn or re-keyed after the exam). The marker's value is never read.
func (q Question) Corrected() bool {
	return q.CorrectedIndex != nil
}

// Prediction is one model answer, aligned by position with the question list.
type Prediction struct {
	Pred string `json:"pred"`
}

// HistoryEntry is the per-question audit row written next to the scores.
type HistoryEntry struct {
	Year          int             `json:"year"`
	Section       string          `json:"section"`
	Index         Index           `json:"index"`
	TextOnly      bool            `json:"text_only"`
	Kinki         json.RawMessage `json:"kinki,omitempty"`
	Subject       *string         `json:"subject,omitempty"`
	Pred          string          `json:"pred"`
	Answer        string          `json:"answer"`
	Points        int             `json:"points"`
	HumanAccuracy json.RawMessage `json:"human_accuracy"`
}

// Combination names one set of results: a provider, one of its models and
// the input modality (e.g. "text" or "multimodal").
type Combination struct {
	Company   string `json:"company"`
	Model     string `json:"model"`
	InputType string `json:"input_type"`
}

func (c Combination) String() string {
	return c.Company + "/" + c.Model + "/" + c.InputType
}
