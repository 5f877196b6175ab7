package model

import (
	"encoding/json"
	"testing"
)

func TestQuestionFlexibleFields(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		index  Index
		points Points
		kinki  ForbiddenSet
	}{
		{"strings", `{"index": "3-1", "points": "2", "kinki": "ab"}`, "3-1", 2, "ab"},
		{"numbers", `{"index": 12, "points": 3}`, "12", 3, ""},
		{"float points", `{"index": "1", "points": 1.0}`, "1", 1, ""},
		{"kinki list", `{"index": "1", "points": 1, "kinki": ["c", "d"]}`, "1", 1, "cd"},
		{"padded points", `{"index": "1", "points": " 5 "}`, "1", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Question
			if err := json.Unmarshal([]byte(tt.input), &q); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if q.Index != tt.index {
				t.Errorf("index = %q, want %q", q.Index, tt.index)
			}
			if q.Points != tt.points {
				t.Errorf("points = %d, want %d", q.Points, tt.points)
			}
			if q.Kinki != tt.kinki {
				t.Errorf("kinki = %q, want %q", q.Kinki, tt.kinki)
			}
		})
	}
}

func TestQuestionKeepsRawKinki(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"list", `{"index": "1", "kinki": ["C", "D"]}`, `["C", "D"]`},
		{"string", `{"index": "1", "kinki": "CD"}`, `"CD"`},
		{"absent", `{"index": "1"}`, `""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Question
			if err := json.Unmarshal([]byte(tt.input), &q); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := string(q.KinkiJSON()); got != tt.want {
				t.Errorf("KinkiJSON = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQuestionInvalidFields(t *testing.T) {
	for _, input := range []string{
		`{"index": "1", "points": "two"}`,
		`{"index": true}`,
		`{"index": "1", "kinki": 4}`,
	} {
		var q Question
		if err := json.Unmarshal([]byte(input), &q); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}

func TestForbiddenSetContains(t *testing.T) {
	set := ForbiddenSet("CE")
	if !set.Contains("AC") {
		t.Error("expected AC to hit the forbidden set")
	}
	if set.Contains("ABD") {
		t.Error("expected ABD to miss the forbidden set")
	}
	if set.Contains("") {
		t.Error("an empty answer never hits the forbidden set")
	}
	if ForbiddenSet("").Contains("A") {
		t.Error("an empty set never matches")
	}
}

func TestScoreRecordTotals(t *testing.T) {
	rec := ScoreRecord{Buckets: []Bucket{
		{Name: "must", Kind: BucketRequired, Score: 130},
		{Name: "物理", Kind: BucketArea, Score: 20, Attainable: 40},
		{Name: "化学", Kind: BucketArea, Score: 15, Attainable: 30},
	}}
	if rec.Total() != 165 {
		t.Errorf("Total = %d, want 165", rec.Total())
	}
	if rec.Required() != 130 {
		t.Errorf("Required = %d, want 130", rec.Required())
	}
	if areas := rec.Areas(); len(areas) != 2 || areas[1].Name != "化学" {
		t.Errorf("unexpected areas: %+v", areas)
	}
	if _, ok := rec.Bucket("生物"); ok {
		t.Error("expected no 生物 bucket")
	}

	single := ScoreRecord{Buckets: []Bucket{{Name: "total", Kind: BucketGeneral, Score: 90}}}
	if single.Required() != 0 {
		t.Errorf("single-score Required = %d, want 0", single.Required())
	}
}

func TestParseExamType(t *testing.T) {
	if got, ok := ParseExamType("看護"); !ok || got != ExamNurse {
		t.Errorf("ParseExamType(看護) = %q, %v", got, ok)
	}
	if _, ok := ParseExamType("nurse"); ok {
		t.Error("expected unknown exam type")
	}
	if (Combination{Company: "a", Model: "b", InputType: "c"}).String() != "a/b/c" {
		t.Error("unexpected combination string")
	}
}
