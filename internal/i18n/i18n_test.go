package i18n

import (
	"context"
	"testing"

	"github.com/pavelanni/kokushi/internal/model"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "ColumnPassingLines")
	if got != "Passing lines" {
		t.Errorf("T(ColumnPassingLines) = %q, want 'Passing lines'", got)
	}

	got = ExamName(ctx, model.ExamPharmacist)
	if got != "Pharmacist" {
		t.Errorf("ExamName(薬剤) = %q, want 'Pharmacist'", got)
	}
}

func TestTranslateJapanese(t *testing.T) {
	ctx := initLang(t, "ja")

	got := ExamName(ctx, model.ExamPhysician)
	if got != "医師国家試験" {
		t.Errorf("ExamName(医師) = %q, want '医師国家試験'", got)
	}

	got = T(ctx, "ColumnForbidden")
	if got != "禁忌肢" {
		t.Errorf("T(ColumnForbidden) = %q, want '禁忌肢'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got1 := Tp(ctx, "SectionCount", 1)
	if got1 != "1 section" {
		t.Errorf("Tp(SectionCount, 1) = %q, want '1 section'", got1)
	}

	got6 := Tp(ctx, "SectionCount", 6)
	if got6 != "6 sections" {
		t.Errorf("Tp(SectionCount, 6) = %q, want '6 sections'", got6)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "CombinationFailed", map[string]any{"Combination": "acme/m1/text"})
	if got != "Scoring failed for acme/m1/text" {
		t.Errorf("Td(CombinationFailed) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}

	got = ExamName(ctx, "獣医")
	if got != "獣医" {
		t.Errorf("ExamName(unknown) = %q, want the identifier", got)
	}
}

func TestContextWithoutLocalizer(t *testing.T) {
	if err := Init("ja"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	got := ExamName(context.Background(), model.ExamNurse)
	if got != "Nurse" {
		t.Errorf("ExamName without localizer = %q, want English 'Nurse'", got)
	}
}

func TestBundleNotLoaded(t *testing.T) {
	saved := bundle
	bundle = nil
	t.Cleanup(func() { bundle = saved })

	if got := T(context.Background(), "ColumnExam"); got != "ColumnExam" {
		t.Errorf("T without bundle = %q, want the message ID", got)
	}
	if got := ExamName(context.Background(), model.ExamMidwife); got != "助産" {
		t.Errorf("ExamName without bundle = %q, want the identifier", got)
	}
}
