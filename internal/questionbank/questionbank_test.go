package questionbank

import (
	"strings"
	"testing"

	"github.com/hireloop/hireloop/internal/models"
)

func TestGeneralSet(t *testing.T) {
	qs := GeneralSet()
	if len(qs) != 3 {
		t.Fatalf("len = %d, want 3", len(qs))
	}
	for i, q := range qs {
		if q.Ordinal != i+1 || q.TotalInSession != 3 {
			t.Fatalf("q%d numbering: ordinal=%d total=%d", i, q.Ordinal, q.TotalInSession)
		}
		if q.ID == "" || q.Text == "" || q.ExpectedDurationSeconds <= 0 {
			t.Fatalf("q%d incomplete: %+v", i, q)
		}
	}
	if qs[0].Category != models.CategoryIntroduction {
		t.Fatalf("first question category = %s", qs[0].Category)
	}
}

func TestJobSet(t *testing.T) {
	for _, difficulty := range []string{"easy", "medium", "hard", "unknown"} {
		qs := JobSet("Backend Engineer", difficulty)
		if len(qs) != 6 {
			t.Fatalf("%s: len = %d, want 6", difficulty, len(qs))
		}
		if !strings.Contains(qs[0].Text, "Backend Engineer") {
			t.Fatalf("%s: first question missing job title: %q", difficulty, qs[0].Text)
		}
		for i, q := range qs {
			if q.Ordinal != i+1 || q.TotalInSession != 6 {
				t.Fatalf("%s: q%d numbering off", difficulty, i)
			}
		}
	}
}

func TestJobSetHardIsMoreTechnical(t *testing.T) {
	hard := JobSet("SRE", "hard")
	easy := JobSet("SRE", "easy")

	count := func(qs []models.Question, cat models.QuestionCategory) int {
		n := 0
		for _, q := range qs {
			if q.Category == cat {
				n++
			}
		}
		return n
	}
	if count(hard, models.CategoryTechnical) <= 0 {
		t.Fatal("hard set has no technical questions")
	}
	if count(easy, models.CategoryTechnical) >= count(hard, models.CategoryTechnical) {
		t.Fatal("easy set should have fewer technical questions than hard")
	}
}

func TestJobSetEmptyTitleFallback(t *testing.T) {
	qs := JobSet("   ", "medium")
	if strings.Contains(qs[0].Text, "  ") {
		t.Fatalf("blank title leaked into question: %q", qs[0].Text)
	}
	if !strings.Contains(qs[0].Text, "this role") {
		t.Fatalf("expected fallback title, got %q", qs[0].Text)
	}
}
