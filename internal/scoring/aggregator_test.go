package scoring

import (
	"strings"
	"testing"
	"time"
)

func TestAggregateEmpty(t *testing.T) {
	res := Aggregate("s1", "u1", nil, time.Now(), 0)

	if res.OverallScore != 0 {
		t.Fatalf("overall = %d, want 0", res.OverallScore)
	}
	if res.CategoryScores.Communication != 0 || res.CategoryScores.Clarity != 0 {
		t.Fatalf("category scores not zeroed: %+v", res.CategoryScores)
	}
	if !strings.HasPrefix(res.Feedback, "Room for improvement") {
		t.Fatalf("feedback = %q", res.Feedback)
	}
	if len(res.Recommendations) == 0 {
		t.Fatal("expected baseline recommendations")
	}
}

func TestAggregateRoundedMean(t *testing.T) {
	evals := []Evaluation{{Score: 80}, {Score: 90}, {Score: 100}}
	res := Aggregate("s1", "u1", evals, time.Now(), 120)

	if res.OverallScore != 90 {
		t.Fatalf("overall = %d, want 90", res.OverallScore)
	}

	// fixed projections of overall=90
	cs := res.CategoryScores
	if cs.Communication != 91 || cs.Confidence != 88 || cs.Technical != 89 || cs.Clarity != 96 || cs.Professionalism != 89 {
		t.Fatalf("category scores = %+v", cs)
	}
	if res.ActualDurationSeconds != 120 {
		t.Fatalf("duration = %d", res.ActualDurationSeconds)
	}
}

func TestAggregateDeterministic(t *testing.T) {
	evals := []Evaluation{{Score: 72, Strengths: []string{"Clear communication"}}}
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a := Aggregate("s1", "u1", evals, at, 60)
	b := Aggregate("s1", "u1", evals, at, 60)
	if a.OverallScore != b.OverallScore || a.CategoryScores != b.CategoryScores || a.Feedback != b.Feedback {
		t.Fatalf("aggregation not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestAggregateDedupesAndCaps(t *testing.T) {
	ev := Evaluation{
		Score:        88,
		Strengths:    []string{"Clear communication", "Good structure and organization", "Relevant examples"},
		Improvements: []string{"Include specific examples", "Include specific examples"},
	}
	res := Aggregate("s1", "u1", []Evaluation{ev, ev, ev}, time.Now(), 300)

	if len(res.Strengths) > 5 {
		t.Fatalf("strengths over cap: %v", res.Strengths)
	}
	seen := map[string]int{}
	for _, s := range res.Strengths {
		seen[s]++
	}
	for s, n := range seen {
		if n > 1 {
			t.Fatalf("duplicate strength %q", s)
		}
	}
	if len(res.Improvements) != 1 {
		t.Fatalf("improvements = %v, want deduped single entry", res.Improvements)
	}
	if len(res.Recommendations) > 4 {
		t.Fatalf("recommendations over cap: %v", res.Recommendations)
	}
}

func TestRecommendationsFollowImprovements(t *testing.T) {
	ev := Evaluation{Score: 60, Improvements: []string{"Structure your thoughts better"}}
	res := Aggregate("s1", "u1", []Evaluation{ev}, time.Now(), 60)

	found := false
	for _, r := range res.Recommendations {
		if strings.Contains(r, "STAR") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected STAR recommendation, got %v", res.Recommendations)
	}
}
