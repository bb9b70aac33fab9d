package scoring

import (
	"strings"
	"testing"
)

const question = "Tell me about yourself and what interests you most about this type of role."

func TestScoreStrongAnswer(t *testing.T) {
	answer := "First, let me talk about my background as a backend engineer and why this " +
		"role interests me. For example, I spent three years building payment systems where " +
		"reliability mattered most. Finally, I enjoy mentoring and I want to grow those skills " +
		"further in this role."

	ev := Score(question, answer, 45)
	if ev.Score != 100 {
		t.Fatalf("score = %d, want 100", ev.Score)
	}
	if len(ev.Strengths) == 0 || ev.Strengths[0] != "Clear communication" {
		t.Fatalf("strengths = %v", ev.Strengths)
	}
	if len(ev.Improvements) != 0 {
		t.Fatalf("improvements = %v, want none", ev.Improvements)
	}
	if !strings.HasPrefix(ev.Feedback, "Excellent response!") {
		t.Fatalf("feedback = %q", ev.Feedback)
	}
}

func TestScoreWeakAnswer(t *testing.T) {
	ev := Score(question, "No.", 5)

	// 60 base, -20 under ten words, -10 under ten seconds
	if ev.Score != 30 {
		t.Fatalf("score = %d, want 30", ev.Score)
	}
	if len(ev.Strengths) != 0 {
		t.Fatalf("strengths = %v, want none", ev.Strengths)
	}
	if len(ev.Improvements) != 5 {
		t.Fatalf("improvements = %v, want all five", ev.Improvements)
	}
}

func TestScoreIsPure(t *testing.T) {
	a := Score(question, "I am motivated by this type of role and what interests me about it.", 25)
	b := Score(question, "I am motivated by this type of role and what interests me about it.", 25)
	if a.Score != b.Score || a.Feedback != b.Feedback {
		t.Fatalf("same input scored differently: %+v vs %+v", a, b)
	}
}

func TestScoreClamped(t *testing.T) {
	for _, dur := range []int{0, 5, 45, 600} {
		ev := Score(question, "x", dur)
		if ev.Score < 0 || ev.Score > 100 {
			t.Fatalf("score out of range: %d (duration %d)", ev.Score, dur)
		}
	}
}

func TestRelevantNeedsOverlap(t *testing.T) {
	if relevant(question, "bananas are yellow and tasty") {
		t.Fatal("unrelated answer marked relevant")
	}
	if !relevant(question, "this role interests me a great deal") {
		t.Fatal("overlapping answer not marked relevant")
	}
}
