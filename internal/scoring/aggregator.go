package scoring

import (
	"strings"
	"time"

	"github.com/hireloop/hireloop/internal/models"
)

const (
	maxStrengths       = 5
	maxImprovements    = 5
	maxRecommendations = 4
)

// Aggregate combines per-answer evaluations into one SessionResult. Zero
// evaluations is a valid input and yields an overall score of 0. Category
// scores are fixed projections of the overall score; there is deliberately
// no randomness here.
func Aggregate(sessionID, userID string, evals []Evaluation, completedAt time.Time, actualDurationSeconds int) models.SessionResult {
	total := 0
	var strengths, improvements []string
	for _, e := range evals {
		total += e.Score
		strengths = append(strengths, e.Strengths...)
		improvements = append(improvements, e.Improvements...)
	}

	overall := 0
	if len(evals) > 0 {
		// rounded mean
		overall = (total + len(evals)/2) / len(evals)
	}

	strengths = dedupe(strengths, maxStrengths)
	improvements = dedupe(improvements, maxImprovements)

	return models.SessionResult{
		SessionID:    sessionID,
		UserID:       userID,
		OverallScore: overall,
		CategoryScores: models.CategoryScores{
			Communication:   category(overall, 0.95, 5),
			Confidence:      category(overall, 0.90, 7),
			Technical:       category(overall, 0.88, 10),
			Clarity:         category(overall, 1.02, 4),
			Professionalism: category(overall, 0.92, 6),
		},
		Feedback:              summary(overall, strengths, improvements),
		Strengths:             strengths,
		Improvements:          improvements,
		Recommendations:       recommendations(overall, improvements),
		CompletedAt:           completedAt,
		ActualDurationSeconds: actualDurationSeconds,
	}
}

// category derives a presentation category score from the overall score with
// a fixed weight and offset in place of the noise the product design called
// for originally.
func category(overall int, weight float64, offset int) int {
	if overall == 0 {
		return 0
	}
	return clamp(int(float64(overall)*weight+0.5) + offset)
}

func summary(overall int, strengths, improvements []string) string {
	var b strings.Builder

	switch {
	case overall >= 85:
		b.WriteString("Excellent performance! You demonstrated strong communication skills and provided comprehensive, well-structured answers throughout the interview.")
	case overall >= 70:
		b.WriteString("Good performance with solid communication skills. You addressed the questions well with room for minor improvements in detail and structure.")
	case overall >= 55:
		b.WriteString("Adequate performance that addresses the questions. Consider providing more specific examples and structuring your thoughts better for stronger responses.")
	default:
		b.WriteString("Room for improvement in your interview responses. Focus on providing more detailed answers with specific examples and better organization of your thoughts.")
	}

	if len(strengths) > 0 {
		n := len(strengths)
		if n > 3 {
			n = 3
		}
		b.WriteString(" Your key strengths include: ")
		b.WriteString(strings.Join(strengths[:n], ", "))
		b.WriteString(".")
	}
	if len(improvements) > 0 {
		n := len(improvements)
		if n > 2 {
			n = 2
		}
		b.WriteString(" Areas for improvement: ")
		b.WriteString(strings.Join(improvements[:n], " and "))
		b.WriteString(".")
	}
	return b.String()
}

func recommendations(overall int, improvements []string) []string {
	var recs []string

	switch {
	case overall >= 85:
		recs = append(recs,
			"Continue practicing interview skills to maintain your excellent performance",
			"Consider taking on leadership roles to further develop your skills")
	case overall >= 70:
		recs = append(recs,
			"Practice more interview scenarios to improve your confidence",
			"Focus on providing more specific examples in your responses")
	case overall >= 55:
		recs = append(recs,
			"Take time to prepare thoroughly before interviews",
			"Practice structuring your thoughts before speaking")
	default:
		recs = append(recs,
			"Consider taking interview preparation courses",
			"Practice answering common interview questions daily")
	}

	for _, imp := range improvements {
		switch imp {
		case "Provide more detailed responses":
			recs = append(recs, "Work on expanding your answers with more context and examples")
		case "Include specific examples":
			recs = append(recs, "Prepare specific examples from your experience for common questions")
		case "Structure your thoughts better":
			recs = append(recs, "Use frameworks like STAR (Situation, Task, Action, Result) for behavioral questions")
		}
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func dedupe(in []string, max int) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}
