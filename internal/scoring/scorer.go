package scoring

import "strings"

// Evaluation is the outcome of scoring one answer.
type Evaluation struct {
	Score        int      `json:"score"` // 0-100
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// Score rates one answer against its question. It is a pure function of its
// inputs so results are reproducible; any desired variability must be
// injected by the caller.
//
// The heuristic rewards answers of 30-100 words, concrete examples
// ("for example"/"for instance"), structural markers, lexical overlap with
// the question, and a 20-90s speaking duration.
func Score(questionText, answerText string, durationSeconds int) Evaluation {
	lower := strings.ToLower(answerText)
	wordCount := len(strings.Fields(answerText))
	hasExamples := strings.Contains(lower, "for example") || strings.Contains(lower, "for instance")
	hasStructure := strings.Contains(lower, "first") || strings.Contains(lower, "second") || strings.Contains(lower, "finally")
	isRelevant := relevant(questionText, answerText)

	score := 60

	// Length banding
	switch {
	case wordCount >= 30 && wordCount <= 100:
		score += 15
	case wordCount >= 20 && wordCount <= 150:
		score += 10
	case wordCount < 10:
		score -= 20
	}

	// Content quality
	if hasExamples {
		score += 10
	}
	if hasStructure {
		score += 8
	}
	if isRelevant {
		score += 12
	}

	// Duration banding
	switch {
	case durationSeconds >= 20 && durationSeconds <= 90:
		score += 5
	case durationSeconds < 10:
		score -= 10
	}

	score = clamp(score)

	var feedback string
	var strengths, improvements []string

	switch {
	case score >= 85:
		feedback = "Excellent response! You demonstrated strong communication skills and provided relevant, well-structured answers."
		strengths = append(strengths, "Clear communication", "Good structure and organization", "Relevant examples")
	case score >= 70:
		feedback = "Good response with solid communication skills. You addressed the question well with room for minor improvements."
		strengths = append(strengths, "Clear communication", "Relevant content")
		if hasExamples {
			strengths = append(strengths, "Good use of examples")
		}
	case score >= 55:
		feedback = "Adequate response that addresses the question. Consider providing more specific examples and structuring your thoughts better."
		strengths = append(strengths, "Basic communication skills")
		if isRelevant {
			strengths = append(strengths, "Relevant to the question")
		}
	default:
		feedback = "Your response needs improvement. Focus on providing more detailed answers with specific examples and better structure."
	}

	if wordCount < 20 {
		improvements = append(improvements, "Provide more detailed responses")
	}
	if !hasExamples {
		improvements = append(improvements, "Include specific examples")
	}
	if !hasStructure {
		improvements = append(improvements, "Structure your thoughts better")
	}
	if !isRelevant {
		improvements = append(improvements, "Stay more focused on the question")
	}
	if durationSeconds < 15 {
		improvements = append(improvements, "Take more time to think before responding")
	}

	return Evaluation{
		Score:        score,
		Feedback:     feedback,
		Strengths:    strengths,
		Improvements: improvements,
	}
}

// relevant approximates topical relevance through keyword overlap between
// question and answer.
func relevant(question, answer string) bool {
	qWords := significantWords(question)
	aWords := significantWords(answer)

	overlap := 0
	for w := range qWords {
		if _, ok := aWords[w]; ok {
			overlap++
		}
	}

	need := 2
	if n := len(qWords) * 3 / 10; n < need {
		need = n
	}
	if need < 1 {
		need = 1
	}
	return overlap >= need
}

func significantWords(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) > 3 {
			out[w] = struct{}{}
		}
	}
	return out
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
