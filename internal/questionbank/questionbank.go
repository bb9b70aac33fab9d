// Package questionbank builds the fixed question sets an interview session
// is created with. Question sets never change after creation.
package questionbank

import (
	"fmt"
	"strings"

	"github.com/hireloop/hireloop/internal/models"
)

const (
	// FreeSessionDuration is the target length of a free practice test.
	FreeSessionDuration = 180
	// JobSessionDuration is the target length of a job-specific session.
	JobSessionDuration = 1200

	jobQuestionCount = 6
)

// GeneralSet returns the three-question set used by free practice sessions.
func GeneralSet() []models.Question {
	qs := []models.Question{
		{
			ID:                      "general_1",
			Text:                    "Tell me about yourself and what interests you most about this type of role.",
			Category:                models.CategoryIntroduction,
			ExpectedDurationSeconds: 60,
		},
		{
			ID:                      "general_2",
			Text:                    "Describe a challenging situation you faced and how you overcame it.",
			Category:                models.CategoryBehavioral,
			ExpectedDurationSeconds: 90,
		},
		{
			ID:                      "general_3",
			Text:                    "What are your career goals and how do you see yourself growing in this position?",
			Category:                models.CategoryGeneral,
			ExpectedDurationSeconds: 60,
		},
	}
	return number(qs)
}

// JobSet builds a job-specific set for the given title and difficulty
// (easy|medium|hard). Harder interviews swap in more technical and
// situational questions.
func JobSet(jobTitle, difficulty string) []models.Question {
	title := strings.TrimSpace(jobTitle)
	if title == "" {
		title = "this role"
	}

	qs := []models.Question{
		{
			Text:                    fmt.Sprintf("Tell me about yourself and why you are interested in the %s position.", title),
			Category:                models.CategoryIntroduction,
			ExpectedDurationSeconds: 90,
		},
		{
			Text:                    fmt.Sprintf("What relevant experience do you bring to a %s role?", title),
			Category:                models.CategoryGeneral,
			ExpectedDurationSeconds: 120,
		},
		{
			Text:                    "Describe a challenging situation you faced at work and how you resolved it.",
			Category:                models.CategoryBehavioral,
			ExpectedDurationSeconds: 120,
		},
	}

	switch strings.ToLower(difficulty) {
	case "hard":
		qs = append(qs,
			models.Question{
				Text:                    fmt.Sprintf("Walk me through the most technically complex problem you have solved that is relevant to %s.", title),
				Category:                models.CategoryTechnical,
				ExpectedDurationSeconds: 180,
			},
			models.Question{
				Text:                    "If you inherited a failing project with a hard deadline, how would you triage and recover it?",
				Category:                models.CategorySituational,
				ExpectedDurationSeconds: 150,
			},
			models.Question{
				Text:                    "Tell me about a time you disagreed with a technical decision. How did you handle it and what was the outcome?",
				Category:                models.CategoryBehavioral,
				ExpectedDurationSeconds: 150,
			},
		)
	case "easy":
		qs = append(qs,
			models.Question{
				Text:                    "What skills would you most like to develop in this position?",
				Category:                models.CategoryGeneral,
				ExpectedDurationSeconds: 90,
			},
			models.Question{
				Text:                    "How do you prioritize your work when you have several tasks due?",
				Category:                models.CategorySituational,
				ExpectedDurationSeconds: 90,
			},
			models.Question{
				Text:                    "What are your career goals for the next few years?",
				Category:                models.CategoryGeneral,
				ExpectedDurationSeconds: 90,
			},
		)
	default: // medium
		qs = append(qs,
			models.Question{
				Text:                    fmt.Sprintf("Explain a concept or tool that is central to %s work as you would to a newcomer.", title),
				Category:                models.CategoryTechnical,
				ExpectedDurationSeconds: 150,
			},
			models.Question{
				Text:                    "How would you handle a situation where a teammate consistently misses their commitments?",
				Category:                models.CategorySituational,
				ExpectedDurationSeconds: 120,
			},
			models.Question{
				Text:                    "What are your career goals and how does this position fit into them?",
				Category:                models.CategoryGeneral,
				ExpectedDurationSeconds: 120,
			},
		)
	}

	if len(qs) > jobQuestionCount {
		qs = qs[:jobQuestionCount]
	}
	for i := range qs {
		qs[i].ID = fmt.Sprintf("job_%d", i+1)
	}
	return number(qs)
}

func number(qs []models.Question) []models.Question {
	for i := range qs {
		qs[i].Ordinal = i + 1
		qs[i].TotalInSession = len(qs)
	}
	return qs
}
