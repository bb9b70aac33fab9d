package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	StatusReady      SessionStatus = "ready"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusCancelled  SessionStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type QuestionCategory string

const (
	CategoryGeneral      QuestionCategory = "general"
	CategoryBehavioral   QuestionCategory = "behavioral"
	CategoryTechnical    QuestionCategory = "technical"
	CategorySituational  QuestionCategory = "situational"
	CategoryIntroduction QuestionCategory = "introduction"
)

// Question is fixed at session creation. AvatarClipURL is filled lazily the
// first time the question is served and cached so repeated playback does not
// hit the avatar provider again.
type Question struct {
	ID                      string           `bson:"id" json:"id"`
	Text                    string           `bson:"text" json:"text"`
	Category                QuestionCategory `bson:"category" json:"category"`
	ExpectedDurationSeconds int              `bson:"expected_duration_seconds" json:"expected_duration_seconds"`
	Ordinal                 int              `bson:"ordinal" json:"ordinal"` // 1-based
	TotalInSession          int              `bson:"total_in_session" json:"total_in_session"`

	AvatarClipURL string `bson:"avatar_clip_url,omitempty" json:"avatar_clip_url,omitempty"`
}

type InterviewSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4
	UserID    string             `bson:"user_id" json:"user_id"`

	Questions            []Question    `bson:"questions" json:"questions"`
	CurrentQuestionIndex int           `bson:"current_question_index" json:"current_question_index"`
	Status               SessionStatus `bson:"status" json:"status"`

	StartTime *time.Time `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime   *time.Time `bson:"end_time,omitempty" json:"end_time,omitempty"`

	TotalDurationBudget int    `bson:"total_duration_budget" json:"total_duration_budget"` // seconds
	AvatarIdentity      string `bson:"avatar_identity" json:"avatar_identity"`
	IsTestInterview     bool   `bson:"is_test_interview" json:"is_test_interview"`

	// Job-specific sessions only.
	JobID      string `bson:"job_id,omitempty" json:"job_id,omitempty"`
	JobTitle   string `bson:"job_title,omitempty" json:"job_title,omitempty"`
	Company    string `bson:"company,omitempty" json:"company,omitempty"`
	Difficulty string `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // easy|medium|hard

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CurrentQuestion returns the question under the cursor, or nil when the
// cursor has moved past the last question.
func (s *InterviewSession) CurrentQuestion() *Question {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentQuestionIndex]
}

func (s *InterviewSession) QuestionByID(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}
