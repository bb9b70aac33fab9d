package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryScores breaks the overall score down into fixed presentation
// categories. Values are 0-100.
type CategoryScores struct {
	Communication   int `bson:"communication" json:"communication"`
	Confidence      int `bson:"confidence" json:"confidence"`
	Technical       int `bson:"technical" json:"technical"`
	Clarity         int `bson:"clarity" json:"clarity"`
	Professionalism int `bson:"professionalism" json:"professionalism"`
}

// SessionResult is produced exactly once, when a session completes, and is
// immutable afterwards.
type SessionResult struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID string             `bson:"session_id" json:"session_id"`
	UserID    string             `bson:"user_id" json:"user_id"`

	OverallScore   int            `bson:"overall_score" json:"overall_score"`
	CategoryScores CategoryScores `bson:"category_scores" json:"category_scores"`

	Feedback        string   `bson:"feedback" json:"feedback"`
	Strengths       []string `bson:"strengths" json:"strengths"`
	Improvements    []string `bson:"improvements" json:"improvements"`
	Recommendations []string `bson:"recommendations" json:"recommendations"`

	CompletedAt           time.Time `bson:"completed_at" json:"completed_at"`
	ActualDurationSeconds int       `bson:"actual_duration_seconds" json:"actual_duration_seconds"`
}
