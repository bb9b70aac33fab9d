package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ResultRecord is the Postgres projection of a SessionResult, used for the
// per-user results history listing. The Mongo document stays the system of
// record for an individual session.
type ResultRecord struct {
	SessionID string `gorm:"column:session_id;type:text;primaryKey" json:"session_id"`
	UserID    string `gorm:"column:user_id;type:uuid;index" json:"user_id"`

	OverallScore int            `gorm:"column:overall_score;type:integer" json:"overall_score"`
	Scores       datatypes.JSON `gorm:"column:scores;type:jsonb" json:"scores"`

	Feedback        string         `gorm:"column:feedback;type:text" json:"feedback"`
	Strengths       pq.StringArray `gorm:"column:strengths;type:text[]" json:"strengths"`
	Improvements    pq.StringArray `gorm:"column:improvements;type:text[]" json:"improvements"`
	Recommendations pq.StringArray `gorm:"column:recommendations;type:text[]" json:"recommendations"`

	IsTestInterview bool   `gorm:"column:is_test_interview" json:"is_test_interview"`
	JobTitle        string `gorm:"column:job_title;type:text" json:"job_title,omitempty"`

	CompletedAt           time.Time `gorm:"column:completed_at;type:timestamptz;index" json:"completed_at"`
	ActualDurationSeconds int       `gorm:"column:actual_duration_seconds;type:integer" json:"actual_duration_seconds"`
}

func (ResultRecord) TableName() string { return "interview_result_records" }
