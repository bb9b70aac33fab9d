package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnswerMode string

const (
	ModeVoice AnswerMode = "voice"
	ModeText  AnswerMode = "text"
)

// ResponseRecord is created at most once per question in the normal flow.
// A session never holds more records than it has questions.
type ResponseRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID string             `bson:"session_id" json:"session_id"`

	QuestionID              string     `bson:"question_id" json:"question_id"`
	QuestionIndex           int        `bson:"question_index" json:"question_index"`
	AnswerText              string     `bson:"answer_text" json:"answer_text"`
	Mode                    AnswerMode `bson:"mode" json:"mode"`
	ResponseDurationSeconds int        `bson:"response_duration_seconds" json:"response_duration_seconds"`
	Skipped                 bool       `bson:"skipped,omitempty" json:"skipped,omitempty"`

	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
}
