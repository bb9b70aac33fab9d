package models

import "time"

// AnswerRecording stores metadata for an uploaded answer audio file. The
// audio itself lives in object storage.
type AnswerRecording struct {
	ID         string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	SessionID  string `gorm:"column:session_id;type:text;index" json:"session_id"`
	QuestionID string `gorm:"column:question_id;type:text" json:"question_id"`

	ObjectPath string `gorm:"column:object_path;type:text" json:"object_path"`
	FileSize   int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType   string `gorm:"column:mime_type;type:text" json:"mime_type"`

	UploadedAt time.Time `gorm:"column:uploaded_at;type:timestamptz" json:"uploaded_at"`
}

func (AnswerRecording) TableName() string { return "answer_recordings" }
