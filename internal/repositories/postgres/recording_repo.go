package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/hireloop/hireloop/internal/models"
)

type RecordingRepository interface {
	Create(ctx context.Context, rec *models.AnswerRecording) error
	ListBySession(ctx context.Context, sessionID string) ([]models.AnswerRecording, error)
}

type recordingRepo struct {
	db *gorm.DB
}

func NewRecordingRepo(db *gorm.DB) RecordingRepository {
	return &recordingRepo{db: db}
}

func (r *recordingRepo) Create(ctx context.Context, rec *models.AnswerRecording) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recordingRepo) ListBySession(ctx context.Context, sessionID string) ([]models.AnswerRecording, error) {
	var out []models.AnswerRecording
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("uploaded_at ASC").
		Find(&out).Error
	return out, err
}
