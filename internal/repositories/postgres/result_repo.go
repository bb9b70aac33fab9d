// Package postgres holds the relational projections kept alongside the
// Mongo interview state: results history, recording metadata, and profiles.
package postgres

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hireloop/hireloop/internal/models"
)

type ResultRepository interface {
	Save(ctx context.Context, rec *models.ResultRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.ResultRecord, error)
}

type resultRepo struct {
	db *gorm.DB
}

func NewResultRepo(db *gorm.DB) ResultRepository {
	return &resultRepo{db: db}
}

func (r *resultRepo) Save(ctx context.Context, rec *models.ResultRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true, // results are immutable once written
		}).
		Create(rec).Error
}

func (r *resultRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.ResultRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []models.ResultRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RecordFromResult projects a SessionResult into its relational form.
func RecordFromResult(res *models.SessionResult, isTest bool, jobTitle string) (*models.ResultRecord, error) {
	scores, err := json.Marshal(res.CategoryScores)
	if err != nil {
		return nil, err
	}
	return &models.ResultRecord{
		SessionID:             res.SessionID,
		UserID:                res.UserID,
		OverallScore:          res.OverallScore,
		Scores:                scores,
		Feedback:              res.Feedback,
		Strengths:             res.Strengths,
		Improvements:          res.Improvements,
		Recommendations:       res.Recommendations,
		IsTestInterview:       isTest,
		JobTitle:              jobTitle,
		CompletedAt:           res.CompletedAt,
		ActualDurationSeconds: res.ActualDurationSeconds,
	}, nil
}
