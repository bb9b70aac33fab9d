package engine

import (
	"context"

	"github.com/hireloop/hireloop/internal/models"
)

// Store is the durable mirror of engine state. The engine is the only writer
// while a session is active; implementations only need last-writer-wins
// semantics per session id.
//
// Lookups return utils.ErrNotFound (possibly wrapped) for unknown ids.
type Store interface {
	CreateSession(ctx context.Context, s *models.InterviewSession) error
	GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	UpdateSession(ctx context.Context, s *models.InterviewSession) error

	AppendResponse(ctx context.Context, r *models.ResponseRecord) error
	ListResponses(ctx context.Context, sessionID string) ([]models.ResponseRecord, error)

	SaveResult(ctx context.Context, r *models.SessionResult) error
	GetResult(ctx context.Context, sessionID string) (*models.SessionResult, error)
}
