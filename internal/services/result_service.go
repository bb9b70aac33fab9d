package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

// ResultService serves the results surface: fetching one session's result,
// recording it into the relational history, and listing a user's history.
type ResultService interface {
	Get(ctx context.Context, userID, sessionID string) (*models.SessionResult, error)
	Record(ctx context.Context, userID, sessionID string) (*models.ResultRecord, error)
	MyResults(ctx context.Context, userID string, limit int) ([]models.ResultRecord, error)
}

type resultService struct {
	store   mongorepo.InterviewStore
	history pgrepo.ResultRepository
	log     *logrus.Logger
}

func NewResultService(store mongorepo.InterviewStore, history pgrepo.ResultRepository, log *logrus.Logger) ResultService {
	if log == nil {
		log = logrus.New()
	}
	return &resultService{store: store, history: history, log: log}
}

func (s *resultService) Get(ctx context.Context, userID, sessionID string) (*models.SessionResult, error) {
	const op = "ResultService.Get"

	res, err := s.store.GetResult(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "result not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get result", err)
	}
	if userID != "" && res.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "result belongs to another user", nil)
	}
	return res, nil
}

// Record projects the stored result for a completed session into the
// Postgres history. Calling it again for the same session is a no-op.
func (s *resultService) Record(ctx context.Context, userID, sessionID string) (*models.ResultRecord, error) {
	const op = "ResultService.Record"

	res, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}

	rec, err := pgrepo.RecordFromResult(res, sess.IsTestInterview, sess.JobTitle)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to project result", err)
	}
	if err := s.history.Save(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save result record", err)
	}
	return rec, nil
}

func (s *resultService) MyResults(ctx context.Context, userID string, limit int) ([]models.ResultRecord, error) {
	const op = "ResultService.MyResults"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.history.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list results", err)
	}
	return out, nil
}
