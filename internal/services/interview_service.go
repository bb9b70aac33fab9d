package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/cache"
	"github.com/hireloop/hireloop/internal/engine"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/providers/avatar"
	"github.com/hireloop/hireloop/internal/questionbank"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

const clipCacheTTL = 7 * 24 * time.Hour

// CreateSessionRequest carries the client's choices for a new session.
// JobTitle selects the job-specific question set; otherwise the general
// practice set is used.
type CreateSessionRequest struct {
	Avatar          string `json:"avatar"`
	IsTestInterview bool   `json:"is_test_interview"`

	JobID      string `json:"job_id"`
	JobTitle   string `json:"job_title"`
	Company    string `json:"company"`
	Difficulty string `json:"difficulty"`
}

type InterviewService interface {
	CreateSession(ctx context.Context, userID string, req CreateSessionRequest) (*models.InterviewSession, error)
	Start(ctx context.Context, userID, sessionID string) (*models.InterviewSession, *models.Question, error)
	CurrentQuestion(ctx context.Context, userID, sessionID string) (*models.Question, error)
	SubmitAnswer(ctx context.Context, userID, sessionID, questionID, answerText string, mode models.AnswerMode, durationSeconds int) (*models.ResponseRecord, error)
	NextQuestion(ctx context.Context, userID, sessionID string) (*models.Question, bool, error)
	Skip(ctx context.Context, userID, sessionID string) (*models.Question, bool, error)
	Complete(ctx context.Context, userID, sessionID string) (*models.SessionResult, error)
	Cancel(ctx context.Context, userID, sessionID string) error
	Get(ctx context.Context, userID, sessionID string) (*models.InterviewSession, error)
	ListSessions(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error)
}

type interviewService struct {
	engine  *engine.Engine
	store   mongorepo.InterviewStore
	history pgrepo.ResultRepository
	avatars avatar.Provider
	clips   cache.Cache
	log     *logrus.Logger

	avatarTimeout time.Duration
}

func NewInterviewService(eng *engine.Engine, store mongorepo.InterviewStore, history pgrepo.ResultRepository, avatars avatar.Provider, clips cache.Cache, log *logrus.Logger) InterviewService {
	if log == nil {
		log = logrus.New()
	}
	return &interviewService{
		engine:        eng,
		store:         store,
		history:       history,
		avatars:       avatars,
		clips:         clips,
		log:           log,
		avatarTimeout: 8 * time.Second,
	}
}

func (s *interviewService) CreateSession(ctx context.Context, userID string, req CreateSessionRequest) (*models.InterviewSession, error) {
	opts := engine.CreateOptions{
		AvatarIdentity:  avatar.ValidAvatar(req.Avatar),
		IsTestInterview: req.IsTestInterview,
	}
	if req.JobTitle != "" {
		opts.Questions = questionbank.JobSet(req.JobTitle, req.Difficulty)
		opts.TotalDurationBudget = questionbank.JobSessionDuration
		opts.JobID = req.JobID
		opts.JobTitle = req.JobTitle
		opts.Company = req.Company
		opts.Difficulty = req.Difficulty
	} else {
		opts.Questions = questionbank.GeneralSet()
		opts.TotalDurationBudget = questionbank.FreeSessionDuration
	}

	sess, err := s.engine.Create(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"session_id": sess.SessionID,
		"user_id":    userID,
		"questions":  len(sess.Questions),
		"job_title":  req.JobTitle,
	}).Info("interview session created")
	return sess, nil
}

func (s *interviewService) Start(ctx context.Context, userID, sessionID string) (*models.InterviewSession, *models.Question, error) {
	if _, err := s.authorize(ctx, "InterviewService.Start", userID, sessionID); err != nil {
		return nil, nil, err
	}
	sess, err := s.engine.Start(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	q := sess.CurrentQuestion()
	if q != nil {
		q = s.prepareClip(ctx, sess, q)
	}
	return sess, q, nil
}

func (s *interviewService) CurrentQuestion(ctx context.Context, userID, sessionID string) (*models.Question, error) {
	const op = "InterviewService.CurrentQuestion"

	sess, err := s.authorize(ctx, op, userID, sessionID)
	if err != nil {
		return nil, err
	}
	q := sess.CurrentQuestion()
	if q == nil {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "no question under cursor", nil)
	}
	return s.prepareClip(ctx, sess, q), nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, userID, sessionID, questionID, answerText string, mode models.AnswerMode, durationSeconds int) (*models.ResponseRecord, error) {
	if _, err := s.authorize(ctx, "InterviewService.SubmitAnswer", userID, sessionID); err != nil {
		return nil, err
	}
	return s.engine.RecordAnswer(ctx, sessionID, questionID, answerText, mode, durationSeconds)
}

func (s *interviewService) NextQuestion(ctx context.Context, userID, sessionID string) (*models.Question, bool, error) {
	sess, err := s.authorize(ctx, "InterviewService.NextQuestion", userID, sessionID)
	if err != nil {
		return nil, false, err
	}
	q, more, err := s.engine.Advance(ctx, sessionID)
	if err != nil || q == nil {
		return q, more, err
	}
	return s.prepareClip(ctx, sess, q), more, nil
}

func (s *interviewService) Skip(ctx context.Context, userID, sessionID string) (*models.Question, bool, error) {
	sess, err := s.authorize(ctx, "InterviewService.Skip", userID, sessionID)
	if err != nil {
		return nil, false, err
	}
	q, more, err := s.engine.SkipQuestion(ctx, sessionID)
	if err != nil || q == nil {
		return q, more, err
	}
	return s.prepareClip(ctx, sess, q), more, nil
}

func (s *interviewService) Complete(ctx context.Context, userID, sessionID string) (*models.SessionResult, error) {
	sess, err := s.authorize(ctx, "InterviewService.Complete", userID, sessionID)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Complete(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// relational history is best-effort; the Mongo document is the system of
	// record and the client can retry via the results endpoint
	if s.history != nil {
		if rec, perr := pgrepo.RecordFromResult(res, sess.IsTestInterview, sess.JobTitle); perr != nil {
			s.log.WithError(perr).WithField("session_id", sessionID).Warn("failed to project result history")
		} else if perr := s.history.Save(ctx, rec); perr != nil {
			s.log.WithError(perr).WithField("session_id", sessionID).Warn("failed to write result history")
		}
	}
	return res, nil
}

func (s *interviewService) Cancel(ctx context.Context, userID, sessionID string) error {
	if _, err := s.authorize(ctx, "InterviewService.Cancel", userID, sessionID); err != nil {
		return err
	}
	return s.engine.Cancel(ctx, sessionID)
}

func (s *interviewService) Get(ctx context.Context, userID, sessionID string) (*models.InterviewSession, error) {
	return s.authorize(ctx, "InterviewService.Get", userID, sessionID)
}

func (s *interviewService) ListSessions(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error) {
	const op = "InterviewService.ListSessions"

	out, err := s.store.ListSessionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return out, nil
}

func (s *interviewService) authorize(ctx context.Context, op, userID, sessionID string) (*models.InterviewSession, error) {
	sess, err := s.engine.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID != "" && sess.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "session belongs to another user", nil)
	}
	return sess, nil
}

// prepareClip fills the question's avatar clip URL, consulting the Redis
// cache first and falling back to the provider. A provider failure degrades
// the question to text-only; the interview never blocks on the avatar.
func (s *interviewService) prepareClip(ctx context.Context, sess *models.InterviewSession, q *models.Question) *models.Question {
	if q.AvatarClipURL != "" || s.avatars == nil {
		return q
	}

	key := clipCacheKey(sess.AvatarIdentity, q.Text)
	if s.clips != nil {
		var clip avatar.Clip
		if hit, err := s.clips.GetJSON(ctx, key, &clip); err == nil && hit && clip.VideoURL != "" {
			q.AvatarClipURL = clip.VideoURL
			s.persistClipURL(ctx, sess.SessionID, q)
			return q
		}
	}

	rctx, cancel := context.WithTimeout(ctx, s.avatarTimeout)
	defer cancel()

	clip, err := s.avatars.Render(rctx, q.Text, sess.AvatarIdentity, "neutral", "en")
	if err != nil {
		lvl := s.log.WithError(err).WithFields(logrus.Fields{
			"session_id": sess.SessionID,
			"question":   q.ID,
		})
		if errors.Is(err, avatar.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			lvl.Warn("avatar render unavailable, serving text-only question")
		} else {
			lvl.Error("avatar render failed, serving text-only question")
		}
		return q
	}

	q.AvatarClipURL = clip.VideoURL
	if s.clips != nil {
		if err := s.clips.SetJSON(ctx, key, clip, clipCacheTTL); err != nil {
			s.log.WithError(err).Debug("avatar clip cache write failed")
		}
	}
	s.persistClipURL(ctx, sess.SessionID, q)
	return q
}

func (s *interviewService) persistClipURL(ctx context.Context, sessionID string, q *models.Question) {
	if s.store == nil {
		return
	}
	if err := s.store.SetQuestionClipURL(ctx, sessionID, q.ID, q.AvatarClipURL); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Debug("failed to persist clip url")
	}
}

func clipCacheKey(avatarID, text string) string {
	sum := sha1.Sum([]byte(avatarID + "|" + text))
	return "avatar:clip:" + hex.EncodeToString(sum[:])
}
