// Package engine implements the interview turn-taking state machine:
// ready -> in_progress -> completed, with cancelled reachable from either
// non-terminal state. All operations are keyed by session id; there is no
// ambient "active session".
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/scoring"
	"github.com/hireloop/hireloop/internal/utils"
)

type Engine struct {
	store Store
	now   func() time.Time
	log   *logrus.Logger

	// per-session serialization: guards read-modify-write cycles against
	// double-submits from a racing client
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type Config struct {
	Store  Store
	Clock  func() time.Time // defaults to time.Now
	Logger *logrus.Logger
}

func New(cfg Config) *Engine {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.New()
	}
	return &Engine{
		store: cfg.Store,
		now:   now,
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

// CreateOptions fixes everything about a session that never changes after
// creation.
type CreateOptions struct {
	Questions           []models.Question
	TotalDurationBudget int
	AvatarIdentity      string
	IsTestInterview     bool

	JobID      string
	JobTitle   string
	Company    string
	Difficulty string
}

func (e *Engine) Create(ctx context.Context, userID string, opts CreateOptions) (*models.InterviewSession, error) {
	const op = "InterviewEngine.Create"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	s := &models.InterviewSession{
		SessionID:            uuid.NewString(),
		UserID:               userID,
		Questions:            opts.Questions,
		CurrentQuestionIndex: 0,
		Status:               models.StatusReady,
		TotalDurationBudget:  opts.TotalDurationBudget,
		AvatarIdentity:       opts.AvatarIdentity,
		IsTestInterview:      opts.IsTestInterview,
		JobID:                opts.JobID,
		JobTitle:             opts.JobTitle,
		Company:              opts.Company,
		Difficulty:           opts.Difficulty,
		CreatedAt:            e.now().UTC(),
	}

	if err := e.store.CreateSession(ctx, s); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	return s, nil
}

// Start moves a session from ready to in_progress and stamps the start time.
// Starting an already-running session refreshes nothing and is harmless;
// starting a terminal session fails.
func (e *Engine) Start(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	const op = "InterviewEngine.Start"

	unlock := e.lock(sessionID)
	defer unlock()

	s, err := e.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	switch s.Status {
	case models.StatusReady:
		now := e.now().UTC()
		s.Status = models.StatusInProgress
		s.StartTime = &now
		if err := e.store.UpdateSession(ctx, s); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to update session", err)
		}
	case models.StatusInProgress:
		// already running; resumable
	default:
		return nil, utils.E(utils.CodeFailedPrecondition, op, "cannot start a "+string(s.Status)+" session", nil)
	}
	return s, nil
}

// RecordAnswer appends the answer for the question currently under the
// cursor. It does not advance the cursor. Answers for any other question are
// rejected so a stale submit after a fast double-advance cannot corrupt
// state.
func (e *Engine) RecordAnswer(ctx context.Context, sessionID, questionID, answerText string, mode models.AnswerMode, durationSeconds int) (*models.ResponseRecord, error) {
	const op = "InterviewEngine.RecordAnswer"

	if answerText == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "answer text is required", nil)
	}
	if mode != models.ModeVoice && mode != models.ModeText {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mode must be voice or text", nil)
	}

	unlock := e.lock(sessionID)
	defer unlock()

	s, err := e.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != models.StatusInProgress {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session is not in progress", nil)
	}

	current := s.CurrentQuestion()
	if current == nil {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "no question under cursor", nil)
	}
	if current.ID != questionID {
		if s.QuestionByID(questionID) == nil {
			return nil, utils.E(utils.CodeNotFound, op, "unknown question id", nil)
		}
		return nil, utils.E(utils.CodeFailedPrecondition, op, "question is not the current question", nil)
	}

	existing, err := e.responseFor(ctx, sessionID, questionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list responses", err)
	}
	if existing != nil {
		return nil, utils.E(utils.CodeConflict, op, "question already answered", nil)
	}

	r := &models.ResponseRecord{
		SessionID:               sessionID,
		QuestionID:              questionID,
		QuestionIndex:           s.CurrentQuestionIndex,
		AnswerText:              answerText,
		Mode:                    mode,
		ResponseDurationSeconds: durationSeconds,
		SubmittedAt:             e.now().UTC(),
	}
	if err := e.store.AppendResponse(ctx, r); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to append response", err)
	}
	return r, nil
}

// Advance moves the cursor to the next question. It requires that the
// current question has been answered or explicitly skipped. When no
// questions remain it returns (nil, false, nil) and the caller is expected
// to invoke Complete.
func (e *Engine) Advance(ctx context.Context, sessionID string) (*models.Question, bool, error) {
	const op = "InterviewEngine.Advance"

	unlock := e.lock(sessionID)
	defer unlock()

	return e.advanceLocked(ctx, op, sessionID)
}

// SkipQuestion records an explicit skip for the current question and
// advances. Skipped questions are excluded from scoring.
func (e *Engine) SkipQuestion(ctx context.Context, sessionID string) (*models.Question, bool, error) {
	const op = "InterviewEngine.SkipQuestion"

	unlock := e.lock(sessionID)
	defer unlock()

	s, err := e.load(ctx, op, sessionID)
	if err != nil {
		return nil, false, err
	}
	if s.Status != models.StatusInProgress {
		return nil, false, utils.E(utils.CodeFailedPrecondition, op, "session is not in progress", nil)
	}
	current := s.CurrentQuestion()
	if current == nil {
		return nil, false, utils.E(utils.CodeFailedPrecondition, op, "no question under cursor", nil)
	}

	existing, err := e.responseFor(ctx, sessionID, current.ID)
	if err != nil {
		return nil, false, utils.E(utils.CodeInternal, op, "failed to list responses", err)
	}
	if existing == nil {
		r := &models.ResponseRecord{
			SessionID:     sessionID,
			QuestionID:    current.ID,
			QuestionIndex: s.CurrentQuestionIndex,
			Mode:          models.ModeText,
			Skipped:       true,
			SubmittedAt:   e.now().UTC(),
		}
		if err := e.store.AppendResponse(ctx, r); err != nil {
			return nil, false, utils.E(utils.CodeInternal, op, "failed to append skip record", err)
		}
	}

	return e.advanceLocked(ctx, op, sessionID)
}

func (e *Engine) advanceLocked(ctx context.Context, op, sessionID string) (*models.Question, bool, error) {
	s, err := e.load(ctx, op, sessionID)
	if err != nil {
		return nil, false, err
	}
	if s.Status != models.StatusInProgress {
		return nil, false, utils.E(utils.CodeFailedPrecondition, op, "session is not in progress", nil)
	}

	current := s.CurrentQuestion()
	if current == nil {
		return nil, false, nil
	}

	answered, err := e.responseFor(ctx, sessionID, current.ID)
	if err != nil {
		return nil, false, utils.E(utils.CodeInternal, op, "failed to list responses", err)
	}
	if answered == nil {
		return nil, false, utils.E(utils.CodeFailedPrecondition, op, "answer the current question before continuing", nil)
	}

	if s.CurrentQuestionIndex+1 >= len(s.Questions) {
		return nil, false, nil // no more questions
	}

	s.CurrentQuestionIndex++
	if err := e.store.UpdateSession(ctx, s); err != nil {
		s.CurrentQuestionIndex--
		return nil, false, utils.E(utils.CodeInternal, op, "failed to update session", err)
	}
	return s.CurrentQuestion(), true, nil
}

// Complete finishes the session, scores every non-skipped answer, and stores
// the aggregated result. Completing an already-completed session returns the
// stored result without recomputation.
func (e *Engine) Complete(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	const op = "InterviewEngine.Complete"

	unlock := e.lock(sessionID)
	defer unlock()

	s, err := e.load(ctx, op, sessionID)
	if err != nil {
		return nil, err
	}

	if s.Status == models.StatusCompleted {
		res, err := e.store.GetResult(ctx, sessionID)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "completed session has no stored result", err)
		}
		e.forget(sessionID)
		return res, nil
	}
	if s.Status != models.StatusInProgress {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "cannot complete a "+string(s.Status)+" session", nil)
	}

	now := e.now().UTC()
	actual := 0
	if s.StartTime != nil {
		actual = int(now.Sub(*s.StartTime).Seconds())
		if actual < 0 {
			actual = 0
		}
	}

	responses, err := e.store.ListResponses(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list responses", err)
	}

	evals := make([]scoring.Evaluation, 0, len(responses))
	for _, r := range responses {
		if r.Skipped {
			continue
		}
		q := s.QuestionByID(r.QuestionID)
		if q == nil {
			continue
		}
		evals = append(evals, scoring.Score(q.Text, r.AnswerText, r.ResponseDurationSeconds))
	}

	result := scoring.Aggregate(sessionID, s.UserID, evals, now, actual)
	if err := e.store.SaveResult(ctx, &result); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save result", err)
	}

	s.Status = models.StatusCompleted
	s.EndTime = &now
	if err := e.store.UpdateSession(ctx, s); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update session", err)
	}

	e.log.WithFields(logrus.Fields{
		"session_id":    sessionID,
		"overall_score": result.OverallScore,
		"answers":       len(evals),
	}).Info("interview completed")

	e.forget(sessionID)
	return &result, nil
}

// Cancel terminates the session without producing a result. Cancelling an
// already-cancelled session is a no-op.
func (e *Engine) Cancel(ctx context.Context, sessionID string) error {
	const op = "InterviewEngine.Cancel"

	unlock := e.lock(sessionID)
	defer unlock()

	s, err := e.load(ctx, op, sessionID)
	if err != nil {
		return err
	}

	switch s.Status {
	case models.StatusCancelled:
		e.forget(sessionID)
		return nil
	case models.StatusCompleted:
		return utils.E(utils.CodeFailedPrecondition, op, "cannot cancel a completed session", nil)
	}

	now := e.now().UTC()
	s.Status = models.StatusCancelled
	s.EndTime = &now
	if err := e.store.UpdateSession(ctx, s); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update session", err)
	}
	e.forget(sessionID)
	return nil
}

// Get returns the session as stored.
func (e *Engine) Get(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	const op = "InterviewEngine.Get"
	return e.load(ctx, op, sessionID)
}

// Responses returns all response records for a session in submission order.
func (e *Engine) Responses(ctx context.Context, sessionID string) ([]models.ResponseRecord, error) {
	const op = "InterviewEngine.Responses"
	out, err := e.store.ListResponses(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list responses", err)
	}
	return out, nil
}

// Result returns the stored result for a completed session.
func (e *Engine) Result(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	const op = "InterviewEngine.Result"

	res, err := e.store.GetResult(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "result not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get result", err)
	}
	return res, nil
}

func (e *Engine) load(ctx context.Context, op, sessionID string) (*models.InterviewSession, error) {
	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	s, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex > len(s.Questions) {
		return nil, utils.E(utils.CodeInternal, op, "stored session violates cursor invariant", nil)
	}
	return s, nil
}

func (e *Engine) responseFor(ctx context.Context, sessionID, questionID string) (*models.ResponseRecord, error) {
	responses, err := e.store.ListResponses(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range responses {
		if responses[i].QuestionID == questionID {
			return &responses[i], nil
		}
	}
	return nil, nil
}

func (e *Engine) lock(sessionID string) func() {
	e.mu.Lock()
	l, ok := e.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[sessionID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// forget drops the session's lock entry once the session is terminal, so the
// map does not grow for the lifetime of the process. Terminal sessions are
// read-only, so a racing caller that re-creates the entry is harmless.
func (e *Engine) forget(sessionID string) {
	e.mu.Lock()
	delete(e.locks, sessionID)
	e.mu.Unlock()
}
