// Package memory provides an in-memory engine.Store used by tests and by
// local development without a Mongo instance.
package memory

import (
	"context"
	"sync"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
)

type Store struct {
	mu        sync.RWMutex
	sessions  map[string]models.InterviewSession
	responses map[string][]models.ResponseRecord
	results   map[string]models.SessionResult
}

func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]models.InterviewSession),
		responses: make(map[string][]models.ResponseRecord),
		results:   make(map[string]models.SessionResult),
	}
}

func (s *Store) CreateSession(_ context.Context, sess *models.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.SessionID]; ok {
		return utils.E(utils.CodeConflict, "memory.CreateSession", "session already exists", nil)
	}
	s.sessions[sess.SessionID] = cloneSession(sess)
	return nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (*models.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	out := cloneSession(&sess)
	return &out, nil
}

func (s *Store) UpdateSession(_ context.Context, sess *models.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.SessionID]; !ok {
		return utils.ErrNotFound
	}
	s.sessions[sess.SessionID] = cloneSession(sess)
	return nil
}

func (s *Store) AppendResponse(_ context.Context, r *models.ResponseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[r.SessionID] = append(s.responses[r.SessionID], *r)
	return nil
}

func (s *Store) ListResponses(_ context.Context, sessionID string) ([]models.ResponseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ResponseRecord, len(s.responses[sessionID]))
	copy(out, s.responses[sessionID])
	return out, nil
}

func (s *Store) SaveResult(_ context.Context, r *models.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.SessionID] = *r
	return nil
}

func (s *Store) GetResult(_ context.Context, sessionID string) (*models.SessionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	out := r
	return &out, nil
}

func cloneSession(in *models.InterviewSession) models.InterviewSession {
	out := *in
	out.Questions = make([]models.Question, len(in.Questions))
	copy(out.Questions, in.Questions)
	if in.StartTime != nil {
		t := *in.StartTime
		out.StartTime = &t
	}
	if in.EndTime != nil {
		t := *in.EndTime
		out.EndTime = &t
	}
	return out
}
