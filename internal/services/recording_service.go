package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/engine"
	"github.com/hireloop/hireloop/internal/models"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/storage"
	"github.com/hireloop/hireloop/internal/utils"
)

const maxRecordingBytes = 25 << 20

type RecordingService interface {
	Upload(ctx context.Context, userID, sessionID, questionID string, data []byte, mimeType string) (*models.AnswerRecording, error)
	ListBySession(ctx context.Context, userID, sessionID string) ([]models.AnswerRecording, error)
}

type recordingService struct {
	recordings pgrepo.RecordingRepository
	sessions   engine.Store
	uploader   storage.Uploader
	log        *logrus.Logger
}

func NewRecordingService(recordings pgrepo.RecordingRepository, sessions engine.Store, uploader storage.Uploader, log *logrus.Logger) RecordingService {
	if log == nil {
		log = logrus.New()
	}
	return &recordingService{recordings: recordings, sessions: sessions, uploader: uploader, log: log}
}

func (s *recordingService) Upload(ctx context.Context, userID, sessionID, questionID string, data []byte, mimeType string) (*models.AnswerRecording, error) {
	const op = "RecordingService.Upload"

	if userID == "" || sessionID == "" || questionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id, session_id, and question_id are required", nil)
	}
	if err := s.authorize(ctx, op, userID, sessionID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "empty recording", nil)
	}
	if len(data) > maxRecordingBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, "recording too large", nil)
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "recording storage is not configured", nil)
	}

	objectPath := fmt.Sprintf("answers/%s/%s", sessionID, questionID)
	url, err := s.uploader.Upload(ctx, objectPath, mimeType, bytes.NewReader(data))
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to upload recording", err)
	}

	rec := &models.AnswerRecording{
		ID:         uuid.NewString(),
		UserID:     userID,
		SessionID:  sessionID,
		QuestionID: questionID,
		ObjectPath: url,
		FileSize:   len(data),
		MimeType:   mimeType,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.recordings.Create(ctx, rec); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save recording metadata", err)
	}
	return rec, nil
}

func (s *recordingService) ListBySession(ctx context.Context, userID, sessionID string) ([]models.AnswerRecording, error) {
	const op = "RecordingService.ListBySession"

	if err := s.authorize(ctx, op, userID, sessionID); err != nil {
		return nil, err
	}
	out, err := s.recordings.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list recordings", err)
	}
	return out, nil
}

func (s *recordingService) authorize(ctx context.Context, op, userID, sessionID string) error {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	if sess.UserID != userID {
		return utils.E(utils.CodeForbidden, op, "session belongs to another user", nil)
	}
	return nil
}
