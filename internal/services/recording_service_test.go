package services

import (
	"context"
	"io"
	"testing"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/repositories/memory"
	"github.com/hireloop/hireloop/internal/utils"
)

type fakeRecRepo struct {
	recs []models.AnswerRecording
}

func (f *fakeRecRepo) Create(ctx context.Context, rec *models.AnswerRecording) error {
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeRecRepo) ListBySession(ctx context.Context, sessionID string) ([]models.AnswerRecording, error) {
	var out []models.AnswerRecording
	for _, r := range f.recs {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeUploader struct {
	uploads int
}

func (f *fakeUploader) Upload(ctx context.Context, objectPath, mimeType string, r io.Reader) (string, error) {
	f.uploads++
	return "https://storage.example.com/" + objectPath, nil
}

func (f *fakeUploader) Close() error { return nil }

func newRecordingService(t *testing.T) (RecordingService, *fakeRecRepo, *fakeUploader) {
	t.Helper()
	sessions := memory.NewStore()
	if err := sessions.CreateSession(context.Background(), &models.InterviewSession{
		SessionID: "s1",
		UserID:    "u1",
		Status:    models.StatusInProgress,
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	repo := &fakeRecRepo{}
	up := &fakeUploader{}
	return NewRecordingService(repo, sessions, up, nil), repo, up
}

func TestUploadRecording(t *testing.T) {
	ctx := context.Background()
	svc, repo, up := newRecordingService(t)

	rec, err := svc.Upload(ctx, "u1", "s1", "q1", []byte("webm bytes"), "")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if rec.MimeType != "audio/webm" {
		t.Fatalf("mime = %q, want default audio/webm", rec.MimeType)
	}
	if up.uploads != 1 || len(repo.recs) != 1 {
		t.Fatalf("uploads = %d, records = %d", up.uploads, len(repo.recs))
	}
}

func TestUploadRejectsForeignSession(t *testing.T) {
	ctx := context.Background()
	svc, _, up := newRecordingService(t)

	if _, err := svc.Upload(ctx, "intruder", "s1", "q1", []byte("x"), ""); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
	if up.uploads != 0 {
		t.Fatalf("uploads = %d, want 0", up.uploads)
	}
}

func TestUploadUnknownSession(t *testing.T) {
	svc, _, _ := newRecordingService(t)

	if _, err := svc.Upload(context.Background(), "u1", "missing", "q1", []byte("x"), ""); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestListBySessionRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newRecordingService(t)

	if _, err := svc.Upload(ctx, "u1", "s1", "q1", []byte("x"), ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if _, err := svc.ListBySession(ctx, "intruder", "s1"); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}

	out, err := svc.ListBySession(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("recordings = %d, want 1", len(out))
	}
}
