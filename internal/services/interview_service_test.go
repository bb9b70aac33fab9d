package services

import (
	"context"
	"testing"

	"github.com/hireloop/hireloop/internal/engine"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/providers/avatar"
	"github.com/hireloop/hireloop/internal/repositories/memory"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/utils"
)

// fakeStore adds the list/clip operations the service needs on top of the
// in-memory engine store.
type fakeStore struct {
	*memory.Store
}

func (f *fakeStore) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error) {
	return nil, nil
}

func (f *fakeStore) ListResultsByUser(ctx context.Context, userID string, limit int) ([]models.SessionResult, error) {
	return nil, nil
}

func (f *fakeStore) SetQuestionClipURL(ctx context.Context, sessionID, questionID, clipURL string) error {
	s, err := f.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if q := s.QuestionByID(questionID); q != nil {
		q.AvatarClipURL = clipURL
	}
	return f.UpdateSession(ctx, s)
}

type fakeAvatar struct {
	clip *avatar.Clip
	err  error
	hits int
}

func (f *fakeAvatar) Render(ctx context.Context, text, avatarID, emotion, language string) (*avatar.Clip, error) {
	f.hits++
	if f.err != nil {
		return nil, f.err
	}
	return f.clip, nil
}

func (f *fakeAvatar) Close() error { return nil }

type fakeHistory struct {
	saved []*models.ResultRecord
}

func (f *fakeHistory) Save(ctx context.Context, rec *models.ResultRecord) error {
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeHistory) ListByUser(ctx context.Context, userID string, limit int) ([]models.ResultRecord, error) {
	return nil, nil
}

func newService(av *fakeAvatar, hist *fakeHistory) (InterviewService, *fakeStore) {
	store := &fakeStore{Store: memory.NewStore()}
	eng := engine.New(engine.Config{Store: store})

	var history pgrepo.ResultRepository
	if hist != nil {
		history = hist
	}
	return NewInterviewService(eng, store, history, av, nil, nil), store
}

func TestStartServesAvatarClip(t *testing.T) {
	ctx := context.Background()
	av := &fakeAvatar{clip: &avatar.Clip{VideoURL: "https://cdn.example.com/q1.mp4"}}
	svc, store := newService(av, nil)

	sess, err := svc.CreateSession(ctx, "u1", CreateSessionRequest{Avatar: "japanese_woman"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.AvatarIdentity != "japanese_woman" {
		t.Fatalf("avatar = %q", sess.AvatarIdentity)
	}

	_, q, err := svc.Start(ctx, "u1", sess.SessionID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if q.AvatarClipURL != "https://cdn.example.com/q1.mp4" {
		t.Fatalf("clip url = %q", q.AvatarClipURL)
	}

	// clip is persisted on the session, so replay skips the provider
	if _, err := svc.CurrentQuestion(ctx, "u1", sess.SessionID); err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if av.hits != 1 {
		t.Fatalf("provider hits = %d, want 1", av.hits)
	}
	got, _ := store.GetSession(ctx, sess.SessionID)
	if got.Questions[0].AvatarClipURL == "" {
		t.Fatal("clip url not persisted")
	}
}

func TestAvatarFailureDegradesToText(t *testing.T) {
	ctx := context.Background()
	av := &fakeAvatar{err: avatar.ErrUnavailable}
	svc, _ := newService(av, nil)

	sess, err := svc.CreateSession(ctx, "u1", CreateSessionRequest{})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	_, q, err := svc.Start(ctx, "u1", sess.SessionID)
	if err != nil {
		t.Fatalf("Start must not fail on avatar errors: %v", err)
	}
	if q == nil || q.Text == "" {
		t.Fatal("question missing")
	}
	if q.AvatarClipURL != "" {
		t.Fatalf("clip url = %q, want empty", q.AvatarClipURL)
	}
}

func TestCompleteWritesHistory(t *testing.T) {
	ctx := context.Background()
	hist := &fakeHistory{}
	svc, _ := newService(&fakeAvatar{err: avatar.ErrUnavailable}, hist)

	sess, _ := svc.CreateSession(ctx, "u1", CreateSessionRequest{})
	if _, _, err := svc.Start(ctx, "u1", sess.SessionID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	q := sess.Questions[0]
	answer := "First, I led a migration project. For example, we moved our billing service " +
		"to a new platform without downtime. Finally, the experience taught me a lot about planning."
	if _, err := svc.SubmitAnswer(ctx, "u1", sess.SessionID, q.ID, answer, models.ModeText, 40); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	res, err := svc.Complete(ctx, "u1", sess.SessionID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(hist.saved) != 1 {
		t.Fatalf("history writes = %d, want 1", len(hist.saved))
	}
	if hist.saved[0].SessionID != sess.SessionID || hist.saved[0].OverallScore != res.OverallScore {
		t.Fatalf("history record = %+v", hist.saved[0])
	}
}

func TestOwnershipEnforced(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(&fakeAvatar{err: avatar.ErrUnavailable}, nil)

	sess, _ := svc.CreateSession(ctx, "u1", CreateSessionRequest{})
	if _, _, err := svc.Start(ctx, "intruder", sess.SessionID); !utils.IsCode(err, utils.CodeForbidden) {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
}
