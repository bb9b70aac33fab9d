package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	sess := &models.InterviewSession{
		SessionID: "s1",
		UserID:    "u1",
		Status:    models.StatusReady,
		Questions: []models.Question{{ID: "q1", Text: "hello"}},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.CreateSession(ctx, sess); !utils.IsCode(err, utils.CodeConflict) {
		t.Fatalf("duplicate CreateSession: err = %v, want CONFLICT", err)
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	// stored state must be isolated from the caller's copy
	got.Status = models.StatusCancelled
	got.Questions[0].Text = "mutated"

	again, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if again.Status != models.StatusReady || again.Questions[0].Text != "hello" {
		t.Fatalf("store state leaked: %+v", again)
	}

	sess.Status = models.StatusInProgress
	if err := s.UpdateSession(ctx, sess); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	updated, _ := s.GetSession(ctx, "s1")
	if updated.Status != models.StatusInProgress {
		t.Fatalf("status = %s", updated.Status)
	}

	if _, err := s.GetSession(ctx, "nope"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("missing session: err = %v, want ErrNotFound", err)
	}
	if err := s.UpdateSession(ctx, &models.InterviewSession{SessionID: "nope"}); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("update missing session: err = %v, want ErrNotFound", err)
	}
}

func TestResponsesAndResults(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for i, q := range []string{"q1", "q2"} {
		err := s.AppendResponse(ctx, &models.ResponseRecord{
			SessionID:  "s1",
			QuestionID: q,
			QuestionIndex: i,
		})
		if err != nil {
			t.Fatalf("AppendResponse: %v", err)
		}
	}

	rs, err := s.ListResponses(ctx, "s1")
	if err != nil {
		t.Fatalf("ListResponses: %v", err)
	}
	if len(rs) != 2 || rs[0].QuestionID != "q1" || rs[1].QuestionID != "q2" {
		t.Fatalf("responses = %+v", rs)
	}

	if _, err := s.GetResult(ctx, "s1"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("missing result: err = %v, want ErrNotFound", err)
	}
	if err := s.SaveResult(ctx, &models.SessionResult{SessionID: "s1", OverallScore: 77}); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	res, err := s.GetResult(ctx, "s1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if res.OverallScore != 77 {
		t.Fatalf("score = %d", res.OverallScore)
	}
}
