package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/hireloop/hireloop/internal/capture"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
)

// stubInterviewService satisfies the interview surface the websocket handler
// touches: ownership checks and answer submission.
type stubInterviewService struct{}

func (s *stubInterviewService) CreateSession(ctx context.Context, userID string, req services.CreateSessionRequest) (*models.InterviewSession, error) {
	return nil, nil
}

func (s *stubInterviewService) Start(ctx context.Context, userID, sessionID string) (*models.InterviewSession, *models.Question, error) {
	return nil, nil, nil
}

func (s *stubInterviewService) CurrentQuestion(ctx context.Context, userID, sessionID string) (*models.Question, error) {
	return nil, nil
}

func (s *stubInterviewService) SubmitAnswer(ctx context.Context, userID, sessionID, questionID, answerText string, mode models.AnswerMode, durationSeconds int) (*models.ResponseRecord, error) {
	return &models.ResponseRecord{SessionID: sessionID, QuestionID: questionID, AnswerText: answerText}, nil
}

func (s *stubInterviewService) NextQuestion(ctx context.Context, userID, sessionID string) (*models.Question, bool, error) {
	return nil, false, nil
}

func (s *stubInterviewService) Skip(ctx context.Context, userID, sessionID string) (*models.Question, bool, error) {
	return nil, false, nil
}

func (s *stubInterviewService) Complete(ctx context.Context, userID, sessionID string) (*models.SessionResult, error) {
	return nil, nil
}

func (s *stubInterviewService) Cancel(ctx context.Context, userID, sessionID string) error {
	return nil
}

func (s *stubInterviewService) Get(ctx context.Context, userID, sessionID string) (*models.InterviewSession, error) {
	return &models.InterviewSession{SessionID: sessionID, UserID: userID, Status: models.StatusInProgress}, nil
}

func (s *stubInterviewService) ListSessions(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error) {
	return nil, nil
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestDisconnectReleasesCapture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	captures := capture.NewManager(nil)
	h := NewWSHandler(&stubInterviewService{}, captures, rdb, nil)

	r := gin.New()
	r.GET("/ws/interview/:session_id", func(c *gin.Context) {
		c.Set("user_id", "u1")
		h.InterviewWS(c)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/interview/s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	if err := conn.WriteJSON(map[string]string{"type": "start_answer", "question_id": "q1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		_, ok := captures.Get("s1")
		return ok
	}, "capture never started")

	// dropping the socket must release the capture even though no pubsub
	// traffic arrives for the session
	conn.Close()
	waitFor(t, 2*time.Second, func() bool {
		_, ok := captures.Get("s1")
		return !ok
	}, "capture still registered after disconnect")
}
