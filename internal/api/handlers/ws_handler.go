package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/capture"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
	"github.com/hireloop/hireloop/internal/workers"
)

// WSHandler drives the live answer feed: the client streams audio chunks,
// volume samples, and (for client-side recognition) transcript fragments;
// the server streams back worker transcripts and answer-completion events.
type WSHandler struct {
	interviews services.InterviewService
	captures   *capture.Manager
	redis      *redis.Client
	log        *logrus.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(interviews services.InterviewService, captures *capture.Manager, rdb *redis.Client, log *logrus.Logger) *WSHandler {
	if log == nil {
		log = logrus.New()
	}
	return &WSHandler{
		interviews: interviews,
		captures:   captures,
		redis:      rdb,
		log:        log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type       string `json:"type"`
	QuestionID string `json:"question_id"`

	// audio_chunk
	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	AudioURL    string `json:"audio_url"`
	IsFinal     bool   `json:"is_final"`
	Language    string `json:"language"`

	// transcript (client-side recognition)
	Text string `json:"text"`

	// volume
	Level int `json:"level"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.writeText(b)
}

func (h *WSHandler) InterviewWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.InterviewWS", "missing session_id", nil))
		return
	}

	// authorize session ownership
	if _, err := h.interviews.Get(c.Request.Context(), userID, sessionID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	defer h.captures.Release(sessionID)

	pubsub := h.redis.Subscribe(ctx, workers.TranscriptChannel(sessionID))
	defer pubsub.Close()

	// reader: WS -> capture state + Redis stream
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
				continue
			}
			h.handleClientMsg(ctx, wc, userID, sessionID, msg)
		}
	}()

	// ReceiveMessage blocks until a message arrives, so a disconnect has to
	// tear the subscription down from the outside or Release would wait for
	// traffic that may never come.
	go func() {
		select {
		case <-readDone:
		case <-ctx.Done():
		}
		cancel()
		pubsub.Close()
	}()

	// writer: Redis Pub/Sub -> capture + WS
	for {
		m, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return
		}
		h.handleWorkerMsg(sessionID, m.Payload)
		if werr := wc.writeText([]byte(m.Payload)); werr != nil {
			return
		}
	}
}

func (h *WSHandler) handleClientMsg(ctx context.Context, wc *wsConn, userID, sessionID string, msg wsClientMsg) {
	switch msg.Type {
	case "start_answer":
		if msg.QuestionID == "" {
			_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"question_id required"}`))
			return
		}
		// acquiring stops any capture still running for the session
		_, err := h.captures.Acquire(sessionID, msg.QuestionID, capture.Config{
			OnAnswer: h.answerSink(wc, userID, sessionID, msg.QuestionID),
		})
		if err != nil {
			_ = wc.writeText([]byte(`{"type":"error","code":"INTERNAL","message":"failed to start capture"}`))
			return
		}
		_ = wc.writeJSON(gin.H{"type": "capture_started", "question_id": msg.QuestionID})

	case "audio_chunk":
		if msg.ChunkIndex <= 0 {
			_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"chunk_index must be > 0"}`))
			return
		}
		if msg.AudioBase64 == "" && msg.AudioURL == "" {
			_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"audio_base64 or audio_url required"}`))
			return
		}

		fields := map[string]any{
			"session_id":  sessionID,
			"question_id": msg.QuestionID,
			"chunk_index": strconv.FormatInt(msg.ChunkIndex, 10),
			"is_final":    strconv.FormatBool(msg.IsFinal),
			"language":    msg.Language,
			"ts_unix":     strconv.FormatInt(time.Now().UTC().Unix(), 10),
		}
		if msg.AudioBase64 != "" {
			fields["audio_base64"] = msg.AudioBase64
		}
		if msg.AudioURL != "" {
			fields["audio_url"] = msg.AudioURL
		}

		if err := h.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: "interview:audio",
			Values: fields,
		}).Err(); err != nil {
			_ = wc.writeText([]byte(`{"type":"error","code":"UNAVAILABLE","message":"failed to enqueue audio"}`))
		}

	case "transcript":
		// client-side speech recognition pushes fragments directly
		if cp, ok := h.captures.Get(sessionID); ok {
			cp.PushTranscript(msg.Text, msg.IsFinal)
		}

	case "volume":
		if cp, ok := h.captures.Get(sessionID); ok {
			cp.PushVolume(msg.Level)
		}

	case "stop_answer":
		cp, ok := h.captures.Get(sessionID)
		if !ok {
			_ = wc.writeText([]byte(`{"type":"error","code":"FAILED_PRECONDITION","message":"no active capture"}`))
			return
		}
		if a := cp.Stop(); a == nil {
			// nothing recognized: stopping is a no-op for the interview state
			_ = wc.writeJSON(gin.H{"type": "capture_discarded"})
		}
		h.captures.Release(sessionID)

	default:
		_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"unknown message type"}`))
	}
}

// handleWorkerMsg feeds worker transcripts into the active capture before the
// payload is forwarded to the client.
func (h *WSHandler) handleWorkerMsg(sessionID, payload string) {
	cp, ok := h.captures.Get(sessionID)
	if !ok {
		return
	}

	var m struct {
		Type    string `json:"type"`
		Text    string `json:"text"`
		IsFinal bool   `json:"is_final"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return
	}
	switch m.Type {
	case "transcript":
		cp.PushTranscript(m.Text, m.IsFinal)
	case "transcript_error":
		cp.PushError(errors.New(m.Message))
	}
}

// answerSink submits the finished answer and notifies the client. The HTTP
// request context may already be gone when the quiet period fires, so the
// submit runs on its own deadline.
func (h *WSHandler) answerSink(wc *wsConn, userID, sessionID, questionID string) func(capture.Answer) {
	return func(a capture.Answer) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		rec, err := h.interviews.SubmitAnswer(ctx, userID, sessionID, questionID, a.Transcript, models.ModeVoice, a.DurationSeconds)
		if err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{
				"session_id": sessionID,
				"question":   questionID,
			}).Error("failed to submit captured answer")
			_ = wc.writeJSON(gin.H{"type": "error", "code": "INTERNAL", "message": "failed to submit answer"})
			return
		}
		h.captures.Release(sessionID)

		_ = wc.writeJSON(gin.H{
			"type":           "answer_complete",
			"question_id":    questionID,
			"answer_text":    rec.AnswerText,
			"duration":       rec.ResponseDurationSeconds,
			"auto_completed": a.AutoCompleted,
		})
	}
}
