package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

func (h *InterviewHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Create", "invalid request body", err))
		return
	}

	sess, err := h.svc.CreateSession(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *InterviewHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	sessions, err := h.svc.ListSessions(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *InterviewHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Get(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type startResponse struct {
	Session  *models.InterviewSession `json:"session"`
	Question *models.Question         `json:"question,omitempty"`
}

func (h *InterviewHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, q, err := h.svc.Start(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, startResponse{Session: sess, Question: q})
}

func (h *InterviewHandler) CurrentQuestion(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	q, err := h.svc.CurrentQuestion(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type submitAnswerRequest struct {
	QuestionID      string `json:"question_id" binding:"required"`
	AnswerText      string `json:"answer_text" binding:"required"`
	Mode            string `json:"mode"` // voice|text, defaults to text
	DurationSeconds int    `json:"duration_seconds"`
}

func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.SubmitAnswer", "invalid request body", err))
		return
	}
	mode := models.AnswerMode(req.Mode)
	if mode == "" {
		mode = models.ModeText
	}

	rec, err := h.svc.SubmitAnswer(c.Request.Context(), userID, c.Param("session_id"), req.QuestionID, req.AnswerText, mode, req.DurationSeconds)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type advanceResponse struct {
	Question *models.Question `json:"question,omitempty"`
	Done     bool             `json:"done"`
}

func (h *InterviewHandler) Next(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	q, more, err := h.svc.NextQuestion(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, advanceResponse{Question: q, Done: !more})
}

func (h *InterviewHandler) Skip(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	q, more, err := h.svc.Skip(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, advanceResponse{Question: q, Done: !more})
}

func (h *InterviewHandler) Complete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	res, err := h.svc.Complete(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InterviewHandler) Cancel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), userID, c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
