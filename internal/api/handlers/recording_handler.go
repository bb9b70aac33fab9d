package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type RecordingHandler struct {
	svc services.RecordingService
}

func NewRecordingHandler(svc services.RecordingService) *RecordingHandler {
	return &RecordingHandler{svc: svc}
}

// Upload accepts multipart form data with an "audio" file part.
func (h *RecordingHandler) Upload(c *gin.Context) {
	const op = "RecordingHandler.Upload"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	questionID := c.PostForm("question_id")
	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "audio file is required", err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	rec, err := h.svc.Upload(c.Request.Context(), userID, c.Param("session_id"), questionID, data, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *RecordingHandler) ListBySession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.ListBySession(c.Request.Context(), userID, c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recordings": out})
}
