package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type LiveClassHandler struct {
	svc services.LiveClassService
}

func NewLiveClassHandler(svc services.LiveClassService) *LiveClassHandler {
	return &LiveClassHandler{svc: svc}
}

type createClassRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *LiveClassHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveClassHandler.Create", "invalid request body", err))
		return
	}

	class, err := h.svc.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *LiveClassHandler) GoLive(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	class, err := h.svc.GoLive(c.Request.Context(), userID, c.Param("class_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

type joinClassRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

func (h *LiveClassHandler) Join(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req joinClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveClassHandler.Join", "invalid request body", err))
		return
	}

	token, roomID, err := h.svc.Join(c.Request.Context(), c.Param("class_id"), req.DisplayName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "room_id": roomID})
}

type broadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *LiveClassHandler) Broadcast(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "LiveClassHandler.Broadcast", "invalid request body", err))
		return
	}

	if err := h.svc.Broadcast(c.Request.Context(), userID, c.Param("class_id"), req.Message); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *LiveClassHandler) End(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.End(c.Request.Context(), userID, c.Param("class_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}

func (h *LiveClassHandler) MyClasses(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	classes, err := h.svc.ListByHost(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"classes": classes})
}
