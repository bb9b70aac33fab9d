package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

type ProfileHandler struct {
	profiles services.ProfileService
	users    services.UserService
}

func NewProfileHandler(profiles services.ProfileService, users services.UserService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, users: users}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.Update", "invalid request body", err))
		return
	}
	p.UserID = userID

	out, err := h.profiles.Upsert(c.Request.Context(), &p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProfileHandler) OnboardingStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	hasProfile, err := h.users.OnboardingStatus(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_profile": hasProfile})
}
