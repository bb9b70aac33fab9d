package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/api/handlers"
	"github.com/hireloop/hireloop/internal/api/middleware"
)

type Deps struct {
	Interview *handlers.InterviewHandler
	Result    *handlers.ResultHandler
	LiveClass *handlers.LiveClassHandler
	Profile   *handlers.ProfileHandler
	Recording *handlers.RecordingHandler
	WS        *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.POST("/interviews", d.Interview.Create)
	auth.GET("/interviews", d.Interview.List)
	auth.GET("/interviews/:session_id", d.Interview.Get)
	auth.POST("/interviews/:session_id/start", d.Interview.Start)
	auth.GET("/interviews/:session_id/question", d.Interview.CurrentQuestion)
	auth.POST("/interviews/:session_id/answers", d.Interview.SubmitAnswer)
	auth.POST("/interviews/:session_id/next", d.Interview.Next)
	auth.POST("/interviews/:session_id/skip", d.Interview.Skip)
	auth.POST("/interviews/:session_id/complete", d.Interview.Complete)
	auth.POST("/interviews/:session_id/cancel", d.Interview.Cancel)

	auth.GET("/quick-interviews/:session_id/results", d.Result.Get)
	auth.POST("/quick-interviews/:session_id/results", d.Result.Record)
	auth.GET("/quick-interviews/my-results", d.Result.MyResults)

	auth.POST("/interviews/:session_id/recordings", d.Recording.Upload)
	auth.GET("/interviews/:session_id/recordings", d.Recording.ListBySession)

	auth.POST("/live-classes", d.LiveClass.Create)
	auth.GET("/live-classes", d.LiveClass.MyClasses)
	auth.POST("/live-classes/:class_id/go-live", d.LiveClass.GoLive)
	auth.POST("/live-classes/:class_id/join", d.LiveClass.Join)
	auth.POST("/live-classes/:class_id/broadcast", d.LiveClass.Broadcast)
	auth.POST("/live-classes/:class_id/end", d.LiveClass.End)

	auth.GET("/profile/me", d.Profile.Me)
	auth.PUT("/profile/update", d.Profile.Update)
	auth.GET("/profile/onboarding", d.Profile.OnboardingStatus)

	// WebSocket
	auth.GET("/ws/interview/:session_id", d.WS.InterviewWS)
}
