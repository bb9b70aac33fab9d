package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
)

type fakeLiveClassService struct {
	broadcastErr error

	hostID  string
	classID string
	message string
}

func (f *fakeLiveClassService) Create(ctx context.Context, hostID, title string) (*models.LiveClass, error) {
	return &models.LiveClass{ClassID: "c1", HostID: hostID, Title: title}, nil
}

func (f *fakeLiveClassService) GoLive(ctx context.Context, hostID, classID string) (*models.LiveClass, error) {
	return &models.LiveClass{ClassID: classID, HostID: hostID, Status: models.ClassLive}, nil
}

func (f *fakeLiveClassService) Join(ctx context.Context, classID, displayName string) (string, string, error) {
	return "tok", "room-1", nil
}

func (f *fakeLiveClassService) Broadcast(ctx context.Context, hostID, classID, message string) error {
	f.hostID, f.classID, f.message = hostID, classID, message
	return f.broadcastErr
}

func (f *fakeLiveClassService) End(ctx context.Context, hostID, classID string) error {
	return nil
}

func (f *fakeLiveClassService) ListByHost(ctx context.Context, hostID string, limit int) ([]models.LiveClass, error) {
	return nil, nil
}

func liveClassRouter(svc *fakeLiveClassService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLiveClassHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", "host-1") })
	r.POST("/live-classes/:class_id/broadcast", h.Broadcast)
	return r
}

func TestBroadcastHandler(t *testing.T) {
	svc := &fakeLiveClassService{}
	r := liveClassRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/live-classes/c1/broadcast",
		strings.NewReader(`{"message":"wrapping up in five"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.hostID != "host-1" || svc.classID != "c1" || svc.message != "wrapping up in five" {
		t.Fatalf("service call = %q %q %q", svc.hostID, svc.classID, svc.message)
	}
}

func TestBroadcastHandlerRejectsEmptyBody(t *testing.T) {
	r := liveClassRouter(&fakeLiveClassService{})

	req := httptest.NewRequest(http.MethodPost, "/live-classes/c1/broadcast", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestBroadcastHandlerMapsServiceErrors(t *testing.T) {
	svc := &fakeLiveClassService{
		broadcastErr: utils.E(utils.CodeForbidden, "LiveClassService.Broadcast", "class belongs to another host", nil),
	}
	r := liveClassRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/live-classes/c1/broadcast",
		strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
