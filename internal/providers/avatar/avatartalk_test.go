package avatar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRenderSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/avatar/video" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("auth header = %q", got)
		}

		var req struct {
			Text   string `json:"text"`
			Avatar string `json:"avatar"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Avatar != "japanese_woman" {
			t.Errorf("avatar = %q", req.Avatar)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"mp4_url": "https://cdn.example.com/clip.mp4",
		})
	}))
	defer srv.Close()

	p := NewAvatarTalk(srv.URL, "key", time.Second)
	clip, err := p.Render(context.Background(), "hello there", "japanese_woman", "neutral", "en")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if clip.VideoURL != "https://cdn.example.com/clip.mp4" {
		t.Fatalf("url = %q", clip.VideoURL)
	}
}

func TestRenderUnknownAvatarMapsToDefault(t *testing.T) {
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Avatar string `json:"avatar"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		sent = req.Avatar
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "mp4_url": "u"})
	}))
	defer srv.Close()

	p := NewAvatarTalk(srv.URL, "", time.Second)
	if _, err := p.Render(context.Background(), "hi", "robot_overlord", "", ""); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if sent != DefaultAvatar {
		t.Fatalf("sent avatar = %q, want %q", sent, DefaultAvatar)
	}
}

func TestRenderErrors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrInvalidAvatar},
		{http.StatusInternalServerError, ErrUnavailable},
		{http.StatusTooManyRequests, ErrUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		p := NewAvatarTalk(srv.URL, "", time.Second)
		_, err := p.Render(context.Background(), "hi", DefaultAvatar, "", "")
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestRenderRejectsFailureBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "render queue full"})
	}))
	defer srv.Close()

	p := NewAvatarTalk(srv.URL, "", time.Second)
	if _, err := p.Render(context.Background(), "hi", DefaultAvatar, "", ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
