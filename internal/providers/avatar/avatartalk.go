package avatar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AvatarTalk renders short talking-head clips through the hosted AvatarTalk
// HTTP API.
type AvatarTalk struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewAvatarTalk(baseURL, apiKey string, timeout time.Duration) *AvatarTalk {
	if baseURL == "" {
		baseURL = "https://api.avatartalk.ai"
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &AvatarTalk{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (a *AvatarTalk) Close() error { return nil }

type renderRequest struct {
	Text     string `json:"text"`
	Avatar   string `json:"avatar"`
	Emotion  string `json:"emotion,omitempty"`
	Language string `json:"language,omitempty"`
}

type renderResponse struct {
	Success bool   `json:"success"`
	MP4URL  string `json:"mp4_url"`
	Error   string `json:"error,omitempty"`
}

func (a *AvatarTalk) Render(ctx context.Context, text, avatarID, emotion, language string) (*Clip, error) {
	if language == "" {
		language = "en"
	}
	body, err := json.Marshal(renderRequest{
		Text:     text,
		Avatar:   ValidAvatar(avatarID),
		Emotion:  emotion,
		Language: language,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/avatar/video", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidAvatar
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !out.Success || out.MP4URL == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, out.Error)
	}

	return &Clip{VideoURL: out.MP4URL}, nil
}
