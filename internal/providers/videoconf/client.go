package videoconf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Client talks to a VideoSDK-style room API. Join tokens are HS256 JWTs
// signed with the account secret, which the provider verifies on join.
type Client struct {
	baseURL  string
	apiKey   string
	secret   string
	tokenTTL time.Duration
	http     *http.Client
}

func NewClient(baseURL, apiKey, secret string) *Client {
	if baseURL == "" {
		baseURL = "https://api.videosdk.live/v2"
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		secret:   secret,
		tokenTTL: 4 * time.Hour,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type roomClaims struct {
	jwt.RegisteredClaims
	APIKey      string   `json:"apikey"`
	Permissions []string `json:"permissions"`
	RoomID      string   `json:"roomId,omitempty"`
	DisplayName string   `json:"participantName,omitempty"`
}

// serviceToken authorizes REST calls against the room API.
func (c *Client) serviceToken() (string, error) {
	now := time.Now()
	claims := roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
		APIKey:      c.apiKey,
		Permissions: []string{"allow_mod"},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.secret))
}

func (c *Client) JoinToken(roomID, displayName string) (string, error) {
	now := time.Now()
	claims := roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.tokenTTL)),
		},
		APIKey:      c.apiKey,
		Permissions: []string{"allow_join"},
		RoomID:      roomID,
		DisplayName: displayName,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.secret))
}

func (c *Client) CreateRoom(ctx context.Context) (string, error) {
	var out struct {
		RoomID string `json:"roomId"`
	}
	if err := c.post(ctx, "/rooms", nil, &out); err != nil {
		return "", err
	}
	if out.RoomID == "" {
		return "", fmt.Errorf("%w: empty room id", ErrUnavailable)
	}
	return out.RoomID, nil
}

func (c *Client) DeactivateRoom(ctx context.Context, roomID string) error {
	body := map[string]string{"roomId": roomID}
	return c.post(ctx, "/rooms/deactivate", body, nil)
}

func (c *Client) SendBroadcast(ctx context.Context, roomID, message string) error {
	body := map[string]string{"roomId": roomID, "message": message}
	return c.post(ctx, "/rooms/broadcast", body, nil)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	tok, err := c.serviceToken()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tok)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
