package avatar

import (
	"context"
	"errors"
)

// Clip is a provider-generated video of a synthetic presenter speaking the
// given text.
type Clip struct {
	VideoURL        string `json:"video_url"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

var (
	// ErrUnavailable means the provider could not produce a clip right now.
	// Callers degrade to text-only display; this is never fatal.
	ErrUnavailable = errors.New("avatar provider unavailable")
	// ErrInvalidAvatar means the avatar identity was rejected by the provider.
	ErrInvalidAvatar = errors.New("invalid avatar identity")
)

type Provider interface {
	Render(ctx context.Context, text, avatarID, emotion, language string) (*Clip, error)
	Close() error
}

// Avatar identities accepted by the hosted API.
var validAvatars = map[string]struct{}{
	"japanese_man":       {},
	"old_european_woman": {},
	"european_woman":     {},
	"black_man":          {},
	"japanese_woman":     {},
	"iranian_man":        {},
	"mexican_man":        {},
	"mexican_woman":      {},
}

const DefaultAvatar = "black_man"

// ValidAvatar maps unknown identities onto the default presenter rather than
// failing the session over a cosmetic field.
func ValidAvatar(id string) string {
	if _, ok := validAvatars[id]; ok {
		return id
	}
	return DefaultAvatar
}
