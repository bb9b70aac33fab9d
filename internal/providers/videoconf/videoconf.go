package videoconf

import (
	"context"
	"errors"
)

// Provider is the consumed surface of the hosted conferencing service. Media
// transport, SFU routing, and codec negotiation all live on the provider's
// side; we only create rooms, mint join tokens, and relay broadcast messages.
type Provider interface {
	CreateRoom(ctx context.Context) (roomID string, err error)
	JoinToken(roomID, displayName string) (string, error)
	SendBroadcast(ctx context.Context, roomID, message string) error
	DeactivateRoom(ctx context.Context, roomID string) error
}

var ErrUnavailable = errors.New("video conferencing provider unavailable")
