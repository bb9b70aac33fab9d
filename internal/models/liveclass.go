package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LiveClassStatus string

const (
	ClassScheduled LiveClassStatus = "scheduled"
	ClassLive      LiveClassStatus = "live"
	ClassEnded     LiveClassStatus = "ended"
)

// LiveClass is a scheduled video session backed by the hosted conferencing
// provider. The provider owns media transport; we only keep the room handle.
type LiveClass struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ClassID string             `bson:"class_id" json:"class_id"` // uuid v4
	HostID  string             `bson:"host_id" json:"host_id"`

	Title  string          `bson:"title" json:"title"`
	RoomID string          `bson:"room_id" json:"room_id"` // provider room handle
	Status LiveClassStatus `bson:"status" json:"status"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	StartedAt *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	EndedAt   *time.Time `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}
