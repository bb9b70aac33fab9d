package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/providers/videoconf"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	"github.com/hireloop/hireloop/internal/utils"
)

type LiveClassService interface {
	Create(ctx context.Context, hostID, title string) (*models.LiveClass, error)
	GoLive(ctx context.Context, hostID, classID string) (*models.LiveClass, error)
	Join(ctx context.Context, classID, displayName string) (token string, roomID string, err error)
	Broadcast(ctx context.Context, hostID, classID, message string) error
	End(ctx context.Context, hostID, classID string) error
	ListByHost(ctx context.Context, hostID string, limit int) ([]models.LiveClass, error)
}

type liveClassService struct {
	classes mongorepo.LiveClassRepository
	rooms   videoconf.Provider
	log     *logrus.Logger
}

func NewLiveClassService(classes mongorepo.LiveClassRepository, rooms videoconf.Provider, log *logrus.Logger) LiveClassService {
	if log == nil {
		log = logrus.New()
	}
	return &liveClassService{classes: classes, rooms: rooms, log: log}
}

func (s *liveClassService) Create(ctx context.Context, hostID, title string) (*models.LiveClass, error) {
	const op = "LiveClassService.Create"

	if hostID == "" || title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "host_id and title are required", nil)
	}

	roomID, err := s.rooms.CreateRoom(ctx)
	if err != nil {
		if errors.Is(err, videoconf.ErrUnavailable) {
			return nil, utils.E(utils.CodeUnavailable, op, "conferencing provider unavailable", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create room", err)
	}

	c := &models.LiveClass{
		ClassID:   uuid.NewString(),
		HostID:    hostID,
		Title:     title,
		RoomID:    roomID,
		Status:    models.ClassScheduled,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.classes.Create(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create class", err)
	}
	return c, nil
}

func (s *liveClassService) GoLive(ctx context.Context, hostID, classID string) (*models.LiveClass, error) {
	const op = "LiveClassService.GoLive"

	c, err := s.getOwned(ctx, op, hostID, classID)
	if err != nil {
		return nil, err
	}
	if c.Status == models.ClassEnded {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "class already ended", nil)
	}

	now := time.Now().UTC()
	if err := s.classes.SetStatus(ctx, classID, models.ClassLive, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update class", err)
	}
	c.Status = models.ClassLive
	c.StartedAt = &now
	return c, nil
}

func (s *liveClassService) Join(ctx context.Context, classID, displayName string) (string, string, error) {
	const op = "LiveClassService.Join"

	c, err := s.get(ctx, op, classID)
	if err != nil {
		return "", "", err
	}
	if c.Status != models.ClassLive {
		return "", "", utils.E(utils.CodeFailedPrecondition, op, "class is not live", nil)
	}

	token, err := s.rooms.JoinToken(c.RoomID, displayName)
	if err != nil {
		return "", "", utils.E(utils.CodeInternal, op, "failed to mint join token", err)
	}
	return token, c.RoomID, nil
}

// Broadcast relays a host message to everyone in the room. Only the host may
// broadcast, and only while the class is live.
func (s *liveClassService) Broadcast(ctx context.Context, hostID, classID, message string) error {
	const op = "LiveClassService.Broadcast"

	if message == "" {
		return utils.E(utils.CodeInvalidArgument, op, "message is required", nil)
	}

	c, err := s.getOwned(ctx, op, hostID, classID)
	if err != nil {
		return err
	}
	if c.Status != models.ClassLive {
		return utils.E(utils.CodeFailedPrecondition, op, "class is not live", nil)
	}

	if err := s.rooms.SendBroadcast(ctx, c.RoomID, message); err != nil {
		if errors.Is(err, videoconf.ErrUnavailable) {
			return utils.E(utils.CodeUnavailable, op, "conferencing provider unavailable", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to send broadcast", err)
	}
	return nil
}

func (s *liveClassService) End(ctx context.Context, hostID, classID string) error {
	const op = "LiveClassService.End"

	c, err := s.getOwned(ctx, op, hostID, classID)
	if err != nil {
		return err
	}
	if c.Status == models.ClassEnded {
		return nil
	}

	if err := s.rooms.DeactivateRoom(ctx, c.RoomID); err != nil {
		// room teardown failing should not strand the class record
		s.log.WithError(err).WithField("class_id", classID).Warn("failed to deactivate room")
	}
	if err := s.classes.SetStatus(ctx, classID, models.ClassEnded, time.Now().UTC()); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update class", err)
	}
	return nil
}

func (s *liveClassService) ListByHost(ctx context.Context, hostID string, limit int) ([]models.LiveClass, error) {
	const op = "LiveClassService.ListByHost"

	out, err := s.classes.ListByHost(ctx, hostID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list classes", err)
	}
	return out, nil
}

func (s *liveClassService) get(ctx context.Context, op, classID string) (*models.LiveClass, error) {
	c, err := s.classes.GetByClassID(ctx, classID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "class not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get class", err)
	}
	return c, nil
}

func (s *liveClassService) getOwned(ctx context.Context, op, hostID, classID string) (*models.LiveClass, error) {
	c, err := s.get(ctx, op, classID)
	if err != nil {
		return nil, err
	}
	if c.HostID != hostID {
		return nil, utils.E(utils.CodeForbidden, op, "class belongs to another host", nil)
	}
	return c, nil
}
