package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/utils"
)

type LiveClassRepository interface {
	Create(ctx context.Context, c *models.LiveClass) error
	GetByClassID(ctx context.Context, classID string) (*models.LiveClass, error)
	ListByHost(ctx context.Context, hostID string, limit int) ([]models.LiveClass, error)
	SetStatus(ctx context.Context, classID string, status models.LiveClassStatus, at time.Time) error
}

type liveClassRepo struct {
	col *mongo.Collection
}

func NewLiveClassRepo(db *mongo.Database) LiveClassRepository {
	return &liveClassRepo{col: db.Collection("live_classes")}
}

func (r *liveClassRepo) Create(ctx context.Context, c *models.LiveClass) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *liveClassRepo) GetByClassID(ctx context.Context, classID string) (*models.LiveClass, error) {
	var c models.LiveClass
	err := r.col.FindOne(ctx, bson.M{"class_id": classID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *liveClassRepo) ListByHost(ctx context.Context, hostID string, limit int) ([]models.LiveClass, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := r.col.Find(ctx,
		bson.M{"host_id": hostID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LiveClass
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *liveClassRepo) SetStatus(ctx context.Context, classID string, status models.LiveClassStatus, at time.Time) error {
	set := bson.M{"status": status}
	switch status {
	case models.ClassLive:
		set["started_at"] = at.UTC()
	case models.ClassEnded:
		set["ended_at"] = at.UTC()
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"class_id": classID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
