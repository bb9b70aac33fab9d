// Package mongo holds the Mongo-backed repositories. Interview state lives
// here; Postgres keeps the relational projections (result history,
// recordings, profiles).
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

// InterviewStore is the durable backing for the interview engine plus the
// list queries the API layer needs.
type InterviewStore interface {
	CreateSession(ctx context.Context, s *models.InterviewSession) error
	GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	UpdateSession(ctx context.Context, s *models.InterviewSession) error
	ListSessionsByUser(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error)

	AppendResponse(ctx context.Context, r *models.ResponseRecord) error
	ListResponses(ctx context.Context, sessionID string) ([]models.ResponseRecord, error)

	SaveResult(ctx context.Context, r *models.SessionResult) error
	GetResult(ctx context.Context, sessionID string) (*models.SessionResult, error)
	ListResultsByUser(ctx context.Context, userID string, limit int) ([]models.SessionResult, error)

	SetQuestionClipURL(ctx context.Context, sessionID, questionID, clipURL string) error
}

type interviewStore struct {
	sessions  *mongo.Collection
	responses *mongo.Collection
	results   *mongo.Collection
}

func NewInterviewStore(db *mongo.Database) InterviewStore {
	return &interviewStore{
		sessions:  db.Collection("interview_sessions"),
		responses: db.Collection("interview_responses"),
		results:   db.Collection("interview_results"),
	}
}

func (r *interviewStore) CreateSession(ctx context.Context, s *models.InterviewSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.sessions.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return utils.E(utils.CodeConflict, "mongo.CreateSession", "session already exists", err)
	}
	return err
}

func (r *interviewStore) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var s models.InterviewSession
	err := r.sessions.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *interviewStore) UpdateSession(ctx context.Context, s *models.InterviewSession) error {
	res, err := r.sessions.UpdateOne(ctx,
		bson.M{"session_id": s.SessionID},
		bson.M{"$set": bson.M{
			"questions":              s.Questions,
			"current_question_index": s.CurrentQuestionIndex,
			"status":                 s.Status,
			"start_time":             s.StartTime,
			"end_time":               s.EndTime,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *interviewStore) ListSessionsByUser(ctx context.Context, userID string, limit int) ([]models.InterviewSession, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := r.sessions.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.InterviewSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interviewStore) AppendResponse(ctx context.Context, rec *models.ResponseRecord) error {
	if rec.SubmittedAt.IsZero() {
		rec.SubmittedAt = time.Now().UTC()
	}
	_, err := r.responses.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return utils.E(utils.CodeConflict, "mongo.AppendResponse", "question already answered", err)
	}
	return err
}

func (r *interviewStore) ListResponses(ctx context.Context, sessionID string) ([]models.ResponseRecord, error) {
	cur, err := r.responses.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "question_index", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ResponseRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *interviewStore) SaveResult(ctx context.Context, res *models.SessionResult) error {
	_, err := r.results.UpdateOne(ctx,
		bson.M{"session_id": res.SessionID},
		bson.M{"$setOnInsert": res},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *interviewStore) GetResult(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	var res models.SessionResult
	err := r.results.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &res, err
}

func (r *interviewStore) ListResultsByUser(ctx context.Context, userID string, limit int) ([]models.SessionResult, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := r.results.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.SessionResult
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetQuestionClipURL caches a rendered avatar clip on the question document
// so replays skip the provider.
func (r *interviewStore) SetQuestionClipURL(ctx context.Context, sessionID, questionID, clipURL string) error {
	_, err := r.sessions.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "questions.id": questionID},
		bson.M{"$set": bson.M{"questions.$.avatar_clip_url": clipURL}},
	)
	return err
}
