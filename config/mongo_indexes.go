package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sessions := db.Collection("interview_sessions")
	_, err := sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_user_created"),
		},
	})
	if err != nil {
		return err
	}

	// One response per question per session; also guards the engine's
	// single-writer invariant against duplicate submissions.
	responses := db.Collection("interview_responses")
	_, err = responses.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "question_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_question").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "question_index", Value: 1}},
			Options: options.Index().SetName("by_session_index"),
		},
	})
	if err != nil {
		return err
	}

	results := db.Collection("interview_results")
	_, err = results.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_result_session").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "completed_at", Value: -1}},
			Options: options.Index().SetName("by_user_completed"),
		},
	})
	if err != nil {
		return err
	}

	classes := db.Collection("live_classes")
	_, err = classes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "class_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_class_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_host_created"),
		},
	})
	return err
}
