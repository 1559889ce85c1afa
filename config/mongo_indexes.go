package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the indexes the query layer relies on.
// The latest-interviews query combines an inequality filter on user_id with a
// created_at sort, so user_id must lead the sort key (and the index).
func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	interviews := db.Collection("interviews")
	_, err := interviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_user_created"),
		},
		{
			Keys: bson.D{
				{Key: "finalized", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("latest_finalized"),
		},
	})
	if err != nil {
		return err
	}

	// Non-unique: at most one feedback per (interview, user) is assumed by the
	// lookup, not enforced by the store.
	feedback := db.Collection("feedback")
	_, err = feedback.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "interview_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("by_interview_user"),
		},
	})
	return err
}
