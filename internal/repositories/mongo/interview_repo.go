package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

type InterviewRepository interface {
	Insert(ctx context.Context, iv *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	ListByUser(ctx context.Context, userID string) ([]models.Interview, error)
	ListLatest(ctx context.Context, excludeUserID string, limit int) ([]models.Interview, error)
}

type interviewRepo struct {
	col *mongo.Collection
}

func NewInterviewRepo(db *mongo.Database) InterviewRepository {
	return &interviewRepo{col: db.Collection("interviews")}
}

func (r *interviewRepo) Insert(ctx context.Context, iv *models.Interview) error {
	_, err := r.col.InsertOne(ctx, iv)
	return err
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var iv models.Interview
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&iv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (r *interviewRepo) ListByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Interview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLatest returns finalized interviews not owned by excludeUserID. The
// inequality filter on user_id forces user_id to lead the sort key, so the
// order is user_id asc then created_at desc within each owner.
func (r *interviewRepo) ListLatest(ctx context.Context, excludeUserID string, limit int) ([]models.Interview, error) {
	if limit <= 0 {
		limit = 20
	}

	filter := bson.M{
		"finalized": true,
		"user_id":   bson.M{"$ne": excludeUserID},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Interview
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
