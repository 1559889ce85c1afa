package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

type FeedbackRepository interface {
	Insert(ctx context.Context, fb *models.Feedback) error
	GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
}

type feedbackRepo struct {
	col *mongo.Collection
}

func NewFeedbackRepo(db *mongo.Database) FeedbackRepository {
	return &feedbackRepo{col: db.Collection("feedback")}
}

func (r *feedbackRepo) Insert(ctx context.Context, fb *models.Feedback) error {
	_, err := r.col.InsertOne(ctx, fb)
	return err
}

func (r *feedbackRepo) GetByInterviewAndUser(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	var fb models.Feedback
	err := r.col.FindOne(ctx, bson.M{
		"interview_id": interviewID,
		"user_id":      userID,
	}).Decode(&fb)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}
