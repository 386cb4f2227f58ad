package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lostandfound/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProfileRepository implements domain.ProfileRepository using MongoDB
type MongoProfileRepository struct {
	collection *mongo.Collection
}

func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	coll := db.Collection("profiles")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "comments.author_id", Value: 1}}},
	})

	return &MongoProfileRepository{
		collection: coll,
	}
}

func (r *MongoProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	if profile.ID == "" {
		profile.ID = primitive.NewObjectID().Hex()
	}
	if profile.Comments == nil {
		profile.Comments = []domain.ProfileComment{}
	}

	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *MongoProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *MongoProfileRepository) Replace(ctx context.Context, profile *domain.Profile) error {
	if profile.Comments == nil {
		profile.Comments = []domain.ProfileComment{}
	}
	result, err := r.collection.ReplaceOne(ctx, bson.M{"user_id": profile.UserID}, profile)
	if err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound("Profile not found.")
	}
	return nil
}

func (r *MongoProfileRepository) UpdatePictureURL(ctx context.Context, userID string, url *string, modifiedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{"updated_at": modifiedAt},
	}
	if url != nil {
		update["$set"].(bson.M)["picture_url"] = *url
	} else {
		update["$unset"] = bson.M{"picture_url": ""}
	}
	return r.updateOne(ctx, bson.M{"user_id": userID}, update, "picture")
}

func (r *MongoProfileRepository) AddComment(ctx context.Context, userID string, comment domain.ProfileComment) error {
	update := bson.M{"$push": bson.M{"comments": comment}}
	return r.updateOne(ctx, bson.M{"user_id": userID}, update, "comments")
}

// UpdateComment rewrites content and rating of the author's comment via arrayFilters
func (r *MongoProfileRepository) UpdateComment(ctx context.Context, userID string, comment domain.ProfileComment) error {
	filter := bson.M{
		"user_id":            userID,
		"comments.author_id": comment.AuthorID,
	}
	update := bson.M{
		"$set": bson.M{
			"comments.$[c].content":        comment.Content,
			"comments.$[c].profile_rating": comment.ProfileRating,
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"c.author_id": comment.AuthorID},
		},
	})

	result, err := r.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound("Comment not found.")
	}
	return nil
}

func (r *MongoProfileRepository) DeleteComment(ctx context.Context, userID string, authorID string) error {
	update := bson.M{
		"$pull": bson.M{"comments": bson.M{"author_id": authorID}},
	}
	return r.updateOne(ctx, bson.M{"user_id": userID}, update, "comments")
}

func (r *MongoProfileRepository) updateOne(ctx context.Context, filter, update bson.M, what string) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update profile %s: %w", what, err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound("Profile not found.")
	}
	return nil
}
