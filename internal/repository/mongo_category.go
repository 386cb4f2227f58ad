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

// MongoCategoryRepository implements domain.CategoryRepository using MongoDB
type MongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	coll := db.Collection("categories")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "exposed_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoCategoryRepository{
		collection: coll,
	}
}

func (r *MongoCategoryRepository) GetByExposedID(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	if err := r.collection.FindOne(ctx, bson.M{"exposed_id": id}).Decode(&category); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *MongoCategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"exposed_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count categories: %w", err)
	}
	return count > 0, nil
}

// List returns all categories sorted by display name
func (r *MongoCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "display_name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []*domain.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// Upsert creates or renames a category keyed by its exposed id
func (r *MongoCategoryRepository) Upsert(ctx context.Context, category *domain.Category) error {
	update := bson.M{
		"$set":         bson.M{"display_name": category.DisplayName},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID().Hex()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"exposed_id": category.ExposedID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}
