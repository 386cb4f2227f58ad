package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/lostandfound/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const publicationsCollection = "publications"

// MongoPublicationRepository implements domain.PublicationRepository using MongoDB
type MongoPublicationRepository struct {
	collection *mongo.Collection
}

// NewMongoPublicationRepository creates a new MongoDB publication repository
func NewMongoPublicationRepository(db *mongo.Database) *MongoPublicationRepository {
	collection := db.Collection(publicationsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exposed_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Listing filter: state + type, newest incidents first
			Keys: bson.D{
				{Key: "state", Value: 1},
				{Key: "type", Value: 1},
				{Key: "incident_date", Value: -1},
			},
		},
		{Keys: bson.D{{Key: "author.id", Value: 1}}},
		{Keys: bson.D{{Key: "votes.voter_id", Value: 1}}},
	})

	return &MongoPublicationRepository{
		collection: collection,
	}
}

// Insert saves a new publication
func (r *MongoPublicationRepository) Insert(ctx context.Context, publication *domain.Publication) error {
	if publication.ID == "" {
		publication.ID = primitive.NewObjectID().Hex()
	}
	if publication.Votes == nil {
		publication.Votes = []domain.Vote{}
	}

	if _, err := r.collection.InsertOne(ctx, publication); err != nil {
		return fmt.Errorf("failed to insert publication: %w", err)
	}
	return nil
}

// Replace overwrites the whole document identified by the exposed id
func (r *MongoPublicationRepository) Replace(ctx context.Context, publication *domain.Publication) error {
	if publication.Votes == nil {
		publication.Votes = []domain.Vote{}
	}

	result, err := r.collection.ReplaceOne(ctx, bson.M{"exposed_id": publication.ExposedID}, publication)
	if err != nil {
		return fmt.Errorf("failed to replace publication: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound("Publication not found.")
	}
	return nil
}

// GetByExposedID retrieves a publication, nil if it does not exist
func (r *MongoPublicationRepository) GetByExposedID(ctx context.Context, id string) (*domain.Publication, error) {
	var publication domain.Publication
	err := r.collection.FindOne(ctx, bson.M{"exposed_id": id}).Decode(&publication)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get publication: %w", err)
	}
	return &publication, nil
}

// DeleteByExposedID removes a publication together with its votes
func (r *MongoPublicationRepository) DeleteByExposedID(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"exposed_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete publication: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.NotFound("Publication not found.")
	}
	return nil
}

// Find returns every publication matching the filter. Ordering and paging are left to the caller.
func (r *MongoPublicationRepository) Find(ctx context.Context, filter domain.PublicationFilter) ([]*domain.Publication, error) {
	cursor, err := r.collection.Find(ctx, publicationQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to find publications: %w", err)
	}
	defer cursor.Close(ctx)

	publications := []*domain.Publication{}
	if err := cursor.All(ctx, &publications); err != nil {
		return nil, fmt.Errorf("failed to decode publications: %w", err)
	}
	return publications, nil
}

// publicationQuery translates the filter into the equivalent Mongo query.
// Search is a literal, case sensitive substring match on title or description.
func publicationQuery(filter domain.PublicationFilter) bson.M {
	query := bson.M{
		"state": filter.State,
		"type":  filter.Type,
	}
	if filter.AuthorID != nil {
		query["author.id"] = *filter.AuthorID
	}
	if filter.CategoryID != nil {
		query["subject_category_id"] = *filter.CategoryID
	}

	if filter.From != nil || filter.To != nil {
		dateRange := bson.M{}
		if filter.From != nil {
			dateRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			dateRange["$lte"] = *filter.To
		}
		query["incident_date"] = dateRange
	}

	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search)}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

// UpdatePhotoURL sets the subject photo URL, or unsets it when url is nil
func (r *MongoPublicationRepository) UpdatePhotoURL(ctx context.Context, id string, url *string, modifiedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{"last_modification_date": modifiedAt},
	}
	if url != nil {
		update["$set"].(bson.M)["subject_photo_url"] = *url
	} else {
		update["$unset"] = bson.M{"subject_photo_url": ""}
	}

	return r.updateOne(ctx, bson.M{"exposed_id": id}, update, "photo")
}

// UpdateState changes the publication state
func (r *MongoPublicationRepository) UpdateState(ctx context.Context, id string, state domain.PublicationState, modifiedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"state":                  state,
			"last_modification_date": modifiedAt,
		},
	}
	return r.updateOne(ctx, bson.M{"exposed_id": id}, update, "state")
}

// InsertVote appends a vote to the embedded votes array
func (r *MongoPublicationRepository) InsertVote(ctx context.Context, id string, vote domain.Vote) error {
	update := bson.M{"$push": bson.M{"votes": vote}}
	return r.updateOne(ctx, bson.M{"exposed_id": id}, update, "vote")
}

// UpdateVote changes the rating of an existing vote using arrayFilters.
// The vote's creation date is left untouched.
func (r *MongoPublicationRepository) UpdateVote(ctx context.Context, id string, vote domain.Vote) error {
	filter := bson.M{
		"exposed_id":     id,
		"votes.voter_id": vote.VoterID,
	}
	update := bson.M{
		"$set": bson.M{"votes.$[v].rating": vote.Rating},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"v.voter_id": vote.VoterID},
		},
	})

	result, err := r.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound("Vote not found.")
	}
	return nil
}

// DeleteVote pulls the voter's vote out of the embedded array
func (r *MongoPublicationRepository) DeleteVote(ctx context.Context, id string, voterID string) error {
	update := bson.M{
		"$pull": bson.M{"votes": bson.M{"voter_id": voterID}},
	}
	return r.updateOne(ctx, bson.M{"exposed_id": id}, update, "vote")
}

func (r *MongoPublicationRepository) updateOne(ctx context.Context, filter, update bson.M, what string) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update publication %s: %w", what, err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound("Publication not found.")
	}
	return nil
}
