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

// MongoChatRepository implements domain.ChatRepository using MongoDB
type MongoChatRepository struct {
	collection *mongo.Collection
}

func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	coll := db.Collection("chats")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exposed_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "member_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "members.user_id", Value: 1}, {Key: "last_modification_date", Value: -1}}},
	})

	return &MongoChatRepository{
		collection: coll,
	}
}

func (r *MongoChatRepository) Insert(ctx context.Context, chat *domain.Chat) error {
	if chat.ID == "" {
		chat.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, chat); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to insert chat: %w", err)
	}
	return nil
}

func (r *MongoChatRepository) GetByMemberKey(ctx context.Context, memberKey string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := r.collection.FindOne(ctx, bson.M{"member_key": memberKey}).Decode(&chat); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}

func (r *MongoChatRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_modification_date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"members.user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer cursor.Close(ctx)

	var chats []*domain.Chat
	if err := cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}
	return chats, nil
}

// RecordMessage sets the last message and flips both read flags via arrayFilters
func (r *MongoChatRepository) RecordMessage(ctx context.Context, chatID string, msg domain.Message, recipientID string) error {
	update := bson.M{
		"$set": bson.M{
			"last_message":                msg,
			"last_modification_date":      msg.CreationTime,
			"members.$[author].unread":    false,
			"members.$[recipient].unread": true,
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"author.user_id": msg.AuthorID},
			bson.M{"recipient.user_id": recipientID},
		},
	})

	result, err := r.collection.UpdateOne(ctx, bson.M{"exposed_id": chatID}, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound("Chat not found.")
	}
	return nil
}

func (r *MongoChatRepository) MarkRead(ctx context.Context, chatID, userID string) error {
	filter := bson.M{
		"exposed_id":      chatID,
		"members.user_id": userID,
	}
	update := bson.M{"$set": bson.M{"members.$.unread": false}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark chat read: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.NotFound("Chat not found.")
	}
	return nil
}

func (r *MongoChatRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{
		"members": bson.M{"$elemMatch": bson.M{"user_id": userID, "unread": true}},
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread chats: %w", err)
	}
	return n, nil
}

// MongoMessageRepository implements domain.MessageRepository using MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	coll := db.Collection("messages")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "client_id", Value: -1}}},
		{
			Keys:    bson.D{{Key: "client_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})

	return &MongoMessageRepository{
		collection: coll,
	}
}

func (r *MongoMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MongoMessageRepository) CountByChat(ctx context.Context, chatID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

func (r *MongoMessageRepository) ListByChat(ctx context.Context, chatID string, skip, limit int) ([]*domain.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "client_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*domain.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
