package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lostandfound/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ReceiveMessageEvent is the event name carried by chat notifications
const ReceiveMessageEvent = "ReceiveMessage"

// ChatNotification is the payload published for a delivered message
type ChatNotification struct {
	Event   string          `json:"event"`
	Message *domain.Message `json:"message"`
}

// RedisChatNotifier publishes delivered messages on a per-user Redis channel.
// Connection hubs subscribe to the channels of their connected users.
type RedisChatNotifier struct {
	client *redis.Client
}

func NewRedisChatNotifier(client *redis.Client) *RedisChatNotifier {
	return &RedisChatNotifier{client: client}
}

// ChatChannel is the pub/sub channel of one user
func ChatChannel(userID string) string {
	return "chat:user:" + userID
}

func (n *RedisChatNotifier) NotifyMessage(ctx context.Context, recipientID string, msg *domain.Message) error {
	payload, err := json.Marshal(ChatNotification{Event: ReceiveMessageEvent, Message: msg})
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	if err := n.client.Publish(ctx, ChatChannel(recipientID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish error: %w", err)
	}
	return nil
}

// Subscribe opens a subscription on the channel of userID. The caller closes it.
func (n *RedisChatNotifier) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return n.client.Subscribe(ctx, ChatChannel(userID))
}
