package domain

import (
	"context"
	"time"
)

// Chat is the conversation between exactly two users.
// MemberKey is unique, so a pair of users shares a single chat.
type Chat struct {
	ID                   string       `bson:"_id,omitempty" json:"-"`
	ExposedID            string       `bson:"exposed_id" json:"id"`
	MemberKey            string       `bson:"member_key" json:"-"`
	Members              []ChatMember `bson:"members" json:"members"`
	LastMessage          *Message     `bson:"last_message,omitempty" json:"last_message,omitempty"`
	CreationTime         time.Time    `bson:"creation_time" json:"creation_time"`
	LastModificationDate time.Time    `bson:"last_modification_date" json:"last_modification_date"`
}

// ChatMember is one side of a chat. Unread is set when the other side sends a message.
type ChatMember struct {
	UserID   string `bson:"user_id" json:"user_id"`
	Username string `bson:"username" json:"username"`
	Unread   bool   `bson:"unread" json:"unread"`
}

// Message is a single chat message. ClientID is a ULID and sorts by creation time.
type Message struct {
	ID           string    `bson:"_id,omitempty" json:"-"`
	ClientID     string    `bson:"client_id" json:"client_id"`
	ChatID       string    `bson:"chat_id" json:"chat_id"`
	AuthorID     string    `bson:"author_id" json:"author_id"`
	Content      string    `bson:"content" json:"content"`
	CreationTime time.Time `bson:"creation_time" json:"creation_time"`
}

// ChatMemberKey is the order independent key of a user pair
func ChatMemberKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// Member returns the chat member with userID, or nil
func (c *Chat) Member(userID string) *ChatMember {
	for i := range c.Members {
		if c.Members[i].UserID == userID {
			return &c.Members[i]
		}
	}
	return nil
}

// Counterpart returns the member that is not userID, or nil
func (c *Chat) Counterpart(userID string) *ChatMember {
	for i := range c.Members {
		if c.Members[i].UserID != userID {
			return &c.Members[i]
		}
	}
	return nil
}

// ChatRepository persists chats
type ChatRepository interface {
	// Insert returns ErrDuplicate when the member pair already has a chat
	Insert(ctx context.Context, chat *Chat) error
	// GetByMemberKey returns nil, nil when the pair has no chat yet
	GetByMemberKey(ctx context.Context, memberKey string) (*Chat, error)
	// ListByMember returns every chat of userID, most recently active first
	ListByMember(ctx context.Context, userID string) ([]*Chat, error)
	// RecordMessage stores msg as the last message and flags the chat unread for recipientID
	RecordMessage(ctx context.Context, chatID string, msg Message, recipientID string) error
	MarkRead(ctx context.Context, chatID, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// MessageRepository persists chat messages
type MessageRepository interface {
	Insert(ctx context.Context, msg *Message) error
	CountByChat(ctx context.Context, chatID string) (int64, error)
	// ListByChat returns newest messages first
	ListByChat(ctx context.Context, chatID string, skip, limit int) ([]*Message, error)
}

// MessageNotifier pushes a delivered message to the recipient's live connections
type MessageNotifier interface {
	NotifyMessage(ctx context.Context, recipientID string, msg *Message) error
}
