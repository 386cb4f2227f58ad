package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ChatService handles one-to-one conversations between users.
// Delivery to live connections goes through the notifier and is best effort.
type ChatService struct {
	chats    domain.ChatRepository
	messages domain.MessageRepository
	profiles domain.ProfileRepository
	notifier domain.MessageNotifier
	clock    domain.Clock
	logger   *zap.Logger
}

func NewChatService(
	chats domain.ChatRepository,
	messages domain.MessageRepository,
	profiles domain.ProfileRepository,
	notifier domain.MessageNotifier,
	clock domain.Clock,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		profiles: profiles,
		notifier: notifier,
		clock:    clock,
		logger:   logger.Named("chats"),
	}
}

// SendMessage stores a message from the caller to recipientID, opening the chat on first contact
func (s *ChatService) SendMessage(ctx context.Context, callerID, callerUsername, recipientID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.loadRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient.UserID == userID {
		return nil, domain.BadRequest("You cannot send a message to yourself.")
	}

	chat, err := s.openChat(ctx, userID, callerUsername, recipient)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	msg := &domain.Message{
		ClientID:     ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		ChatID:       chat.ExposedID,
		AuthorID:     userID,
		Content:      req.Content,
		CreationTime: now,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	if err := s.chats.RecordMessage(ctx, chat.ExposedID, *msg, recipient.UserID); err != nil {
		return nil, fmt.Errorf("failed to update chat: %w", err)
	}

	if err := s.notifier.NotifyMessage(ctx, recipient.UserID, msg); err != nil {
		s.logger.Warn("message notification failed",
			zap.String("chat_id", chat.ExposedID),
			zap.String("recipient_id", recipient.UserID),
			zap.Error(err),
		)
	}

	out := toMessageDTO(msg)
	return &out, nil
}

// GetChats returns one page of the caller's chats, most recently active first
func (s *ChatService) GetChats(ctx context.Context, callerID string, pageNumber, pageSize int) ([]dto.ChatResponse, dto.PaginationMetadata, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, err
	}

	chats, err := s.chats.ListByMember(ctx, userID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, fmt.Errorf("failed to list chats: %w", err)
	}

	start, end := dto.PageBounds(len(chats), pageNumber, pageSize)
	page := make([]dto.ChatResponse, 0, end-start)
	for _, c := range chats[start:end] {
		page = append(page, toChatDTO(c, userID))
	}
	return page, dto.NewPaginationMetadata(len(chats), pageSize, pageNumber), nil
}

// GetMessages returns one page of the conversation with recipientID, newest first.
// Reading the conversation marks it read for the caller.
func (s *ChatService) GetMessages(ctx context.Context, callerID, recipientID string, pageNumber, pageSize int) ([]dto.MessageResponse, dto.PaginationMetadata, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, err
	}
	id, err := uuid.Parse(recipientID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, domain.NotFound("Chat not found.")
	}

	chat, err := s.chats.GetByMemberKey(ctx, domain.ChatMemberKey(userID, id.String()))
	if err != nil {
		return nil, dto.PaginationMetadata{}, fmt.Errorf("failed to get chat: %w", err)
	}
	if chat == nil {
		return nil, dto.PaginationMetadata{}, domain.NotFound("Chat not found.")
	}

	count, err := s.messages.CountByChat(ctx, chat.ExposedID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, fmt.Errorf("failed to count messages: %w", err)
	}
	total := int(count)

	page := []dto.MessageResponse{}
	start, end := dto.PageBounds(total, pageNumber, pageSize)
	if start < end {
		messages, err := s.messages.ListByChat(ctx, chat.ExposedID, start, end-start)
		if err != nil {
			return nil, dto.PaginationMetadata{}, fmt.Errorf("failed to list messages: %w", err)
		}
		for _, m := range messages {
			page = append(page, toMessageDTO(m))
		}
	}

	if me := chat.Member(userID); me != nil && me.Unread {
		if err := s.chats.MarkRead(ctx, chat.ExposedID, userID); err != nil {
			return nil, dto.PaginationMetadata{}, fmt.Errorf("failed to mark chat read: %w", err)
		}
	}

	return page, dto.NewPaginationMetadata(total, pageSize, pageNumber), nil
}

// GetUnreadChatsCount counts chats with messages the caller has not read
func (s *ChatService) GetUnreadChatsCount(ctx context.Context, callerID string) (*dto.UnreadChatsCount, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	n, err := s.chats.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread chats: %w", err)
	}
	return &dto.UnreadChatsCount{UnreadChatsCount: n}, nil
}

func (s *ChatService) loadRecipient(ctx context.Context, rawUserID string) (*domain.Profile, error) {
	id, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, domain.NotFound("User not found.")
	}
	profile, err := s.profiles.GetByUserID(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	if profile == nil {
		return nil, domain.NotFound("User not found.")
	}
	return profile, nil
}

// openChat returns the chat of the pair, creating it on first contact
func (s *ChatService) openChat(ctx context.Context, userID, username string, recipient *domain.Profile) (*domain.Chat, error) {
	key := domain.ChatMemberKey(userID, recipient.UserID)

	chat, err := s.chats.GetByMemberKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	if chat != nil {
		return chat, nil
	}

	now := s.clock.Now()
	chat = &domain.Chat{
		ExposedID: uuid.NewString(),
		MemberKey: key,
		Members: []domain.ChatMember{
			{UserID: userID, Username: username},
			{UserID: recipient.UserID, Username: recipient.Username},
		},
		CreationTime:         now,
		LastModificationDate: now,
	}
	err = s.chats.Insert(ctx, chat)
	switch {
	case err == nil:
		s.logger.Info("chat opened", zap.String("chat_id", chat.ExposedID))
		return chat, nil
	case errors.Is(err, domain.ErrDuplicate):
		// Both sides wrote first at the same time
		existing, err := s.chats.GetByMemberKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get chat: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("chat %s vanished after duplicate insert", key)
		}
		return existing, nil
	default:
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
}

func toMessageDTO(m *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:           m.ClientID,
		AuthorID:     m.AuthorID,
		Content:      m.Content,
		CreationTime: m.CreationTime,
	}
}

func toChatDTO(c *domain.Chat, userID string) dto.ChatResponse {
	out := dto.ChatResponse{
		ChatID:               c.ExposedID,
		Read:                 true,
		LastModificationDate: c.LastModificationDate,
	}
	if other := c.Counterpart(userID); other != nil {
		out.Recipient = dto.Author{ID: other.UserID, Username: other.Username}
	}
	if me := c.Member(userID); me != nil {
		out.Read = !me.Unread
	}
	if c.LastMessage != nil {
		last := toMessageDTO(c.LastMessage)
		out.LastMessage = &last
	}
	return out
}
