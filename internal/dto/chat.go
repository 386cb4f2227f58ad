package dto

import "time"

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type MessageResponse struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"authorId"`
	Content      string    `json:"content"`
	CreationTime time.Time `json:"creationTime"`
}

// ChatResponse is one row of the caller's chat list
type ChatResponse struct {
	ChatID               string           `json:"chatId"`
	Recipient            Author           `json:"recipient"`
	LastMessage          *MessageResponse `json:"lastMessage"`
	Read                 bool             `json:"read"`
	LastModificationDate time.Time        `json:"lastModificationDate"`
}

type UnreadChatsCount struct {
	UnreadChatsCount int64 `json:"unreadChatsCount"`
}
