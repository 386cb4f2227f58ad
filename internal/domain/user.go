package domain

import (
	"context"
	"time"
)

// User is a registered account. UserID is the public identity carried in tokens.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"-"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Email        string    `bson:"email" json:"email"`
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// UserRepository defines operations for managing users.
// Lookups return ErrNotFound when no user matches.
type UserRepository interface {
	// Create returns ErrDuplicate when the email, username or user id is taken
	Create(ctx context.Context, user *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
