package domain

import (
	"context"
	"time"
)

// Profile is the public page of a user. Comments are embedded, one per author.
type Profile struct {
	ID          string           `bson:"_id,omitempty" json:"-"`
	UserID      string           `bson:"user_id" json:"user_id"`
	Username    string           `bson:"username" json:"username"`
	Email       string           `bson:"email" json:"email"`
	Name        string           `bson:"name" json:"name"`
	Surname     string           `bson:"surname" json:"surname"`
	Description string           `bson:"description" json:"description"`
	City        string           `bson:"city" json:"city"`
	PhoneNumber string           `bson:"phone_number" json:"phone_number"`
	PictureURL  *string          `bson:"picture_url,omitempty" json:"picture_url,omitempty"`
	Comments    []ProfileComment `bson:"comments" json:"comments"`
	CreatedAt   time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at" json:"updated_at"`
}

// ProfileComment is another user's opinion about the profile owner
type ProfileComment struct {
	AuthorID       string    `bson:"author_id" json:"author_id"`
	AuthorUsername string    `bson:"author_username" json:"author_username"`
	Content        string    `bson:"content" json:"content"`
	ProfileRating  float64   `bson:"profile_rating" json:"profile_rating"`
	CreationTime   time.Time `bson:"creation_time" json:"creation_time"`
}

// FindComment returns the comment written by authorID, or nil
func (p *Profile) FindComment(authorID string) *ProfileComment {
	for i := range p.Comments {
		if p.Comments[i].AuthorID == authorID {
			return &p.Comments[i]
		}
	}
	return nil
}

// AverageRating is the mean of all comment ratings, zero without comments
func (p *Profile) AverageRating() float64 {
	if len(p.Comments) == 0 {
		return 0
	}
	var sum float64
	for _, c := range p.Comments {
		sum += c.ProfileRating
	}
	return sum / float64(len(p.Comments))
}

// ProfileRepository defines persistence for profiles and their comments
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	// GetByUserID returns nil, nil when the profile does not exist
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	Replace(ctx context.Context, profile *Profile) error
	UpdatePictureURL(ctx context.Context, userID string, url *string, modifiedAt time.Time) error

	AddComment(ctx context.Context, userID string, comment ProfileComment) error
	// UpdateComment replaces content and rating of the comment by comment.AuthorID
	UpdateComment(ctx context.Context, userID string, comment ProfileComment) error
	DeleteComment(ctx context.Context, userID string, authorID string) error
}
