package dto

import "time"

type UpdateProfileRequest struct {
	Name        string `json:"name" validate:"max=50"`
	Surname     string `json:"surname" validate:"max=50"`
	Description string `json:"description" validate:"max=500"`
	City        string `json:"city" validate:"max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,e164"`
}

type ProfileDetails struct {
	UserID               string  `json:"userId"`
	Username             string  `json:"username"`
	Email                string  `json:"email"`
	Name                 string  `json:"name"`
	Surname              string  `json:"surname"`
	Description          string  `json:"description"`
	City                 string  `json:"city"`
	PhoneNumber          string  `json:"phoneNumber"`
	PictureURL           *string `json:"pictureUrl"`
	AverageProfileRating float64 `json:"averageProfileRating"`
}

type ProfileCommentRequest struct {
	Content       string  `json:"content" validate:"required,max=1000"`
	ProfileRating float64 `json:"profileRating" validate:"gte=0,lte=5"`
}

type ProfileComment struct {
	Author        Author    `json:"author"`
	Content       string    `json:"content"`
	ProfileRating float64   `json:"profileRating"`
	CreationTime  time.Time `json:"creationTime"`
}

// ProfileCommentsSection splits the caller's own comment from the paged list of others
type ProfileCommentsSection struct {
	MyComment *ProfileComment  `json:"myComment"`
	Comments  []ProfileComment `json:"comments"`
}
