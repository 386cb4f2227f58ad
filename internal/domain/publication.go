package domain

import (
	"context"
	"strings"
	"time"
)

// PublicationType tells whether the subject was lost or found
type PublicationType string

const (
	PublicationTypeLostSubject  PublicationType = "lost_subject"
	PublicationTypeFoundSubject PublicationType = "found_subject"
)

// PublicationState tells whether the publication is still active
type PublicationState string

const (
	PublicationStateOpen   PublicationState = "open"
	PublicationStateClosed PublicationState = "closed"
)

// Rating is the direction of a persisted vote. "No vote" is never stored.
type Rating string

const (
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
)

// Author is the denormalized owner of a publication
type Author struct {
	ID       string `bson:"id" json:"id"`
	Username string `bson:"username" json:"username"`
}

// Vote is one user's rating of a publication
type Vote struct {
	VoterID      string    `bson:"voter_id" json:"voter_id"`
	Rating       Rating    `bson:"rating" json:"rating"`
	CreationDate time.Time `bson:"creation_date" json:"creation_date"`
}

// Publication is a lost or found report
type Publication struct {
	ID                   string           `bson:"_id,omitempty" json:"-"`
	ExposedID            string           `bson:"exposed_id" json:"id"`
	Title                string           `bson:"title" json:"title"`
	Description          string           `bson:"description" json:"description"`
	SubjectPhotoURL      *string          `bson:"subject_photo_url,omitempty" json:"subject_photo_url,omitempty"`
	IncidentAddress      string           `bson:"incident_address" json:"incident_address"`
	IncidentDate         time.Time        `bson:"incident_date" json:"incident_date"`
	CreationTime         time.Time        `bson:"creation_time" json:"creation_time"`
	LastModificationDate time.Time        `bson:"last_modification_date" json:"last_modification_date"`
	Author               Author           `bson:"author" json:"author"`
	SubjectCategoryID    string           `bson:"subject_category_id" json:"subject_category_id"`
	SubjectCategoryName  string           `bson:"subject_category_name" json:"subject_category_name"`
	Type                 PublicationType  `bson:"type" json:"type"`
	State                PublicationState `bson:"state" json:"state"`
	Votes                []Vote           `bson:"votes" json:"votes"`
}

// FindVote returns the vote cast by voterID, or nil if the voter has not voted
func (p *Publication) FindVote(voterID string) *Vote {
	for i := range p.Votes {
		if p.Votes[i].VoterID == voterID {
			return &p.Votes[i]
		}
	}
	return nil
}

// AggregateRating is the number of up votes minus the number of down votes
func (p *Publication) AggregateRating() int64 {
	var total int64
	for _, v := range p.Votes {
		switch v.Rating {
		case RatingUp:
			total++
		case RatingDown:
			total--
		}
	}
	return total
}

// IsOwnedBy reports whether userID authored the publication
func (p *Publication) IsOwnedBy(userID string) bool {
	return p.Author.ID == userID
}

// PublicationFilter selects publications for the listing endpoint.
// All set conditions must hold.
type PublicationFilter struct {
	State      PublicationState
	Type       PublicationType
	AuthorID   *string
	CategoryID *string
	From       *time.Time
	To         *time.Time
	Search     string
}

// Matches evaluates the filter against a single publication in memory.
// The Mongo query built from the same filter has identical semantics.
func (f PublicationFilter) Matches(p *Publication) bool {
	if p.State != f.State || p.Type != f.Type {
		return false
	}
	if f.AuthorID != nil && p.Author.ID != *f.AuthorID {
		return false
	}
	if f.CategoryID != nil && p.SubjectCategoryID != *f.CategoryID {
		return false
	}
	if f.From != nil && p.IncidentDate.Before(*f.From) {
		return false
	}
	if f.To != nil && p.IncidentDate.After(*f.To) {
		return false
	}
	if f.Search != "" && !strings.Contains(p.Title, f.Search) && !strings.Contains(p.Description, f.Search) {
		return false
	}
	return true
}

// PublicationRepository defines persistence for publications and their votes
type PublicationRepository interface {
	Insert(ctx context.Context, publication *Publication) error
	// Replace overwrites the stored document with the same exposed id
	Replace(ctx context.Context, publication *Publication) error
	// GetByExposedID returns nil, nil when the publication does not exist
	GetByExposedID(ctx context.Context, id string) (*Publication, error)
	DeleteByExposedID(ctx context.Context, id string) error
	// Find returns every publication matching the filter, unordered
	Find(ctx context.Context, filter PublicationFilter) ([]*Publication, error)

	// UpdatePhotoURL sets the photo URL, or clears it when url is nil
	UpdatePhotoURL(ctx context.Context, id string, url *string, modifiedAt time.Time) error
	UpdateState(ctx context.Context, id string, state PublicationState, modifiedAt time.Time) error

	InsertVote(ctx context.Context, id string, vote Vote) error
	// UpdateVote changes the rating of the vote cast by vote.VoterID
	UpdateVote(ctx context.Context, id string, vote Vote) error
	DeleteVote(ctx context.Context, id string, voterID string) error
}
