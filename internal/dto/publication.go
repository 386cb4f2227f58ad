package dto

import "time"

// PublicationType is the wire form of a publication type
type PublicationType string

const (
	LostSubject  PublicationType = "LostSubject"
	FoundSubject PublicationType = "FoundSubject"
)

// PublicationState is the wire form of a publication state
type PublicationState string

const (
	Open   PublicationState = "Open"
	Closed PublicationState = "Closed"
)

// SinglePublicationVote is the caller's vote as seen on the wire
type SinglePublicationVote string

const (
	NoVote SinglePublicationVote = "NoVote"
	Up     SinglePublicationVote = "Up"
	Down   SinglePublicationVote = "Down"
)

// CreatePublicationRequest is the body of POST /v1/publications
type CreatePublicationRequest struct {
	Title             string          `json:"title" validate:"required,max=200"`
	Description       string          `json:"description" validate:"required,max=2000"`
	IncidentAddress   string          `json:"incidentAddress" validate:"required"`
	IncidentDate      time.Time       `json:"incidentDate" validate:"notfuture"`
	SubjectCategoryID string          `json:"subjectCategoryId" validate:"required,category"`
	PublicationType   PublicationType `json:"publicationType" validate:"pubtype"`
}

// UpdatePublicationDetailsRequest is the body of PUT /v1/publications/:id
type UpdatePublicationDetailsRequest struct {
	Title             string           `json:"title" validate:"required,max=200"`
	Description       string           `json:"description" validate:"required,max=2000"`
	IncidentAddress   string           `json:"incidentAddress" validate:"required"`
	IncidentDate      time.Time        `json:"incidentDate" validate:"notfuture"`
	SubjectCategoryID string           `json:"subjectCategoryId" validate:"required,category"`
	PublicationType   PublicationType  `json:"publicationType" validate:"pubtype"`
	PublicationState  PublicationState `json:"publicationState" validate:"pubstate"`
}

type UpdatePublicationStateRequest struct {
	PublicationState PublicationState `json:"publicationState" validate:"pubstate"`
}

type UpdatePublicationRatingRequest struct {
	NewPublicationVote SinglePublicationVote `json:"newPublicationVote" validate:"vote"`
}

// PublicationsResourceParameters are the listing query parameters
type PublicationsResourceParameters struct {
	PageNumber           int              `json:"pageNumber" validate:"min=1"`
	PageSize             int              `json:"pageSize" validate:"min=1"`
	OnlyUserPublications bool             `json:"onlyUserPublications"`
	SubjectCategoryID    *string          `json:"subjectCategoryId,omitempty"`
	PublicationState     PublicationState `json:"publicationState" validate:"pubstate"`
	PublicationType      PublicationType  `json:"publicationType" validate:"pubtype"`
	SearchQuery          string           `json:"searchQuery,omitempty"`
	FromDate             *time.Time       `json:"fromDate,omitempty"`
	ToDate               *time.Time       `json:"toDate,omitempty"`
}

// DefaultResourceParameters returns the listing defaults: first page, open found-subject publications
func DefaultResourceParameters(pageSize int) PublicationsResourceParameters {
	return PublicationsResourceParameters{
		PageNumber:       1,
		PageSize:         pageSize,
		PublicationState: Open,
		PublicationType:  FoundSubject,
	}
}

// Author is the public identity of a publication owner
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// PublicationBaseData is a listing row
type PublicationBaseData struct {
	PublicationID   string                `json:"publicationId"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	SubjectPhotoURL *string               `json:"subjectPhotoUrl"`
	IncidentAddress string                `json:"incidentAddress"`
	IncidentDate    time.Time             `json:"incidentDate"`
	AggregateRating int64                 `json:"aggregateRating"`
	UserVote        SinglePublicationVote `json:"userVote"`
}

// PublicationDetails is the full view of a single publication
type PublicationDetails struct {
	PublicationBaseData
	SubjectCategoryID    string           `json:"subjectCategoryId"`
	PublicationType      PublicationType  `json:"publicationType"`
	PublicationState     PublicationState `json:"publicationState"`
	CreationTime         time.Time        `json:"creationTime"`
	LastModificationDate time.Time        `json:"lastModificationDate"`
	Author               Author           `json:"author"`
}

// Category is a selectable subject category
type Category struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
