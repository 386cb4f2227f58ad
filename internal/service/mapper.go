package service

import (
	"sort"

	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
)

func typeFromDTO(t dto.PublicationType) (domain.PublicationType, error) {
	switch t {
	case dto.LostSubject:
		return domain.PublicationTypeLostSubject, nil
	case dto.FoundSubject:
		return domain.PublicationTypeFoundSubject, nil
	}
	return "", domain.BadRequest("The publication type is incorrect.")
}

func typeToDTO(t domain.PublicationType) dto.PublicationType {
	if t == domain.PublicationTypeLostSubject {
		return dto.LostSubject
	}
	return dto.FoundSubject
}

func stateFromDTO(s dto.PublicationState) (domain.PublicationState, error) {
	switch s {
	case dto.Open:
		return domain.PublicationStateOpen, nil
	case dto.Closed:
		return domain.PublicationStateClosed, nil
	}
	return "", domain.BadRequest("The publication state is incorrect.")
}

func stateToDTO(s domain.PublicationState) dto.PublicationState {
	if s == domain.PublicationStateClosed {
		return dto.Closed
	}
	return dto.Open
}

// ratingFromDTO maps an Up or Down vote. NoVote has no persisted rating.
func ratingFromDTO(v dto.SinglePublicationVote) (domain.Rating, error) {
	switch v {
	case dto.Up:
		return domain.RatingUp, nil
	case dto.Down:
		return domain.RatingDown, nil
	}
	return "", domain.BadRequest("The vote data is incorrect.")
}

func voteToDTO(v *domain.Vote) dto.SinglePublicationVote {
	if v == nil {
		return dto.NoVote
	}
	switch v.Rating {
	case domain.RatingUp:
		return dto.Up
	case domain.RatingDown:
		return dto.Down
	}
	return dto.NoVote
}

// publicationFromCreateRequest maps the request fields only. Identity, author,
// timestamps and category name are filled in by the service.
func publicationFromCreateRequest(req *dto.CreatePublicationRequest) (*domain.Publication, error) {
	pubType, err := typeFromDTO(req.PublicationType)
	if err != nil {
		return nil, err
	}
	return &domain.Publication{
		Title:             req.Title,
		Description:       req.Description,
		IncidentAddress:   req.IncidentAddress,
		IncidentDate:      req.IncidentDate.UTC(),
		SubjectCategoryID: req.SubjectCategoryID,
		Type:              pubType,
		State:             domain.PublicationStateOpen,
		Votes:             []domain.Vote{},
	}, nil
}

// applyDetailsUpdate copies the editable fields onto an existing publication.
// Identity, author, votes, photo and creation time are preserved.
func applyDetailsUpdate(p *domain.Publication, req *dto.UpdatePublicationDetailsRequest) error {
	pubType, err := typeFromDTO(req.PublicationType)
	if err != nil {
		return err
	}
	state, err := stateFromDTO(req.PublicationState)
	if err != nil {
		return err
	}
	p.Title = req.Title
	p.Description = req.Description
	p.IncidentAddress = req.IncidentAddress
	p.IncidentDate = req.IncidentDate.UTC()
	p.SubjectCategoryID = req.SubjectCategoryID
	p.Type = pubType
	p.State = state
	return nil
}

func toPublicationBaseData(p *domain.Publication, userVote dto.SinglePublicationVote) dto.PublicationBaseData {
	return dto.PublicationBaseData{
		PublicationID:   p.ExposedID,
		Title:           p.Title,
		Description:     p.Description,
		SubjectPhotoURL: p.SubjectPhotoURL,
		IncidentAddress: p.IncidentAddress,
		IncidentDate:    p.IncidentDate,
		AggregateRating: p.AggregateRating(),
		UserVote:        userVote,
	}
}

func toPublicationDetails(p *domain.Publication, userVote dto.SinglePublicationVote) *dto.PublicationDetails {
	return &dto.PublicationDetails{
		PublicationBaseData:  toPublicationBaseData(p, userVote),
		SubjectCategoryID:    p.SubjectCategoryID,
		PublicationType:      typeToDTO(p.Type),
		PublicationState:     stateToDTO(p.State),
		CreationTime:         p.CreationTime,
		LastModificationDate: p.LastModificationDate,
		Author: dto.Author{
			ID:       p.Author.ID,
			Username: p.Author.Username,
		},
	}
}

func toCategoryDTO(c *domain.Category) dto.Category {
	return dto.Category{ID: c.ExposedID, DisplayName: c.DisplayName}
}

func toProfileDetails(p *domain.Profile) *dto.ProfileDetails {
	return &dto.ProfileDetails{
		UserID:               p.UserID,
		Username:             p.Username,
		Email:                p.Email,
		Name:                 p.Name,
		Surname:              p.Surname,
		Description:          p.Description,
		City:                 p.City,
		PhoneNumber:          p.PhoneNumber,
		PictureURL:           p.PictureURL,
		AverageProfileRating: p.AverageRating(),
	}
}

func applyProfileUpdate(p *domain.Profile, req *dto.UpdateProfileRequest) {
	p.Name = req.Name
	p.Surname = req.Surname
	p.Description = req.Description
	p.City = req.City
	p.PhoneNumber = req.PhoneNumber
}

func toProfileCommentDTO(c *domain.ProfileComment) dto.ProfileComment {
	return dto.ProfileComment{
		Author:        dto.Author{ID: c.AuthorID, Username: c.AuthorUsername},
		Content:       c.Content,
		ProfileRating: c.ProfileRating,
		CreationTime:  c.CreationTime,
	}
}

// sortByIncidentDateDesc orders newest incidents first, keeping ties stable
func sortByIncidentDateDesc(pubs []*domain.Publication) {
	sort.SliceStable(pubs, func(i, j int) bool {
		return pubs[i].IncidentDate.After(pubs[j].IncidentDate)
	})
}
