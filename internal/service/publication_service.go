package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/lostandfound/backend/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var publicationTracer = otel.Tracer("service.publications")

// PublicationService implements the publication workflow: creation, owner-only edits,
// photo management, listing and voting.
//
// Every operation is a sequential read-modify-write against the repository.
// There is no locking or version check, so concurrent edits are last-write-wins.
type PublicationService struct {
	publications domain.PublicationRepository
	categories   domain.CategoryRepository
	storage      domain.FileStorage
	clock        domain.Clock
	metrics      *telemetry.PublicationMetrics
	logger       *zap.Logger
}

// NewPublicationService creates a new publication service
func NewPublicationService(
	publications domain.PublicationRepository,
	categories domain.CategoryRepository,
	storage domain.FileStorage,
	clock domain.Clock,
	logger *zap.Logger,
) *PublicationService {
	logger = logger.Named("publications")

	metrics, err := telemetry.NewPublicationMetrics(otel.GetMeterProvider())
	if err != nil {
		logger.Warn("publication metrics disabled", zap.Error(err))
	}

	return &PublicationService{
		publications: publications,
		categories:   categories,
		storage:      storage,
		clock:        clock,
		metrics:      metrics,
		logger:       logger,
	}
}

// CreatePublication stores a new open publication owned by the caller.
// A non-nil photo is uploaded first and must not be empty.
func (s *PublicationService) CreatePublication(ctx context.Context, callerID, username string, req *dto.CreatePublicationRequest, photo *domain.File) (*dto.PublicationDetails, error) {
	ctx, span := startPublicationSpan(ctx, "CreatePublication")
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, req.SubjectCategoryID)
	if err != nil {
		return nil, err
	}

	publication, err := publicationFromCreateRequest(req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	publication.ExposedID = uuid.NewString()
	publication.CreationTime = now
	publication.LastModificationDate = now
	publication.Author = domain.Author{ID: userID, Username: username}
	publication.SubjectCategoryName = category.DisplayName

	if photo != nil {
		url, err := s.uploadPhoto(ctx, photo)
		if err != nil {
			return nil, err
		}
		publication.SubjectPhotoURL = &url
	}

	if err := s.publications.Insert(ctx, publication); err != nil {
		return nil, fmt.Errorf("failed to save publication: %w", err)
	}

	s.metrics.PublicationCreated(ctx, string(publication.Type))
	s.logger.Info("publication created",
		zap.String("publication_id", publication.ExposedID),
		zap.String("author_id", userID),
	)

	return s.details(ctx, publication.ExposedID, userID)
}

// UpdatePublicationPhoto replaces the subject photo. The previous blob is deleted first.
func (s *PublicationService) UpdatePublicationPhoto(ctx context.Context, photo *domain.File, callerID, publicationID string) (*dto.PublicationDetails, error) {
	ctx, span := startPublicationSpan(ctx, "UpdatePublicationPhoto", attribute.String("publication.id", publicationID))
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	publication, err := s.authorize(ctx, userID, publicationID)
	if err != nil {
		return nil, err
	}

	if photo == nil || photo.Size() == 0 {
		return nil, domain.BadRequest("The subject photo is incorrect.")
	}

	if publication.SubjectPhotoURL != nil {
		if err := s.deleteBlob(ctx, *publication.SubjectPhotoURL); err != nil {
			return nil, err
		}
	}

	url, err := s.uploadPhoto(ctx, photo)
	if err != nil {
		return nil, err
	}

	if err := s.publications.UpdatePhotoURL(ctx, publication.ExposedID, &url, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("failed to save photo url: %w", err)
	}

	return s.details(ctx, publication.ExposedID, userID)
}

// DeletePublicationPhoto removes the blob and clears the stored URL
func (s *PublicationService) DeletePublicationPhoto(ctx context.Context, callerID, publicationID string) error {
	ctx, span := startPublicationSpan(ctx, "DeletePublicationPhoto", attribute.String("publication.id", publicationID))
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return err
	}
	publication, err := s.authorize(ctx, userID, publicationID)
	if err != nil {
		return err
	}

	if publication.SubjectPhotoURL == nil {
		return domain.NotFound("Publication photo not found.")
	}
	if err := s.deleteBlob(ctx, *publication.SubjectPhotoURL); err != nil {
		return err
	}

	if err := s.publications.UpdatePhotoURL(ctx, publication.ExposedID, nil, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to clear photo url: %w", err)
	}
	return nil
}

// UpdatePublicationDetails overwrites the editable fields of an owned publication
func (s *PublicationService) UpdatePublicationDetails(ctx context.Context, callerID, publicationID string, req *dto.UpdatePublicationDetailsRequest) (*dto.PublicationDetails, error) {
	ctx, span := startPublicationSpan(ctx, "UpdatePublicationDetails", attribute.String("publication.id", publicationID))
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, req.SubjectCategoryID)
	if err != nil {
		return nil, err
	}

	publication, err := s.authorize(ctx, userID, publicationID)
	if err != nil {
		return nil, err
	}

	if err := applyDetailsUpdate(publication, req); err != nil {
		return nil, err
	}
	publication.SubjectCategoryName = category.DisplayName
	publication.LastModificationDate = s.clock.Now()

	if err := s.publications.Replace(ctx, publication); err != nil {
		return nil, fmt.Errorf("failed to update publication: %w", err)
	}

	return s.details(ctx, publication.ExposedID, userID)
}

// DeletePublication removes an owned publication and its votes.
// The photo blob, if any, is left in storage.
func (s *PublicationService) DeletePublication(ctx context.Context, callerID, publicationID string) error {
	ctx, span := startPublicationSpan(ctx, "DeletePublication", attribute.String("publication.id", publicationID))
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return err
	}
	publication, err := s.authorize(ctx, userID, publicationID)
	if err != nil {
		return err
	}

	if err := s.publications.DeleteByExposedID(ctx, publication.ExposedID); err != nil {
		return fmt.Errorf("failed to delete publication: %w", err)
	}

	s.logger.Info("publication deleted", zap.String("publication_id", publication.ExposedID))
	return nil
}

// GetPublications returns one page of publications matching params, newest incidents first.
// The caller's own vote is resolved on every row.
func (s *PublicationService) GetPublications(ctx context.Context, callerID string, params *dto.PublicationsResourceParameters) ([]dto.PublicationBaseData, dto.PaginationMetadata, error) {
	ctx, span := startPublicationSpan(ctx, "GetPublications")
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, err
	}

	filter, err := buildPublicationFilter(params, userID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, err
	}

	publications, err := s.publications.Find(ctx, filter)
	if err != nil {
		return nil, dto.PaginationMetadata{}, fmt.Errorf("failed to list publications: %w", err)
	}

	sortByIncidentDateDesc(publications)

	total := len(publications)
	start, end := dto.PageBounds(total, params.PageNumber, params.PageSize)
	page := make([]dto.PublicationBaseData, 0, end-start)
	for _, p := range publications[start:end] {
		page = append(page, toPublicationBaseData(p, voteToDTO(p.FindVote(userID))))
	}

	span.SetAttributes(attribute.Int("publications.total", total))
	return page, dto.NewPaginationMetadata(total, params.PageSize, params.PageNumber), nil
}

// UpdatePublicationState opens or closes an owned publication
func (s *PublicationService) UpdatePublicationState(ctx context.Context, callerID, publicationID string, req *dto.UpdatePublicationStateRequest) (*dto.PublicationDetails, error) {
	ctx, span := startPublicationSpan(ctx, "UpdatePublicationState", attribute.String("publication.id", publicationID))
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	publication, err := s.authorize(ctx, userID, publicationID)
	if err != nil {
		return nil, err
	}

	state, err := stateFromDTO(req.PublicationState)
	if err != nil {
		return nil, err
	}

	if err := s.publications.UpdateState(ctx, publication.ExposedID, state, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("failed to update publication state: %w", err)
	}

	return s.details(ctx, publication.ExposedID, userID)
}

// UpdatePublicationRating sets, changes or withdraws the caller's vote.
// Any authenticated caller may vote, including the author.
func (s *PublicationService) UpdatePublicationRating(ctx context.Context, callerID, publicationID string, req *dto.UpdatePublicationRatingRequest) (*dto.PublicationDetails, error) {
	ctx, span := startPublicationSpan(ctx, "UpdatePublicationRating", attribute.String("publication.id", publicationID))
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	publication, err := s.getPublication(ctx, publicationID)
	if err != nil {
		return nil, err
	}

	existing := publication.FindVote(userID)

	switch req.NewPublicationVote {
	case dto.NoVote:
		if existing != nil {
			if err := s.publications.DeleteVote(ctx, publication.ExposedID, userID); err != nil {
				return nil, fmt.Errorf("failed to delete vote: %w", err)
			}
		}
	case dto.Up, dto.Down:
		rating, err := ratingFromDTO(req.NewPublicationVote)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			existing.Rating = rating
			if err := s.publications.UpdateVote(ctx, publication.ExposedID, *existing); err != nil {
				return nil, fmt.Errorf("failed to update vote: %w", err)
			}
		} else {
			vote := domain.Vote{
				VoterID:      userID,
				Rating:       rating,
				CreationDate: s.clock.Now(),
			}
			if err := s.publications.InsertVote(ctx, publication.ExposedID, vote); err != nil {
				return nil, fmt.Errorf("failed to add vote: %w", err)
			}
		}
	default:
		return nil, domain.BadRequest("The vote data is incorrect.")
	}
	s.metrics.VoteCast(ctx, string(req.NewPublicationVote))

	return s.details(ctx, publication.ExposedID, userID)
}

// GetPublicationDetails returns a single publication with the caller's vote
func (s *PublicationService) GetPublicationDetails(ctx context.Context, callerID, publicationID string) (*dto.PublicationDetails, error) {
	ctx, span := startPublicationSpan(ctx, "GetPublicationDetails", attribute.String("publication.id", publicationID))
	defer span.End()

	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, publicationID, userID)
}

// authorize loads the publication and checks the caller is its author
func (s *PublicationService) authorize(ctx context.Context, userID, publicationID string) (*domain.Publication, error) {
	publication, err := s.getPublication(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if !publication.IsOwnedBy(userID) {
		return nil, domain.Unauthorized("You are not the author of this publication.")
	}
	return publication, nil
}

// getPublication loads a publication by its exposed id. Malformed ids cannot exist.
func (s *PublicationService) getPublication(ctx context.Context, publicationID string) (*domain.Publication, error) {
	id, err := uuid.Parse(publicationID)
	if err != nil {
		return nil, domain.NotFound("Publication not found.")
	}
	publication, err := s.publications.GetByExposedID(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get publication: %w", err)
	}
	if publication == nil {
		return nil, domain.NotFound("Publication not found.")
	}
	return publication, nil
}

func (s *PublicationService) details(ctx context.Context, publicationID, userID string) (*dto.PublicationDetails, error) {
	publication, err := s.getPublication(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	return toPublicationDetails(publication, voteToDTO(publication.FindVote(userID))), nil
}

func (s *PublicationService) resolveCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.categories.GetByExposedID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, domain.BadRequest("Category with this id does not exist.")
	}
	return category, nil
}

func (s *PublicationService) uploadPhoto(ctx context.Context, photo *domain.File) (string, error) {
	if photo.Size() == 0 {
		return "", domain.BadRequest("The subject photo is incorrect.")
	}
	url, err := s.storage.Upload(ctx, photo)
	s.metrics.PhotoUploaded(ctx, err == nil)
	if err != nil {
		s.logger.Error("photo upload failed", zap.String("file_name", photo.Name), zap.Error(err))
		return "", domain.BadRequest("The subject photo could not be uploaded.")
	}
	return url, nil
}

func (s *PublicationService) deleteBlob(ctx context.Context, photoURL string) error {
	name, ok := domain.BlobNameFromURL(photoURL)
	if !ok {
		return domain.NotFound("Publication photo not found.")
	}
	if err := s.storage.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

// buildPublicationFilter maps listing parameters onto a repository filter
func buildPublicationFilter(params *dto.PublicationsResourceParameters, userID string) (domain.PublicationFilter, error) {
	state, err := stateFromDTO(params.PublicationState)
	if err != nil {
		return domain.PublicationFilter{}, err
	}
	pubType, err := typeFromDTO(params.PublicationType)
	if err != nil {
		return domain.PublicationFilter{}, err
	}

	filter := domain.PublicationFilter{
		State:      state,
		Type:       pubType,
		CategoryID: params.SubjectCategoryID,
		Search:     params.SearchQuery,
	}
	if params.OnlyUserPublications {
		filter.AuthorID = &userID
	}
	if params.FromDate != nil {
		from := params.FromDate.UTC()
		filter.From = &from
	}
	if params.ToDate != nil {
		to := params.ToDate.UTC()
		filter.To = &to
	}
	return filter, nil
}

// parseCallerID canonicalises the authenticated caller id
func parseCallerID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", domain.Unauthorized("Invalid caller identity.")
	}
	return id.String(), nil
}

func startPublicationSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return publicationTracer.Start(ctx, "PublicationService."+name, trace.WithAttributes(attrs...))
}
