package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
	"go.uber.org/zap"
)

// ProfileService manages user profiles, profile pictures and profile comments
type ProfileService struct {
	profiles domain.ProfileRepository
	storage  domain.FileStorage
	clock    domain.Clock
	logger   *zap.Logger
}

func NewProfileService(profiles domain.ProfileRepository, storage domain.FileStorage, clock domain.Clock, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		storage:  storage,
		clock:    clock,
		logger:   logger.Named("profiles"),
	}
}

// CreateProfile stores an empty profile for a freshly registered user
func (s *ProfileService) CreateProfile(ctx context.Context, userID, username, email string) error {
	now := s.clock.Now()
	profile := &domain.Profile{
		UserID:    userID,
		Username:  username,
		Email:     email,
		Comments:  []domain.ProfileComment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return domain.BadRequest("Profile already exists.")
		}
		return err
	}
	return nil
}

// EnsureProfile creates the profile of an existing account when it is missing
func (s *ProfileService) EnsureProfile(ctx context.Context, userID, username, email string) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if profile != nil {
		return nil
	}

	s.logger.Info("creating missing profile", zap.String("user_id", userID))
	if err := s.CreateProfile(ctx, userID, username, email); err != nil && !domain.IsBadRequest(err) {
		return err
	}
	return nil
}

// GetProfile returns any user's profile with the average comment rating
func (s *ProfileService) GetProfile(ctx context.Context, rawUserID string) (*dto.ProfileDetails, error) {
	profile, err := s.loadProfile(ctx, rawUserID)
	if err != nil {
		return nil, err
	}
	return toProfileDetails(profile), nil
}

// UpdateProfile edits the caller's own profile
func (s *ProfileService) UpdateProfile(ctx context.Context, callerID string, req *dto.UpdateProfileRequest) (*dto.ProfileDetails, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyProfileUpdate(profile, req)
	profile.UpdatedAt = s.clock.Now()

	if err := s.profiles.Replace(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return toProfileDetails(profile), nil
}

// UpdateProfilePicture replaces the caller's picture, deleting the previous blob
func (s *ProfileService) UpdateProfilePicture(ctx context.Context, callerID string, picture *domain.File) (*dto.ProfileDetails, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if picture == nil || picture.Size() == 0 {
		return nil, domain.BadRequest("The profile picture is incorrect.")
	}

	if profile.PictureURL != nil {
		if err := s.deleteBlob(ctx, *profile.PictureURL); err != nil {
			return nil, err
		}
	}

	url, err := s.storage.Upload(ctx, picture)
	if err != nil {
		s.logger.Error("picture upload failed", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.BadRequest("The profile picture could not be uploaded.")
	}

	now := s.clock.Now()
	if err := s.profiles.UpdatePictureURL(ctx, userID, &url, now); err != nil {
		return nil, fmt.Errorf("failed to save picture url: %w", err)
	}

	profile.PictureURL = &url
	profile.UpdatedAt = now
	return toProfileDetails(profile), nil
}

// DeleteProfilePicture removes the caller's picture
func (s *ProfileService) DeleteProfilePicture(ctx context.Context, callerID string) error {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return err
	}
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return err
	}

	if profile.PictureURL == nil {
		return domain.NotFound("Profile picture not found.")
	}
	if err := s.deleteBlob(ctx, *profile.PictureURL); err != nil {
		return err
	}

	if err := s.profiles.UpdatePictureURL(ctx, userID, nil, s.clock.Now()); err != nil {
		return fmt.Errorf("failed to clear picture url: %w", err)
	}
	return nil
}

// GetProfileComments returns the caller's own comment separately and pages the others,
// newest first.
func (s *ProfileService) GetProfileComments(ctx context.Context, callerID, profileUserID string, pageNumber, pageSize int) (*dto.ProfileCommentsSection, dto.PaginationMetadata, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, err
	}
	profile, err := s.loadProfile(ctx, profileUserID)
	if err != nil {
		return nil, dto.PaginationMetadata{}, err
	}

	section := &dto.ProfileCommentsSection{Comments: []dto.ProfileComment{}}
	others := make([]domain.ProfileComment, 0, len(profile.Comments))
	for i := range profile.Comments {
		c := profile.Comments[i]
		if c.AuthorID == userID {
			mine := toProfileCommentDTO(&c)
			section.MyComment = &mine
			continue
		}
		others = append(others, c)
	}

	sort.SliceStable(others, func(i, j int) bool {
		return others[i].CreationTime.After(others[j].CreationTime)
	})

	start, end := dto.PageBounds(len(others), pageNumber, pageSize)
	for i := start; i < end; i++ {
		section.Comments = append(section.Comments, toProfileCommentDTO(&others[i]))
	}

	return section, dto.NewPaginationMetadata(len(others), pageSize, pageNumber), nil
}

// AddComment posts the caller's single comment on another user's profile
func (s *ProfileService) AddComment(ctx context.Context, callerID, callerUsername, profileUserID string, req *dto.ProfileCommentRequest) (*dto.ProfileComment, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile(ctx, profileUserID)
	if err != nil {
		return nil, err
	}

	if profile.UserID == userID {
		return nil, domain.BadRequest("You cannot comment your own profile.")
	}
	if profile.FindComment(userID) != nil {
		return nil, domain.BadRequest("You have already commented this profile.")
	}

	comment := domain.ProfileComment{
		AuthorID:       userID,
		AuthorUsername: callerUsername,
		Content:        req.Content,
		ProfileRating:  req.ProfileRating,
		CreationTime:   s.clock.Now(),
	}
	if err := s.profiles.AddComment(ctx, profile.UserID, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	out := toProfileCommentDTO(&comment)
	return &out, nil
}

// UpdateComment edits the caller's comment on a profile
func (s *ProfileService) UpdateComment(ctx context.Context, callerID, profileUserID string, req *dto.ProfileCommentRequest) (*dto.ProfileComment, error) {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile(ctx, profileUserID)
	if err != nil {
		return nil, err
	}

	existing := profile.FindComment(userID)
	if existing == nil {
		return nil, domain.NotFound("Comment not found.")
	}

	existing.Content = req.Content
	existing.ProfileRating = req.ProfileRating
	if err := s.profiles.UpdateComment(ctx, profile.UserID, *existing); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	out := toProfileCommentDTO(existing)
	return &out, nil
}

// DeleteComment removes the caller's comment from a profile
func (s *ProfileService) DeleteComment(ctx context.Context, callerID, profileUserID string) error {
	userID, err := parseCallerID(callerID)
	if err != nil {
		return err
	}
	profile, err := s.loadProfile(ctx, profileUserID)
	if err != nil {
		return err
	}

	if profile.FindComment(userID) == nil {
		return domain.NotFound("Comment not found.")
	}
	if err := s.profiles.DeleteComment(ctx, profile.UserID, userID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (s *ProfileService) loadProfile(ctx context.Context, rawUserID string) (*domain.Profile, error) {
	id, err := uuid.Parse(rawUserID)
	if err != nil {
		return nil, domain.NotFound("Profile not found.")
	}
	profile, err := s.profiles.GetByUserID(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, domain.NotFound("Profile not found.")
	}
	return profile, nil
}

func (s *ProfileService) deleteBlob(ctx context.Context, pictureURL string) error {
	name, ok := domain.BlobNameFromURL(pictureURL)
	if !ok {
		return domain.NotFound("Profile picture not found.")
	}
	if err := s.storage.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete picture: %w", err)
	}
	return nil
}
