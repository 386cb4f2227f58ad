package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lostandfound/backend/internal/clock"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProfileFixture(t *testing.T) (*ProfileService, *memStorage, *clock.Fixed, string) {
	t.Helper()
	storage := newMemStorage()
	clk := &clock.Fixed{At: testNow}
	svc := NewProfileService(newMemProfiles(), storage, clk, zap.NewNop())
	ownerID := uuid.NewString()
	require.NoError(t, svc.CreateProfile(context.Background(), ownerID, "owner", "owner@example.com"))
	return svc, storage, clk, ownerID
}

func TestProfile_CreateTwice(t *testing.T) {
	svc, _, _, ownerID := newProfileFixture(t)
	err := svc.CreateProfile(context.Background(), ownerID, "owner", "owner@example.com")
	assert.True(t, domain.IsBadRequest(err))
}

func TestProfile_GetAndUpdate(t *testing.T) {
	svc, _, clk, ownerID := newProfileFixture(t)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, "garbage")
	assert.True(t, domain.IsNotFound(err))
	_, err = svc.GetProfile(ctx, uuid.NewString())
	assert.True(t, domain.IsNotFound(err))

	clk.At = testNow.Add(time.Hour)
	out, err := svc.UpdateProfile(ctx, ownerID, &dto.UpdateProfileRequest{
		Name:        "Jane",
		Surname:     "Doe",
		City:        "Warsaw",
		PhoneNumber: "+48123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Name)
	assert.Equal(t, "owner", out.Username, "username is not editable")

	got, err := svc.GetProfile(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "Warsaw", got.City)
	assert.Zero(t, got.AverageProfileRating)
}

func TestProfile_Picture(t *testing.T) {
	svc, storage, _, ownerID := newProfileFixture(t)
	ctx := context.Background()

	assert.True(t, domain.IsNotFound(svc.DeleteProfilePicture(ctx, ownerID)))

	_, err := svc.UpdateProfilePicture(ctx, ownerID, &domain.File{Name: "me.png"})
	assert.True(t, domain.IsBadRequest(err))

	out, err := svc.UpdateProfilePicture(ctx, ownerID, &domain.File{Name: "me.png", Content: []byte{1}})
	require.NoError(t, err)
	require.NotNil(t, out.PictureURL)

	_, err = svc.UpdateProfilePicture(ctx, ownerID, &domain.File{Name: "me2.png", Content: []byte{2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"blob-1.jpg"}, storage.deleted)

	require.NoError(t, svc.DeleteProfilePicture(ctx, ownerID))
	got, err := svc.GetProfile(ctx, ownerID)
	require.NoError(t, err)
	assert.Nil(t, got.PictureURL)
}

func TestProfile_Comments(t *testing.T) {
	svc, _, clk, ownerID := newProfileFixture(t)
	ctx := context.Background()
	me := uuid.NewString()

	_, err := svc.AddComment(ctx, ownerID, "owner", ownerID, &dto.ProfileCommentRequest{Content: "me", ProfileRating: 5})
	assert.True(t, domain.IsBadRequest(err), "cannot comment own profile")

	_, err = svc.UpdateComment(ctx, me, ownerID, &dto.ProfileCommentRequest{Content: "x", ProfileRating: 1})
	assert.True(t, domain.IsNotFound(err))

	for i := 0; i < 3; i++ {
		clk.At = testNow.Add(time.Duration(i) * time.Minute)
		_, err := svc.AddComment(ctx, uuid.NewString(), fmt.Sprintf("user%d", i), ownerID, &dto.ProfileCommentRequest{
			Content:       fmt.Sprintf("comment %d", i),
			ProfileRating: 4,
		})
		require.NoError(t, err)
	}

	mine, err := svc.AddComment(ctx, me, "me", ownerID, &dto.ProfileCommentRequest{Content: "great", ProfileRating: 2})
	require.NoError(t, err)
	assert.Equal(t, me, mine.Author.ID)

	_, err = svc.AddComment(ctx, me, "me", ownerID, &dto.ProfileCommentRequest{Content: "again", ProfileRating: 2})
	assert.True(t, domain.IsBadRequest(err), "one comment per author")

	section, meta, err := svc.GetProfileComments(ctx, me, ownerID, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, section.MyComment)
	assert.Equal(t, "great", section.MyComment.Content)
	require.Len(t, section.Comments, 2)
	assert.Equal(t, "comment 2", section.Comments[0].Content)
	assert.Equal(t, dto.PaginationMetadata{TotalItemCount: 3, PageSize: 2, CurrentPage: 1, TotalPageCount: 2}, meta)

	require.NotPanics(t, func() {
		section, _, err = svc.GetProfileComments(ctx, me, ownerID, math.MaxInt, 2)
	})
	require.NoError(t, err)
	assert.Empty(t, section.Comments)

	profile, err := svc.GetProfile(ctx, ownerID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, profile.AverageProfileRating, 0.001)

	updated, err := svc.UpdateComment(ctx, me, ownerID, &dto.ProfileCommentRequest{Content: "changed", ProfileRating: 4})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Content)

	require.NoError(t, svc.DeleteComment(ctx, me, ownerID))
	assert.True(t, domain.IsNotFound(svc.DeleteComment(ctx, me, ownerID)))

	section, _, err = svc.GetProfileComments(ctx, me, ownerID, 1, 10)
	require.NoError(t, err)
	assert.Nil(t, section.MyComment)
	assert.Len(t, section.Comments, 3)
}
