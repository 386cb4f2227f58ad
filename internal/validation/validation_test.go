package validation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lostandfound/backend/internal/clock"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type stubCategories map[string]bool

func (s stubCategories) Exists(_ context.Context, id string) (bool, error) {
	if id == "broken" {
		return false, errors.New("mongo down")
	}
	return s[id], nil
}

func newValidator() *Validator {
	return New(clock.Fixed{At: now}, stubCategories{"cat-1": true}, 50)
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field] = fe.Message
	}
	return out
}

func validCreate() dto.CreatePublicationRequest {
	return dto.CreatePublicationRequest{
		Title:             "Black wallet",
		Description:       "Leather wallet found on a bench",
		IncidentAddress:   "Main square 1",
		IncidentDate:      now.Add(-time.Hour),
		SubjectCategoryID: "cat-1",
		PublicationType:   dto.FoundSubject,
	}
}

func TestCreatePublicationRequest(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		req := validCreate()
		assert.NoError(t, v.Struct(ctx, &req))
	})

	t.Run("incident date equal to now is allowed", func(t *testing.T) {
		req := validCreate()
		req.IncidentDate = now
		assert.NoError(t, v.Struct(ctx, &req))
	})

	tests := []struct {
		name   string
		mutate func(r *dto.CreatePublicationRequest)
		field  string
	}{
		{name: "empty title", mutate: func(r *dto.CreatePublicationRequest) { r.Title = "" }, field: "title"},
		{name: "empty description", mutate: func(r *dto.CreatePublicationRequest) { r.Description = "" }, field: "description"},
		{name: "empty address", mutate: func(r *dto.CreatePublicationRequest) { r.IncidentAddress = "" }, field: "incidentAddress"},
		{name: "zero date", mutate: func(r *dto.CreatePublicationRequest) { r.IncidentDate = time.Time{} }, field: "incidentDate"},
		{name: "future date", mutate: func(r *dto.CreatePublicationRequest) { r.IncidentDate = now.Add(time.Minute) }, field: "incidentDate"},
		{name: "unknown category", mutate: func(r *dto.CreatePublicationRequest) { r.SubjectCategoryID = "cat-2" }, field: "subjectCategoryId"},
		{name: "category lookup failure", mutate: func(r *dto.CreatePublicationRequest) { r.SubjectCategoryID = "broken" }, field: "subjectCategoryId"},
		{name: "bad type", mutate: func(r *dto.CreatePublicationRequest) { r.PublicationType = "Stolen" }, field: "publicationType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(&req)
			got := fields(t, v.Struct(ctx, &req))
			assert.Contains(t, got, tt.field)
		})
	}
}

func TestUpdateRequests(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	assert.NoError(t, v.Struct(ctx, &dto.UpdatePublicationStateRequest{PublicationState: dto.Closed}))
	assert.Contains(t, fields(t, v.Struct(ctx, &dto.UpdatePublicationStateRequest{PublicationState: "Archived"})), "publicationState")

	for _, vote := range []dto.SinglePublicationVote{dto.NoVote, dto.Up, dto.Down} {
		assert.NoError(t, v.Struct(ctx, &dto.UpdatePublicationRatingRequest{NewPublicationVote: vote}))
	}
	assert.Contains(t, fields(t, v.Struct(ctx, &dto.UpdatePublicationRatingRequest{NewPublicationVote: "Sideways"})), "newPublicationVote")
}

func TestResourceParameters(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	params := dto.DefaultResourceParameters(20)
	assert.NoError(t, v.ResourceParameters(ctx, &params))

	params.PageSize = 51
	assert.Contains(t, fields(t, v.ResourceParameters(ctx, &params)), "pageSize")

	params = dto.DefaultResourceParameters(20)
	params.PageNumber = 0
	assert.Contains(t, fields(t, v.ResourceParameters(ctx, &params)), "pageNumber")

	params = dto.DefaultResourceParameters(20)
	from, to := now, now.Add(-time.Hour)
	params.FromDate, params.ToDate = &from, &to
	assert.Contains(t, fields(t, v.ResourceParameters(ctx, &params)), "fromDate")
}

func TestRegisterRequest(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	req := dto.RegisterRequest{Email: "jane@example.com", Username: "janedoe", Password: "secret1", ConfirmPassword: "secret1"}
	assert.NoError(t, v.Struct(ctx, &req))

	req.ConfirmPassword = "secret2"
	req.Username = "jane"
	got := fields(t, v.Struct(ctx, &req))
	assert.Contains(t, got, "confirmPassword")
	assert.Contains(t, got, "username")
}

func TestProfileCommentRequest(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	assert.NoError(t, v.Struct(ctx, &dto.ProfileCommentRequest{Content: "Honest finder", ProfileRating: 5}))
	assert.NoError(t, v.Struct(ctx, &dto.ProfileCommentRequest{Content: "Meh", ProfileRating: 0}))

	got := fields(t, v.Struct(ctx, &dto.ProfileCommentRequest{Content: "", ProfileRating: 5.5}))
	assert.Contains(t, got, "content")
	assert.Contains(t, got, "profileRating")
}

func TestErrorsMessage(t *testing.T) {
	err := Errors{{Field: "title", Message: "is required"}}
	assert.Equal(t, "validation failed: title: is required", err.Error())
}
