package validations

import (
	"context"
	"testing"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/domains/notification"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	if assert.Error(t, err) {
		_, ok := err.(pkgError.ValidationError)
		assert.True(t, ok, "expected ValidationError, got %T", err)
	}
}

func TestValidateCreateBusiness(t *testing.T) {
	ctx := context.Background()
	valid := domainBusiness.CreateBusinessRequest{
		BusinessName: "Pampered Paws",
		SlowestDay:   "Tuesday",
		Timezone:     "America/Chicago",
		Email:        "owner@paws.example",
		Website:      "https://paws.example",
	}
	assert.NoError(t, ValidateCreateBusiness(ctx, valid))

	numeric := valid
	numeric.SlowestDay = "2"
	assert.NoError(t, ValidateCreateBusiness(ctx, numeric))

	cases := map[string]func(r *domainBusiness.CreateBusinessRequest){
		"missing name":       func(r *domainBusiness.CreateBusinessRequest) { r.BusinessName = "" },
		"missing slowest":    func(r *domainBusiness.CreateBusinessRequest) { r.SlowestDay = "" },
		"bad slowest":        func(r *domainBusiness.CreateBusinessRequest) { r.SlowestDay = "Funday" },
		"bad timezone":       func(r *domainBusiness.CreateBusinessRequest) { r.Timezone = "Mars/Olympus" },
		"bad email":          func(r *domainBusiness.CreateBusinessRequest) { r.Email = "nope" },
		"bad website":        func(r *domainBusiness.CreateBusinessRequest) { r.Website = "not a url" },
		"token without page": func(r *domainBusiness.CreateBusinessRequest) { r.FacebookAccessToken = "tok" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := valid
			mutate(&r)
			assertValidationError(t, ValidateCreateBusiness(ctx, r))
		})
	}
}

func TestValidateUpdateBusiness(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidateUpdateBusiness(ctx, domainBusiness.UpdateBusinessRequest{}))
	assert.NoError(t, ValidateUpdateBusiness(ctx, domainBusiness.UpdateBusinessRequest{SlowestDay: strPtr("friday")}))

	assertValidationError(t, ValidateUpdateBusiness(ctx, domainBusiness.UpdateBusinessRequest{BusinessName: strPtr("")}))
	assertValidationError(t, ValidateUpdateBusiness(ctx, domainBusiness.UpdateBusinessRequest{SlowestDay: strPtr("someday")}))
	assertValidationError(t, ValidateUpdateBusiness(ctx, domainBusiness.UpdateBusinessRequest{Timezone: strPtr("Nowhere/City")}))
}

func TestValidateGenerateWeek(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidateGenerateWeek(ctx, domainPost.GenerateWeekRequest{}))
	assert.NoError(t, ValidateGenerateWeek(ctx, domainPost.GenerateWeekRequest{WeekStartDate: "2024-03-04"}))
	assert.NoError(t, ValidateGenerateWeek(ctx, domainPost.GenerateWeekRequest{WeekStartDate: "2024-03-04T10:00:00Z"}))
	assertValidationError(t, ValidateGenerateWeek(ctx, domainPost.GenerateWeekRequest{WeekStartDate: "next monday"}))
}

func TestValidateReviewAndList(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidateReviewPost(ctx, domainPost.ReviewPostRequest{Status: "approved"}))
	assertValidationError(t, ValidateReviewPost(ctx, domainPost.ReviewPostRequest{Status: "posted"}))
	assertValidationError(t, ValidateReviewPost(ctx, domainPost.ReviewPostRequest{}))

	assert.NoError(t, ValidateListPosts(ctx, domainPost.ListPostsRequest{}))
	assert.NoError(t, ValidateListPosts(ctx, domainPost.ListPostsRequest{Status: "failed"}))
	assertValidationError(t, ValidateListPosts(ctx, domainPost.ListPostsRequest{Status: "archived"}))
}

func TestValidateUpdatePost(t *testing.T) {
	ctx := context.Background()
	assertValidationError(t, ValidateUpdatePost(ctx, domainPost.UpdatePostRequest{}))
	assert.NoError(t, ValidateUpdatePost(ctx, domainPost.UpdatePostRequest{Content: strPtr("new text")}))
	assert.NoError(t, ValidateUpdatePost(ctx, domainPost.UpdatePostRequest{ImageURL: strPtr("")}))
	assertValidationError(t, ValidateUpdatePost(ctx, domainPost.UpdatePostRequest{Content: strPtr("")}))
	assertValidationError(t, ValidateUpdatePost(ctx, domainPost.UpdatePostRequest{ImageURL: strPtr("not a url")}))
	assertValidationError(t, ValidateUpdatePost(ctx, domainPost.UpdatePostRequest{Status: strPtr("posted")}))
}

func TestValidateTestEmail(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, ValidateTestEmail(ctx, notification.TestEmailRequest{Email: "a@b.example"}))
	assertValidationError(t, ValidateTestEmail(ctx, notification.TestEmailRequest{}))
	assertValidationError(t, ValidateTestEmail(ctx, notification.TestEmailRequest{Email: "not-an-email"}))
}
