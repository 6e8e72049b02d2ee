package validations

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/timeutils"
)

const maxContentLength = 5000

var reviewStatuses = []any{
	string(domainPost.StatusApproved),
	string(domainPost.StatusRejected),
	string(domainPost.StatusPending),
}

var listStatuses = []any{
	string(domainPost.StatusPending),
	string(domainPost.StatusApproved),
	string(domainPost.StatusRejected),
	string(domainPost.StatusPublishing),
	string(domainPost.StatusPosted),
	string(domainPost.StatusFailed),
}

var weekStartRule = validation.By(func(value any) error {
	s := stringValue(value)
	if s == "" {
		return nil
	}
	if _, err := timeutils.ParseDateInLocation(s, time.UTC); err != nil {
		return errors.New("must be YYYY-MM-DD or RFC3339")
	}
	return nil
})

func ValidateGenerateWeek(ctx context.Context, request domainPost.GenerateWeekRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.WeekStartDate, weekStartRule),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateListPosts(ctx context.Context, request domainPost.ListPostsRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Status, validation.In(listStatuses...)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateReviewPost(ctx context.Context, request domainPost.ReviewPostRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Status, validation.Required, validation.In(reviewStatuses...)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateUpdatePost(ctx context.Context, request domainPost.UpdatePostRequest) error {
	if request.Content == nil && request.ImageURL == nil && request.Status == nil {
		return pkgError.ValidationError("at least one of content, image_url or status is required")
	}

	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Content, validation.NilOrNotEmpty, validation.Length(1, maxContentLength)),
		validation.Field(&request.ImageURL, is.URL),
		validation.Field(&request.Status, validation.NilOrNotEmpty, validation.In(reviewStatuses...)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
