package validations

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/timeutils"
)

const maxPromptLength = 2000

// stringValue dereferences optional request fields.
func stringValue(value any) string {
	v, isNil := validation.Indirect(value)
	if isNil {
		return ""
	}
	s, _ := v.(string)
	return s
}

var weekdayRule = validation.By(func(value any) error {
	s := stringValue(value)
	if s == "" {
		return nil
	}
	if _, err := timeutils.ParseWeekday(s); err != nil {
		return errors.New("must be a day name (Sunday..Saturday) or 0..6")
	}
	return nil
})

var timezoneRule = validation.By(func(value any) error {
	s := stringValue(value)
	if _, err := timeutils.LoadLocation(s); err != nil {
		return errors.New("must be a valid IANA timezone")
	}
	return nil
})

func ValidateCreateBusiness(ctx context.Context, request domainBusiness.CreateBusinessRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.BusinessName, validation.Required, validation.Length(1, 200)),
		validation.Field(&request.SlowestDay, validation.Required, weekdayRule),
		validation.Field(&request.Timezone, timezoneRule),
		validation.Field(&request.Email, is.EmailFormat),
		validation.Field(&request.NotificationEmail, is.EmailFormat),
		validation.Field(&request.Website, is.URL),
		validation.Field(&request.FacebookPageID, validation.When(request.FacebookAccessToken != "", validation.Required.Error("is required when an access token is set"))),
		validation.Field(&request.CustomPromptInformative, validation.Length(0, maxPromptLength)),
		validation.Field(&request.CustomPromptFunFact, validation.Length(0, maxPromptLength)),
		validation.Field(&request.CustomPromptPromotional, validation.Length(0, maxPromptLength)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateUpdateBusiness(ctx context.Context, request domainBusiness.UpdateBusinessRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.BusinessName, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&request.SlowestDay, validation.NilOrNotEmpty, weekdayRule),
		validation.Field(&request.Timezone, timezoneRule),
		validation.Field(&request.Email, is.EmailFormat),
		validation.Field(&request.NotificationEmail, is.EmailFormat),
		validation.Field(&request.Website, is.URL),
		validation.Field(&request.CustomPromptInformative, validation.Length(0, maxPromptLength)),
		validation.Field(&request.CustomPromptFunFact, validation.Length(0, maxPromptLength)),
		validation.Field(&request.CustomPromptPromotional, validation.Length(0, maxPromptLength)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
