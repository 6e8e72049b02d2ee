package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/imbizlab/groomflo-app/domains/notification"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
)

func ValidateTestEmail(ctx context.Context, request notification.TestEmailRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Email, validation.Required, is.EmailFormat),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
