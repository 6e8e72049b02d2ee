package usecase

import (
	"errors"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/utils"
)

// mapError turns domain sentinels into errors the REST layer knows how to render.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var generic pkgError.GenericError
	if errors.As(err, &generic) {
		return err
	}
	switch {
	case utils.IsAny(err, domainPost.ErrPostNotFound, domainBusiness.ErrBusinessNotFound):
		return pkgError.NotFoundError(err.Error())
	case utils.IsAny(err, domainPost.ErrInvalidTransition, domainPost.ErrNotEditable, domainPost.ErrNotApproved, domainPost.ErrAlreadyClaimed):
		return pkgError.ConflictError(err.Error())
	}
	return err
}
