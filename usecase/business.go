package usecase

import (
	"context"
	"strings"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/domains/platform"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/timeutils"
	"github.com/imbizlab/groomflo-app/validations"
	"github.com/sirupsen/logrus"
)

type serviceBusiness struct {
	repo            domainBusiness.IBusinessRepository
	poster          platform.IPlatformPoster
	defaultTimezone string
}

func NewBusinessService(repo domainBusiness.IBusinessRepository, poster platform.IPlatformPoster, defaultTimezone string) domainBusiness.IBusinessUsecase {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &serviceBusiness{
		repo:            repo,
		poster:          poster,
		defaultTimezone: defaultTimezone,
	}
}

func (s *serviceBusiness) Create(ctx context.Context, request domainBusiness.CreateBusinessRequest) (domainBusiness.BusinessView, error) {
	if err := validations.ValidateCreateBusiness(ctx, request); err != nil {
		return domainBusiness.BusinessView{}, err
	}

	slowest, err := timeutils.ParseWeekday(request.SlowestDay)
	if err != nil {
		return domainBusiness.BusinessView{}, pkgError.ValidationError(err.Error())
	}

	timezone := strings.TrimSpace(request.Timezone)
	if timezone == "" {
		timezone = s.defaultTimezone
	}

	b := domainBusiness.Business{
		UserID:                  request.UserID,
		BusinessName:            strings.TrimSpace(request.BusinessName),
		Address:                 request.Address,
		Phone:                   request.Phone,
		Email:                   request.Email,
		Website:                 request.Website,
		Hours:                   request.Hours,
		SlowestDay:              slowest,
		Timezone:                timezone,
		FacebookPageID:          strings.TrimSpace(request.FacebookPageID),
		FacebookAccessToken:     strings.TrimSpace(request.FacebookAccessToken),
		CustomPromptInformative: request.CustomPromptInformative,
		CustomPromptFunFact:     request.CustomPromptFunFact,
		CustomPromptPromotional: request.CustomPromptPromotional,
		NotificationEmail:       request.NotificationEmail,
		DailyEmailNotifications: true,
	}
	if request.DailyEmailNotifications != nil {
		b.DailyEmailNotifications = *request.DailyEmailNotifications
	}

	if err := s.repo.Create(ctx, &b); err != nil {
		return domainBusiness.BusinessView{}, err
	}
	logrus.Infof("[BUSINESS] Created business %s (%s)", b.BusinessName, b.ID)
	return domainBusiness.NewView(b), nil
}

func (s *serviceBusiness) Update(ctx context.Context, id string, request domainBusiness.UpdateBusinessRequest) (domainBusiness.BusinessView, error) {
	if err := validations.ValidateUpdateBusiness(ctx, request); err != nil {
		return domainBusiness.BusinessView{}, err
	}

	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domainBusiness.BusinessView{}, mapError(err)
	}

	if request.SlowestDay != nil {
		slowest, err := timeutils.ParseWeekday(*request.SlowestDay)
		if err != nil {
			return domainBusiness.BusinessView{}, pkgError.ValidationError(err.Error())
		}
		b.SlowestDay = slowest
	}

	setString(&b.BusinessName, request.BusinessName)
	setString(&b.Address, request.Address)
	setString(&b.Phone, request.Phone)
	setString(&b.Email, request.Email)
	setString(&b.Website, request.Website)
	setString(&b.Hours, request.Hours)
	setString(&b.Timezone, request.Timezone)
	setString(&b.FacebookPageID, request.FacebookPageID)
	if request.FacebookAccessToken != nil {
		b.FacebookAccessToken = strings.TrimSpace(*request.FacebookAccessToken)
		b.AccessTokenUnreadable = false
	}
	setString(&b.CustomPromptInformative, request.CustomPromptInformative)
	setString(&b.CustomPromptFunFact, request.CustomPromptFunFact)
	setString(&b.CustomPromptPromotional, request.CustomPromptPromotional)
	setString(&b.NotificationEmail, request.NotificationEmail)
	if request.DailyEmailNotifications != nil {
		b.DailyEmailNotifications = *request.DailyEmailNotifications
	}
	if request.IsOnboarded != nil {
		b.IsOnboarded = *request.IsOnboarded
	}

	if b.FacebookAccessToken != "" && b.FacebookPageID == "" {
		return domainBusiness.BusinessView{}, pkgError.ValidationError("facebook_page_id: cannot be blank when an access token is set.")
	}

	if err := s.repo.Update(ctx, &b); err != nil {
		return domainBusiness.BusinessView{}, mapError(err)
	}
	return domainBusiness.NewView(b), nil
}

func (s *serviceBusiness) Get(ctx context.Context, id string) (domainBusiness.BusinessView, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domainBusiness.BusinessView{}, mapError(err)
	}
	return domainBusiness.NewView(b), nil
}

func (s *serviceBusiness) List(ctx context.Context) ([]domainBusiness.BusinessView, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]domainBusiness.BusinessView, 0, len(list))
	for _, b := range list {
		views = append(views, domainBusiness.NewView(b))
	}
	return views, nil
}

func (s *serviceBusiness) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapError(err)
	}
	logrus.Infof("[BUSINESS] Deleted business %s", id)
	return nil
}

func (s *serviceBusiness) ValidateFacebook(ctx context.Context, id string) (domainBusiness.FacebookValidation, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domainBusiness.FacebookValidation{}, mapError(err)
	}

	res := domainBusiness.FacebookValidation{PageID: b.FacebookPageID}
	if !b.HasFacebook() {
		res.Message = domainBusiness.ErrMissingCredentials.Error()
		return res, nil
	}

	ok, err := s.poster.ValidatePageAccess(ctx, b.FacebookPageID, b.FacebookAccessToken)
	if err != nil {
		logrus.WithError(err).Warnf("[BUSINESS] Could not reach Facebook for %s", b.ID)
		return res, pkgError.InternalServerError("facebook validation failed: " + err.Error())
	}
	res.Valid = ok
	if ok {
		res.Message = "Page access confirmed"
	} else {
		res.Message = "Page id or access token rejected by Facebook"
	}
	return res, nil
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}
