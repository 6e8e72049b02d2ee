package usecase

import (
	"context"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/publisher"
	"github.com/sirupsen/logrus"
)

type servicePublish struct {
	businesses domainBusiness.IBusinessRepository
	posts      domainPost.IPostRepository
	executor   *publisher.Executor
}

func NewPublishService(businesses domainBusiness.IBusinessRepository, posts domainPost.IPostRepository, executor *publisher.Executor) domainPost.IPublishUsecase {
	return &servicePublish{
		businesses: businesses,
		posts:      posts,
		executor:   executor,
	}
}

// PublishScheduled runs one worker pass for a single business.
func (s *servicePublish) PublishScheduled(ctx context.Context, businessID string) (domainPost.PublishReport, error) {
	b, err := s.businesses.Get(ctx, businessID)
	if err != nil {
		return domainPost.PublishReport{}, mapError(err)
	}
	if !b.HasFacebook() {
		return domainPost.PublishReport{}, pkgError.ValidationError(domainBusiness.ErrMissingCredentials.Error())
	}

	report, err := s.executor.PublishDue(ctx, b)
	if err != nil {
		return report, err
	}
	logrus.Infof("[PUBLISHER] Manual pass for %s: %d/%d published", b.ID, report.Successful, report.Total)
	return report, nil
}

// PublishNow publishes an approved post immediately, ignoring its schedule.
func (s *servicePublish) PublishNow(ctx context.Context, postID string) (domainPost.PublishResult, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return domainPost.PublishResult{}, mapError(err)
	}
	b, err := s.businesses.Get(ctx, p.BusinessID)
	if err != nil {
		return domainPost.PublishResult{}, mapError(err)
	}
	if !b.HasFacebook() {
		return domainPost.PublishResult{}, pkgError.ValidationError(domainBusiness.ErrMissingCredentials.Error())
	}

	res, err := s.executor.Publish(ctx, b, p)
	if err != nil {
		return res, mapError(err)
	}
	return res, nil
}
