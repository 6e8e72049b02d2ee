package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imbizlab/groomflo-app/digest"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/domains/notification"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/timeutils"
	"github.com/imbizlab/groomflo-app/validations"
	"github.com/sirupsen/logrus"
)

type serviceDigest struct {
	businesses domainBusiness.IBusinessRepository
	posts      domainPost.IPostRepository
	notifier   notification.INotifier
	now        func() time.Time
}

func NewDigestService(businesses domainBusiness.IBusinessRepository, posts domainPost.IPostRepository, notifier notification.INotifier) notification.IDigestUsecase {
	return &serviceDigest{
		businesses: businesses,
		posts:      posts,
		notifier:   notifier,
		now:        time.Now,
	}
}

// SendDailyDigests emails every opted-in business the posts of day, taken in
// the business timezone. One failing business does not stop the others.
func (s *serviceDigest) SendDailyDigests(ctx context.Context, day time.Time) (notification.DigestReport, error) {
	report := notification.DigestReport{}

	recipients, err := s.businesses.ListDigestRecipients(ctx)
	if err != nil {
		return report, fmt.Errorf("list digest recipients: %w", err)
	}

	for _, b := range recipients {
		to := recipientOf(b)
		if to == "" {
			logrus.Debugf("[DIGEST] Skipping %s: no notification email configured", b.BusinessName)
			report.Skipped++
			continue
		}

		count, err := s.send(ctx, b, to, day)
		if errors.Is(err, notification.ErrNotifierDisabled) {
			logrus.Info("[DIGEST] Email notifications disabled: Close API key is not configured")
			report.Skipped += len(recipients) - report.Sent - report.Failed - report.Skipped
			return report, nil
		}
		if err != nil {
			logrus.WithError(err).Errorf("[DIGEST] Failed to send digest for %s", b.BusinessName)
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", b.ID, err))
			continue
		}
		logrus.Infof("[DIGEST] Sent daily digest to %s for %s (%d posts)", to, b.BusinessName, count)
		report.Sent++
	}
	return report, nil
}

// SendTest sends today's digest of one business to an arbitrary address.
func (s *serviceDigest) SendTest(ctx context.Context, businessID string, request notification.TestEmailRequest) error {
	if err := validations.ValidateTestEmail(ctx, request); err != nil {
		return err
	}
	b, err := s.businesses.Get(ctx, businessID)
	if err != nil {
		return mapError(err)
	}

	if _, err := s.send(ctx, b, strings.TrimSpace(request.Email), s.now()); err != nil {
		if errors.Is(err, notification.ErrNotifierDisabled) {
			return pkgError.ValidationError(err.Error())
		}
		return pkgError.InternalServerError(fmt.Sprintf("failed to send test email: %v", err))
	}
	return nil
}

func (s *serviceDigest) send(ctx context.Context, b domainBusiness.Business, to string, day time.Time) (int, error) {
	local := day.In(b.Location())
	start := timeutils.StartOfDay(local)
	end := timeutils.AddDays(start, 1).Add(-time.Nanosecond)

	posts, err := s.posts.ListByBusiness(ctx, b.ID, domainPost.ListFilter{From: &start, To: &end, OrderBySchedule: true})
	if err != nil {
		return 0, fmt.Errorf("list posts: %w", err)
	}

	html, err := digest.Render(b, local, posts, s.now())
	if err != nil {
		return 0, fmt.Errorf("render digest: %w", err)
	}

	err = s.notifier.Send(ctx, notification.Email{
		To:      to,
		Name:    b.BusinessName,
		Subject: digest.Subject(local),
		HTML:    html,
	})
	return len(posts), err
}

func recipientOf(b domainBusiness.Business) string {
	if e := strings.TrimSpace(b.NotificationEmail); e != "" {
		return e
	}
	return strings.TrimSpace(b.Email)
}
