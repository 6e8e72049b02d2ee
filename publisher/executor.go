package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/domains/platform"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/sirupsen/logrus"
)

const DefaultPublishTimeout = 30 * time.Second

var errNoExternalID = errors.New("platform accepted the post without returning its id")

// Executor publishes posts of one business. Every publish goes through
// the store claim, so a post reaches the platform at most once.
type Executor struct {
	posts   domainPost.IPostRepository
	poster  platform.IPlatformPoster
	timeout time.Duration
	now     func() time.Time
}

func NewExecutor(posts domainPost.IPostRepository, poster platform.IPlatformPoster, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Executor{
		posts:   posts,
		poster:  poster,
		timeout: timeout,
		now:     time.Now,
	}
}

// PublishDue publishes the due posts of b one by one in scheduled order.
// Posts claimed by someone else in the meantime are left out of the report.
func (e *Executor) PublishDue(ctx context.Context, b domainBusiness.Business) (domainPost.PublishReport, error) {
	report := domainPost.PublishReport{Results: []domainPost.PublishResult{}}

	due, err := e.posts.ListDue(ctx, b.ID, e.now())
	if err != nil {
		return report, fmt.Errorf("list due posts: %w", err)
	}

	for _, p := range due {
		if ctx.Err() != nil {
			break
		}
		res, err := e.Publish(ctx, b, p)
		if errors.Is(err, domainPost.ErrAlreadyClaimed) {
			continue
		}
		report.Add(res)
	}
	return report, nil
}

// Publish claims p and sends it to the business page. It returns
// ErrAlreadyClaimed when the claim is lost and ErrNotApproved when p is not
// approved. Platform failures are recorded on the post and reported in the
// result, not as an error.
func (e *Executor) Publish(ctx context.Context, b domainBusiness.Business, p domainPost.Post) (domainPost.PublishResult, error) {
	res := domainPost.PublishResult{PostID: p.ID, BusinessID: b.ID}

	switch p.Status {
	case domainPost.StatusApproved:
	case domainPost.StatusPublishing, domainPost.StatusPosted:
		return res, domainPost.ErrAlreadyClaimed
	default:
		return res, domainPost.ErrNotApproved
	}

	claimed, err := e.posts.Claim(ctx, p.ID, e.now())
	if err != nil {
		logrus.WithError(err).Errorf("[PUBLISHER] Failed to claim post %s", p.ID)
		res.Error = fmt.Sprintf("claim failed: %v", err)
		return res, nil
	}
	if !claimed {
		return res, domainPost.ErrAlreadyClaimed
	}

	// the outcome must be written even if ctx is cancelled mid-publish
	storeCtx := context.WithoutCancel(ctx)

	// p may predate an edit; content is frozen from the claim on
	current, err := e.posts.Get(storeCtx, p.ID)
	if err != nil {
		res.Error = fmt.Sprintf("reload failed: %v", err)
		e.markFailed(storeCtx, p, res.Error)
		return res, nil
	}
	p = current

	if !b.HasFacebook() {
		res.Error = domainBusiness.ErrMissingCredentials.Error()
		e.markFailed(storeCtx, p, res.Error)
		return res, nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, e.timeout)
	externalID, err := e.poster.Publish(pubCtx, b.FacebookPageID, b.FacebookAccessToken, p.Content, p.ImageURL)
	cancel()
	if err == nil && externalID == "" {
		err = errNoExternalID
	}

	if err != nil {
		res.Error = err.Error()
		e.markFailed(storeCtx, p, res.Error)
		logrus.WithError(err).WithFields(logrus.Fields{
			"business_id": b.ID,
			"post_id":     p.ID,
		}).Warn("[PUBLISHER] Publish failed")
		return res, nil
	}

	res.Success = true
	res.FacebookPostID = externalID
	if err := e.posts.MarkPosted(storeCtx, p.ID, externalID, e.now()); err != nil {
		// the platform accepted the post; only the bookkeeping failed
		logrus.WithError(err).Errorf("[PUBLISHER] Post %s published as %s but could not be marked posted", p.ID, externalID)
		res.Error = fmt.Sprintf("published but not recorded: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"business_id":      b.ID,
		"post_id":          p.ID,
		"facebook_post_id": externalID,
	}).Info("[PUBLISHER] Post published")
	return res, nil
}

func (e *Executor) markFailed(ctx context.Context, p domainPost.Post, message string) {
	if err := e.posts.MarkFailed(ctx, p.ID, message); err != nil {
		logrus.WithError(err).Errorf("[PUBLISHER] Failed to mark post %s as failed", p.ID)
	}
}
