package post

import (
	"context"
	"time"
)

type IPostRepository interface {
	Create(ctx context.Context, p *Post) error
	// CreateWeek stores the schedule record and all posts atomically.
	CreateWeek(ctx context.Context, week *WeekSchedule, posts []*Post) error
	Get(ctx context.Context, id string) (Post, error)
	ListByBusiness(ctx context.Context, businessID string, filter ListFilter) ([]Post, error)
	ListWeeks(ctx context.Context, businessID string) ([]WeekSchedule, error)
	// ListDue returns approved, unposted posts with ScheduledFor <= now, oldest first.
	ListDue(ctx context.Context, businessID string, now time.Time) ([]Post, error)
	UpdateContent(ctx context.Context, id string, content, imageURL *string) (Post, error)
	// Review moves a post to target if its current state allows it.
	Review(ctx context.Context, id string, target Status) (Post, error)
	// Claim moves an approved, unposted post to publishing. false means another caller won.
	Claim(ctx context.Context, id string, at time.Time) (bool, error)
	MarkPosted(ctx context.Context, id, externalID string, at time.Time) error
	MarkFailed(ctx context.Context, id, message string) error
	// FailStaleClaims fails posts left in publishing since before olderThan.
	FailStaleClaims(ctx context.Context, olderThan time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}
