package post

import (
	"errors"
	"time"
)

type Type string

const (
	TypeInformative Type = "informative"
	TypeFunFact     Type = "fun_fact"
	TypePromotional Type = "promotional"
)

// WeeklyMix is the number of posts of each type generated per week.
var WeeklyMix = map[Type]int{
	TypeInformative: 3,
	TypeFunFact:     2,
	TypePromotional: 2,
}

// PostsPerWeek is the sum of WeeklyMix.
const PostsPerWeek = 7

func (t Type) Valid() bool {
	_, ok := WeeklyMix[t]
	return ok
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusPublishing Status = "publishing"
	StatusPosted     Status = "posted"
	StatusFailed     Status = "failed"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotEditable       = errors.New("post can no longer be edited")
	ErrNotApproved       = errors.New("post must be approved before publishing")
	ErrAlreadyClaimed    = errors.New("post is already being published or was published")
)

type Post struct {
	ID             string     `json:"id"`
	BusinessID     string     `json:"business_id"`
	PostType       Type       `json:"post_type"`
	Content        string     `json:"content"`
	ImageURL       string     `json:"image_url,omitempty"`
	Status         Status     `json:"status"`
	ScheduledFor   time.Time  `json:"scheduled_for"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	FacebookPostID string     `json:"facebook_post_id,omitempty"`
	Error          string     `json:"error,omitempty"`
	ClaimedAt      *time.Time `json:"claimed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsDue reports whether the worker may publish p at now.
func (p Post) IsDue(now time.Time) bool {
	return p.Status == StatusApproved && p.PostedAt == nil && !p.ScheduledFor.After(now)
}

// WeekSchedule records one generate-week call.
type WeekSchedule struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	WeekStarting time.Time `json:"week_starting"`
	IsGenerated  bool      `json:"is_generated"`
	CreatedAt    time.Time `json:"created_at"`
}

// reviewSources lists, per target, the states a reviewer may move a post from.
// publishing and posted are never sources; publishing is only set by the worker.
var reviewSources = map[Status][]Status{
	StatusApproved: {StatusPending, StatusRejected, StatusFailed},
	StatusRejected: {StatusPending, StatusApproved},
	StatusPending:  {StatusApproved, StatusRejected},
}

// ReviewSources returns the states from which a reviewer may set target.
func ReviewSources(target Status) []Status {
	return reviewSources[target]
}

// CanReview reports whether a reviewer may move a post from -> to.
func CanReview(from, to Status) bool {
	for _, s := range reviewSources[to] {
		if s == from {
			return true
		}
	}
	return false
}

// Editable reports whether content and image may still change.
func (p Post) Editable() bool {
	return p.Status != StatusPosted && p.Status != StatusPublishing
}

// ListFilter narrows ListByBusiness. Zero value lists everything, newest first.
type ListFilter struct {
	Status          Status
	From            *time.Time
	To              *time.Time
	OrderBySchedule bool
}

// PublishResult is the outcome of publishing one post.
type PublishResult struct {
	PostID         string `json:"post_id"`
	BusinessID     string `json:"business_id,omitempty"`
	Success        bool   `json:"success"`
	FacebookPostID string `json:"facebook_post_id,omitempty"`
	Error          string `json:"error,omitempty"`
}

// PublishReport aggregates results for one publish pass.
type PublishReport struct {
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Results    []PublishResult `json:"results"`
}

func (r *PublishReport) Add(res PublishResult) {
	r.Total++
	if res.Success {
		r.Successful++
	} else {
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

func (r *PublishReport) Merge(other PublishReport) {
	for _, res := range other.Results {
		r.Add(res)
	}
}
