package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/domains/content"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/timeutils"
	"github.com/imbizlab/groomflo-app/planner"
	"github.com/imbizlab/groomflo-app/validations"
	"github.com/sirupsen/logrus"
)

type servicePost struct {
	businesses domainBusiness.IBusinessRepository
	posts      domainPost.IPostRepository
	generator  content.IContentGenerator
	planner    *planner.Planner
	now        func() time.Time
}

// NewPostService wires the week orchestrator. generator may be nil, in which
// case GenerateWeek fails with a generation error.
func NewPostService(businesses domainBusiness.IBusinessRepository, posts domainPost.IPostRepository, generator content.IContentGenerator, weekPlanner *planner.Planner) domainPost.IPostUsecase {
	return &servicePost{
		businesses: businesses,
		posts:      posts,
		generator:  generator,
		planner:    weekPlanner,
		now:        time.Now,
	}
}

func (s *servicePost) GenerateWeek(ctx context.Context, businessID string, request domainPost.GenerateWeekRequest) (domainPost.GenerateWeekResponse, error) {
	if err := validations.ValidateGenerateWeek(ctx, request); err != nil {
		return domainPost.GenerateWeekResponse{}, err
	}

	b, err := s.businesses.Get(ctx, businessID)
	if err != nil {
		return domainPost.GenerateWeekResponse{}, mapError(err)
	}

	loc := b.Location()
	weekStart := s.now().In(loc)
	if strings.TrimSpace(request.WeekStartDate) != "" {
		weekStart, err = timeutils.ParseDateInLocation(request.WeekStartDate, loc)
		if err != nil {
			return domainPost.GenerateWeekResponse{}, pkgError.ValidationError(err.Error())
		}
	}
	weekStart = timeutils.StartOfDay(weekStart)

	slots, err := s.planner.Plan(b.SlowestDay, weekStart)
	if err != nil {
		return domainPost.GenerateWeekResponse{}, pkgError.ValidationError(err.Error())
	}

	if s.generator == nil {
		return domainPost.GenerateWeekResponse{}, pkgError.GenerationError("content generator is not configured")
	}

	logrus.Infof("[GENERATOR] Generating week of %s for %s", weekStart.Format("2006-01-02"), b.BusinessName)
	items, err := s.generator.GenerateWeeklyContent(ctx, b)
	if err != nil {
		logrus.WithError(err).Errorf("[GENERATOR] Content generation failed for %s", b.ID)
		return domainPost.GenerateWeekResponse{}, pkgError.GenerationError(fmt.Sprintf("content generation failed: %v", err))
	}
	if err := content.ValidateMix(items); err != nil {
		return domainPost.GenerateWeekResponse{}, pkgError.GenerationError(fmt.Sprintf("content generation returned an unexpected mix: %v", err))
	}

	posts := assignContent(b.ID, slots, items)
	week := domainPost.WeekSchedule{
		BusinessID:   b.ID,
		WeekStarting: weekStart,
		IsGenerated:  true,
	}
	if err := s.posts.CreateWeek(ctx, &week, posts); err != nil {
		return domainPost.GenerateWeekResponse{}, fmt.Errorf("store generated week: %w", err)
	}

	res := domainPost.GenerateWeekResponse{Week: week, Posts: make([]domainPost.Post, 0, len(posts))}
	for _, p := range posts {
		res.Posts = append(res.Posts, *p)
	}
	logrus.Infof("[GENERATOR] Stored %d posts for %s", len(res.Posts), b.ID)
	return res, nil
}

// assignContent pairs the k-th item of each type with the k-th slot of that
// type. Slots are in time order, so the result is too.
func assignContent(businessID string, slots []planner.Slot, items []content.GeneratedPost) []*domainPost.Post {
	byType := make(map[domainPost.Type][]content.GeneratedPost)
	for _, it := range items {
		byType[it.PostType] = append(byType[it.PostType], it)
	}

	posts := make([]*domainPost.Post, 0, len(slots))
	for _, slot := range slots {
		queue := byType[slot.PostType]
		it := queue[0]
		byType[slot.PostType] = queue[1:]

		posts = append(posts, &domainPost.Post{
			BusinessID:   businessID,
			PostType:     slot.PostType,
			Content:      it.Content,
			ImageURL:     it.ImageURL,
			Status:       domainPost.StatusPending,
			ScheduledFor: slot.ScheduledFor,
		})
	}
	return posts
}

func (s *servicePost) List(ctx context.Context, businessID string, request domainPost.ListPostsRequest) ([]domainPost.Post, error) {
	if err := validations.ValidateListPosts(ctx, request); err != nil {
		return nil, err
	}
	return s.list(ctx, businessID, domainPost.ListFilter{Status: domainPost.Status(request.Status)})
}

// ListPending returns posts waiting for review, newest first.
func (s *servicePost) ListPending(ctx context.Context, businessID string) ([]domainPost.Post, error) {
	return s.list(ctx, businessID, domainPost.ListFilter{Status: domainPost.StatusPending})
}

// ListScheduled returns every post of the business in schedule order.
func (s *servicePost) ListScheduled(ctx context.Context, businessID string) ([]domainPost.Post, error) {
	return s.list(ctx, businessID, domainPost.ListFilter{OrderBySchedule: true})
}

func (s *servicePost) list(ctx context.Context, businessID string, filter domainPost.ListFilter) ([]domainPost.Post, error) {
	if _, err := s.businesses.Get(ctx, businessID); err != nil {
		return nil, mapError(err)
	}
	return s.posts.ListByBusiness(ctx, businessID, filter)
}

func (s *servicePost) ListWeeks(ctx context.Context, businessID string) ([]domainPost.WeekSchedule, error) {
	if _, err := s.businesses.Get(ctx, businessID); err != nil {
		return nil, mapError(err)
	}
	return s.posts.ListWeeks(ctx, businessID)
}

func (s *servicePost) Get(ctx context.Context, id string) (domainPost.Post, error) {
	p, err := s.posts.Get(ctx, id)
	if err != nil {
		return domainPost.Post{}, mapError(err)
	}
	return p, nil
}

// Update edits content and image, then applies the status change if one is requested.
func (s *servicePost) Update(ctx context.Context, id string, request domainPost.UpdatePostRequest) (domainPost.Post, error) {
	if err := validations.ValidateUpdatePost(ctx, request); err != nil {
		return domainPost.Post{}, err
	}

	var (
		p   domainPost.Post
		err error
	)
	if request.Content != nil || request.ImageURL != nil {
		p, err = s.posts.UpdateContent(ctx, id, request.Content, request.ImageURL)
		if err != nil {
			return domainPost.Post{}, mapError(err)
		}
	}

	if request.Status != nil {
		p, err = s.posts.Review(ctx, id, domainPost.Status(*request.Status))
		if err != nil {
			return domainPost.Post{}, mapError(err)
		}
	}
	return p, nil
}

func (s *servicePost) Review(ctx context.Context, id string, request domainPost.ReviewPostRequest) (domainPost.Post, error) {
	if err := validations.ValidateReviewPost(ctx, request); err != nil {
		return domainPost.Post{}, err
	}
	p, err := s.posts.Review(ctx, id, domainPost.Status(request.Status))
	if err != nil {
		return domainPost.Post{}, mapError(err)
	}
	logrus.Debugf("[POST] Post %s is now %s", p.ID, p.Status)
	return p, nil
}

func (s *servicePost) Delete(ctx context.Context, id string) error {
	return mapError(s.posts.Delete(ctx, id))
}
