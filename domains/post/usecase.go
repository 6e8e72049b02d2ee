package post

import "context"

type IPostUsecase interface {
	GenerateWeek(ctx context.Context, businessID string, request GenerateWeekRequest) (GenerateWeekResponse, error)
	List(ctx context.Context, businessID string, request ListPostsRequest) ([]Post, error)
	ListPending(ctx context.Context, businessID string) ([]Post, error)
	ListScheduled(ctx context.Context, businessID string) ([]Post, error)
	ListWeeks(ctx context.Context, businessID string) ([]WeekSchedule, error)
	Get(ctx context.Context, id string) (Post, error)
	Update(ctx context.Context, id string, request UpdatePostRequest) (Post, error)
	Review(ctx context.Context, id string, request ReviewPostRequest) (Post, error)
	Delete(ctx context.Context, id string) error
}

// IPublishUsecase publishes approved posts to the business page.
type IPublishUsecase interface {
	PublishScheduled(ctx context.Context, businessID string) (PublishReport, error)
	PublishNow(ctx context.Context, postID string) (PublishResult, error)
}

type GenerateWeekRequest struct {
	// WeekStartDate is RFC3339 or YYYY-MM-DD; empty means today in the business timezone.
	WeekStartDate string `json:"week_start_date"`
}

type GenerateWeekResponse struct {
	Week  WeekSchedule `json:"week"`
	Posts []Post       `json:"posts"`
}

type ListPostsRequest struct {
	Status string `query:"status"`
}

type UpdatePostRequest struct {
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
	Status   *string `json:"status"`
}

type ReviewPostRequest struct {
	Status string `json:"status"`
}
