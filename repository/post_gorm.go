package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"gorm.io/gorm"
)

const staleClaimMessage = "publish interrupted before completion"

type PostGormRepository struct {
	db *gorm.DB
}

func NewPostGormRepository(db *gorm.DB) *PostGormRepository {
	return &PostGormRepository{db: db}
}

var _ domainPost.IPostRepository = (*PostGormRepository)(nil)

func (r *PostGormRepository) Create(ctx context.Context, p *domainPost.Post) error {
	prepareNewPost(p)
	model := toPostModel(*p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	*p = fromPostModel(model)
	return nil
}

func (r *PostGormRepository) CreateWeek(ctx context.Context, week *domainPost.WeekSchedule, posts []*domainPost.Post) error {
	if week.ID == "" {
		week.ID = uuid.NewString()
	}
	weekModel := weekScheduleModel{
		ID:           week.ID,
		BusinessID:   week.BusinessID,
		WeekStarting: week.WeekStarting.UTC(),
		IsGenerated:  week.IsGenerated,
	}

	models := make([]postModel, len(posts))
	for i, p := range posts {
		if p.BusinessID != week.BusinessID {
			return fmt.Errorf("post %d belongs to business %q, week to %q", i, p.BusinessID, week.BusinessID)
		}
		prepareNewPost(p)
		models[i] = toPostModel(*p)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&weekModel).Error; err != nil {
			return fmt.Errorf("create week: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("create posts: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	week.CreatedAt = weekModel.CreatedAt
	for i := range posts {
		*posts[i] = fromPostModel(models[i])
	}
	return nil
}

func (r *PostGormRepository) Get(ctx context.Context, id string) (domainPost.Post, error) {
	var m postModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainPost.Post{}, domainPost.ErrPostNotFound
		}
		return domainPost.Post{}, err
	}
	return fromPostModel(m), nil
}

func (r *PostGormRepository) ListByBusiness(ctx context.Context, businessID string, filter domainPost.ListFilter) ([]domainPost.Post, error) {
	q := r.db.WithContext(ctx).Where("business_id = ?", businessID)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.From != nil {
		q = q.Where("scheduled_for >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("scheduled_for <= ?", filter.To.UTC())
	}
	if filter.OrderBySchedule {
		q = q.Order("scheduled_for ASC")
	} else {
		q = q.Order("created_at DESC").Order("scheduled_for ASC")
	}

	var models []postModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	return fromPostModels(models), nil
}

func (r *PostGormRepository) ListWeeks(ctx context.Context, businessID string) ([]domainPost.WeekSchedule, error) {
	var models []weekScheduleModel
	if err := r.db.WithContext(ctx).Where("business_id = ?", businessID).Order("week_starting DESC").Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domainPost.WeekSchedule, len(models))
	for i, m := range models {
		res[i] = domainPost.WeekSchedule{
			ID:           m.ID,
			BusinessID:   m.BusinessID,
			WeekStarting: m.WeekStarting.UTC(),
			IsGenerated:  m.IsGenerated,
			CreatedAt:    m.CreatedAt,
		}
	}
	return res, nil
}

func (r *PostGormRepository) ListDue(ctx context.Context, businessID string, now time.Time) ([]domainPost.Post, error) {
	var models []postModel
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND status = ? AND posted_at IS NULL AND scheduled_for <= ?",
			businessID, string(domainPost.StatusApproved), now.UTC()).
		Order("scheduled_for ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromPostModels(models), nil
}

func (r *PostGormRepository) UpdateContent(ctx context.Context, id string, content, imageURL *string) (domainPost.Post, error) {
	updates := map[string]any{}
	if content != nil {
		updates["content"] = *content
	}
	if imageURL != nil {
		updates["image_url"] = nullString(*imageURL)
	}
	if len(updates) == 0 {
		return r.Get(ctx, id)
	}

	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND status NOT IN ?", id, []string{string(domainPost.StatusPublishing), string(domainPost.StatusPosted)}).
		Updates(updates)
	if res.Error != nil {
		return domainPost.Post{}, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return domainPost.Post{}, err
		}
		return domainPost.Post{}, domainPost.ErrNotEditable
	}
	return r.Get(ctx, id)
}

func (r *PostGormRepository) Review(ctx context.Context, id string, target domainPost.Status) (domainPost.Post, error) {
	sources := domainPost.ReviewSources(target)
	if len(sources) == 0 {
		return domainPost.Post{}, fmt.Errorf("%w: %s cannot be set by a reviewer", domainPost.ErrInvalidTransition, target)
	}
	from := make([]string, len(sources))
	for i, s := range sources {
		from[i] = string(s)
	}

	updates := map[string]any{"status": string(target)}
	if target == domainPost.StatusApproved {
		// a re-approved failed post starts clean
		updates["error"] = nil
		updates["claimed_at"] = nil
	}

	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return domainPost.Post{}, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := r.Get(ctx, id)
		if err != nil {
			return domainPost.Post{}, err
		}
		if current.Status == target {
			return current, nil
		}
		return domainPost.Post{}, fmt.Errorf("%w: %s -> %s", domainPost.ErrInvalidTransition, current.Status, target)
	}
	return r.Get(ctx, id)
}

func (r *PostGormRepository) Claim(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND status = ? AND posted_at IS NULL", id, string(domainPost.StatusApproved)).
		Updates(map[string]any{
			"status":     string(domainPost.StatusPublishing),
			"claimed_at": at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostGormRepository) MarkPosted(ctx context.Context, id, externalID string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND status = ?", id, string(domainPost.StatusPublishing)).
		Updates(map[string]any{
			"status":           string(domainPost.StatusPosted),
			"posted_at":        at.UTC(),
			"facebook_post_id": nullString(externalID),
			"error":            nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: post %s is not publishing", domainPost.ErrInvalidTransition, id)
	}
	return nil
}

func (r *PostGormRepository) MarkFailed(ctx context.Context, id, message string) error {
	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("id = ? AND status = ?", id, string(domainPost.StatusPublishing)).
		Updates(map[string]any{
			"status": string(domainPost.StatusFailed),
			"error":  nullString(message),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: post %s is not publishing", domainPost.ErrInvalidTransition, id)
	}
	return nil
}

func (r *PostGormRepository) FailStaleClaims(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&postModel{}).
		Where("status = ? AND claimed_at < ?", string(domainPost.StatusPublishing), olderThan.UTC()).
		Updates(map[string]any{
			"status": string(domainPost.StatusFailed),
			"error":  staleClaimMessage,
		})
	return res.RowsAffected, res.Error
}

func (r *PostGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&postModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainPost.ErrPostNotFound
	}
	return nil
}

// --- Mappers ---

func prepareNewPost(p *domainPost.Post) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = domainPost.StatusPending
	}
}

func toPostModel(p domainPost.Post) postModel {
	return postModel{
		ID:             p.ID,
		BusinessID:     p.BusinessID,
		PostType:       string(p.PostType),
		Content:        p.Content,
		ImageURL:       nullString(p.ImageURL),
		Status:         string(p.Status),
		ScheduledFor:   p.ScheduledFor.UTC(),
		PostedAt:       nullTime(p.PostedAt),
		FacebookPostID: nullString(p.FacebookPostID),
		Error:          nullString(p.Error),
		ClaimedAt:      nullTime(p.ClaimedAt),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromPostModel(m postModel) domainPost.Post {
	return domainPost.Post{
		ID:             m.ID,
		BusinessID:     m.BusinessID,
		PostType:       domainPost.Type(m.PostType),
		Content:        m.Content,
		ImageURL:       m.ImageURL.String,
		Status:         domainPost.Status(m.Status),
		ScheduledFor:   m.ScheduledFor.UTC(),
		PostedAt:       timePtr(m.PostedAt),
		FacebookPostID: m.FacebookPostID.String,
		Error:          m.Error.String,
		ClaimedAt:      timePtr(m.ClaimedAt),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func fromPostModels(models []postModel) []domainPost.Post {
	res := make([]domainPost.Post, len(models))
	for i, m := range models {
		res[i] = fromPostModel(m)
	}
	return res
}
