package repository

import (
	"database/sql"
	"time"
)

type businessModel struct {
	ID                      string         `gorm:"primaryKey"`
	UserID                  sql.NullString `gorm:"column:user_id;index"`
	BusinessName            string         `gorm:"column:business_name;not null"`
	Address                 sql.NullString
	Phone                   sql.NullString
	Email                   sql.NullString
	Website                 sql.NullString
	Hours                   sql.NullString
	SlowestDay              string         `gorm:"column:slowest_day;not null"`
	Timezone                string         `gorm:"column:timezone;not null;default:'UTC'"`
	FacebookPageID          sql.NullString `gorm:"column:facebook_page_id"`
	FacebookAccessToken     sql.NullString `gorm:"column:facebook_access_token;type:text"`
	CustomPromptInformative sql.NullString `gorm:"column:custom_prompt_informative;type:text"`
	CustomPromptFunFact     sql.NullString `gorm:"column:custom_prompt_fun_fact;type:text"`
	CustomPromptPromotional sql.NullString `gorm:"column:custom_prompt_promotional;type:text"`
	NotificationEmail       sql.NullString `gorm:"column:notification_email"`
	DailyEmailNotifications bool           `gorm:"column:daily_email_notifications;not null"`
	IsOnboarded             bool           `gorm:"column:is_onboarded;not null;default:false"`
	CreatedAt               time.Time      `gorm:"not null"`
	UpdatedAt               time.Time      `gorm:"not null"`
}

func (businessModel) TableName() string { return "businesses" }

type postModel struct {
	ID             string         `gorm:"primaryKey"`
	BusinessID     string         `gorm:"column:business_id;not null;index:idx_posts_business_schedule,priority:1"`
	PostType       string         `gorm:"column:post_type;not null"`
	Content        string         `gorm:"type:text;not null"`
	ImageURL       sql.NullString `gorm:"column:image_url;type:text"`
	Status         string         `gorm:"not null;default:'pending';index"`
	ScheduledFor   time.Time      `gorm:"column:scheduled_for;not null;index:idx_posts_business_schedule,priority:2"`
	PostedAt       sql.NullTime   `gorm:"column:posted_at"`
	FacebookPostID sql.NullString `gorm:"column:facebook_post_id"`
	Error          sql.NullString `gorm:"type:text"`
	ClaimedAt      sql.NullTime   `gorm:"column:claimed_at"`
	CreatedAt      time.Time      `gorm:"not null"`
	UpdatedAt      time.Time      `gorm:"not null"`
}

func (postModel) TableName() string { return "posts" }

type weekScheduleModel struct {
	ID           string    `gorm:"primaryKey"`
	BusinessID   string    `gorm:"column:business_id;not null;index"`
	WeekStarting time.Time `gorm:"column:week_starting;not null"`
	IsGenerated  bool      `gorm:"column:is_generated;not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (weekScheduleModel) TableName() string { return "post_schedules" }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
