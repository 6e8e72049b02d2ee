package business

import (
	"context"
	"errors"
	"time"
)

var (
	ErrBusinessNotFound   = errors.New("business not found")
	ErrMissingCredentials = errors.New("business has no facebook page credentials")
)

type Business struct {
	ID                      string       `json:"id"`
	UserID                  string       `json:"user_id,omitempty"`
	BusinessName            string       `json:"business_name"`
	Address                 string       `json:"address,omitempty"`
	Phone                   string       `json:"phone,omitempty"`
	Email                   string       `json:"email,omitempty"`
	Website                 string       `json:"website,omitempty"`
	Hours                   string       `json:"hours,omitempty"`
	SlowestDay              time.Weekday `json:"slowest_day"`
	Timezone                string       `json:"timezone"`
	FacebookPageID          string       `json:"facebook_page_id,omitempty"`
	FacebookAccessToken     string       `json:"-"`
	// AccessTokenUnreadable is set when the stored token could not be
	// decrypted; updates then leave the stored value alone.
	AccessTokenUnreadable   bool         `json:"-"`
	CustomPromptInformative string       `json:"custom_prompt_informative,omitempty"`
	CustomPromptFunFact     string       `json:"custom_prompt_fun_fact,omitempty"`
	CustomPromptPromotional string       `json:"custom_prompt_promotional,omitempty"`
	NotificationEmail       string       `json:"notification_email,omitempty"`
	DailyEmailNotifications bool         `json:"daily_email_notifications"`
	IsOnboarded             bool         `json:"is_onboarded"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
}

// HasFacebook reports whether the business can be published to.
func (b Business) HasFacebook() bool {
	return b.FacebookPageID != "" && b.FacebookAccessToken != ""
}

// Location resolves the business timezone, falling back to UTC.
func (b Business) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BusinessView is what the API returns: the token itself never leaves the server.
type BusinessView struct {
	Business
	SlowestDayName    string `json:"slowest_day_name"`
	FacebookConnected bool   `json:"facebook_connected"`
}

func NewView(b Business) BusinessView {
	return BusinessView{
		Business:          b,
		SlowestDayName:    b.SlowestDay.String(),
		FacebookConnected: b.HasFacebook(),
	}
}

type IBusinessRepository interface {
	Create(ctx context.Context, b *Business) error
	Update(ctx context.Context, b *Business) error
	Get(ctx context.Context, id string) (Business, error)
	List(ctx context.Context) ([]Business, error)
	// ListPublishable returns businesses with both a page id and a token.
	ListPublishable(ctx context.Context) ([]Business, error)
	// ListDigestRecipients returns businesses opted into the daily email.
	ListDigestRecipients(ctx context.Context) ([]Business, error)
	Delete(ctx context.Context, id string) error
}

type IBusinessUsecase interface {
	Create(ctx context.Context, request CreateBusinessRequest) (BusinessView, error)
	Update(ctx context.Context, id string, request UpdateBusinessRequest) (BusinessView, error)
	Get(ctx context.Context, id string) (BusinessView, error)
	List(ctx context.Context) ([]BusinessView, error)
	Delete(ctx context.Context, id string) error
	ValidateFacebook(ctx context.Context, id string) (FacebookValidation, error)
}

type CreateBusinessRequest struct {
	UserID                  string `json:"user_id"`
	BusinessName            string `json:"business_name"`
	Address                 string `json:"address"`
	Phone                   string `json:"phone"`
	Email                   string `json:"email"`
	Website                 string `json:"website"`
	Hours                   string `json:"hours"`
	SlowestDay              string `json:"slowest_day"`
	Timezone                string `json:"timezone"`
	FacebookPageID          string `json:"facebook_page_id"`
	FacebookAccessToken     string `json:"facebook_access_token"`
	CustomPromptInformative string `json:"custom_prompt_informative"`
	CustomPromptFunFact     string `json:"custom_prompt_fun_fact"`
	CustomPromptPromotional string `json:"custom_prompt_promotional"`
	NotificationEmail       string `json:"notification_email"`
	DailyEmailNotifications *bool  `json:"daily_email_notifications"`
}

// UpdateBusinessRequest only changes the fields that are present.
type UpdateBusinessRequest struct {
	BusinessName            *string `json:"business_name"`
	Address                 *string `json:"address"`
	Phone                   *string `json:"phone"`
	Email                   *string `json:"email"`
	Website                 *string `json:"website"`
	Hours                   *string `json:"hours"`
	SlowestDay              *string `json:"slowest_day"`
	Timezone                *string `json:"timezone"`
	FacebookPageID          *string `json:"facebook_page_id"`
	FacebookAccessToken     *string `json:"facebook_access_token"`
	CustomPromptInformative *string `json:"custom_prompt_informative"`
	CustomPromptFunFact     *string `json:"custom_prompt_fun_fact"`
	CustomPromptPromotional *string `json:"custom_prompt_promotional"`
	NotificationEmail       *string `json:"notification_email"`
	DailyEmailNotifications *bool   `json:"daily_email_notifications"`
	IsOnboarded             *bool   `json:"is_onboarded"`
}

type FacebookValidation struct {
	Valid   bool   `json:"valid"`
	PageID  string `json:"page_id"`
	Message string `json:"message,omitempty"`
}
