package notification

import (
	"context"
	"errors"
	"time"
)

var ErrNotifierDisabled = errors.New("email notifier is not configured")

type Email struct {
	To      string
	Name    string
	Subject string
	HTML    string
}

// INotifier delivers emails.
type INotifier interface {
	Send(ctx context.Context, email Email) error
}

// IDigestUsecase builds and sends the daily post digest.
type IDigestUsecase interface {
	SendDailyDigests(ctx context.Context, day time.Time) (DigestReport, error)
	SendTest(ctx context.Context, businessID string, request TestEmailRequest) error
}

type TestEmailRequest struct {
	Email string `json:"email"`
}

type DigestReport struct {
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
