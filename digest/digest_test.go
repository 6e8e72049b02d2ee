package digest

import (
	"context"
	"strings"
	"testing"
	"time"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Daily Social Media Posts - March 5, 2024", Subject(day))
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Fun Fact", TypeLabel(domainPost.TypeFunFact))
	assert.Equal(t, "Informative", TypeLabel(domainPost.TypeInformative))
	assert.Equal(t, "Promotional", TypeLabel(domainPost.TypePromotional))
}

func TestRender_PostsInScheduleOrderAndLocalTime(t *testing.T) {
	b := domainBusiness.Business{BusinessName: "Pampered Paws", Timezone: "America/Chicago"}
	loc := b.Location()
	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, loc)
	now := time.Date(2024, time.March, 5, 7, 0, 0, 0, loc)

	posts := []domainPost.Post{
		{PostType: domainPost.TypePromotional, Content: "Book now", Status: domainPost.StatusApproved, ScheduledFor: time.Date(2024, time.March, 5, 9, 15, 0, 0, loc)},
		{PostType: domainPost.TypeFunFact, Content: "Cats <3 naps", Status: domainPost.StatusPending, ScheduledFor: time.Date(2024, time.March, 5, 7, 45, 0, 0, loc), ImageURL: "https://img.example/cat.jpg"},
	}

	html, err := Render(b, day, posts, now)
	require.NoError(t, err)

	assert.Contains(t, html, "Pampered Paws")
	assert.Contains(t, html, "Tuesday, March 5, 2024")
	assert.Contains(t, html, "7:45 AM")
	assert.Contains(t, html, "9:15 AM")
	assert.Contains(t, html, "2 hours from now")
	assert.Contains(t, html, "Cats &lt;3 naps")
	assert.Contains(t, html, `src="https://img.example/cat.jpg"`)
	assert.Contains(t, html, "background-color: #4caf50")
	assert.NotContains(t, html, "No posts scheduled")

	assert.Less(t, strings.Index(html, "Fun Fact"), strings.Index(html, "Promotional"))
}

func TestRender_EmptyDay(t *testing.T) {
	html, err := Render(domainBusiness.Business{BusinessName: "Paws"}, time.Now(), nil, time.Now())
	require.NoError(t, err)
	assert.Contains(t, html, "No posts scheduled for this day.")
}

func TestScheduler_Next(t *testing.T) {
	s, err := NewScheduler("", time.UTC, func(context.Context, time.Time) error { return nil })
	require.NoError(t, err)

	next := s.Next(time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 5, 7, 0, 0, 0, time.UTC), next)

	next = s.Next(time.Date(2024, time.March, 4, 6, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, time.March, 4, 7, 0, 0, 0, time.UTC), next)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler("every morning", time.UTC, func(context.Context, time.Time) error { return nil })
	assert.Error(t, err)
}

func TestScheduler_FirePassesLocalDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	var got time.Time
	s, err := NewScheduler(DefaultSpec, loc, func(_ context.Context, day time.Time) error {
		got = day
		return nil
	})
	require.NoError(t, err)

	s.fire()
	assert.Equal(t, loc, got.Location())
}
