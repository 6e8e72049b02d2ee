package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/imbizlab/groomflo-app/core/database"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/domains/content"
	"github.com/imbizlab/groomflo-app/domains/notification"
	"github.com/imbizlab/groomflo-app/pkg/crypto"
	"github.com/imbizlab/groomflo-app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type stores struct {
	db         *gorm.DB
	businesses *repository.BusinessGormRepository
	posts      *repository.PostGormRepository
}

func newStores(t *testing.T) stores {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(context.Background(), db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	cipher, err := crypto.NewTokenCipher(testKey)
	require.NoError(t, err)
	return stores{
		db:         db,
		businesses: repository.NewBusinessGormRepository(db, cipher),
		posts:      repository.NewPostGormRepository(db),
	}
}

func (s stores) business(t *testing.T, b domainBusiness.Business) domainBusiness.Business {
	t.Helper()
	if b.BusinessName == "" {
		b.BusinessName = "Pampered Paws"
	}
	require.NoError(t, s.businesses.Create(context.Background(), &b))
	return b
}

// --- Fakes ---

type fakeGenerator struct {
	items []content.GeneratedPost
	err   error
	calls int
}

func (f *fakeGenerator) GenerateWeeklyContent(ctx context.Context, b domainBusiness.Business) ([]content.GeneratedPost, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func weekOfContent() []content.GeneratedPost {
	counts := map[string]int{}
	var items []content.GeneratedPost
	for _, t := range content.WeeklyOrder() {
		counts[string(t)]++
		items = append(items, content.GeneratedPost{
			PostType: t,
			Content:  fmt.Sprintf("%s %d", t, counts[string(t)]),
		})
	}
	return items
}

type fakePoster struct {
	mu    sync.Mutex
	calls int
	valid bool
	err   error
}

func (f *fakePoster) Publish(ctx context.Context, pageID, accessToken, content, imageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s_%d", pageID, f.calls), nil
}

func (f *fakePoster) ValidatePageAccess(ctx context.Context, pageID, accessToken string) (bool, error) {
	return f.valid, f.err
}

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []notification.Email
	disabled bool
	failTo   string
}

func (f *fakeNotifier) Send(ctx context.Context, email notification.Email) error {
	if f.disabled {
		return notification.ErrNotifierDisabled
	}
	if email.To == f.failTo {
		return fmt.Errorf("close.com returned 500")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, email)
	return nil
}

// --- Assertions ---

func assertErrType[T error](t *testing.T, err error) {
	t.Helper()
	if assert.Error(t, err) {
		_, ok := err.(T)
		assert.True(t, ok, "expected %T, got %T (%v)", *new(T), err, err)
	}
}
