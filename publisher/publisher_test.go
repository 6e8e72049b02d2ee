package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/imbizlab/groomflo-app/core/database"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/imbizlab/groomflo-app/pkg/crypto"
	"github.com/imbizlab/groomflo-app/pkg/jobpool"
	"github.com/imbizlab/groomflo-app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	mu       sync.Mutex
	calls    int
	pages    []string
	contents []string
	fail     map[string]error
	block    bool
	noID     bool
}

func (f *fakePoster) Publish(ctx context.Context, pageID, accessToken, content, imageURL string) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.pages = append(f.pages, pageID)
	f.contents = append(f.contents, content)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := f.fail[content]; err != nil {
		return "", err
	}
	if f.noID {
		return "", nil
	}
	return fmt.Sprintf("ext-%d", n), nil
}

func (f *fakePoster) ValidatePageAccess(ctx context.Context, pageID, accessToken string) (bool, error) {
	return true, nil
}

func (f *fakePoster) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeLocker struct {
	locked   bool
	unlocked int
}

func (l *fakeLocker) TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return !l.locked, nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, owner string) error {
	l.unlocked++
	return nil
}

type fixture struct {
	businesses *repository.BusinessGormRepository
	posts      *repository.PostGormRepository
	poster     *fakePoster
	executor   *Executor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(context.Background(), db))
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cipher, err := crypto.NewTokenCipher(key)
	require.NoError(t, err)

	f := &fixture{
		businesses: repository.NewBusinessGormRepository(db, cipher),
		posts:      repository.NewPostGormRepository(db),
		poster:     &fakePoster{fail: map[string]error{}},
	}
	f.executor = NewExecutor(f.posts, f.poster, time.Second)
	return f
}

func (f *fixture) business(t *testing.T, name string, withFacebook bool) domainBusiness.Business {
	t.Helper()
	b := domainBusiness.Business{BusinessName: name, SlowestDay: time.Wednesday}
	if withFacebook {
		b.FacebookPageID = "page-" + name
		b.FacebookAccessToken = "token-" + name
	}
	require.NoError(t, f.businesses.Create(context.Background(), &b))
	return b
}

func (f *fixture) post(t *testing.T, businessID, content string, status domainPost.Status, scheduledFor time.Time) domainPost.Post {
	t.Helper()
	p := domainPost.Post{
		BusinessID:   businessID,
		PostType:     domainPost.TypeInformative,
		Content:      content,
		Status:       status,
		ScheduledFor: scheduledFor,
	}
	require.NoError(t, f.posts.Create(context.Background(), &p))
	return p
}

func (f *fixture) worker(pool *jobpool.Pool, locker Locker) *Worker {
	return NewWorker(f.businesses, f.posts, f.executor, pool, locker, Config{Interval: time.Hour})
}

func (f *fixture) get(t *testing.T, id string) domainPost.Post {
	t.Helper()
	p, err := f.posts.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestTick_PublishesDuePostOnce(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	p := f.post(t, b.ID, "hello", domainPost.StatusApproved, time.Now().Add(-time.Minute))
	w := f.worker(nil, nil)

	report := w.Tick(context.Background())
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Successful)
	assert.False(t, report.FinishedAt.IsZero())

	got := f.get(t, p.ID)
	assert.Equal(t, domainPost.StatusPosted, got.Status)
	require.NotNil(t, got.PostedAt)
	assert.Equal(t, "ext-1", got.FacebookPostID)
	assert.Equal(t, []string{"page-paws"}, f.poster.pages)

	second := w.Tick(context.Background())
	assert.Equal(t, 0, second.Total)
	assert.Equal(t, 1, f.poster.Calls())

	last, ok := w.LastReport()
	require.True(t, ok)
	assert.Equal(t, 0, last.Total)
}

func TestTick_FailureDoesNotAffectSibling(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	bad := f.post(t, b.ID, "bad", domainPost.StatusApproved, time.Now().Add(-2*time.Hour))
	good := f.post(t, b.ID, "good", domainPost.StatusApproved, time.Now().Add(-time.Hour))
	f.poster.fail["bad"] = errors.New("(#200) permissions error")

	report := f.worker(nil, nil).Tick(context.Background())
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 1, report.Failed)

	gotBad := f.get(t, bad.ID)
	assert.Equal(t, domainPost.StatusFailed, gotBad.Status)
	assert.Contains(t, gotBad.Error, "permissions error")
	assert.Nil(t, gotBad.PostedAt)

	assert.Equal(t, domainPost.StatusPosted, f.get(t, good.ID).Status)
}

func TestTick_ConcurrentTicksPublishOnce(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	p := f.post(t, b.ID, "once", domainPost.StatusApproved, time.Now().Add(-time.Minute))
	w1 := f.worker(nil, nil)
	w2 := f.worker(nil, nil)

	var wg sync.WaitGroup
	reports := make([]TickReport, 2)
	for i, w := range []*Worker{w1, w2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i] = w.Tick(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.poster.Calls())
	assert.Equal(t, 1, reports[0].Successful+reports[1].Successful)
	assert.Equal(t, domainPost.StatusPosted, f.get(t, p.ID).Status)
}

func TestTick_OnlyDueApprovedPostsOfConfiguredBusinesses(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	unconfigured := f.business(t, "nofb", false)

	future := f.post(t, b.ID, "future", domainPost.StatusApproved, time.Now().Add(time.Hour))
	pending := f.post(t, b.ID, "pending", domainPost.StatusPending, time.Now().Add(-time.Hour))
	skipped := f.post(t, unconfigured.ID, "skipped", domainPost.StatusApproved, time.Now().Add(-time.Hour))

	report := f.worker(nil, nil).Tick(context.Background())
	assert.Equal(t, 1, report.Businesses)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, f.poster.Calls())

	assert.Equal(t, domainPost.StatusApproved, f.get(t, future.ID).Status)
	assert.Equal(t, domainPost.StatusPending, f.get(t, pending.ID).Status)
	assert.Equal(t, domainPost.StatusApproved, f.get(t, skipped.ID).Status)
}

func TestTick_WithPoolProcessesEveryBusiness(t *testing.T) {
	f := newFixture(t)
	pool := jobpool.NewPool("TEST_PUBLISH_POOL", 2, 10)
	pool.Start(context.Background())
	defer pool.Stop()

	var ids []string
	for _, name := range []string{"a", "b", "c"} {
		b := f.business(t, name, true)
		ids = append(ids, f.post(t, b.ID, "post "+name, domainPost.StatusApproved, time.Now().Add(-time.Minute)).ID)
	}

	report := f.worker(pool, nil).Tick(context.Background())
	assert.Equal(t, 3, report.Businesses)
	assert.Equal(t, 3, report.Successful)
	for _, id := range ids {
		assert.Equal(t, domainPost.StatusPosted, f.get(t, id).Status)
	}
}

func TestTick_SkipsWhenLockIsHeld(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	f.post(t, b.ID, "x", domainPost.StatusApproved, time.Now().Add(-time.Minute))

	held := &fakeLocker{locked: true}
	report := f.worker(nil, held).Tick(context.Background())
	assert.True(t, report.Skipped)
	assert.Equal(t, 0, f.poster.Calls())

	free := &fakeLocker{}
	report = f.worker(nil, free).Tick(context.Background())
	assert.False(t, report.Skipped)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 1, free.unlocked)
}

func TestNewWorker_ClaimTTLOutlivesPublishTimeout(t *testing.T) {
	f := newFixture(t)
	f.executor = NewExecutor(f.posts, f.poster, 30*time.Second)

	w := NewWorker(f.businesses, f.posts, f.executor, nil, nil, Config{ClaimTTL: 10 * time.Second})
	assert.Equal(t, time.Minute, w.cfg.ClaimTTL)

	w = NewWorker(f.businesses, f.posts, f.executor, nil, nil, Config{ClaimTTL: 5 * time.Minute})
	assert.Equal(t, 5*time.Minute, w.cfg.ClaimTTL)
}

func TestTick_FailsStaleClaims(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	p := f.post(t, b.ID, "stuck", domainPost.StatusApproved, time.Now().Add(-2*time.Hour))

	ok, err := f.posts.Claim(context.Background(), p.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.True(t, ok)

	report := f.worker(nil, nil).Tick(context.Background())
	assert.Equal(t, int64(1), report.StaleClaims)
	assert.Equal(t, 0, f.poster.Calls())

	got := f.get(t, p.ID)
	assert.Equal(t, domainPost.StatusFailed, got.Status)
	assert.NotEmpty(t, got.Error)
}

func TestExecutor_TimeoutMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.poster.block = true
	f.executor = NewExecutor(f.posts, f.poster, 50*time.Millisecond)
	b := f.business(t, "paws", true)
	p := f.post(t, b.ID, "slow", domainPost.StatusApproved, time.Now().Add(-time.Minute))

	res, err := f.executor.Publish(context.Background(), b, p)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "deadline exceeded")
	assert.Equal(t, domainPost.StatusFailed, f.get(t, p.ID).Status)
}

func TestExecutor_MissingExternalIDMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.poster.noID = true
	b := f.business(t, "paws", true)
	p := f.post(t, b.ID, "no id", domainPost.StatusApproved, time.Now().Add(-time.Minute))

	res, err := f.executor.Publish(context.Background(), b, p)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.FacebookPostID)

	got := f.get(t, p.ID)
	assert.Equal(t, domainPost.StatusFailed, got.Status)
	assert.Nil(t, got.PostedAt)
	assert.Empty(t, got.FacebookPostID)
}

func TestExecutor_PublishesContentEditedAfterListing(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	listed := f.post(t, b.ID, "old copy", domainPost.StatusApproved, time.Now().Add(-time.Minute))

	edited := "new copy"
	_, err := f.posts.UpdateContent(context.Background(), listed.ID, &edited, nil)
	require.NoError(t, err)

	res, err := f.executor.Publish(context.Background(), b, listed)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"new copy"}, f.poster.contents)
}

func TestExecutor_PublishRequiresApproved(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)

	pending := f.post(t, b.ID, "p", domainPost.StatusPending, time.Now())
	_, err := f.executor.Publish(context.Background(), b, pending)
	assert.ErrorIs(t, err, domainPost.ErrNotApproved)

	posted := time.Now()
	done := domainPost.Post{BusinessID: b.ID, PostType: domainPost.TypeFunFact, Content: "d", Status: domainPost.StatusPosted, PostedAt: &posted, ScheduledFor: time.Now()}
	require.NoError(t, f.posts.Create(context.Background(), &done))
	_, err = f.executor.Publish(context.Background(), b, done)
	assert.ErrorIs(t, err, domainPost.ErrAlreadyClaimed)
	assert.Equal(t, 0, f.poster.Calls())
}

func TestExecutor_PublishIgnoresSchedule(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	p := f.post(t, b.ID, "later", domainPost.StatusApproved, time.Now().Add(48*time.Hour))

	res, err := f.executor.Publish(context.Background(), b, p)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, domainPost.StatusPosted, f.get(t, p.ID).Status)
}

func TestWorker_StartTicksImmediately(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "paws", true)
	p := f.post(t, b.ID, "now", domainPost.StatusApproved, time.Now().Add(-time.Minute))

	w := f.worker(nil, nil)
	w.Start(context.Background())
	require.Eventually(t, func() bool {
		_, ok := w.LastReport()
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	w.Stop()

	assert.Equal(t, domainPost.StatusPosted, f.get(t, p.ID).Status)
}
