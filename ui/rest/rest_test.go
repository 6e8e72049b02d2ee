package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	"github.com/imbizlab/groomflo-app/domains/health"
	"github.com/imbizlab/groomflo-app/domains/notification"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	pkgError "github.com/imbizlab/groomflo-app/pkg/error"
	"github.com/imbizlab/groomflo-app/pkg/jobpool"
	"github.com/imbizlab/groomflo-app/ui/rest/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeBusinessUsecase struct {
	created domainBusiness.CreateBusinessRequest
	err     error
}

func (f *fakeBusinessUsecase) Create(ctx context.Context, request domainBusiness.CreateBusinessRequest) (domainBusiness.BusinessView, error) {
	f.created = request
	return domainBusiness.NewView(domainBusiness.Business{ID: "b1", BusinessName: request.BusinessName}), f.err
}

func (f *fakeBusinessUsecase) Update(ctx context.Context, id string, request domainBusiness.UpdateBusinessRequest) (domainBusiness.BusinessView, error) {
	return domainBusiness.BusinessView{}, f.err
}

func (f *fakeBusinessUsecase) Get(ctx context.Context, id string) (domainBusiness.BusinessView, error) {
	if f.err != nil {
		return domainBusiness.BusinessView{}, f.err
	}
	return domainBusiness.NewView(domainBusiness.Business{ID: id, FacebookPageID: "p", FacebookAccessToken: "secret"}), nil
}

func (f *fakeBusinessUsecase) List(ctx context.Context) ([]domainBusiness.BusinessView, error) {
	return []domainBusiness.BusinessView{}, f.err
}

func (f *fakeBusinessUsecase) Delete(ctx context.Context, id string) error {
	return f.err
}

func (f *fakeBusinessUsecase) ValidateFacebook(ctx context.Context, id string) (domainBusiness.FacebookValidation, error) {
	return domainBusiness.FacebookValidation{Valid: true, PageID: "p", Message: "Page access confirmed"}, f.err
}

type fakePostUsecase struct {
	listed domainPost.ListPostsRequest
	err    error
}

func (f *fakePostUsecase) GenerateWeek(ctx context.Context, businessID string, request domainPost.GenerateWeekRequest) (domainPost.GenerateWeekResponse, error) {
	if f.err != nil {
		return domainPost.GenerateWeekResponse{}, f.err
	}
	return domainPost.GenerateWeekResponse{
		Week:  domainPost.WeekSchedule{BusinessID: businessID, WeekStarting: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)},
		Posts: make([]domainPost.Post, domainPost.PostsPerWeek),
	}, nil
}

func (f *fakePostUsecase) List(ctx context.Context, businessID string, request domainPost.ListPostsRequest) ([]domainPost.Post, error) {
	f.listed = request
	return []domainPost.Post{}, f.err
}

func (f *fakePostUsecase) ListPending(ctx context.Context, businessID string) ([]domainPost.Post, error) {
	return []domainPost.Post{}, f.err
}

func (f *fakePostUsecase) ListScheduled(ctx context.Context, businessID string) ([]domainPost.Post, error) {
	return []domainPost.Post{}, f.err
}

func (f *fakePostUsecase) ListWeeks(ctx context.Context, businessID string) ([]domainPost.WeekSchedule, error) {
	return []domainPost.WeekSchedule{}, f.err
}

func (f *fakePostUsecase) Get(ctx context.Context, id string) (domainPost.Post, error) {
	return domainPost.Post{ID: id}, f.err
}

func (f *fakePostUsecase) Update(ctx context.Context, id string, request domainPost.UpdatePostRequest) (domainPost.Post, error) {
	return domainPost.Post{ID: id}, f.err
}

func (f *fakePostUsecase) Review(ctx context.Context, id string, request domainPost.ReviewPostRequest) (domainPost.Post, error) {
	return domainPost.Post{ID: id, Status: domainPost.Status(request.Status)}, f.err
}

func (f *fakePostUsecase) Delete(ctx context.Context, id string) error {
	return f.err
}

type fakePublishUsecase struct {
	result domainPost.PublishResult
}

func (f *fakePublishUsecase) PublishScheduled(ctx context.Context, businessID string) (domainPost.PublishReport, error) {
	report := domainPost.PublishReport{Results: []domainPost.PublishResult{}}
	report.Add(domainPost.PublishResult{PostID: "p1", Success: true, FacebookPostID: "fb1"})
	report.Add(domainPost.PublishResult{PostID: "p2", Error: "token expired"})
	return report, nil
}

func (f *fakePublishUsecase) PublishNow(ctx context.Context, postID string) (domainPost.PublishResult, error) {
	return f.result, nil
}

type fakeDigestUsecase struct {
	to string
}

func (f *fakeDigestUsecase) SendDailyDigests(ctx context.Context, day time.Time) (notification.DigestReport, error) {
	return notification.DigestReport{}, nil
}

func (f *fakeDigestUsecase) SendTest(ctx context.Context, businessID string, request notification.TestEmailRequest) error {
	f.to = request.Email
	return nil
}

type fakeHealthUsecase struct {
	records []health.HealthRecord
}

func (f *fakeHealthUsecase) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	return f.records, nil
}

// --- Helpers ---

type envelope struct {
	Status  int             `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Results json.RawMessage `json:"results"`
}

type handlers struct {
	business *fakeBusinessUsecase
	post     *fakePostUsecase
	publish  *fakePublishUsecase
	digest   *fakeDigestUsecase
	health   *fakeHealthUsecase
}

func newTestApp() (*fiber.App, *handlers) {
	h := &handlers{
		business: &fakeBusinessUsecase{},
		post:     &fakePostUsecase{},
		publish:  &fakePublishUsecase{},
		digest:   &fakeDigestUsecase{},
		health:   &fakeHealthUsecase{},
	}
	app := fiber.New()
	app.Use(middleware.Recovery())
	api := app.Group("/api")
	InitRestBusiness(api, h.business)
	InitRestPost(api, h.post, h.publish)
	InitRestNotification(api, h.digest)
	InitRestHealth(api, h.health)
	return app, h
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

// --- Tests ---

func TestBusiness_CreateReturns201WithoutToken(t *testing.T) {
	app, h := newTestApp()

	status, env := do(t, app, http.MethodPost, "/api/businesses", `{"business_name":"Paws","slowest_day":"Tuesday","facebook_access_token":"secret"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "SUCCESS", env.Code)
	assert.Equal(t, "Paws", h.business.created.BusinessName)
	assert.Equal(t, "secret", h.business.created.FacebookAccessToken)

	status, env = do(t, app, http.MethodGet, "/api/businesses/b9", "")
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Results), "secret")
	assert.Contains(t, string(env.Results), `"facebook_connected":true`)
}

func TestErrorsMapToStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"not found", pkgError.NotFoundError("business not found"), http.MethodGet, "/api/businesses/x", "", 404, "NOT_FOUND_ERROR"},
		{"validation", pkgError.ValidationError("slowest_day: invalid"), http.MethodPatch, "/api/businesses/x", `{"slowest_day":"x"}`, 400, "VALIDATION_ERROR"},
		{"conflict", pkgError.ConflictError("invalid status transition"), http.MethodPost, "/api/posts/p1/review", `{"status":"pending"}`, 409, "CONFLICT_ERROR"},
		{"generation", pkgError.GenerationError("content generation failed"), http.MethodPost, "/api/businesses/b1/posts/generate-weekly", "", 502, "GENERATION_ERROR"},
		{"plain error", errors.New("disk full"), http.MethodDelete, "/api/posts/p1", "", 500, "INTERNAL_SERVER_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, h := newTestApp()
			h.business.err = tc.err
			h.post.err = tc.err

			status, env := do(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, env.Code)
			assert.Equal(t, tc.status, env.Status)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestMalformedBodyIsValidationError(t *testing.T) {
	app, _ := newTestApp()
	status, env := do(t, app, http.MethodPost, "/api/businesses", `{"business_name":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestPost_Routes(t *testing.T) {
	app, h := newTestApp()

	status, env := do(t, app, http.MethodPost, "/api/businesses/b1/posts/generate-weekly", `{"week_start_date":"2024-03-04"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Generated 7 posts for the week of 2024-03-04", env.Message)

	status, _ = do(t, app, http.MethodGet, "/api/businesses/b1/posts?status=approved", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "approved", h.post.listed.Status)

	for _, path := range []string{"/api/businesses/b1/posts/pending", "/api/businesses/b1/posts/scheduled", "/api/businesses/b1/weeks", "/api/posts/p1"} {
		status, _ = do(t, app, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, status, path)
	}

	status, env = do(t, app, http.MethodPost, "/api/posts/p1/review", `{"status":"approved"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Post marked approved", env.Message)
}

func TestPost_PublishEndpoints(t *testing.T) {
	app, h := newTestApp()

	status, env := do(t, app, http.MethodPost, "/api/businesses/b1/posts/publish-scheduled", "")
	assert.Equal(t, http.StatusOK, status)
	var report domainPost.PublishReport
	require.NoError(t, json.Unmarshal(env.Results, &report))
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "token expired", report.Results[1].Error)

	h.publish.result = domainPost.PublishResult{PostID: "p1", Error: "(#200) permissions error"}
	status, env = do(t, app, http.MethodPost, "/api/posts/p1/publish", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Publish failed: (#200) permissions error", env.Message)
}

func TestNotification_SendTest(t *testing.T) {
	app, h := newTestApp()
	status, _ := do(t, app, http.MethodPost, "/api/businesses/b1/notifications/test", `{"email":"me@example.com"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "me@example.com", h.digest.to)
}

func TestHealth(t *testing.T) {
	app, h := newTestApp()
	h.health.records = []health.HealthRecord{
		{EntityType: health.EntityDatabase, Status: health.StatusOk},
		{EntityType: health.EntityValkey, Status: health.StatusUnknown},
	}
	status, env := do(t, app, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SUCCESS", env.Code)

	h.health.records = append(h.health.records, health.HealthRecord{EntityType: health.EntityPublisher, Status: health.StatusError})
	status, env = do(t, app, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "UNHEALTHY", env.Code)
}

func TestWorkerPoolStats(t *testing.T) {
	app := fiber.New()
	InitRestWorkerPool(app, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/publisher/pool", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	pool := jobpool.NewPool("TEST_POOL", 2, 4)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	app = fiber.New()
	InitRestWorkerPool(app, pool)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/publisher/pool", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats jobpool.PoolStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 2, stats.NumWorkers)
}
