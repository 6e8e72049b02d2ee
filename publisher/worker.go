package publisher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/imbizlab/groomflo-app/pkg/jobpool"
	"github.com/sirupsen/logrus"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultClaimTTL = 10 * time.Minute
)

// Locker is a cross-process mutex, implemented by the valkey client.
type Locker interface {
	TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, owner string) error
}

type Config struct {
	Interval time.Duration
	// ClaimTTL is how long a post may stay in publishing before it is failed.
	ClaimTTL time.Duration
	LockKey  string
	Owner    string
}

// TickReport summarizes one worker pass.
type TickReport struct {
	domainPost.PublishReport
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Businesses  int       `json:"businesses"`
	StaleClaims int64     `json:"stale_claims"`
	Skipped     bool      `json:"skipped"`
	Error       string    `json:"error,omitempty"`
}

// Worker publishes approved posts once they are due. It ticks once on
// Start and then every Interval.
type Worker struct {
	businesses domainBusiness.IBusinessRepository
	posts      domainPost.IPostRepository
	executor   *Executor
	pool       *jobpool.Pool
	locker     Locker
	cfg        Config
	now        func() time.Time

	running  int32
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu   sync.RWMutex
	last *TickReport
}

// NewWorker builds a worker. pool and locker are optional: without a pool
// businesses are processed inline, without a locker every process ticks.
func NewWorker(businesses domainBusiness.IBusinessRepository, posts domainPost.IPostRepository, executor *Executor, pool *jobpool.Pool, locker Locker, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = DefaultClaimTTL
	}
	// a claim must outlive the publish call it guards, or a later tick fails
	// a post that is still in flight
	if executor != nil && cfg.ClaimTTL < 2*executor.timeout {
		logrus.Warnf("[PUBLISHER] claim TTL %s is too short for publish timeout %s, using %s", cfg.ClaimTTL, executor.timeout, 2*executor.timeout)
		cfg.ClaimTTL = 2 * executor.timeout
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "publisher:tick"
	}
	return &Worker{
		businesses: businesses,
		posts:      posts,
		executor:   executor,
		pool:       pool,
		locker:     locker,
		cfg:        cfg,
		now:        time.Now,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start runs a tick immediately and then one per interval until ctx is
// done or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&w.running, 0, 1) {
		logrus.Warn("[PUBLISHER] Worker is already running")
		return
	}
	logrus.Infof("[PUBLISHER] Starting publish worker (every %s)", w.cfg.Interval)
	go w.loop(ctx)
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.doneCh)

	w.Tick(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Stop halts the timer and waits for the running tick to finish.
func (w *Worker) Stop() {
	if atomic.LoadInt32(&w.running) == 0 {
		return
	}
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh
	logrus.Info("[PUBLISHER] Publish worker stopped")
}

// LastReport returns the report of the most recent tick.
func (w *Worker) LastReport() (TickReport, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return TickReport{}, false
	}
	return *w.last, true
}

// Tick runs one pass over every business with Facebook credentials.
func (w *Worker) Tick(ctx context.Context) (report TickReport) {
	report = TickReport{StartedAt: w.now()}
	report.Results = []domainPost.PublishResult{}

	defer func() {
		report.FinishedAt = w.now()
		w.mu.Lock()
		r := report
		w.last = &r
		w.mu.Unlock()
	}()

	if w.locker != nil {
		locked, err := w.locker.TryLock(ctx, w.cfg.LockKey, w.cfg.Owner, w.cfg.Interval)
		switch {
		case err != nil:
			// the store claim still guarantees at-most-once publishing
			logrus.WithError(err).Warn("[PUBLISHER] Tick lock unavailable, continuing without it")
		case !locked:
			logrus.Debug("[PUBLISHER] Another instance holds the tick lock, skipping")
			report.Skipped = true
			return report
		default:
			defer func() {
				if err := w.locker.Unlock(context.WithoutCancel(ctx), w.cfg.LockKey, w.cfg.Owner); err != nil {
					logrus.WithError(err).Warn("[PUBLISHER] Failed to release tick lock")
				}
			}()
		}
	}

	stale, err := w.posts.FailStaleClaims(ctx, w.now().Add(-w.cfg.ClaimTTL))
	if err != nil {
		logrus.WithError(err).Warn("[PUBLISHER] Failed to release stale claims")
	} else if stale > 0 {
		logrus.Warnf("[PUBLISHER] Marked %d interrupted publish(es) as failed", stale)
	}
	report.StaleClaims = stale

	businesses, err := w.businesses.ListPublishable(ctx)
	if err != nil {
		logrus.WithError(err).Error("[PUBLISHER] Failed to list businesses")
		report.Error = err.Error()
		return report
	}
	report.Businesses = len(businesses)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, b := range businesses {
		wg.Add(1)
		handler := func(context.Context) error {
			defer wg.Done()
			res, err := w.executor.PublishDue(ctx, b)
			mu.Lock()
			report.Merge(res)
			mu.Unlock()
			return err
		}

		if w.pool != nil && w.pool.TryDispatch(jobpool.Job{Key: b.ID, Handler: handler}) {
			continue
		}
		runInline(ctx, b.ID, handler)
	}
	wg.Wait()

	if report.Total > 0 {
		logrus.WithFields(logrus.Fields{
			"businesses": report.Businesses,
			"total":      report.Total,
			"successful": report.Successful,
			"failed":     report.Failed,
		}).Info("[PUBLISHER] Tick completed")
	} else {
		logrus.Debugf("[PUBLISHER] Tick completed, nothing due across %d business(es)", report.Businesses)
	}
	return report
}

func runInline(ctx context.Context, key string, handler func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[PUBLISHER] Panic while publishing for %s: %v", key, r)
		}
	}()
	if err := handler(ctx); err != nil {
		logrus.WithError(err).Errorf("[PUBLISHER] Business %s failed", key)
	}
}
