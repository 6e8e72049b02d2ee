package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const DefaultSpec = "0 7 * * *"

// RunFunc sends the digests for day.
type RunFunc func(ctx context.Context, day time.Time) error

// Scheduler fires RunFunc on a cron spec.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	spec     string
	loc      *time.Location
	run      RunFunc
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(spec string, loc *time.Location, run RunFunc) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	if loc == nil {
		loc = time.UTC
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}

	log := cronLogger{}
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc), cron.WithLogger(log), cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log))),
		schedule: schedule,
		spec:     spec,
		loc:      loc,
		run:      run,
	}
	s.cron.Schedule(schedule, cron.FuncJob(s.fire))
	return s, nil
}

// Next returns the first run after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	logrus.Infof("[DIGEST] Daily digest scheduled (%s %s), next run %s", s.spec, s.loc, s.Next(time.Now()).Format(time.RFC1123))
}

// Stop waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	if s.cancel != nil {
		s.cancel()
	}
	logrus.Info("[DIGEST] Digest scheduler stopped")
}

func (s *Scheduler) fire() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.run(ctx, time.Now().In(s.loc)); err != nil {
		logrus.WithError(err).Error("[DIGEST] Daily digest run failed")
	}
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logrus.WithFields(fields(keysAndValues)).Debugf("[DIGEST] cron: %s", msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logrus.WithError(err).WithFields(fields(keysAndValues)).Errorf("[DIGEST] cron: %s", msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
