package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/imbizlab/groomflo-app/domains/health"
	"github.com/imbizlab/groomflo-app/publisher"
	"gorm.io/gorm"
)

// Pinger is satisfied by the valkey client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TickReporter is satisfied by the publish worker.
type TickReporter interface {
	LastReport() (publisher.TickReport, bool)
}

type serviceHealth struct {
	db     *gorm.DB
	valkey Pinger
	worker TickReporter
	now    func() time.Time
}

// NewHealthService checks the database and, when given, valkey and the worker.
func NewHealthService(db *gorm.DB, valkey Pinger, worker TickReporter) health.IHealthUsecase {
	return &serviceHealth{
		db:     db,
		valkey: valkey,
		worker: worker,
		now:    time.Now,
	}
}

func (s *serviceHealth) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	return []health.HealthRecord{
		s.checkDatabase(ctx),
		s.checkValkey(ctx),
		s.checkPublisher(),
	}, nil
}

func (s *serviceHealth) checkDatabase(ctx context.Context) health.HealthRecord {
	record := s.record(health.EntityDatabase)
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		record.Status = health.StatusError
		record.LastMessage = err.Error()
		return record
	}
	record.Details = sqlDB.Stats()
	record.LastMessage = "Connection successful"
	return record
}

func (s *serviceHealth) checkValkey(ctx context.Context) health.HealthRecord {
	record := s.record(health.EntityValkey)
	if s.valkey == nil {
		record.Status = health.StatusUnknown
		record.LastMessage = "Valkey is disabled"
		return record
	}
	if err := s.valkey.Ping(ctx); err != nil {
		record.Status = health.StatusError
		record.LastMessage = err.Error()
		return record
	}
	record.LastMessage = "Connection successful"
	return record
}

func (s *serviceHealth) checkPublisher() health.HealthRecord {
	record := s.record(health.EntityPublisher)
	if s.worker == nil {
		record.Status = health.StatusUnknown
		record.LastMessage = "Publish worker is not running in this process"
		return record
	}
	last, ok := s.worker.LastReport()
	if !ok {
		record.Status = health.StatusUnknown
		record.LastMessage = "No tick completed yet"
		return record
	}

	record.Details = last
	if last.Error != "" {
		record.Status = health.StatusError
		record.LastMessage = last.Error
		return record
	}
	record.LastMessage = fmt.Sprintf("Last tick %s: %d published, %d failed",
		humanize.RelTime(last.FinishedAt, s.now(), "ago", "from now"), last.Successful, last.Failed)
	return record
}

func (s *serviceHealth) record(entity health.EntityType) health.HealthRecord {
	return health.HealthRecord{
		EntityType:  entity,
		Status:      health.StatusOk,
		LastChecked: s.now(),
	}
}
