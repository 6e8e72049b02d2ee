package health

import (
	"context"
	"time"
)

type EntityType string

const (
	EntityDatabase  EntityType = "database"
	EntityValkey    EntityType = "valkey"
	EntityPublisher EntityType = "publisher"
)

type Status string

const (
	StatusOk      Status = "OK"
	StatusError   Status = "ERROR"
	StatusUnknown Status = "UNKNOWN"
)

type HealthRecord struct {
	EntityType  EntityType `json:"entity_type"`
	Status      Status     `json:"status"`
	LastMessage string     `json:"last_message,omitempty"`
	LastChecked time.Time  `json:"last_checked"`
	Details     any        `json:"details,omitempty"`
}

type IHealthUsecase interface {
	CheckAll(ctx context.Context) ([]HealthRecord, error)
}
