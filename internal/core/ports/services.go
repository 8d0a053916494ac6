package ports

import (
	"context"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishReportCreated(ctx context.Context, report *domain.Report) error
	PublishStatusChanged(ctx context.Context, report *domain.Report) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// TriageScheduler starts the follow-up process for a newly filed report.
type TriageScheduler interface {
	ScheduleTriage(ctx context.Context, report *domain.Report) error
}
