package usecases_test

import (
	"context"
	"errors"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

var errCacheMiss = errors.New("cache miss")

// --- Mock ReportRepository ---

type mockReportRepo struct {
	createFn       func(ctx context.Context, r *domain.Report) error
	getByIDFn      func(ctx context.Context, id string) (*domain.Report, error)
	listFn         func(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error)
	updateStatusFn func(ctx context.Context, id string, status domain.IncidentStatus) error
}

func (m *mockReportRepo) Create(ctx context.Context, r *domain.Report) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockReportRepo) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockReportRepo) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

// --- Mock AlertRepository ---

type mockAlertRepo struct {
	listFn func(ctx context.Context, limit int) ([]domain.Alert, error)
}

func (m *mockAlertRepo) List(ctx context.Context, limit int) ([]domain.Alert, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	created []*domain.Report
	changed []*domain.Report
	err     error
}

func (m *mockPublisher) PublishReportCreated(ctx context.Context, r *domain.Report) error {
	m.created = append(m.created, r)
	return m.err
}

func (m *mockPublisher) PublishStatusChanged(ctx context.Context, r *domain.Report) error {
	m.changed = append(m.changed, r)
	return m.err
}

// --- Mock TriageScheduler ---

type mockTriage struct {
	scheduled []string
	err       error
}

func (m *mockTriage) ScheduleTriage(ctx context.Context, r *domain.Report) error {
	m.scheduled = append(m.scheduled, r.ID)
	return m.err
}

// --- Mock CacheService ---

type mockCache struct {
	data    map[string][]byte
	deleted []string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}
