package metrics

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/tenant-dashboard/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type key struct {
	tenantID string
	date     string
	source   Source
}

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu   sync.RWMutex
	rows map[key]*Metric
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		rows: make(map[key]*Metric),
	}
}

func (r *InMemoryRepo) Upsert(_ context.Context, metric *Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{metric.TenantID, metric.Date, metric.Source}
	if existing, ok := r.rows[k]; ok {
		existing.Data = metric.Data
		existing.UpdatedAt = metric.UpdatedAt
		metric.ID = existing.ID
		return nil
	}
	if metric.ID == "" {
		metric.ID = uuid.New().String()
	}
	m := *metric
	r.rows[k] = &m
	return nil
}

func (r *InMemoryRepo) ListSince(_ context.Context, tenantID, startDate string) ([]*Metric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Metric, 0)
	for k, m := range r.rows {
		if k.tenantID != tenantID || k.date < startDate {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	SortRows(out)
	return out, nil
}

func (r *InMemoryRepo) Get(_ context.Context, tenantID, date string, source Source) (*Metric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.rows[key{tenantID, date, source}]
	if !ok {
		return nil, errors.ErrMetricNotFound
	}
	cp := *m
	return &cp, nil
}

// Len returns the number of stored rows.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// SortRows orders rows by date, then source.
func SortRows(rows []*Metric) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Source < rows[j].Source
	})
}
