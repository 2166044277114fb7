package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/tenant-dashboard/internal/errors"
	"github.com/jrsteele09/tenant-dashboard/metrics"
)

var _ metrics.Repo = (*MetricRepo)(nil)

// MetricRepo keeps one row per (tenant, date, source). Data is stored as jsonb.
type MetricRepo struct {
	pool *pgxpool.Pool
}

const metricColumns = `id, tenant_id, to_char(date, 'YYYY-MM-DD'), source, data, updated_at`

func (r *MetricRepo) Upsert(ctx context.Context, metric *metrics.Metric) error {
	id := metric.ID
	if id == "" {
		id = uuid.New().String()
	}

	err := r.pool.QueryRow(ctx, `INSERT INTO metrics (id, tenant_id, date, source, data, updated_at)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		ON CONFLICT (tenant_id, date, source) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		id,
		metric.TenantID,
		metric.Date,
		string(metric.Source),
		metric.Data,
		metric.UpdatedAt,
	).Scan(&metric.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert metric: %w", err)
	}
	return nil
}

func (r *MetricRepo) ListSince(ctx context.Context, tenantID, startDate string) ([]*metrics.Metric, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+metricColumns+` FROM metrics
		WHERE tenant_id = $1 AND date >= $2::date
		ORDER BY date, source`, tenantID, startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*metrics.Metric, error) {
		return scanMetric(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan metrics: %w", err)
	}
	return out, nil
}

func (r *MetricRepo) Get(ctx context.Context, tenantID, date string, source metrics.Source) (*metrics.Metric, error) {
	m, err := scanMetric(r.pool.QueryRow(ctx, `SELECT `+metricColumns+` FROM metrics
		WHERE tenant_id = $1 AND date = $2::date AND source = $3`, tenantID, date, string(source)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrMetricNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metric: %w", err)
	}
	return m, nil
}

func scanMetric(row pgx.Row) (*metrics.Metric, error) {
	var (
		m      metrics.Metric
		source string
	)
	if err := row.Scan(&m.ID, &m.TenantID, &m.Date, &source, &m.Data, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Source = metrics.Source(source)
	m.UpdatedAt = m.UpdatedAt.UTC()
	return &m, nil
}
