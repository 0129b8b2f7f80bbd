package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded by the metrics middleware.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layoutkit_repository_operations_total",
				Help: "Total number of layout repository operations",
			},
			[]string{"operation", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "layoutkit_repository_operation_duration_seconds",
				Help:    "Duration of layout repository operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.Operations, m.Duration)
	return m
}

// Middleware returns a middleware recording into m.
func (m *Metrics) Middleware() Middleware {
	return func(next ports.LayoutRepository) ports.LayoutRepository {
		return &metricsRepository{next: next, metrics: m}
	}
}

// NewMetricsMiddleware registers fresh collectors with reg and returns the middleware.
func NewMetricsMiddleware(reg prometheus.Registerer) Middleware {
	return NewMetrics(reg).Middleware()
}

type metricsRepository struct {
	next    ports.LayoutRepository
	metrics *Metrics
}

func (r *metricsRepository) observe(op string, start time.Time, err error) {
	r.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	r.metrics.Operations.WithLabelValues(op, result(err)).Inc()
}

// result classifies an error into a low-cardinality label.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrLayoutNotFound):
		return "not_found"
	case domain.IsValidation(err):
		return "invalid"
	default:
		return "error"
	}
}

func (r *metricsRepository) Save(ctx context.Context, name string, layout []domain.ExportGroup) (domain.SavedLayout, error) {
	start := time.Now()
	saved, err := r.next.Save(ctx, name, layout)
	r.observe("save", start, err)
	return saved, err
}

func (r *metricsRepository) List(ctx context.Context) ([]domain.LayoutSummary, error) {
	start := time.Now()
	list, err := r.next.List(ctx)
	r.observe("list", start, err)
	return list, err
}

func (r *metricsRepository) Latest(ctx context.Context) (*domain.LayoutDocument, error) {
	start := time.Now()
	doc, err := r.next.Latest(ctx)
	r.observe("latest", start, err)
	return doc, err
}

func (r *metricsRepository) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	start := time.Now()
	doc, err := r.next.Get(ctx, filename)
	r.observe("get", start, err)
	return doc, err
}

func (r *metricsRepository) Delete(ctx context.Context, filename string) error {
	start := time.Now()
	err := r.next.Delete(ctx, filename)
	r.observe("delete", start, err)
	return err
}
