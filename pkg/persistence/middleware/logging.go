package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
)

// NewLoggingMiddleware logs every repository operation at debug level and
// failures (other than not-found and validation) at error level.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.LayoutRepository) ports.LayoutRepository {
		return &loggingRepository{next: next, logger: logger}
	}
}

type loggingRepository struct {
	next   ports.LayoutRepository
	logger *slog.Logger
}

func (r *loggingRepository) log(ctx context.Context, op string, start time.Time, err error, attrs ...any) {
	attrs = append(attrs, "op", op, "duration", time.Since(start))
	if err != nil && result(err) == "error" {
		r.logger.ErrorContext(ctx, "Layout repository operation failed", append(attrs, "err", err)...)
		return
	}
	if err != nil {
		attrs = append(attrs, "result", result(err))
	}
	r.logger.DebugContext(ctx, "Layout repository operation", attrs...)
}

func (r *loggingRepository) Save(ctx context.Context, name string, layout []domain.ExportGroup) (domain.SavedLayout, error) {
	start := time.Now()
	saved, err := r.next.Save(ctx, name, layout)
	r.log(ctx, "save", start, err, "name", name, "filename", saved.Filename, "groups", len(layout))
	return saved, err
}

func (r *loggingRepository) List(ctx context.Context) ([]domain.LayoutSummary, error) {
	start := time.Now()
	list, err := r.next.List(ctx)
	r.log(ctx, "list", start, err, "count", len(list))
	return list, err
}

func (r *loggingRepository) Latest(ctx context.Context) (*domain.LayoutDocument, error) {
	start := time.Now()
	doc, err := r.next.Latest(ctx)
	filename := ""
	if doc != nil {
		filename = doc.Filename
	}
	r.log(ctx, "latest", start, err, "filename", filename)
	return doc, err
}

func (r *loggingRepository) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	start := time.Now()
	doc, err := r.next.Get(ctx, filename)
	r.log(ctx, "get", start, err, "filename", filename)
	return doc, err
}

func (r *loggingRepository) Delete(ctx context.Context, filename string) error {
	start := time.Now()
	err := r.next.Delete(ctx, filename)
	r.log(ctx, "delete", start, err, "filename", filename)
	return err
}
