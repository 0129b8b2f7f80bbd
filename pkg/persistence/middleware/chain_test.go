package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/layoutkit/internal/logging"
	"github.com/aretw0/layoutkit/pkg/adapters/memory"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/persistence/middleware"
	"github.com/aretw0/layoutkit/pkg/ports"
	contract "github.com/aretw0/layoutkit/pkg/ports/tests"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_Contract(t *testing.T) {
	contract.RunLayoutRepositoryContract(t, func(t *testing.T, clock func() time.Time) ports.LayoutRepository {
		return middleware.Chain(
			memory.NewRepository(memory.WithClock(clock)),
			middleware.NewLoggingMiddleware(logging.NewNop()),
			middleware.NewMetricsMiddleware(prometheus.NewRegistry()),
			middleware.NewLockingMiddleware(),
		)
	})
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	repo := middleware.NewLoggingMiddleware(logging.NewJSON(&buf, slog.LevelDebug))(memory.NewRepository())
	ctx := context.Background()

	_, err := repo.Save(ctx, "Customer Form", []domain.ExportGroup{})
	require.NoError(t, err)
	_, err = repo.Get(ctx, "missing.json")
	require.ErrorIs(t, err, domain.ErrLayoutNotFound)

	out := buf.String()
	assert.Contains(t, out, `"op":"save"`)
	assert.Contains(t, out, `"filename":"customer-form.json"`)
	assert.Contains(t, out, `"result":"not_found"`)
	assert.NotContains(t, out, `"level":"ERROR"`)
}
