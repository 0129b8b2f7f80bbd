package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/layoutkit/pkg/adapters/memory"
	"github.com/aretw0/layoutkit/pkg/ports"
	contract "github.com/aretw0/layoutkit/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Contract(t *testing.T) {
	contract.RunLayoutRepositoryContract(t, func(t *testing.T, clock func() time.Time) ports.LayoutRepository {
		return memory.NewRepository(memory.WithClock(clock))
	})
}

func TestMemoryRepository_Isolation(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	layout := contract.SampleLayout(t)

	_, err := repo.Save(ctx, "form", layout)
	require.NoError(t, err)

	// Mutating the caller's copy must not leak into the store
	layout[0].Name = "Changed"
	doc, err := repo.Get(ctx, "form.json")
	require.NoError(t, err)
	assert.Equal(t, "Personal Info", doc.Layout[0].Name)
}

func TestCatalogLoader(t *testing.T) {
	loader := memory.NewCatalogFromMap(map[string]map[string]any{
		"b_field": {"label": "B"},
		"a_field": {"label": "A"},
	})
	catalog, err := loader.LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a_field", "b_field"}, catalog.IDs())

	empty, err := memory.NewCatalogLoader(nil).LoadCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}
