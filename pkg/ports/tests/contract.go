package tests

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RepositoryFactory builds a fresh, empty repository for one sub-test.
// Implementations must stamp modification times with clock so ordering is deterministic.
type RepositoryFactory func(t *testing.T, clock func() time.Time) ports.LayoutRepository

// Clock returns a fake clock that advances one second per call.
func Clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

// SampleLayout returns a small two-group layout document.
func SampleLayout(t *testing.T) []domain.ExportGroup {
	t.Helper()
	var layout []domain.ExportGroup
	require.NoError(t, json.Unmarshal([]byte(`[
		{"name": "Personal Info", "itemType": "group", "colCount": 2, "items": [
			{"dataField": "first_name", "editorType": "dxTextBox", "label": {"text": "First Name"}, "required": "1"},
			{"dataField": "email", "editorType": "dxTextBox", "label": {"text": "Email"}}
		]},
		{"name": "Notes", "itemType": "group", "colCount": 1, "items": []}
	]`), &layout))
	return layout
}

func layoutJSON(t *testing.T, layout []domain.ExportGroup) string {
	t.Helper()
	data, err := json.Marshal(layout)
	require.NoError(t, err)
	return string(data)
}

// RunLayoutRepositoryContract runs a suite of tests to verify that a LayoutRepository
// implementation adheres to the interface contract.
func RunLayoutRepositoryContract(t *testing.T, factory RepositoryFactory) {
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Empty Repository", func(t *testing.T) {
		repo := factory(t, Clock(start))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		latest, err := repo.Latest(ctx)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("Save and Get", func(t *testing.T) {
		repo := factory(t, Clock(start))
		layout := SampleLayout(t)

		saved, err := repo.Save(ctx, "Customer Form", layout)
		require.NoError(t, err)
		assert.Equal(t, "customer-form.json", saved.Filename)
		assert.NotEmpty(t, saved.StorageLocation)

		doc, err := repo.Get(ctx, "customer-form.json")
		require.NoError(t, err)
		assert.Equal(t, "customer-form.json", doc.Filename)
		assert.Equal(t, layoutJSON(t, layout), layoutJSON(t, doc.Layout), "key order and content must survive storage")

		// Extension is optional on lookup
		doc, err = repo.Get(ctx, "customer-form")
		require.NoError(t, err)
		assert.Equal(t, "customer-form.json", doc.Filename)
	})

	t.Run("Save Slugifies Names", func(t *testing.T) {
		repo := factory(t, Clock(start))

		saved, err := repo.Save(ctx, "Relatório Geral @ 2024", SampleLayout(t))
		require.NoError(t, err)
		assert.Equal(t, "relatorio-geral-at-2024.json", saved.Filename)

		saved, err = repo.Save(ctx, "", SampleLayout(t))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(saved.Filename, "layout-2024-05-01-"), saved.Filename)
	})

	t.Run("Save Rejects Missing Layout", func(t *testing.T) {
		repo := factory(t, Clock(start))

		_, err := repo.Save(ctx, "broken", nil)
		require.Error(t, err)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "layout")

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Save Accepts Empty Layout", func(t *testing.T) {
		repo := factory(t, Clock(start))

		_, err := repo.Save(ctx, "blank", []domain.ExportGroup{})
		require.NoError(t, err)

		doc, err := repo.Get(ctx, "blank.json")
		require.NoError(t, err)
		assert.Empty(t, doc.Layout)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		repo := factory(t, Clock(start))
		_, err := repo.Save(ctx, "form", SampleLayout(t))
		require.NoError(t, err)

		replacement := SampleLayout(t)[:1]
		_, err = repo.Save(ctx, "Form", replacement)
		require.NoError(t, err)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)

		doc, err := repo.Get(ctx, "form.json")
		require.NoError(t, err)
		assert.Len(t, doc.Layout, 1)
	})

	t.Run("List and Latest Order", func(t *testing.T) {
		repo := factory(t, Clock(start))
		for _, name := range []string{"alpha", "beta", "gamma"} {
			_, err := repo.Save(ctx, name, SampleLayout(t))
			require.NoError(t, err)
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "gamma.json", list[0].Filename)
		assert.Equal(t, "beta.json", list[1].Filename)
		assert.Equal(t, "alpha.json", list[2].Filename)
		assert.Equal(t, "gamma", list[0].Name)
		assert.Positive(t, list[0].Size)
		assert.True(t, list[0].ModifiedAt.After(list[1].ModifiedAt))

		latest, err := repo.Latest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "gamma.json", latest.Filename)

		// Re-saving moves a layout to the front
		_, err = repo.Save(ctx, "alpha", SampleLayout(t))
		require.NoError(t, err)
		latest, err = repo.Latest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "alpha.json", latest.Filename)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		repo := factory(t, Clock(start))
		_, err := repo.Get(ctx, "missing.json")
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
	})

	t.Run("Get Invalid Filename", func(t *testing.T) {
		repo := factory(t, Clock(start))
		for _, name := range []string{"../secret.json", "a/b.json", ".hidden"} {
			_, err := repo.Get(ctx, name)
			assert.True(t, domain.IsValidation(err), "expected validation error for %q, got %v", name, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := factory(t, Clock(start))
		_, err := repo.Save(ctx, "doomed", SampleLayout(t))
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, "doomed.json"))

		_, err = repo.Get(ctx, "doomed.json")
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		assert.ErrorIs(t, repo.Delete(ctx, "doomed.json"), domain.ErrLayoutNotFound)
	})
}
