package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/layoutkit/pkg/adapters/file"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
	contract "github.com/aretw0/layoutkit/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepository_Contract(t *testing.T) {
	contract.RunLayoutRepositoryContract(t, func(t *testing.T, clock func() time.Time) ports.LayoutRepository {
		return file.New(t.TempDir(), file.WithClock(clock))
	})
}

func TestFileRepository_Save(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := file.New(dir)

	saved, err := repo.Save(ctx, "Customer Form", contract.SampleLayout(t))
	require.NoError(t, err)

	t.Run("Absolute Storage Location", func(t *testing.T) {
		assert.True(t, filepath.IsAbs(saved.StorageLocation))
		assert.Equal(t, "customer-form.json", filepath.Base(saved.StorageLocation))
	})

	t.Run("Pretty Printed In Key Order", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, "customer-form.json"))
		require.NoError(t, err)
		content := string(data)
		assert.True(t, strings.HasPrefix(content, "[\n    {\n        \"name\": \"Personal Info\""), content)
		assert.Less(t, strings.Index(content, `"dataField"`), strings.Index(content, `"editorType"`))
		assert.Less(t, strings.Index(content, `"editorType"`), strings.Index(content, `"label"`))
	})

	t.Run("No Temp Files Left", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "customer-form.json", entries[0].Name())
	})
}

func TestFileRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Directory Is Empty", func(t *testing.T) {
		repo := file.New(filepath.Join(t.TempDir(), "does", "not", "exist"))
		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Ignores Foreign Entries", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123.json"), []byte("[]"), 0644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "kept.json"), []byte("[]"), 0644))

		list, err := file.New(dir).List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "kept.json", list[0].Filename)
		assert.Equal(t, int64(2), list[0].Size)
	})
}

func TestFileRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))

	_, err := file.New(dir).Get(context.Background(), "broken.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrLayoutNotFound)
	assert.Contains(t, err.Error(), "broken.json")
}
