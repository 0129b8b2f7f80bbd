package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/layoutkit/internal/config"
	"github.com/aretw0/layoutkit/internal/logging"
	"github.com/aretw0/layoutkit/pkg/domain"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLayout() []domain.ExportGroup {
	return []domain.ExportGroup{{
		Name:     "Main",
		ItemType: domain.GroupItemType,
		ColCount: 1,
		Items:    []*domain.Attributes{},
	}}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "layoutkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: memory\n  path: from-file\nlog:\n  level: warn\n"), 0644))

	cfg, err := LoadConfig(Overrides{ConfigPath: path, Dir: "from-flag", LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "from-flag", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = LoadConfig(Overrides{ConfigPath: path, Storage: "ftp"})
	assert.ErrorContains(t, err, `unknown storage driver "ftp"`)
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	cfg.Log.Format = "json"
	NewLogger(cfg, &buf).Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	cfg.Log.Format = "text"
	NewLogger(cfg, &buf).Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestBuild_Drivers(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		mutate func(*config.Config)
		check  func(t *testing.T, location string)
	}{
		{
			name: "File",
			mutate: func(c *config.Config) {
				c.Storage.Driver = config.DriverFile
				c.Storage.Path = t.TempDir()
			},
			check: func(t *testing.T, location string) {
				assert.FileExists(t, location)
			},
		},
		{
			name:   "Memory",
			mutate: func(c *config.Config) { c.Storage.Driver = config.DriverMemory },
			check: func(t *testing.T, location string) {
				assert.Equal(t, "memory://main.json", location)
			},
		},
		{
			name: "Redis Without Locking",
			mutate: func(c *config.Config) {
				c.Storage.Driver = config.DriverRedis
				c.Storage.Redis.Addr = mr.Addr()
				c.Lock.Enabled = false
			},
			check: func(t *testing.T, location string) {
				assert.Equal(t, "redis://layoutkit:layout:main.json", location)
				assert.True(t, mr.Exists("layoutkit:layout:main.json"))
			},
		},
		{
			name: "Redis With Distributed Lock",
			mutate: func(c *config.Config) {
				c.Storage.Driver = config.DriverRedis
				c.Storage.Redis.Addr = mr.Addr()
				c.Storage.Redis.Prefix = "locked:"
			},
			check: func(t *testing.T, location string) {
				assert.Equal(t, "redis://locked:main.json", location)
				// released after the save
				assert.False(t, mr.Exists("locked:lock:main.json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			rt, err := Build(cfg, logging.NewNop())
			require.NoError(t, err)
			defer rt.Close()

			saved, err := rt.Repository.Save(ctx, "Main", sampleLayout())
			require.NoError(t, err)
			assert.Equal(t, "main.json", saved.Filename)
			tt.check(t, saved.StorageLocation)

			doc, err := rt.Repository.Get(ctx, "main")
			require.NoError(t, err)
			assert.Equal(t, "Main", doc.Layout[0].Name)

			families, err := rt.Registry.Gather()
			require.NoError(t, err)
			assert.True(t, hasFamily(families, "layoutkit_repository_operations_total"))
		})
	}
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "tape"
	_, err := Build(cfg, logging.NewNop())
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestRuntime_Kit(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.DriverMemory
	rt, err := Build(cfg, logging.NewNop())
	require.NoError(t, err)

	ws, err := rt.Kit().Workspace(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, ws.AvailableNodes())
}

func TestPrintHelpers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintMarkdown(&buf, "# Title\n", true))
	assert.Equal(t, "# Title\n", buf.String())

	buf.Reset()
	require.NoError(t, PrintJSON(&buf, map[string]string{"a": "<b>"}))
	assert.Equal(t, "{\n    \"a\": \"<b>\"\n}\n", buf.String())

	buf.Reset()
	PrintSystemMessage(&buf, "Deleted %d layout(s)", 2)
	assert.Contains(t, buf.String(), ">>> Deleted 2 layout(s)")
}

func hasFamily(families []*dto.MetricFamily, name string) bool {
	for _, f := range families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}
