package workspace_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/layoutkit/pkg/adapters/memory"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{
	"first_name": {"label": "First Name", "editorType": "dxTextBox", "required": "1"},
	"last_name": {"label": "Last Name", "editorType": "dxTextBox"},
	"email": {"label": "Email", "editorType": "dxTextBox", "format": "email"}
}`

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	var c domain.Catalog
	require.NoError(t, json.Unmarshal([]byte(catalogJSON), &c))
	return &c
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func dataFields(nodes []domain.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.DataField
	}
	return out
}

// failingRepo fails List or Get with the configured error.
type failingRepo struct {
	*memory.Repository
	listErr error
	getErr  error
}

func (f *failingRepo) List(ctx context.Context) ([]domain.LayoutSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Repository.List(ctx)
}

func (f *failingRepo) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.Get(ctx, filename)
}

// gatedRepo blocks Get until the test releases it.
type gatedRepo struct {
	*memory.Repository
	entered chan string
	release map[string]chan struct{}
}

func (g *gatedRepo) Get(ctx context.Context, filename string) (*domain.LayoutDocument, error) {
	g.entered <- filename
	<-g.release[filename]
	return g.Repository.Get(ctx, filename)
}

func TestNew(t *testing.T) {
	ws := workspace.New(testCatalog(t))

	assert.Empty(t, ws.Containers())
	assert.Equal(t, []string{"first_name", "last_name", "email", "spacer"}, dataFields(ws.AvailableNodes()))
	assert.False(t, ws.IsLoading())
	assert.Empty(t, ws.LoadError())

	empty := workspace.New(nil)
	require.Len(t, empty.AvailableNodes(), 1)
	assert.True(t, empty.AvailableNodes()[0].IsSpacer())
}

func TestContainers(t *testing.T) {
	t.Run("AddContainer", func(t *testing.T) {
		ws := workspace.New(testCatalog(t), workspace.WithIDGenerator(sequentialIDs()))
		c := ws.AddContainer("Personal Info")
		ws.AddContainer("Personal Info") // no uniqueness check

		assert.Equal(t, "id-1", c.ID)
		assert.Equal(t, 1, c.NumCol)
		assert.NotNil(t, c.Nodes)
		assert.Len(t, ws.Containers(), 2)
	})

	t.Run("UpdateContainerNumCol Clamps", func(t *testing.T) {
		ws := workspace.New(testCatalog(t))
		c := ws.AddContainer("Grid")

		ws.UpdateContainerNumCol(c.ID, 3)
		assert.Equal(t, 3, ws.Containers()[0].NumCol)

		for _, v := range []int{0, -5} {
			ws.UpdateContainerNumCol(c.ID, v)
			assert.Equal(t, 1, ws.Containers()[0].NumCol)
		}

		ws.UpdateContainerNumCol("unknown", 4)
		assert.Equal(t, 1, ws.Containers()[0].NumCol)
	})

	t.Run("UpdateContainerNodes Does Not Touch Availability", func(t *testing.T) {
		ws := workspace.New(testCatalog(t))
		c := ws.AddContainer("Main")
		nodes := ws.AvailableNodes()[:1]

		ws.UpdateContainerNodes(c.ID, nodes)
		ws.UpdateContainerNodes("unknown", nodes)

		assert.Equal(t, []string{"first_name"}, dataFields(ws.Containers()[0].Nodes))
		assert.Len(t, ws.AvailableNodes(), 4)

		ws.UpdateAvailableNodes()
		assert.Equal(t, []string{"last_name", "email", "spacer"}, dataFields(ws.AvailableNodes()))
	})

	t.Run("Accessors Return Copies", func(t *testing.T) {
		ws := workspace.New(testCatalog(t))
		c := ws.AddContainer("Main")
		ws.UpdateContainerNodes(c.ID, ws.AvailableNodes()[:1])

		got := ws.Containers()
		got[0].Name = "Hacked"
		got[0].Nodes[0].Label = "Hacked"
		got[0].Nodes[0].Metadata.Set("required", "0")

		fresh := ws.Containers()
		assert.Equal(t, "Main", fresh[0].Name)
		assert.Equal(t, "First Name", fresh[0].Nodes[0].Label)
		v, _ := fresh[0].Nodes[0].Metadata.Get("required")
		assert.Equal(t, "1", v)
	})
}

func TestRemoveContainer(t *testing.T) {
	t.Run("Rescues Field Nodes And Drops Spacers", func(t *testing.T) {
		ws := workspace.New(testCatalog(t))
		c := ws.AddContainer("Main")
		all := ws.AvailableNodes()
		// first_name + spacer + last_name moved into the container
		ws.UpdateContainerNodes(c.ID, []domain.Node{all[0], all[3], all[1]})
		ws.UpdateAvailableNodes()
		require.Equal(t, []string{"email", "spacer"}, dataFields(ws.AvailableNodes()))

		ws.RemoveContainer(c.ID)

		assert.Empty(t, ws.Containers())
		assert.Equal(t, []string{"email", "spacer", "first_name", "last_name"}, dataFields(ws.AvailableNodes()))
	})

	t.Run("Never Duplicates A DataField", func(t *testing.T) {
		ws := workspace.New(testCatalog(t))
		c := ws.AddContainer("Main")
		all := ws.AvailableNodes()
		dup := all[0].Clone()
		dup.ID = "copy"
		// first_name is still available AND placed twice
		ws.UpdateContainerNodes(c.ID, []domain.Node{all[0], dup, all[2]})

		ws.RemoveContainer(c.ID)

		assert.Equal(t, []string{"first_name", "last_name", "email", "spacer"}, dataFields(ws.AvailableNodes()))
	})

	t.Run("Unknown Id Is Ignored", func(t *testing.T) {
		ws := workspace.New(testCatalog(t))
		ws.AddContainer("Main")
		ws.RemoveContainer("nope")
		assert.Len(t, ws.Containers(), 1)
		assert.Len(t, ws.AvailableNodes(), 4)
	})
}

func TestIsContainerNameUnique(t *testing.T) {
	ws := workspace.New(testCatalog(t))
	ws.AddContainer("Personal Info")
	ws.AddContainer("  Padded  ")

	tests := []struct {
		name   string
		unique bool
	}{
		{"Personal Info", false},
		{"personal info", false},
		{"  PERSONAL INFO ", false},
		{"padded", false},
		{"Address", true},
		{"Personal", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.unique, ws.IsContainerNameUnique(tt.name), tt.name)
	}
}

func TestGetLayoutJSON(t *testing.T) {
	ws := workspace.New(testCatalog(t))
	c := ws.AddContainer("Personal Info")
	ws.UpdateContainerNumCol(c.ID, 2)
	all := ws.AvailableNodes()
	ws.UpdateContainerNodes(c.ID, []domain.Node{all[0], all[3]})

	data, err := json.Marshal(ws.GetLayoutJSON())
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"name": "Personal Info", "itemType": "group", "colCount": 2,
		"items": [{"dataField": "first_name", "editorType": "dxTextBox", "label": {"text": "First Name"}, "required": "1"}]
	}]`, string(data))
}

func TestLoadSpecificLayout(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces Containers And Availability", func(t *testing.T) {
		repo := memory.NewRepository()
		source := workspace.New(testCatalog(t), workspace.WithRepository(repo))
		c := source.AddContainer("Saved")
		source.UpdateContainerNodes(c.ID, source.AvailableNodes()[1:2])
		_, err := source.SaveLayout(ctx, "saved")
		require.NoError(t, err)

		ws := workspace.New(testCatalog(t), workspace.WithRepository(repo), workspace.WithIDGenerator(sequentialIDs()))
		ws.AddContainer("Existing")
		require.NoError(t, ws.LoadSpecificLayout(ctx, "saved.json"))

		containers := ws.Containers()
		require.Len(t, containers, 1)
		assert.Equal(t, "Saved", containers[0].Name)
		assert.Equal(t, []string{"last_name"}, dataFields(containers[0].Nodes))
		assert.NotEqual(t, "last_name", containers[0].Nodes[0].ID)
		assert.Equal(t, []string{"first_name", "email", "spacer"}, dataFields(ws.AvailableNodes()))
	})

	t.Run("Propagates Errors And Keeps State", func(t *testing.T) {
		ws := workspace.New(testCatalog(t), workspace.WithRepository(memory.NewRepository()))
		ws.AddContainer("Existing")

		err := ws.LoadSpecificLayout(ctx, "missing.json")
		assert.ErrorIs(t, err, domain.ErrLayoutNotFound)
		require.Len(t, ws.Containers(), 1)
		assert.Equal(t, "Existing", ws.Containers()[0].Name)
		assert.Empty(t, ws.LoadError())
	})

	t.Run("No Repository", func(t *testing.T) {
		ws := workspace.New(testCatalog(t))
		assert.ErrorIs(t, ws.LoadSpecificLayout(ctx, "x.json"), workspace.ErrNoRepository)
		assert.ErrorIs(t, ws.LoadLatestLayout(ctx), workspace.ErrNoRepository)
		_, err := ws.SaveLayout(ctx, "x")
		assert.ErrorIs(t, err, workspace.ErrNoRepository)
	})
}

func TestLoadLatestLayout(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads Most Recent", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		repo := memory.NewRepository(memory.WithClock(func() time.Time {
			now = now.Add(time.Minute)
			return now
		}))
		source := workspace.New(testCatalog(t), workspace.WithRepository(repo))
		source.AddContainer("Older")
		_, err := source.SaveLayout(ctx, "older")
		require.NoError(t, err)
		source.AddContainer("Newer")
		_, err = source.SaveLayout(ctx, "newer")
		require.NoError(t, err)

		ws := workspace.New(testCatalog(t), workspace.WithRepository(repo))
		require.NoError(t, ws.LoadLatestLayout(ctx))

		assert.Len(t, ws.Containers(), 2)
		assert.False(t, ws.IsLoading())
		assert.Empty(t, ws.LoadError())
	})

	t.Run("Empty Repository Resets", func(t *testing.T) {
		ws := workspace.New(testCatalog(t), workspace.WithRepository(memory.NewRepository()))
		c := ws.AddContainer("Leftover")
		ws.UpdateContainerNodes(c.ID, ws.AvailableNodes()[:1])
		ws.UpdateAvailableNodes()

		require.NoError(t, ws.LoadLatestLayout(ctx))
		assert.Empty(t, ws.Containers())
		assert.Len(t, ws.AvailableNodes(), 4)
		assert.Empty(t, ws.LoadError())
	})

	t.Run("List Failure Falls Back", func(t *testing.T) {
		repo := &failingRepo{Repository: memory.NewRepository(), listErr: errors.New("connection refused")}
		ws := workspace.New(testCatalog(t), workspace.WithRepository(repo))
		ws.AddContainer("Leftover")

		require.NoError(t, ws.LoadLatestLayout(ctx))
		assert.Empty(t, ws.Containers())
		assert.Len(t, ws.AvailableNodes(), 4)
		assert.Equal(t, workspace.LoadErrorMessage, ws.LoadError())
		assert.False(t, ws.IsLoading())
	})

	t.Run("Get Failure Falls Back", func(t *testing.T) {
		repo := &failingRepo{Repository: memory.NewRepository(), getErr: errors.New("boom")}
		_, err := repo.Save(ctx, "broken", []domain.ExportGroup{})
		require.NoError(t, err)

		ws := workspace.New(testCatalog(t), workspace.WithRepository(repo))
		require.NoError(t, ws.LoadLatestLayout(ctx))
		assert.Equal(t, workspace.LoadErrorMessage, ws.LoadError())

		// A later successful load clears the error
		repo.getErr = nil
		require.NoError(t, ws.LoadLatestLayout(ctx))
		assert.Empty(t, ws.LoadError())
	})

	t.Run("Loading Flag And Previous State Visible During Load", func(t *testing.T) {
		inner := memory.NewRepository()
		_, err := inner.Save(ctx, "slow", []domain.ExportGroup{{Name: "Loaded", ItemType: "group", ColCount: 1}})
		require.NoError(t, err)
		repo := &gatedRepo{
			Repository: inner,
			entered:    make(chan string, 1),
			release:    map[string]chan struct{}{"slow.json": make(chan struct{})},
		}

		ws := workspace.New(testCatalog(t), workspace.WithRepository(repo))
		ws.AddContainer("Before")

		done := make(chan error, 1)
		go func() { done <- ws.LoadLatestLayout(ctx) }()

		<-repo.entered
		assert.True(t, ws.IsLoading())
		assert.Equal(t, "Before", ws.Containers()[0].Name)

		close(repo.release["slow.json"])
		require.NoError(t, <-done)
		assert.False(t, ws.IsLoading())
		assert.Equal(t, "Loaded", ws.Containers()[0].Name)
	})
}

func TestConcurrentLoadsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewRepository()
	for _, name := range []string{"first", "second"} {
		_, err := inner.Save(ctx, name, []domain.ExportGroup{{Name: name, ItemType: "group", ColCount: 1}})
		require.NoError(t, err)
	}
	repo := &gatedRepo{
		Repository: inner,
		entered:    make(chan string, 2),
		release: map[string]chan struct{}{
			"first.json":  make(chan struct{}),
			"second.json": make(chan struct{}),
		},
	}
	ws := workspace.New(testCatalog(t), workspace.WithRepository(repo))

	var wg sync.WaitGroup
	for _, f := range []string{"first.json", "second.json"} {
		wg.Add(1)
		go func(filename string) {
			defer wg.Done()
			assert.NoError(t, ws.LoadSpecificLayout(ctx, filename))
		}(f)
	}
	<-repo.entered
	<-repo.entered

	// second finishes before first: first's result is the one that sticks
	close(repo.release["second.json"])
	require.Eventually(t, func() bool {
		c := ws.Containers()
		return len(c) == 1 && c[0].Name == "second"
	}, time.Second, 5*time.Millisecond)
	close(repo.release["first.json"])
	wg.Wait()

	assert.Equal(t, "first", ws.Containers()[0].Name)
}

func TestSaveLayout(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	ws := workspace.New(testCatalog(t), workspace.WithRepository(repo))
	c := ws.AddContainer("Contact")
	ws.UpdateContainerNodes(c.ID, ws.AvailableNodes()[2:3])

	saved, err := ws.SaveLayout(ctx, "Contact Form")
	require.NoError(t, err)
	assert.Equal(t, "contact-form.json", saved.Filename)

	doc, err := repo.Get(ctx, saved.Filename)
	require.NoError(t, err)
	require.Len(t, doc.Layout, 1)
	require.Len(t, doc.Layout[0].Items, 1)
	df, _ := domain.AttrString(doc.Layout[0].Items[0], "dataField")
	assert.Equal(t, "email", df)
}

func TestResetWorkspace(t *testing.T) {
	ws := workspace.New(testCatalog(t))
	c := ws.AddContainer("Main")
	ws.UpdateContainerNodes(c.ID, ws.AvailableNodes()[:2])
	ws.UpdateAvailableNodes()

	ws.ResetWorkspace()

	state := ws.Snapshot()
	assert.Empty(t, state.Containers)
	assert.Len(t, state.AvailableNodes, 4)
}
