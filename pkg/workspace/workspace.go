package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/layoutkit/internal/logging"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
	"github.com/aretw0/layoutkit/pkg/transform"
	"github.com/google/uuid"
)

// LoadErrorMessage is the user-facing message set when loading the latest layout fails.
const LoadErrorMessage = "Failed to load workspace from server"

// ErrNoRepository is returned by operations that need persistence on a
// workspace built without WithRepository.
var ErrNoRepository = errors.New("workspace has no layout repository")

// Workspace is the state of one editing session.
type Workspace struct {
	mu sync.Mutex

	containers []domain.Container
	available  []domain.Node
	isLoading  bool
	loadError  string

	catalog *domain.Catalog
	repo    ports.LayoutRepository
	logger  *slog.Logger
	newID   func() string
}

// State is a point-in-time copy of the workspace.
type State struct {
	Containers     []domain.Container `json:"workspaceContainers"`
	AvailableNodes []domain.Node      `json:"availableNodes"`
	IsLoading      bool               `json:"isLoading"`
	LoadError      string             `json:"loadError,omitempty"`
}

// Option configures the Workspace.
type Option func(*Workspace)

// WithRepository sets the repository used by the load and save operations.
func WithRepository(repo ports.LayoutRepository) Option {
	return func(w *Workspace) {
		w.repo = repo
	}
}

// WithLogger configures a logger for load failures.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator used for container and imported node ids.
func WithIDGenerator(fn func() string) Option {
	return func(w *Workspace) {
		w.newID = fn
	}
}

// New creates a workspace over catalog with no containers and every catalog
// node (plus the spacer) available.
func New(catalog *domain.Catalog, opts ...Option) *Workspace {
	if catalog == nil {
		catalog = domain.NewCatalog()
	}
	w := &Workspace{
		containers: []domain.Container{},
		catalog:    catalog,
		logger:     logging.NewNop(),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.available = transform.ImportCatalog(w.catalog)
	return w
}

// Catalog returns the catalog the workspace was built from.
func (w *Workspace) Catalog() *domain.Catalog {
	return w.catalog
}

// Containers returns a copy of the workspace containers.
func (w *Workspace) Containers() []domain.Container {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneContainers(w.containers)
}

// AvailableNodes returns a copy of the pool of unplaced nodes.
func (w *Workspace) AvailableNodes() []domain.Node {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneNodes(w.available)
}

// IsLoading reports whether LoadLatestLayout is in progress.
func (w *Workspace) IsLoading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isLoading
}

// LoadError returns the message of the last failed LoadLatestLayout, or "".
func (w *Workspace) LoadError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loadError
}

// Snapshot returns a copy of the whole state.
func (w *Workspace) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Containers:     cloneContainers(w.containers),
		AvailableNodes: cloneNodes(w.available),
		IsLoading:      w.isLoading,
		LoadError:      w.loadError,
	}
}

// AddContainer appends an empty single-column container. Names are not
// checked for uniqueness here; see IsContainerNameUnique.
func (w *Workspace) AddContainer(name string) domain.Container {
	c := domain.Container{
		ID:     w.newID(),
		Name:   name,
		NumCol: 1,
		Nodes:  []domain.Node{},
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.containers = append(w.containers, c)
	return c.Clone()
}

// UpdateContainerNumCol sets the column count, clamping values below 1 to 1.
// Unknown ids are ignored.
func (w *Workspace) UpdateContainerNumCol(id string, numCol int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.indexOf(id); i >= 0 {
		w.containers[i].NumCol = domain.ClampColumns(numCol)
	}
}

// UpdateContainerNodes replaces the nodes of a container wholesale.
// Unknown ids are ignored.
//
// Availability is NOT reconciled: a caller moving nodes in from the available
// pool must remove them from it (or call UpdateAvailableNodes).
func (w *Workspace) UpdateContainerNodes(id string, nodes []domain.Node) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.indexOf(id); i >= 0 {
		w.containers[i].Nodes = cloneNodes(nodes)
	}
}

// RemoveContainer deletes a container and returns its field nodes to the
// available pool. A node is not returned when a node with the same dataField
// is already available; spacers are dropped. Unknown ids are ignored.
func (w *Workspace) RemoveContainer(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOf(id)
	if i < 0 {
		return
	}

	existing := make(map[string]struct{}, len(w.available))
	for _, n := range w.available {
		existing[n.DataField] = struct{}{}
	}
	for _, n := range w.containers[i].Nodes {
		if n.DataField == domain.SpacerDataField {
			continue
		}
		if _, ok := existing[n.DataField]; ok {
			continue
		}
		w.available = append(w.available, n.Clone())
		existing[n.DataField] = struct{}{}
	}

	w.containers = append(w.containers[:i], w.containers[i+1:]...)
}

// IsContainerNameUnique reports whether no container already has name,
// comparing trimmed and case-folded.
func (w *Workspace) IsContainerNameUnique(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	want := normalizeName(name)
	for _, c := range w.containers {
		if normalizeName(c.Name) == want {
			return false
		}
	}
	return true
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GetLayoutJSON exports the current containers in the stored layout format.
func (w *Workspace) GetLayoutJSON() []domain.ExportGroup {
	w.mu.Lock()
	defer w.mu.Unlock()
	return transform.ExportWorkspace(w.containers, w.catalog)
}

// ConvertServerLayoutToContainers imports a stored layout with fresh ids.
// It does not change the workspace.
func (w *Workspace) ConvertServerLayoutToContainers(groups []domain.ExportGroup) []domain.Container {
	return transform.ImportLayout(groups, w.newID)
}

// UpdateAvailableNodes rebuilds the available pool from the catalog, leaving
// out every field already placed in a container. The spacer always stays.
func (w *Workspace) UpdateAvailableNodes() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.available = w.availableFor(w.containers)
}

func (w *Workspace) availableFor(containers []domain.Container) []domain.Node {
	used := make(map[string]struct{})
	for _, c := range containers {
		for _, n := range c.Nodes {
			if n.DataField != domain.SpacerDataField {
				used[n.DataField] = struct{}{}
			}
		}
	}

	all := transform.ImportCatalog(w.catalog)
	available := make([]domain.Node, 0, len(all))
	for _, n := range all {
		if _, placed := used[n.DataField]; n.ID == domain.SpacerID || !placed {
			available = append(available, n)
		}
	}
	return available
}

// ResetWorkspace clears every container and makes the whole catalog available again.
func (w *Workspace) ResetWorkspace() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

func (w *Workspace) reset() {
	w.containers = []domain.Container{}
	w.available = transform.ImportCatalog(w.catalog)
}

// LoadLatestLayout replaces the workspace with the most recently saved layout.
// With no saved layouts the workspace is reset. Any failure is logged, recorded
// in LoadError and also resets the workspace; it is not returned, so a UI
// waiting on the load always ends in a usable state.
func (w *Workspace) LoadLatestLayout(ctx context.Context) error {
	if w.repo == nil {
		return ErrNoRepository
	}

	w.mu.Lock()
	w.isLoading = true
	w.loadError = ""
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.isLoading = false
		w.mu.Unlock()
	}()

	err := w.loadLatest(ctx)
	if err != nil {
		w.logger.Error("Failed to load layouts from server", "err", err)
		w.mu.Lock()
		w.loadError = LoadErrorMessage
		w.reset()
		w.mu.Unlock()
	}
	return nil
}

func (w *Workspace) loadLatest(ctx context.Context) error {
	list, err := w.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list layouts: %w", err)
	}
	if len(list) == 0 {
		w.mu.Lock()
		w.reset()
		w.mu.Unlock()
		return nil
	}
	return w.LoadSpecificLayout(ctx, list[0].Filename)
}

// LoadSpecificLayout replaces the containers with the layout stored under
// filename and recomputes the available pool. On error the workspace is left untouched.
func (w *Workspace) LoadSpecificLayout(ctx context.Context, filename string) error {
	if w.repo == nil {
		return ErrNoRepository
	}

	doc, err := w.repo.Get(ctx, filename)
	if err != nil {
		w.logger.Error("Failed to load specific layout", "filename", filename, "err", err)
		return fmt.Errorf("failed to load layout %s: %w", filename, err)
	}

	containers := w.ConvertServerLayoutToContainers(doc.Layout)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.containers = containers
	w.available = w.availableFor(containers)
	return nil
}

// SaveLayout exports the current containers and stores them under name.
func (w *Workspace) SaveLayout(ctx context.Context, name string) (domain.SavedLayout, error) {
	if w.repo == nil {
		return domain.SavedLayout{}, ErrNoRepository
	}
	saved, err := w.repo.Save(ctx, name, w.GetLayoutJSON())
	if err != nil {
		return domain.SavedLayout{}, fmt.Errorf("failed to save layout: %w", err)
	}
	return saved, nil
}

func (w *Workspace) indexOf(id string) int {
	for i := range w.containers {
		if w.containers[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneContainers(in []domain.Container) []domain.Container {
	out := make([]domain.Container, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func cloneNodes(in []domain.Node) []domain.Node {
	out := make([]domain.Node, len(in))
	for i, n := range in {
		out[i] = n.Clone()
	}
	return out
}
