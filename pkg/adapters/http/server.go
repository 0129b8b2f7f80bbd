package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/layoutkit"
	"github.com/aretw0/layoutkit/internal/logging"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
	"github.com/aretw0/layoutkit/pkg/transform"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the layout API over a repository and a catalog.
type Server struct {
	Repo    ports.LayoutRepository
	Catalog ports.CatalogLoader

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	newID    func() string
	now      func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for request and failure logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes the collectors of gatherer on GET /metrics.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

// WithIDGenerator replaces the UUID generator used by the import endpoint.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewServer creates a Server.
func NewServer(repo ports.LayoutRepository, catalog ports.CatalogLoader, opts ...Option) *Server {
	s := &Server{
		Repo:    repo,
		Catalog: catalog,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for the layout API.
func NewHandler(repo ports.LayoutRepository, catalog ports.CatalogLoader, opts ...Option) http.Handler {
	return NewServer(repo, catalog, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/layouts", func(r chi.Router) {
			r.Post("/", s.StoreLayout)
			r.Get("/", s.ListLayouts)
			r.Get("/latest", s.LatestLayout)
			r.Get("/{filename}", s.GetLayout)
			r.Delete("/{filename}", s.DeleteLayout)
		})
		r.Get("/nodes", s.GetNodes)
		r.Post("/workspace/export", s.ExportWorkspace)
		r.Post("/workspace/import", s.ImportWorkspace)
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// storeRequest keeps both fields raw so type errors become field messages
// instead of a decode failure.
type storeRequest struct {
	Name   json.RawMessage `json:"name"`
	Layout json.RawMessage `json:"layout"`
}

// StoreLayout handles POST /api/layouts.
func (s *Server) StoreLayout(w http.ResponseWriter, r *http.Request) {
	var body storeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		s.logger.Warn("StoreLayout: Invalid request body", "err", err)
		return
	}

	name, layout, err := parseStoreRequest(body)
	if err != nil {
		s.writeValidation(w, err)
		return
	}

	s.logChanges(r, name, layout)

	saved, err := s.Repo.Save(r.Context(), name, layout)
	if err != nil {
		if domain.IsValidation(err) {
			s.writeValidation(w, err)
			return
		}
		s.logger.Error("Failed to save layout", "name", name, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Failed to save layout: " + err.Error(),
		})
		return
	}

	s.logger.Info("Layout saved", "filename", saved.Filename, "groups", len(layout))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Layout saved successfully",
		"filename": saved.Filename,
		"path":     saved.StorageLocation,
	})
}

func parseStoreRequest(body storeRequest) (string, []domain.ExportGroup, error) {
	verr := &domain.ValidationError{Fields: map[string][]string{}}

	var layout []domain.ExportGroup
	switch raw := strings.TrimSpace(string(body.Layout)); {
	case raw == "" || raw == "null":
		verr.Fields["layout"] = []string{"The layout field is required."}
	case !strings.HasPrefix(raw, "["):
		verr.Fields["layout"] = []string{"The layout field must be an array."}
	default:
		if err := json.Unmarshal(body.Layout, &layout); err != nil {
			verr.Fields["layout"] = []string{"The layout field must be an array of groups."}
		}
	}

	var name string
	if raw := strings.TrimSpace(string(body.Name)); raw != "" && raw != "null" {
		if err := json.Unmarshal(body.Name, &name); err != nil {
			verr.Fields["name"] = []string{"The name field must be a string."}
		} else if len(name) > domain.MaxNameLength {
			verr.Fields["name"] = []string{fmt.Sprintf("The name field must not be greater than %d characters.", domain.MaxNameLength)}
		}
	}

	if len(verr.Fields) > 0 {
		return "", nil, verr
	}
	return name, layout, nil
}

// logChanges reports what an overwriting save changes.
// The previous layout is only read when debug logging is enabled.
func (s *Server) logChanges(r *http.Request, name string, layout []domain.ExportGroup) {
	if !s.logger.Enabled(r.Context(), slog.LevelDebug) {
		return
	}
	filename, err := domain.FilenameFor(name, s.now())
	if err != nil {
		return
	}
	prev, err := s.Repo.Get(r.Context(), filename)
	if err != nil {
		return
	}
	if diff := domain.DiffLayouts(prev.Layout, layout); diff != nil {
		s.logger.Debug("Overwriting layout", "filename", filename, "diff", diff)
	}
}

// ListLayouts handles GET /api/layouts.
func (s *Server) ListLayouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.Repo.List(r.Context())
	if err != nil {
		s.logger.Error("Failed to list layouts", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to list layouts: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": list})
}

// LatestLayout handles GET /api/layouts/latest.
func (s *Server) LatestLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Repo.Latest(r.Context())
	if err != nil {
		s.logger.Error("Failed to load latest layout", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"layout": nil,
			"error":  "Failed to load latest layout: " + err.Error(),
		})
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"layout":  nil,
			"message": "No saved layouts found",
		})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GetLayout handles GET /api/layouts/{filename}.
func (s *Server) GetLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Repo.Get(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		s.writeRepoError(w, "Failed to load layout", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteLayout handles DELETE /api/layouts/{filename}.
func (s *Server) DeleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.Repo.Delete(r.Context(), chi.URLParam(r, "filename")); err != nil {
		s.writeRepoError(w, "Failed to delete layout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetNodes handles GET /api/nodes.
func (s *Server) GetNodes(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.Catalog.LoadCatalog(r.Context())
	if err != nil {
		s.logger.Error("Failed to load catalog", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load catalog: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, transform.ImportCatalog(catalog))
}

// ExportWorkspace handles POST /api/workspace/export.
func (s *Server) ExportWorkspace(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Containers []domain.Container `json:"containers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		s.logger.Warn("ExportWorkspace: Invalid request body", "err", err)
		return
	}
	catalog, err := s.Catalog.LoadCatalog(r.Context())
	if err != nil {
		s.logger.Error("Failed to load catalog", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load catalog: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layout": transform.ExportWorkspace(body.Containers, catalog)})
}

// ImportWorkspace handles POST /api/workspace/import.
func (s *Server) ImportWorkspace(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Layout []domain.ExportGroup `json:"layout"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		s.logger.Warn("ImportWorkspace: Invalid request body", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"containers": transform.ImportLayout(body.Layout, s.newID)})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "layoutkit-http",
		"version": strings.TrimSpace(layoutkit.Version),
	})
}

func (s *Server) writeValidation(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": err.Error()})
		return
	}
	s.logger.Warn("Layout validation failed", "errors", verr.Fields)
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": firstMessage(verr),
		"errors":  verr.Fields,
	})
}

func (s *Server) writeRepoError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, domain.ErrLayoutNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Layout not found"})
	case domain.IsValidation(err):
		s.writeValidation(w, err)
	default:
		s.logger.Error(action, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": action + ": " + err.Error()})
	}
}

// firstMessage picks the message of the alphabetically first field, like
// the summary line of a validation response.
func firstMessage(verr *domain.ValidationError) string {
	best := ""
	for field := range verr.Fields {
		if best == "" || field < best {
			best = field
		}
	}
	if msgs := verr.Fields[best]; len(msgs) > 0 {
		return msgs[0]
	}
	return verr.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}
