package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/layoutkit"
	"github.com/aretw0/layoutkit/internal/compiler"
	"github.com/aretw0/layoutkit/internal/logging"
	"github.com/aretw0/layoutkit/internal/presentation/tui"
	"github.com/aretw0/layoutkit/pkg/domain"
	"github.com/aretw0/layoutkit/pkg/ports"
	"github.com/aretw0/layoutkit/pkg/transform"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource exposing the field catalog.
const CatalogURI = "layoutkit://catalog"

// Server exposes the layout repository and catalog as an MCP Server.
type Server struct {
	repo      ports.LayoutRepository
	catalog   ports.CatalogLoader
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(repo ports.LayoutRepository, catalog ports.CatalogLoader, opts ...Option) *Server {
	s := &Server{
		repo:      repo,
		catalog:   catalog,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("layoutkit-mcp", strings.TrimSpace(layoutkit.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_layouts",
		mcp.WithDescription("List saved layouts, most recently modified first."),
	), s.handleListLayouts)

	s.mcpServer.AddTool(mcp.NewTool("get_layout",
		mcp.WithDescription("Get a saved layout by filename."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Layout filename, with or without the .json extension")),
	), s.handleGetLayout)

	s.mcpServer.AddTool(mcp.NewTool("get_latest_layout",
		mcp.WithDescription("Get the most recently saved layout. Returns null when none exist."),
	), s.handleLatestLayout)

	s.mcpServer.AddTool(mcp.NewTool("save_layout",
		mcp.WithDescription("Save a layout (an array of groups) under a name. An existing layout with the same name is overwritten."),
		mcp.WithString("layout", mcp.Required(), mcp.Description("JSON array of groups: [{name, itemType, colCount, items}]")),
		mcp.WithString("name", mcp.Description("Layout name (optional, defaults to a timestamped name)")),
	), s.handleSaveLayout)

	s.mcpServer.AddTool(mcp.NewTool("diff_layouts",
		mcp.WithDescription("Compare two saved layouts by group name and dataField."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Filename of the older layout")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Filename of the newer layout")),
	), s.handleDiffLayouts)

	s.mcpServer.AddTool(mcp.NewTool("list_catalog_nodes",
		mcp.WithDescription("List the nodes available to place: one node per catalog field, followed by the spacer."),
	), s.handleCatalogNodes)

	s.mcpServer.AddTool(mcp.NewTool("export_layout_markdown",
		mcp.WithDescription("Describe a saved layout as markdown."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Layout filename")),
	), s.handleLayoutMarkdown)
}

func (s *Server) handleListLayouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if list == nil {
		list = []domain.LayoutSummary{}
	}
	return jsonResult(list)
}

func (s *Server) handleGetLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.repo.Get(ctx, filename)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleLatestLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.repo.Latest(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("latest failed: %v", err)), nil
	}
	return jsonResult(doc)
}

func (s *Server) handleSaveLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("layout")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	layout, err := compiler.NewParser().Parse([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("layout must be a JSON array of groups: %v", err)), nil
	}

	name := request.GetString("name", "")
	saved, err := s.repo.Save(ctx, name, layout)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}
	s.logger.Info("Layout saved via MCP", "filename", saved.Filename)
	return jsonResult(saved)
}

func (s *Server) handleDiffLayouts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := request.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := request.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	oldDoc, err := s.repo.Get(ctx, from)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get %s failed: %v", from, err)), nil
	}
	newDoc, err := s.repo.Get(ctx, to)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get %s failed: %v", to, err)), nil
	}
	return mcp.NewToolResultText(tui.DiffMarkdown(domain.DiffLayouts(oldDoc.Layout, newDoc.Layout))), nil
}

func (s *Server) handleCatalogNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalog, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("catalog failed: %v", err)), nil
	}
	return jsonResult(transform.ImportCatalog(catalog))
}

func (s *Server) handleLayoutMarkdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.repo.Get(ctx, filename)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	return mcp.NewToolResultText(tui.LayoutMarkdown(doc)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Field Catalog",
		mcp.WithResourceDescription("Field definitions available to layouts, keyed by field id"),
		mcp.WithMIMEType("application/json"),
	), s.handleCatalogResource)
}

func (s *Server) handleCatalogResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	catalog, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	jsonBytes, err := json.Marshal(catalog)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
