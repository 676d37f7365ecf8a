package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/shopkeep/internal/logging"
	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/render"
	"github.com/aretw0/shopkeep/pkg/turn"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource under which the catalog is published.
const CatalogURI = "shopkeep://catalog"

// DefaultSessionID is used when a tool call names no session.
const DefaultSessionID = "default"

// ToolResponse is the structured result of every cart tool.
type ToolResponse struct {
	SessionID  string             `json:"session_id" jsonschema_description:"The session the call applied to"`
	Reply      string             `json:"reply" jsonschema_description:"A failure message, empty when the call succeeded"`
	Changed    bool               `json:"changed" jsonschema_description:"Whether inventory or cart changed"`
	Outcomes   []turn.Outcome     `json:"outcomes" jsonschema_description:"Per-intent outcomes"`
	Projection *render.Projection `json:"projection,omitempty" jsonschema_description:"Inventory and cart after the call"`
}

// Server exposes the cart operations as MCP tools. A reasoning host
// connected over MCP acts as the intent source: each tool call is applied
// to the named session as a one-intent batch.
type Server struct {
	turns     *turn.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc *turn.Service, version string, opts ...Option) *Server {
	s := &Server{
		turns:     svc,
		mcpServer: server.NewMCPServer("shopkeep-mcp", version),
		logger:    logging.NewNop(),
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

// ServeSSE serves MCP over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
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
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionOption() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Description("Conversation session (defaults to \"default\")"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(string(domain.KindAdd),
		mcp.WithDescription("Move items from the inventory into the cart."),
		sessionOption(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Item name, e.g. banana")),
		mcp.WithString("color", mcp.Description("Item color; the inventory color is kept for tracked items")),
		mcp.WithNumber("quantity", mcp.Description("How many to add (default 1)")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.cartTool(domain.KindAdd)))

	s.mcpServer.AddTool(mcp.NewTool(string(domain.KindRemove),
		mcp.WithDescription("Return items from the cart to the inventory."),
		sessionOption(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Item name")),
		mcp.WithNumber("quantity", mcp.Description("How many to remove (default 1)")),
		mcp.WithBoolean("remove_all", mcp.Description("Remove the whole cart entry")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.cartTool(domain.KindRemove)))

	s.mcpServer.AddTool(mcp.NewTool(string(domain.KindUpdate),
		mcp.WithDescription("Change the color or stock quantity of an inventory item."),
		sessionOption(),
		mcp.WithString("name", mcp.Required(), mcp.Description("Item name")),
		mcp.WithString("new_color", mcp.Description("New color")),
		mcp.WithNumber("new_quantity", mcp.Description("New absolute stock quantity")),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.cartTool(domain.KindUpdate)))

	s.mcpServer.AddTool(mcp.NewTool("view_cart",
		mcp.WithDescription("Show the inventory and cart of a session."),
		sessionOption(),
		mcp.WithOutputSchema[ToolResponse](),
	), mcp.NewStructuredToolHandler(s.handleView))
}

// cartTool returns the handler for one intent kind. Arguments go through
// the same wire decoder as every other intent source.
func (s *Server) cartTool(kind domain.IntentKind) func(context.Context, mcp.CallToolRequest, map[string]any) (ToolResponse, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ToolResponse, error) {
		sessionID, rest := splitSession(args)

		intent, err := domain.DecodeToolCall(domain.ToolCall{ToolName: string(kind), Args: rest})
		if err != nil {
			s.logger.Debug("MCP: Malformed tool call", "tool", kind, "err", err)
		}

		res, err := s.turns.ApplyIntents(ctx, sessionID, []domain.Intent{intent})
		if err != nil {
			return ToolResponse{}, fmt.Errorf("%s failed: %w", kind, err)
		}
		return ToolResponse{
			SessionID:  sessionID,
			Reply:      res.Reply,
			Changed:    res.Changed,
			Outcomes:   res.Outcomes,
			Projection: res.Projection,
		}, nil
	}
}

func (s *Server) handleView(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (ToolResponse, error) {
	sessionID, _ := splitSession(args)
	p, err := s.turns.View(ctx, sessionID)
	if err != nil {
		return ToolResponse{}, fmt.Errorf("view_cart failed: %w", err)
	}
	return ToolResponse{SessionID: sessionID, Outcomes: []turn.Outcome{}, Projection: &p}, nil
}

func splitSession(args map[string]any) (string, map[string]any) {
	sessionID := DefaultSessionID
	rest := make(map[string]any, len(args))
	for k, v := range args {
		if k == "session_id" {
			if id, ok := v.(string); ok && id != "" {
				sessionID = id
			}
			continue
		}
		rest[k] = v
	}
	return sessionID, rest
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Shop Catalog",
		mcp.WithResourceDescription("Items, colors, stock and unit prices every session starts from"),
		mcp.WithMIMEType("application/json"),
	), s.readCatalog)
}

func (s *Server) readCatalog(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(render.ProjectCatalog(s.turns.Catalog()).Inventory)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
