// Package mcpapi provides the HTTP JSON-RPC transport for the bridge,
// plus its monitoring surface.
package mcpapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/mcp-bridge/internal/dispatcher"
	"github.com/xiaot623/mcp-bridge/internal/domain"
	"github.com/xiaot623/mcp-bridge/internal/store"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "business-server-mcp"
	serverVersion   = "1.0.0"
)

// Handler handles bridge HTTP requests.
type Handler struct {
	dispatcher *dispatcher.Dispatcher
	store      *store.SQLiteStore
}

// NewHandler creates a new bridge handler.
func NewHandler(d *dispatcher.Dispatcher, st *store.SQLiteStore) *Handler {
	return &Handler{
		dispatcher: d,
		store:      st,
	}
}

// RegisterRoutes registers bridge routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/mcp", h.HandleRPC)
	e.GET("/health", h.Health)
	e.GET("/stats", h.Stats)
	e.GET("/clients", h.Clients)
}

// HandleRPC handles JSON-RPC requests on the bridge endpoint. Malformed
// payloads are rejected here, before anything reaches the dispatcher.
// POST /mcp
func (h *Handler) HandleRPC(c echo.Context) error {
	var req domain.RPCRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Method == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "method is required"})
	}

	ctx := c.Request().Context()
	clientID := c.Request().RemoteAddr

	if err := h.store.TouchClient(ctx, clientID); err != nil {
		log.Printf("WARN: failed to track client %s: %v", clientID, err)
	}

	log.Printf("[CLIENT %s] method=%s", clientID, req.Method)

	switch req.Method {
	case "initialize":
		return c.JSON(http.StatusOK, h.handleInitialize(&req, clientID))

	case "notifications/initialized":
		return c.JSON(http.StatusOK, domain.RPCResponse{JSONRPC: "2.0"})

	case "tools/list":
		return c.JSON(http.StatusOK, domain.RPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  domain.ListToolsResult{Tools: h.dispatcher.Catalog().Descriptors()},
		})

	case "tools/call":
		return c.JSON(http.StatusOK, h.handleToolCall(c, &req, clientID))

	default:
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown method: %s", req.Method),
		})
	}
}

func (h *Handler) handleInitialize(req *domain.RPCRequest, clientID string) domain.RPCResponse {
	var params domain.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err == nil {
			log.Printf("[CLIENT %s] initializing - name=%s version=%s",
				clientID, params.ClientInfo.Name, params.ClientInfo.Version)
		}
	}

	return domain.RPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: domain.InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: domain.Capabilities{
				Tools: domain.ToolCapabilities{ListChanged: false},
			},
			ServerInfo: domain.ServerInfo{
				Name:    serverName,
				Version: serverVersion,
			},
		},
	}
}

func (h *Handler) handleToolCall(c echo.Context, req *domain.RPCRequest, clientID string) domain.RPCResponse {
	var params domain.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return domain.RPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &domain.RPCError{
				Code:    domain.RPCCodeInvalidParams,
				Message: "invalid params",
				Data:    "tools/call requires a tool name and an arguments object",
			},
		}
	}

	env := h.dispatcher.Dispatch(c.Request().Context(), clientID, params.Name, params.Arguments)

	text := env.Text
	if env.Error != nil {
		text = fmt.Sprintf("Error executing %s: %s", params.Name, env.Error.Message)
	}

	return domain.RPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: domain.CallToolResult{
			Content: []domain.ContentItem{{Type: "text", Text: text}},
			IsError: env.Error != nil,
		},
	}
}

// Health returns health status. The bridge reports healthy from the
// moment it starts serving; no dependency health is checked.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "MCP server is running",
	})
}

// Stats returns aggregate call and client counters.
// GET /stats
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"server_status":     "running",
		"connected_clients": stats.ConnectedClients,
		"total_calls":       stats.TotalCalls,
		"succeeded_calls":   stats.SucceededCalls,
		"failed_calls":      stats.FailedCalls,
		"total_tools":       h.dispatcher.Catalog().Len(),
	})
}

// Clients returns the distinct callers seen so far and their activity.
// GET /clients
func (h *Handler) Clients(c echo.Context) error {
	ctx := c.Request().Context()

	sessions, err := h.store.ListClients(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	ids := make([]string, 0, len(sessions))
	details := make([]map[string]interface{}, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.ClientID)

		calls, err := h.store.ListCalls(ctx, s.ClientID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		details = append(details, map[string]interface{}{
			"client_id":      s.ClientID,
			"connected_at":   s.ConnectedAt.UnixMilli(),
			"requests_count": s.RequestsCount,
			"tools_called":   calls,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"connected_clients": ids,
		"client_sessions":   details,
	})
}
