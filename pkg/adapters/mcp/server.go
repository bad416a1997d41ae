// Package mcp exposes wizard sessions as Model Context Protocol tools so
// that agent hosts can drive NovaPay flows.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/novapay/internal/input"
	"github.com/aretw0/novapay/internal/logging"
	"github.com/aretw0/novapay/internal/redact"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionResponse is the structured result of every session tool.
type SessionResponse struct {
	SessionID string         `json:"session_id" jsonschema_description:"Identifier to pass to the other tools"`
	Status    domain.Status  `json:"status" jsonschema_description:"idle, validating, submitting, error or complete"`
	Step      string         `json:"step" jsonschema_description:"ID of the active step"`
	Index     int            `json:"index"`
	Total     int            `json:"total"`
	Payload   map[string]any `json:"payload" jsonschema_description:"Collected fields; secrets are masked"`
	Fields    []domain.Field `json:"fields" jsonschema_description:"Inputs the active step expects"`
	Complete  bool           `json:"complete"`
	LastError string         `json:"last_error,omitempty"`
}

// Server wraps a session.Manager as an MCP server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	redactor  *redact.Redactor
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an MCP server named "novapay-mcp".
func NewServer(sessions *session.Manager, version string, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("novapay-mcp", version),
		redactor:  redact.Default(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
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
		s.logger.Info("MCP server listening (SSE)", "address", addr)
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionIDParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by start_session"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the available wizards and their steps."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := json.Marshal(s.flows())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a wizard session."),
		mcp.WithString("flow", mcp.Required(), mcp.Description("Wizard name, e.g. send-money")),
		mcp.WithString("fields", mcp.Description("JSON object of initial fields (optional)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Show the active step and collected fields of a session."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("submit_fields",
		mcp.WithDescription("Merge field values into the session payload."),
		sessionIDParam(),
		mcp.WithString("fields", mcp.Required(), mcp.Description("JSON object of field values")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Validate the active step and move forward, running its async action if any."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.op(s.sessions.Advance)))

	s.mcpServer.AddTool(mcp.NewTool("retreat",
		mcp.WithDescription("Go back one step. Collected fields are kept."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.op(s.sessions.Retreat)))

	s.mcpServer.AddTool(mcp.NewTool("jump",
		mcp.WithDescription("Jump to an already visited step (0-based index)."),
		sessionIDParam(),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Target step index")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleJump))

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Restart the wizard from the first step with an empty payload."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.op(s.sessions.Reset)))

	s.mcpServer.AddTool(mcp.NewTool("cancel",
		mcp.WithDescription("Cancel an in-flight async step; its late result is discarded."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.op(s.sessions.Cancel)))
}

type flowInfo struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

func (s *Server) flows() []flowInfo {
	names := s.sessions.Flows()
	out := make([]flowInfo, 0, len(names))
	for _, name := range names {
		ctrl, err := s.sessions.Controller(name)
		if err != nil {
			continue
		}
		info := flowInfo{Name: name}
		for _, step := range ctrl.Definition().Steps() {
			info.Steps = append(info.Steps, step.ID)
		}
		out = append(out, info)
	}
	return out
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SessionResponse, error) {
	flow, _ := args["flow"].(string)
	fields, err := parseFields(args)
	if err != nil {
		return SessionResponse{}, err
	}

	state, err := s.sessions.Start(ctx, flow)
	if err != nil {
		return SessionResponse{}, err
	}
	if len(fields) > 0 {
		if state, err = s.sessions.SubmitFields(ctx, state.SessionID, fields); err != nil {
			return SessionResponse{}, err
		}
	}
	return s.response(state)
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		return SessionResponse{}, err
	}
	return s.response(state)
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	fields, err := parseFields(args)
	if err != nil {
		return SessionResponse{}, err
	}
	state, err := s.sessions.SubmitFields(ctx, id, fields)
	if err != nil {
		return SessionResponse{}, err
	}
	return s.response(state)
}

func (s *Server) handleJump(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SessionResponse, error) {
	id, _ := args["session_id"].(string)
	index, ok := args["index"].(float64)
	if !ok {
		return SessionResponse{}, errors.New("index is required")
	}
	state, err := s.sessions.JumpTo(ctx, id, int(index))
	if err != nil {
		return SessionResponse{}, err
	}
	return s.response(state)
}

type operation func(ctx context.Context, sessionID string) (*domain.State, error)

func (s *Server) op(fn operation) func(context.Context, mcp.CallToolRequest, map[string]any) (SessionResponse, error) {
	return func(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (SessionResponse, error) {
		id, _ := args["session_id"].(string)
		state, err := fn(ctx, id)
		if err != nil {
			s.logger.Debug("MCP: operation rejected", "session_id", id, "err", err)
			return SessionResponse{}, err
		}
		return s.response(state)
	}
}

// parseFields decodes and sanitizes the "fields" JSON argument.
func parseFields(args map[string]any) (map[string]any, error) {
	raw, _ := args["fields"].(string)
	if raw == "" {
		return nil, nil
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("fields must be a JSON object: %w", err)
	}
	for k, v := range fields {
		clean, err := input.Value(v, input.DefaultMaxSize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		fields[k] = clean
	}
	return fields, nil
}

func (s *Server) response(state *domain.State) (SessionResponse, error) {
	ctrl, err := s.sessions.Controller(state.Flow)
	if err != nil {
		return SessionResponse{}, err
	}
	view, err := ctrl.Render(state)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{
		SessionID: state.SessionID,
		Status:    state.Status,
		Step:      view.Step.ID,
		Index:     view.Index,
		Total:     view.Total,
		Payload:   s.redactor.Map(state.Payload),
		Fields:    view.Step.Fields,
		Complete:  state.Status == domain.StatusComplete,
		LastError: state.LastError,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("novapay://flows", "Available wizards",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		out, err := json.Marshal(s.flows())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "novapay://flows",
				MIMEType: "application/json",
				Text:     string(out),
			},
		}, nil
	})
}
