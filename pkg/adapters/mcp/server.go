// Package mcp exposes practice sessions as MCP tools so AI assistants can
// drive scenarios conversationally over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/airband-io/airband"
	"github.com/airband-io/airband/internal/logging"
	"github.com/airband-io/airband/pkg/domain"
	"github.com/airband-io/airband/pkg/ports"
	"github.com/airband-io/airband/pkg/session"
)

// Host bundles the collaborators a practice conversation needs. The MCP
// server is a thin tool surface over the same engine facade the HTTP
// adapter uses.
type Host struct {
	Graphs        ports.GraphSource
	Transmissions ports.TransmissionSource
	Sessions      *session.Manager
	Validator     ports.ResponseValidator
	Logger        *slog.Logger
}

// Server wraps the practice engine and exposes it as an MCP server.
type Server struct {
	host      Host
	mcpServer *server.MCPServer

	engines map[string]*airband.Engine
}

// NewServer creates an MCP server over the host collaborators.
func NewServer(host Host) *Server {
	if host.Logger == nil {
		host.Logger = logging.NewNop()
	}
	s := &Server{
		host:      host,
		mcpServer: server.NewMCPServer("airband-mcp", airband.Version),
		engines:   make(map[string]*airband.Engine),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) engineFor(ctx context.Context, graphID string) (*airband.Engine, error) {
	if eng, ok := s.engines[graphID]; ok {
		return eng, nil
	}
	graph, err := s.host.Graphs.LoadGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}
	eng, err := airband.New(graph, s.host.Transmissions, airband.WithLogger(s.host.Logger))
	if err != nil {
		return nil, err
	}
	s.engines[graphID] = eng
	return eng, nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_scenarios",
		mcp.WithDescription("List available practice scenarios."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.host.Graphs.ListGraphs(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list scenarios failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	startTool := mcp.NewTool("start_session",
		mcp.WithDescription("Start a practice session on a scenario. Returns the first view."),
		mcp.WithString("scenario_id", mcp.Required(), mcp.Description("Scenario graph id")),
		mcp.WithString("session_id", mcp.Description("Session id to use (optional, generated when omitted)")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	viewTool := mcp.NewTool("get_view",
		mcp.WithDescription("Get the current view of a session without changing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(viewTool, mcp.NewStructuredToolHandler(s.handleGetView))

	ackTool := mcp.NewTool("acknowledge",
		mcp.WithDescription("Acknowledge presented content and advance the scenario."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(ackTool, mcp.NewStructuredToolHandler(s.handleAcknowledge))

	respondTool := mcp.NewTool("submit_response",
		mcp.WithDescription("Submit the trainee's radio call for scoring. Returns the view with the validation outcome."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The spoken readback, as text")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(respondTool, mcp.NewStructuredToolHandler(s.handleSubmitResponse))

	retryTool := mcp.NewTool("retry",
		mcp.WithDescription("Abandon the current attempt and try the radio call again."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(retryTool, mcp.NewStructuredToolHandler(s.handleRetry))

	continueTool := mcp.NewTool("continue",
		mcp.WithDescription("Accept the shown result and continue along the pass or fail branch."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(continueTool, mcp.NewStructuredToolHandler(s.handleContinue))

	rewindTool := mcp.NewTool("rewind",
		mcp.WithDescription("Rewind the session to a previously visited node and replay from there."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Visited node id to rewind to")),
		mcp.WithOutputSchema[domain.View](),
	)
	s.mcpServer.AddTool(rewindTool, mcp.NewStructuredToolHandler(s.handleRewind))
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	scenarioID, _ := args["scenario_id"].(string)
	if scenarioID == "" {
		return domain.View{}, fmt.Errorf("scenario_id is required")
	}
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = session.NewID()
	}

	eng, err := s.engineFor(ctx, scenarioID)
	if err != nil {
		return domain.View{}, fmt.Errorf("load scenario: %w", err)
	}

	var view *domain.View
	err = s.host.Sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sess, v, err := eng.Start(ctx, sessionID)
		if err != nil {
			return err
		}
		view = v
		return s.host.Sessions.Store().Save(ctx, sess)
	})
	if err != nil {
		return domain.View{}, fmt.Errorf("start session: %w", err)
	}
	return *view, nil
}

func (s *Server) handleGetView(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	sessionID, _ := args["session_id"].(string)
	sess, err := s.host.Sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	eng, err := s.engineFor(ctx, sess.GraphID)
	if err != nil {
		return domain.View{}, err
	}
	view, err := eng.View(ctx, sess)
	if err != nil {
		return domain.View{}, err
	}
	return *view, nil
}

func (s *Server) handleAcknowledge(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	return s.transition(ctx, args, func(ctx context.Context, eng *airband.Engine, sess *domain.Session) (*domain.Session, *domain.View, error) {
		return eng.Acknowledge(ctx, sess)
	})
}

func (s *Server) handleSubmitResponse(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	text, _ := args["text"].(string)
	if text == "" {
		return domain.View{}, fmt.Errorf("text is required")
	}
	return s.transition(ctx, args, func(ctx context.Context, eng *airband.Engine, sess *domain.Session) (*domain.Session, *domain.View, error) {
		submitted, _, req, err := eng.SubmitResponse(ctx, sess, text)
		if err != nil {
			return nil, nil, err
		}
		outcome, err := s.host.Validator.Evaluate(ctx, *req)
		if err != nil {
			return nil, nil, fmt.Errorf("evaluate response: %w", err)
		}
		return eng.ResolveEvaluation(ctx, submitted, req.Ticket, outcome)
	})
}

func (s *Server) handleRetry(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	return s.transition(ctx, args, func(ctx context.Context, eng *airband.Engine, sess *domain.Session) (*domain.Session, *domain.View, error) {
		return eng.Retry(ctx, sess)
	})
}

func (s *Server) handleContinue(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	return s.transition(ctx, args, func(ctx context.Context, eng *airband.Engine, sess *domain.Session) (*domain.Session, *domain.View, error) {
		return eng.ContinueAfterResult(ctx, sess)
	})
}

func (s *Server) handleRewind(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.View, error) {
	nodeID, _ := args["node_id"].(string)
	if nodeID == "" {
		return domain.View{}, fmt.Errorf("node_id is required")
	}
	return s.transition(ctx, args, func(ctx context.Context, eng *airband.Engine, sess *domain.Session) (*domain.Session, *domain.View, error) {
		return eng.Enter(ctx, sess, nodeID)
	})
}

// transition runs one engine step on a stored session under its lock and
// persists the result.
func (s *Server) transition(ctx context.Context, args map[string]interface{}, step func(context.Context, *airband.Engine, *domain.Session) (*domain.Session, *domain.View, error)) (domain.View, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return domain.View{}, fmt.Errorf("session_id is required")
	}

	var view *domain.View
	_, err := s.host.Sessions.Update(ctx, sessionID, func(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
		eng, err := s.engineFor(ctx, sess.GraphID)
		if err != nil {
			return nil, err
		}
		next, v, err := step(ctx, eng, sess)
		if err != nil {
			return nil, err
		}
		view = v
		return next, nil
	})
	if err != nil {
		return domain.View{}, err
	}
	return *view, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("airband://scenarios", "Available Scenarios",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.host.Graphs.ListGraphs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}

		type summary struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Nodes int    `json:"nodes"`
		}
		summaries := make([]summary, 0, len(ids))
		for _, id := range ids {
			g, err := s.host.Graphs.LoadGraph(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load scenario %q: %w", id, err)
			}
			summaries = append(summaries, summary{ID: g.ID, Name: g.Name, Nodes: len(g.Nodes)})
		}
		jsonBytes, _ := json.Marshal(summaries)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "airband://scenarios",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
