package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/airband-io/airband/pkg/domain"
	"github.com/airband-io/airband/pkg/ports"
)

// Engine is the core session state machine. It owns one validated graph and
// drives sessions through it in response to discrete trainee actions.
//
// The engine never spawns goroutines and never blocks: the only slow
// operation in a scenario, response validation, is performed by the host
// between SubmitResponse and ResolveEvaluation.
type Engine struct {
	graph  *domain.Graph
	source ports.TransmissionSource
	logger *slog.Logger
	hooks  domain.LifecycleHooks

	entryNodeID string
	clock       func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger. Default is a no-op logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithEntryNode overrides the graph's conventional entry point.
func WithEntryNode(nodeID string) EngineOption {
	return func(e *Engine) {
		e.entryNodeID = nodeID
	}
}

// WithClock injects the timestamp source for transcript entries.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine creates an engine over a validated graph.
func NewEngine(graph *domain.Graph, source ports.TransmissionSource, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:  graph,
		source: source,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph this engine runs.
func (e *Engine) Graph() *domain.Graph {
	return e.graph
}

// Start creates a fresh session and enters the entry node.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.Session, *domain.View, error) {
	entryID := e.entryNodeID
	if entryID == "" {
		entry, ok := e.graph.EntryNode()
		if !ok {
			return nil, nil, &domain.StructuralError{Detail: "graph has no nodes"}
		}
		entryID = entry.ID
	}

	s := domain.NewSession(sessionID, e.graph.ID)
	view, err := e.enterNode(ctx, s, entryID)
	if err != nil {
		return nil, nil, err
	}
	return s, view, nil
}

// enterNode performs the entry behavior for a node on a session the caller
// is free to mutate. Nothing is appended to history until content is fully
// rendered; a transmission whose data has not loaded leaves the session
// suspended in PhasePresenting.
func (e *Engine) enterNode(ctx context.Context, s *domain.Session, nodeID string) (*domain.View, error) {
	node, ok := e.graph.Node(nodeID)
	if !ok {
		return nil, &domain.UnknownNodeError{ID: nodeID}
	}

	s.CurrentNodeID = nodeID
	s.Phase = domain.PhasePresenting
	s.Pending = nil
	s.LastOutcome = nil

	switch c := node.Content.(type) {
	case domain.TransmissionContent:
		tx, err := e.source.Transmission(ctx, c.TransmissionID)
		if errors.Is(err, domain.ErrTransmissionNotLoaded) {
			e.logger.Debug("transmission pending, session suspended",
				"node", nodeID, "transmission", c.TransmissionID)
			return e.buildView(s, node, PendingPlaceholder), nil
		}
		if err != nil {
			return nil, fmt.Errorf("load transmission %q: %w", c.TransmissionID, err)
		}
		role := tx.Role
		if c.Role != "" {
			role = c.Role
		}
		text := RenderBlocks(tx.Blocks, Resolve(e.graph.GlobalVariables, c.Variables))
		e.markEntered(ctx, s, node)
		e.say(s, speakerLabel(role), role, text)
		s.Phase = domain.PhaseAwaitingAck
		return e.buildView(s, node, text), nil

	case domain.CrewInteractionContent:
		text := Substitute(c.Text, Resolve(e.graph.GlobalVariables, c.Variables))
		speaker := c.Speaker
		if speaker == "" {
			speaker = speakerLabel(domain.RoleCrew)
		}
		e.markEntered(ctx, s, node)
		e.say(s, speaker, domain.RoleCrew, text)
		s.Phase = domain.PhaseAwaitingAck
		return e.buildView(s, node, text), nil

	case domain.SystemAlertContent:
		text := c.Text
		if c.Severity != "" {
			text = c.Severity + ": " + c.Text
		}
		e.markEntered(ctx, s, node)
		e.say(s, speakerLabel(domain.RoleSystem), domain.RoleSystem, text)
		s.Phase = domain.PhaseAwaitingAck
		return e.buildView(s, node, text), nil

	case domain.EventContent:
		e.markEntered(ctx, s, node)
		e.say(s, speakerLabel(domain.RoleSystem), domain.RoleSystem, c.Text)
		s.Phase = domain.PhaseAwaitingAck
		return e.buildView(s, node, c.Text), nil

	case domain.SituationContent:
		// Context is displayed, not spoken: no transcript entry.
		e.markEntered(ctx, s, node)
		s.Phase = domain.PhaseAwaitingAck
		return e.buildView(s, node, c.Text), nil

	case domain.DecisionPointContent:
		e.markEntered(ctx, s, node)
		s.Phase = domain.PhaseAwaitingAck
		return e.buildView(s, node, c.Prompt), nil

	case domain.UserResponseContent:
		e.markEntered(ctx, s, node)
		s.Phase = domain.PhaseAwaitingInput
		prompt := Substitute(c.Prompt, Resolve(e.graph.GlobalVariables, c.Variables))
		return e.buildView(s, node, prompt), nil

	default:
		return nil, &domain.StructuralError{NodeID: nodeID, Detail: "node has no content"}
	}
}

// markEntered snapshots the transcript-so-far for rewind and records the
// visit. The snapshot is taken before the node's own transcript entries so
// that re-entering after a rewind replays the node exactly like a first
// visit.
func (e *Engine) markEntered(ctx context.Context, s *domain.Session, node *domain.Node) {
	s.HistoryByNode[node.ID] = s.Transcript.Clone()
	if !s.HasVisited(node.ID) {
		s.Visited = append(s.Visited, node.ID)
	}
	e.logger.Debug("node entered", "session", s.ID, "node", node.ID, "type", node.Type)
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, s.ID, node)
	}
}

func (e *Engine) say(s *domain.Session, speaker string, role domain.Role, text string) {
	s.Transcript = append(s.Transcript, domain.Entry{
		Speaker:   speaker,
		Role:      role,
		Text:      text,
		Timestamp: e.clock(),
	})
}

func speakerLabel(role domain.Role) string {
	switch role {
	case domain.RoleATC:
		return "ATC"
	case domain.RolePilot:
		return "Pilot"
	case domain.RoleCrew:
		return "Crew"
	case domain.RoleSystem:
		return "System"
	default:
		return string(role)
	}
}
