package airband

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/airband-io/airband/internal/runtime"
	"github.com/airband-io/airband/internal/validator"
	"github.com/airband-io/airband/pkg/domain"
	"github.com/airband-io/airband/pkg/ports"
)

// Engine is the high-level entry point for the airband library.
// It validates the scenario graph once at construction and wraps the
// internal runtime with a simplified API.
type Engine struct {
	runtime *runtime.Engine
	report  *validator.Report
	logger  *slog.Logger

	hooks       domain.LifecycleHooks
	entryNodeID string
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEntryNode overrides the graph's conventional entry point.
func WithEntryNode(nodeID string) Option {
	return func(e *Engine) {
		e.entryNodeID = nodeID
	}
}

// WithClock injects the transcript timestamp source (tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithClock(clock))
	}
}

// New validates the graph and initializes an Engine over it.
// Validation failures (dangling references, duplicate ids, malformed
// content) are fatal; unreachable nodes only produce warnings, available
// through Report.
func New(graph *domain.Graph, source ports.TransmissionSource, opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if graph.Name != "" {
		eng.logger = eng.logger.With("scenario", graph.Name)
	}

	report, err := validator.ValidateGraph(graph)
	if err != nil {
		return nil, err
	}
	eng.report = report
	for _, id := range report.Unreachable {
		eng.logger.Warn("unreachable node", "node", id)
	}
	for _, w := range report.Warnings {
		eng.logger.Warn(w)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	if eng.entryNodeID != "" {
		runtimeOpts = append(runtimeOpts, runtime.WithEntryNode(eng.entryNodeID))
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(graph, source, runtimeOpts...)
	return eng, nil
}

// Report returns the non-fatal findings from graph validation.
func (e *Engine) Report() *validator.Report {
	return e.report
}

// Graph returns the validated scenario graph.
func (e *Engine) Graph() *domain.Graph {
	return e.runtime.Graph()
}

// View projects the session for display without mutating it.
func (e *Engine) View(ctx context.Context, s *domain.Session) (*domain.View, error) {
	return e.runtime.View(ctx, s)
}

// Start creates a fresh session on the entry node.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.Session, *domain.View, error) {
	return e.runtime.Start(ctx, sessionID)
}

// Enter re-enters the current node or rewinds to a visited one.
func (e *Engine) Enter(ctx context.Context, s *domain.Session, nodeID string) (*domain.Session, *domain.View, error) {
	return e.runtime.Enter(ctx, s, nodeID)
}

// Acknowledge advances past presented content.
func (e *Engine) Acknowledge(ctx context.Context, s *domain.Session) (*domain.Session, *domain.View, error) {
	return e.runtime.Acknowledge(ctx, s)
}

// SubmitResponse records the trainee's radio call and returns the request
// to pass to the validation collaborator.
func (e *Engine) SubmitResponse(ctx context.Context, s *domain.Session, text string) (*domain.Session, *domain.View, *domain.ValidationRequest, error) {
	return e.runtime.SubmitResponse(ctx, s, text)
}

// ResolveEvaluation feeds a validation outcome back into the session.
// Stale outcomes are discarded with domain.ErrStaleResult.
func (e *Engine) ResolveEvaluation(ctx context.Context, s *domain.Session, ticket domain.EvalTicket, outcome domain.ValidationOutcome) (*domain.Session, *domain.View, error) {
	return e.runtime.ResolveEvaluation(ctx, s, ticket, outcome)
}

// Retry abandons the current attempt and awaits a new response.
func (e *Engine) Retry(ctx context.Context, s *domain.Session) (*domain.Session, *domain.View, error) {
	return e.runtime.Retry(ctx, s)
}

// ContinueAfterResult routes past a shown result via the pass/fail edge.
func (e *Engine) ContinueAfterResult(ctx context.Context, s *domain.Session) (*domain.Session, *domain.View, error) {
	return e.runtime.ContinueAfterResult(ctx, s)
}
