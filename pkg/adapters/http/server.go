// Package http exposes the practice engine over a JSON REST surface.
//
// Sessions live in the configured store; every mutating request is
// serialized through the session manager so concurrent clients cannot
// interleave transitions on the same session.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airband-io/airband"
	"github.com/airband-io/airband/internal/logging"
	"github.com/airband-io/airband/pkg/domain"
	"github.com/airband-io/airband/pkg/ports"
	"github.com/airband-io/airband/pkg/session"
)

// Server routes HTTP requests onto the engine. One server hosts every
// scenario its graph source offers; engines are built per graph on first
// use and cached.
type Server struct {
	graphs        ports.GraphSource
	transmissions ports.TransmissionSource
	sessions      *session.Manager
	validator     ports.ResponseValidator
	logger        *slog.Logger

	engineOpts []airband.Option
	registry   *prometheus.Registry

	mu      sync.Mutex
	engines map[string]*airband.Engine
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithEngineOptions forwards options to every engine the server builds.
func WithEngineOptions(opts ...airband.Option) ServerOption {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithMetricsRegistry mounts /metrics backed by the given registry.
func WithMetricsRegistry(reg *prometheus.Registry) ServerOption {
	return func(s *Server) {
		s.registry = reg
	}
}

// NewServer wires the server's collaborators.
func NewServer(graphs ports.GraphSource, transmissions ports.TransmissionSource, sessions *session.Manager, validator ports.ResponseValidator, opts ...ServerOption) *Server {
	s := &Server{
		graphs:        graphs,
		transmissions: transmissions,
		sessions:      sessions,
		validator:     validator,
		logger:        logging.NewNop(),
		engines:       make(map[string]*airband.Engine),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/graphs", s.handleListGraphs)
	r.Get("/graphs/{graphID}", s.handleGetGraph)

	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions", s.handleListSessions)
	r.Get("/sessions/{sessionID}", s.handleGetSession)
	r.Delete("/sessions/{sessionID}", s.handleDeleteSession)

	r.Post("/sessions/{sessionID}/ack", s.action(actionAck))
	r.Post("/sessions/{sessionID}/response", s.action(actionResponse))
	r.Post("/sessions/{sessionID}/retry", s.action(actionRetry))
	r.Post("/sessions/{sessionID}/continue", s.action(actionContinue))
	r.Post("/sessions/{sessionID}/rewind", s.action(actionRewind))

	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// engineFor returns the cached engine for a graph, building it on first
// use. Construction validates the graph, so a broken scenario surfaces on
// its first request rather than at process start.
func (s *Server) engineFor(ctx context.Context, graphID string) (*airband.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eng, ok := s.engines[graphID]; ok {
		return eng, nil
	}

	graph, err := s.graphs.LoadGraph(ctx, graphID)
	if err != nil {
		return nil, err
	}
	opts := append([]airband.Option{airband.WithLogger(s.logger)}, s.engineOpts...)
	eng, err := airband.New(graph, s.transmissions, opts...)
	if err != nil {
		return nil, err
	}
	s.engines[graphID] = eng
	return eng, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.graphs.ListGraphs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"graphs": ids})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	graphID := chi.URLParam(r, "graphID")
	graph, err := s.graphs.LoadGraph(r.Context(), graphID)
	if err != nil {
		http.Error(w, fmt.Sprintf("graph not found: %s", graphID), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

type createSessionRequest struct {
	GraphID   string `json:"graph_id"`
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.GraphID == "" {
		http.Error(w, "graph_id is required", http.StatusBadRequest)
		return
	}

	eng, err := s.engineFor(r.Context(), body.GraphID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sessionID := body.SessionID
	if sessionID == "" {
		sessionID = session.NewID()
	}

	var view *domain.View
	err = s.sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		sess, v, err := eng.Start(ctx, sessionID)
		if err != nil {
			return err
		}
		view = v
		return s.sessions.Store().Save(ctx, sess)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("session created", "session_id", sessionID, "graph_id", body.GraphID)
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := s.sessions.Load(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	eng, err := s.engineFor(r.Context(), sess.GraphID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := eng.View(r.Context(), sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.sessions.Delete(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type actionKind string

const (
	actionAck      actionKind = "ack"
	actionResponse actionKind = "response"
	actionRetry    actionKind = "retry"
	actionContinue actionKind = "continue"
	actionRewind   actionKind = "rewind"
)

type actionRequest struct {
	Text   string `json:"text,omitempty"`
	NodeID string `json:"node_id,omitempty"`
}

// action returns a handler that loads the session, applies one engine
// transition under the session lock, persists the result, and responds
// with the new view.
func (s *Server) action(kind actionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")

		var body actionRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
		}

		var view *domain.View
		_, err := s.sessions.Update(r.Context(), sessionID, func(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
			eng, err := s.engineFor(ctx, sess.GraphID)
			if err != nil {
				return nil, err
			}
			next, v, err := s.apply(ctx, eng, sess, kind, body)
			if err != nil {
				return nil, err
			}
			view = v
			return next, nil
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// apply dispatches one transition. A submitted response is scored inline:
// the HTTP host evaluates between SubmitResponse and ResolveEvaluation,
// inside the same request.
func (s *Server) apply(ctx context.Context, eng *airband.Engine, sess *domain.Session, kind actionKind, body actionRequest) (*domain.Session, *domain.View, error) {
	switch kind {
	case actionAck:
		return eng.Acknowledge(ctx, sess)

	case actionResponse:
		if body.Text == "" {
			return nil, nil, errBadRequest("text is required")
		}
		submitted, _, req, err := eng.SubmitResponse(ctx, sess, body.Text)
		if err != nil {
			return nil, nil, err
		}
		outcome, err := s.validator.Evaluate(ctx, *req)
		if err != nil {
			return nil, nil, fmt.Errorf("evaluate response: %w", err)
		}
		return eng.ResolveEvaluation(ctx, submitted, req.Ticket, outcome)

	case actionRetry:
		return eng.Retry(ctx, sess)

	case actionContinue:
		return eng.ContinueAfterResult(ctx, sess)

	case actionRewind:
		if body.NodeID == "" {
			return nil, nil, errBadRequest("node_id is required")
		}
		return eng.Enter(ctx, sess, body.NodeID)

	default:
		return nil, nil, errBadRequest("unknown action")
	}
}

type badRequestError string

func errBadRequest(msg string) error { return badRequestError(msg) }

func (e badRequestError) Error() string { return string(e) }

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalid *domain.InvalidTransitionError
		unknown *domain.UnknownNodeError
		badReq  badRequestError
	)

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &unknown):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &badReq):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &invalid),
		errors.Is(err, domain.ErrSessionComplete),
		errors.Is(err, domain.ErrNodeNotVisited),
		errors.Is(err, domain.ErrStaleResult):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "err", err)
	}
}
