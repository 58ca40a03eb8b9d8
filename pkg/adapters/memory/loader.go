// Package memory provides in-memory implementations of the airband ports,
// used by tests and by hosts that embed authored scenarios directly.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/airband-io/airband/pkg/domain"
)

// GraphSource implements ports.GraphSource over a map.
type GraphSource struct {
	graphs map[string]*domain.Graph
}

// NewGraphSource creates a source from authored graphs.
func NewGraphSource(graphs ...*domain.Graph) (*GraphSource, error) {
	m := make(map[string]*domain.Graph, len(graphs))
	for _, g := range graphs {
		if g.ID == "" {
			return nil, fmt.Errorf("graph missing ID")
		}
		m[g.ID] = g
	}
	return &GraphSource{graphs: m}, nil
}

// LoadGraph retrieves a scenario graph by id.
func (s *GraphSource) LoadGraph(_ context.Context, id string) (*domain.Graph, error) {
	g, ok := s.graphs[id]
	if !ok {
		return nil, fmt.Errorf("graph not found: %s", id)
	}
	return g, nil
}

// ListGraphs returns all scenario ids in deterministic order.
func (s *GraphSource) ListGraphs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(s.graphs))
	for id := range s.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// TransmissionSource implements ports.TransmissionSource over a map.
// Entries can be published after construction to model late-arriving
// template data: lookups before Publish return ErrTransmissionNotLoaded.
type TransmissionSource struct {
	mu      sync.RWMutex
	entries map[string]*domain.Transmission
	// known marks ids that exist but have not loaded yet.
	known map[string]bool
}

// NewTransmissionSource creates a source preloaded with transmissions.
func NewTransmissionSource(transmissions ...domain.Transmission) *TransmissionSource {
	s := &TransmissionSource{
		entries: make(map[string]*domain.Transmission, len(transmissions)),
		known:   make(map[string]bool),
	}
	for i := range transmissions {
		tx := transmissions[i]
		s.entries[tx.ID] = &tx
	}
	return s
}

// Announce registers an id whose data will arrive later via Publish.
func (s *TransmissionSource) Announce(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[id] = true
}

// Publish makes a transmission available, resolving a prior Announce.
func (s *TransmissionSource) Publish(tx domain.Transmission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tx.ID] = &tx
	delete(s.known, tx.ID)
}

// Transmission resolves a template id.
func (s *TransmissionSource) Transmission(_ context.Context, id string) (*domain.Transmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tx, ok := s.entries[id]; ok {
		return tx, nil
	}
	if s.known[id] {
		return nil, domain.ErrTransmissionNotLoaded
	}
	return nil, fmt.Errorf("transmission not found: %s", id)
}
