// Package file loads authored scenario documents from disk.
//
// A scenario document is a single YAML (or JSON; YAML is a superset) file
// carrying the graph plus its transmission library. The loader parses and
// indexes every document in a directory; structural validation stays with
// the engine.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/airband-io/airband/pkg/domain"
)

// Document is the on-disk shape of one scenario.
type Document struct {
	ID              string                `yaml:"id"`
	Name            string                `yaml:"name"`
	GlobalVariables map[string]string     `yaml:"global_variables"`
	Nodes           []NodeDoc             `yaml:"nodes"`
	Edges           []domain.Edge         `yaml:"edges"`
	Transmissions   []domain.Transmission `yaml:"transmissions"`
}

// NodeDoc defers content decoding until the type discriminator is known.
type NodeDoc struct {
	ID       string            `yaml:"id"`
	Type     domain.NodeType   `yaml:"type"`
	Name     string            `yaml:"name"`
	Content  map[string]any    `yaml:"content"`
	Metadata map[string]string `yaml:"metadata"`
}

// Source implements ports.GraphSource and ports.TransmissionSource over a
// directory of scenario documents.
type Source struct {
	dir string

	mu            sync.RWMutex
	graphs        map[string]*domain.Graph
	transmissions map[string]*domain.Transmission
}

// New scans dir for scenario documents and indexes them.
func New(dir string) (*Source, error) {
	s := &Source{
		dir:           dir,
		graphs:        make(map[string]*domain.Graph),
		transmissions: make(map[string]*domain.Transmission),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rescans the directory, replacing the index.
func (s *Source) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read scenario dir: %w", err)
	}

	graphs := make(map[string]*domain.Graph)
	transmissions := make(map[string]*domain.Transmission)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		doc, err := ParseDocument(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		graph, txs, err := doc.Build()
		if err != nil {
			return fmt.Errorf("build %s: %w", path, err)
		}
		if graph.ID == "" {
			graph.ID = strings.TrimSuffix(entry.Name(), ext)
		}
		graphs[graph.ID] = graph
		for i := range txs {
			transmissions[txs[i].ID] = &txs[i]
		}
	}

	s.mu.Lock()
	s.graphs = graphs
	s.transmissions = transmissions
	s.mu.Unlock()
	return nil
}

// ParseDocument decodes a raw scenario document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Build converts the document into a domain graph and its transmissions.
func (d *Document) Build() (*domain.Graph, []domain.Transmission, error) {
	g := &domain.Graph{
		ID:              d.ID,
		Name:            d.Name,
		GlobalVariables: d.GlobalVariables,
		Edges:           d.Edges,
	}
	for _, nd := range d.Nodes {
		content, err := decodeNodeContent(nd.Type, nd.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("node %q: %w", nd.ID, err)
		}
		g.Nodes = append(g.Nodes, domain.Node{
			ID:       nd.ID,
			Type:     nd.Type,
			Name:     nd.Name,
			Content:  content,
			Metadata: nd.Metadata,
		})
	}
	return g, d.Transmissions, nil
}

// LoadGraph implements ports.GraphSource.
func (s *Source) LoadGraph(_ context.Context, id string) (*domain.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.graphs[id]
	if !ok {
		return nil, fmt.Errorf("graph not found: %s", id)
	}
	return g, nil
}

// ListGraphs implements ports.GraphSource.
func (s *Source) ListGraphs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.graphs))
	for id := range s.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Transmission implements ports.TransmissionSource.
func (s *Source) Transmission(_ context.Context, id string) (*domain.Transmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transmissions[id]
	if !ok {
		return nil, fmt.Errorf("transmission not found: %s", id)
	}
	return tx, nil
}

// decodeNodeContent maps the generic content map into the typed variant.
// mapstructure handles the YAML-typical map[string]any input.
func decodeNodeContent(t domain.NodeType, raw map[string]any) (domain.Content, error) {
	if raw == nil {
		return nil, fmt.Errorf("missing content")
	}

	switch t {
	case domain.NodeTransmission:
		return decodeAs[domain.TransmissionContent](raw)
	case domain.NodeSituation:
		return decodeAs[domain.SituationContent](raw)
	case domain.NodeUserResponse:
		return decodeAs[domain.UserResponseContent](raw)
	case domain.NodeEvent:
		return decodeAs[domain.EventContent](raw)
	case domain.NodeDecisionPoint:
		return decodeAs[domain.DecisionPointContent](raw)
	case domain.NodeCrewInteraction:
		return decodeAs[domain.CrewInteractionContent](raw)
	case domain.NodeSystemAlert:
		return decodeAs[domain.SystemAlertContent](raw)
	default:
		return nil, fmt.Errorf("unknown node type: %q", t)
	}
}

func decodeAs[T domain.Content](raw map[string]any) (domain.Content, error) {
	var c T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return c, nil
}
