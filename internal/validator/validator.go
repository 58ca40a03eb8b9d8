// Package validator checks the structural invariants of an authored
// scenario graph before a session may start.
package validator

import (
	"errors"
	"fmt"

	"github.com/airband-io/airband/pkg/domain"
)

// Report carries the non-fatal findings of a validation pass.
type Report struct {
	// Unreachable lists nodes with no path from the entry node. The engine
	// still starts from the designated entry; these are authoring warnings.
	Unreachable []string

	// Warnings lists other non-fatal ambiguities (e.g. several default
	// edges leaving one node; the router resolves the tie deterministically).
	Warnings []string
}

// ValidateGraph checks unique node ids, edge endpoint existence, and that
// every user_response node carries an expected-transmission reference the
// router's pass/fail matching can consume. It is a pure function of the
// graph; all fatal defects are collected and returned joined.
func ValidateGraph(g *domain.Graph) (*Report, error) {
	report := &Report{}
	var fatal []error

	seen := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID == "" {
			fatal = append(fatal, &domain.StructuralError{Detail: "node with empty id"})
			continue
		}
		if seen[n.ID] {
			fatal = append(fatal, &domain.DuplicateIDError{ID: n.ID})
			continue
		}
		seen[n.ID] = true

		if n.Content == nil {
			fatal = append(fatal, &domain.StructuralError{NodeID: n.ID, Detail: "node has no content"})
			continue
		}
		if n.Content.NodeType() != n.Type {
			fatal = append(fatal, &domain.StructuralError{
				NodeID: n.ID,
				Detail: fmt.Sprintf("content shape %q does not match node type %q", n.Content.NodeType(), n.Type),
			})
			continue
		}
		if c, ok := n.Content.(domain.UserResponseContent); ok && c.ExpectedTransmissionID == "" {
			fatal = append(fatal, &domain.StructuralError{
				NodeID: n.ID,
				Detail: "user_response node missing expected transmission reference",
			})
		}
	}

	defaults := make(map[string]int)
	for _, e := range g.Edges {
		if !seen[e.From] {
			fatal = append(fatal, &domain.StructuralError{
				NodeID: e.From,
				Detail: fmt.Sprintf("edge %s -> %s references unknown source node", e.From, e.To),
			})
		}
		if !seen[e.To] {
			fatal = append(fatal, &domain.StructuralError{
				NodeID: e.To,
				Detail: fmt.Sprintf("edge %s -> %s references unknown target node", e.From, e.To),
			})
		}
		switch e.Condition.Type {
		case domain.ConditionDefault:
			defaults[e.From]++
		case domain.ConditionValidationPass, domain.ConditionValidationFail, domain.ConditionCustom:
		default:
			fatal = append(fatal, &domain.StructuralError{
				NodeID: e.From,
				Detail: fmt.Sprintf("edge %s -> %s has unknown condition type %q", e.From, e.To, e.Condition.Type),
			})
		}
	}
	for from, count := range defaults {
		if count > 1 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("node %q has %d default edges; lowest priority (then declaration order) wins", from, count))
		}
	}

	if len(fatal) > 0 {
		return nil, errors.Join(fatal...)
	}

	report.Unreachable = unreachable(g)
	return report, nil
}

// unreachable crawls the adjacency structure from the entry node and
// returns every node never reached, in declaration order.
func unreachable(g *domain.Graph) []string {
	entry, ok := g.EntryNode()
	if !ok {
		return nil
	}

	visited := make(map[string]bool, len(g.Nodes))
	queue := []string{entry.ID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, e := range g.EdgesFrom(current) {
			if !visited[e.To] {
				queue = append(queue, e.To)
			}
		}
	}

	var out []string
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}
