package runtime

import (
	"sort"

	"github.com/airband-io/airband/pkg/domain"
)

// Route selects the next node given the current node and an advance event.
//
// Selection is deterministic: edges whose condition type exactly equals the
// event win first; with no exact match the default edge is the fallback.
// Within a tier the numerically lowest priority wins, and equal priorities
// keep declaration order (stable sort). Custom-typed edges are author
// bookkeeping and are never matched automatically.
//
// The second return is false when no edge matches at all: the session is
// complete. That is a normal terminal condition, not a failure.
func Route(g *domain.Graph, fromID string, event domain.AdvanceEvent) (string, bool) {
	if event == domain.AdvanceJump {
		// Jumps are session navigation; they never flow through edges.
		return "", false
	}

	outgoing := g.EdgesFrom(fromID)

	if next, ok := pick(outgoing, domain.ConditionType(event)); ok {
		return next, true
	}
	if event != domain.AdvanceDefault {
		if next, ok := pick(outgoing, domain.ConditionDefault); ok {
			return next, true
		}
	}
	return "", false
}

func pick(edges []domain.Edge, t domain.ConditionType) (string, bool) {
	if t == domain.ConditionCustom {
		return "", false
	}
	var matches []domain.Edge
	for _, e := range edges {
		if e.Condition.Type == t {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Condition.Priority < matches[j].Condition.Priority
	})
	return matches[0].To, true
}
