package runtime

import (
	"context"
	"errors"

	"github.com/airband-io/airband/pkg/domain"
)

// View projects the session into its render-ready model without mutating
// it. Rendering is deterministic so the text matches what entry produced;
// a transmission whose data is still loading yields the pending
// placeholder.
func (e *Engine) View(ctx context.Context, s *domain.Session) (*domain.View, error) {
	node, ok := e.graph.Node(s.CurrentNodeID)
	if !ok {
		return nil, &domain.UnknownNodeError{ID: s.CurrentNodeID}
	}

	text, err := e.presentationText(ctx, node)
	if err != nil {
		return nil, err
	}
	return e.buildView(s, node, text), nil
}

func (e *Engine) presentationText(ctx context.Context, node *domain.Node) (string, error) {
	switch c := node.Content.(type) {
	case domain.TransmissionContent:
		tx, err := e.source.Transmission(ctx, c.TransmissionID)
		if errors.Is(err, domain.ErrTransmissionNotLoaded) {
			return PendingPlaceholder, nil
		}
		if err != nil {
			return "", err
		}
		return RenderBlocks(tx.Blocks, Resolve(e.graph.GlobalVariables, c.Variables)), nil
	case domain.CrewInteractionContent:
		return Substitute(c.Text, Resolve(e.graph.GlobalVariables, c.Variables)), nil
	case domain.SystemAlertContent:
		if c.Severity != "" {
			return c.Severity + ": " + c.Text, nil
		}
		return c.Text, nil
	case domain.EventContent:
		return c.Text, nil
	case domain.SituationContent:
		return c.Text, nil
	case domain.DecisionPointContent:
		return c.Prompt, nil
	case domain.UserResponseContent:
		return Substitute(c.Prompt, Resolve(e.graph.GlobalVariables, c.Variables)), nil
	default:
		return "", nil
	}
}

// buildView projects the session into the render-ready model handed to the
// presentation layer. The view owns copies; mutating it cannot corrupt the
// session.
func (e *Engine) buildView(s *domain.Session, node *domain.Node, text string) *domain.View {
	v := &domain.View{
		SessionID:     s.ID,
		NodeID:        s.CurrentNodeID,
		Phase:         s.Phase,
		Text:          text,
		Transcript:    s.Transcript.Clone(),
		Visited:       append([]string(nil), s.Visited...),
		AwaitingInput: s.Phase == domain.PhaseAwaitingInput,
		AwaitingAck:   s.Phase == domain.PhaseAwaitingAck,
		ChoicePending: s.Phase == domain.PhaseShowingResult,
		Evaluating:    s.Phase == domain.PhaseEvaluating,
		Complete:      s.Phase == domain.PhaseComplete,
	}

	if node != nil {
		v.NodeType = node.Type
		v.NodeName = node.Name
		switch c := node.Content.(type) {
		case domain.TransmissionContent:
			v.Role = c.Role
			v.Speaker = speakerLabel(c.Role)
		case domain.CrewInteractionContent:
			v.Role = domain.RoleCrew
			v.Speaker = c.Speaker
			if v.Speaker == "" {
				v.Speaker = speakerLabel(domain.RoleCrew)
			}
		case domain.SystemAlertContent:
			v.Role = domain.RoleSystem
			v.Speaker = speakerLabel(domain.RoleSystem)
		case domain.DecisionPointContent:
			v.Options = append([]domain.DecisionOption(nil), c.Options...)
		}
	}

	if s.Phase == domain.PhaseShowingResult && s.LastOutcome != nil {
		outcome := *s.LastOutcome
		v.Outcome = &outcome
	}
	return v
}
