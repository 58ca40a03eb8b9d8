package domain

import (
	"encoding/json"
	"fmt"
)

// NodeType defines the control flow behavior of a node.
type NodeType string

const (
	// NodeTransmission presents an ATC transmission rendered from a template.
	NodeTransmission NodeType = "transmission"
	// NodeSituation presents free-text situational context.
	NodeSituation NodeType = "situation"
	// NodeUserResponse halts and waits for the trainee's radio call.
	NodeUserResponse NodeType = "user_response"
	// NodeEvent presents a narrative event (weather change, traffic, etc).
	NodeEvent NodeType = "event"
	// NodeDecisionPoint presents author-defined options. Branching still
	// flows through edges; the options are informational.
	NodeDecisionPoint NodeType = "decision_point"
	// NodeCrewInteraction presents a message from the flight crew.
	NodeCrewInteraction NodeType = "crew_interaction"
	// NodeSystemAlert presents an aircraft system alert.
	NodeSystemAlert NodeType = "system_alert"
)

// Role identifies who is speaking in a transmission or transcript entry.
type Role string

const (
	RoleATC    Role = "atc"
	RolePilot  Role = "pilot"
	RoleCrew   Role = "crew"
	RoleSystem Role = "system"
)

// Content is the closed set of per-type node payloads. Exactly one concrete
// type exists per NodeType, so rendering and routing match exhaustively and
// adding a node type is a compile-time-checked change.
type Content interface {
	NodeType() NodeType
}

// TransmissionContent references a transmission template spoken by an actor.
type TransmissionContent struct {
	TransmissionID string            `json:"transmission_id" yaml:"transmission_id" mapstructure:"transmission_id"`
	Role           Role              `json:"role" yaml:"role" mapstructure:"role"`
	Variables      map[string]string `json:"variables,omitempty" yaml:"variables,omitempty" mapstructure:"variables"`
}

// SituationContent carries free situational text.
type SituationContent struct {
	Text string `json:"text" yaml:"text" mapstructure:"text"`
}

// UserResponseContent references the transmission the trainee is expected
// to produce, consumed later by the validation collaborator.
type UserResponseContent struct {
	ExpectedTransmissionID string            `json:"expected_transmission_id" yaml:"expected_transmission_id" mapstructure:"expected_transmission_id"`
	Prompt                 string            `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`
	Variables              map[string]string `json:"variables,omitempty" yaml:"variables,omitempty" mapstructure:"variables"`
}

// EventContent carries free narrative text.
type EventContent struct {
	Text string `json:"text" yaml:"text" mapstructure:"text"`
}

// DecisionOption is one author-defined choice on a decision point.
type DecisionOption struct {
	Label  string `json:"label" yaml:"label" mapstructure:"label"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty" mapstructure:"detail"`
}

// DecisionPointContent lists author-defined options.
type DecisionPointContent struct {
	Prompt  string           `json:"prompt" yaml:"prompt" mapstructure:"prompt"`
	Options []DecisionOption `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

// CrewInteractionContent carries a crew message, optionally templated.
type CrewInteractionContent struct {
	Speaker   string            `json:"speaker,omitempty" yaml:"speaker,omitempty" mapstructure:"speaker"`
	Text      string            `json:"text" yaml:"text" mapstructure:"text"`
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty" mapstructure:"variables"`
}

// SystemAlertContent carries an aircraft system alert.
type SystemAlertContent struct {
	Severity string `json:"severity,omitempty" yaml:"severity,omitempty" mapstructure:"severity"`
	Text     string `json:"text" yaml:"text" mapstructure:"text"`
}

func (TransmissionContent) NodeType() NodeType    { return NodeTransmission }
func (SituationContent) NodeType() NodeType       { return NodeSituation }
func (UserResponseContent) NodeType() NodeType    { return NodeUserResponse }
func (EventContent) NodeType() NodeType           { return NodeEvent }
func (DecisionPointContent) NodeType() NodeType   { return NodeDecisionPoint }
func (CrewInteractionContent) NodeType() NodeType { return NodeCrewInteraction }
func (SystemAlertContent) NodeType() NodeType     { return NodeSystemAlert }

// Node represents a single step in a scenario graph.
type Node struct {
	ID   string
	Type NodeType
	Name string

	// Content holds the payload matching Type. Never nil on a validated graph.
	Content Content

	// Metadata carries opaque authoring data (e.g. canvas position).
	// The engine stores it but never interprets it.
	Metadata map[string]string
}

// nodeEnvelope is the wire shape of a Node. Content is decoded in a second
// pass once the type discriminator is known.
type nodeEnvelope struct {
	ID       string            `json:"id"`
	Type     NodeType          `json:"type"`
	Name     string            `json:"name,omitempty"`
	Content  json.RawMessage   `json:"content,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// DecodeContent unmarshals raw JSON into the content variant for t.
func DecodeContent(t NodeType, raw []byte) (Content, error) {
	switch t {
	case NodeTransmission:
		var c TransmissionContent
		return c, json.Unmarshal(raw, &c)
	case NodeSituation:
		var c SituationContent
		return c, json.Unmarshal(raw, &c)
	case NodeUserResponse:
		var c UserResponseContent
		return c, json.Unmarshal(raw, &c)
	case NodeEvent:
		var c EventContent
		return c, json.Unmarshal(raw, &c)
	case NodeDecisionPoint:
		var c DecisionPointContent
		return c, json.Unmarshal(raw, &c)
	case NodeCrewInteraction:
		var c CrewInteractionContent
		return c, json.Unmarshal(raw, &c)
	case NodeSystemAlert:
		var c SystemAlertContent
		return c, json.Unmarshal(raw, &c)
	default:
		return nil, fmt.Errorf("unknown node type: %q", t)
	}
}

// UnmarshalJSON decodes the envelope, then the content variant selected by
// the type discriminator.
func (n *Node) UnmarshalJSON(data []byte) error {
	var env nodeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	n.ID = env.ID
	n.Type = env.Type
	n.Name = env.Name
	n.Metadata = env.Metadata
	n.Content = nil

	if len(env.Content) == 0 || string(env.Content) == "null" {
		return nil
	}

	content, err := DecodeContent(env.Type, env.Content)
	if err != nil {
		return fmt.Errorf("node %q: %w", env.ID, err)
	}
	n.Content = content
	return nil
}

// MarshalJSON encodes the node with its content under the envelope shape.
func (n Node) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	if n.Content != nil {
		b, err := json.Marshal(n.Content)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(nodeEnvelope{
		ID:       n.ID,
		Type:     n.Type,
		Name:     n.Name,
		Content:  raw,
		Metadata: n.Metadata,
	})
}
