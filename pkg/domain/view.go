package domain

// View is the render-ready projection handed to the presentation layer
// after every transition. It carries everything a UI needs without exposing
// the session internals for mutation.
type View struct {
	SessionID string   `json:"session_id"`
	NodeID    string   `json:"node_id"`
	NodeType  NodeType `json:"node_type,omitempty"`
	NodeName  string   `json:"node_name,omitempty"`
	Phase     Phase    `json:"phase"`

	// Text is the rendered content of the current node. While transmission
	// data is loading it holds the well-known pending placeholder.
	Text string `json:"text,omitempty"`

	// Speaker and Role describe who delivers Text, when it is spoken.
	Speaker string `json:"speaker,omitempty"`
	Role    Role   `json:"role,omitempty"`

	// Options lists decision point choices, informational only.
	Options []DecisionOption `json:"options,omitempty"`

	Transcript Transcript `json:"transcript"`

	// Visited enables rewind affordances.
	Visited []string `json:"visited"`

	// AwaitingInput is true while the trainee's radio call is expected.
	AwaitingInput bool `json:"awaiting_input"`
	// AwaitingAck is true while an explicit continue is required.
	AwaitingAck bool `json:"awaiting_ack"`
	// ChoicePending is true while a continue/retry decision is required.
	ChoicePending bool `json:"choice_pending"`
	// Evaluating is true while a validation call is in flight.
	Evaluating bool `json:"evaluating"`
	Complete   bool `json:"complete"`

	// Outcome holds the last accepted validation outcome while the
	// continue/retry choice is pending.
	Outcome *ValidationOutcome `json:"outcome,omitempty"`
}
