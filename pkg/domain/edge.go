package domain

// ConditionType guards when an edge becomes eligible.
type ConditionType string

const (
	// ConditionDefault matches the plain acknowledgement advance and acts
	// as the fallback when no other edge matches.
	ConditionDefault ConditionType = "default"
	// ConditionValidationPass matches a correct trainee response.
	ConditionValidationPass ConditionType = "validation_pass"
	// ConditionValidationFail matches an incorrect trainee response.
	ConditionValidationFail ConditionType = "validation_fail"
	// ConditionCustom is author bookkeeping. The router never selects it.
	ConditionCustom ConditionType = "custom"
)

// Condition is the rule attached to an edge.
type Condition struct {
	Type ConditionType `json:"type" yaml:"type" mapstructure:"type"`
	// Priority orders competing edges of the same condition type; the
	// numerically lowest wins.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty" mapstructure:"priority"`
}

// Edge is a directed transition between two nodes.
type Edge struct {
	From      string    `json:"from" yaml:"from" mapstructure:"from"`
	To        string    `json:"to" yaml:"to" mapstructure:"to"`
	Condition Condition `json:"condition" yaml:"condition" mapstructure:"condition"`

	// Label and Feedback are display text for authoring tools and result
	// screens. The engine carries them without interpreting them.
	Label    string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Feedback string `json:"feedback,omitempty" yaml:"feedback,omitempty" mapstructure:"feedback"`
}
