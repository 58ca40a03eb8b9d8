package domain

// Block is one ordered fragment of a transmission template. Text may
// contain {{variable}} placeholders.
type Block struct {
	Order int    `json:"order" yaml:"order" mapstructure:"order"`
	Text  string `json:"text" yaml:"text" mapstructure:"text"`
}

// Transmission is an author-defined radio call: ordered block templates
// plus the actor role that delivers it.
type Transmission struct {
	ID     string  `json:"id" yaml:"id" mapstructure:"id"`
	Role   Role    `json:"role" yaml:"role" mapstructure:"role"`
	Blocks []Block `json:"blocks" yaml:"blocks" mapstructure:"blocks"`
}
