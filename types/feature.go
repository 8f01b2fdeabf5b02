package types

// Step is one pre-parsed scenario line handed to the runner by a feature
// supplier. Text is the raw step text, never pre-matched against a pattern.
type Step struct {
	Kind     StepKind   `yaml:"kind" json:"kind"`
	Text     string     `yaml:"text" json:"text"`
	Location *Location  `yaml:"location,omitempty" json:"location,omitempty"`
	Table    *DataTable `yaml:"table,omitempty" json:"table,omitempty"`
}

// Scenario is an ordered list of steps with identity metadata.
type Scenario struct {
	Name     string    `yaml:"name" json:"name"`
	Location *Location `yaml:"location,omitempty" json:"location,omitempty"`
	Steps    []Step    `yaml:"steps" json:"steps"`
}

// Feature groups scenarios under a common name and source path.
type Feature struct {
	Name      string     `yaml:"name" json:"name"`
	Path      string     `yaml:"path,omitempty" json:"path,omitempty"`
	Location  *Location  `yaml:"location,omitempty" json:"location,omitempty"`
	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
}
