package types

import "fmt"

// Location is a source coordinate used for diagnostics. Column is optional;
// zero means "unknown".
type Location struct {
	Line   int `yaml:"line" json:"line"`
	Column int `yaml:"column,omitempty" json:"column,omitempty"`
}

func (l Location) String() string {
	if l.Column > 0 {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%d", l.Line)
}
