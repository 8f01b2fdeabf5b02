// Package plan loads run plans: pre-parsed features whose scenarios carry
// plain step texts with kinds, source locations and optional data tables.
// A plan file is not a gherkin document; parsing feature files into this
// shape is somebody else's job.
package plan

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/specstream/specstream/types"
)

// document is the on-disk shape of a plan file.
type document struct {
	Features []featurePlan `yaml:"features"`
}

type featurePlan struct {
	Name      string          `yaml:"name"`
	Path      string          `yaml:"path,omitempty"`
	Location  *types.Location `yaml:"location,omitempty"`
	Scenarios []scenarioPlan  `yaml:"scenarios"`
}

type scenarioPlan struct {
	Name     string          `yaml:"name"`
	Location *types.Location `yaml:"location,omitempty"`
	Steps    []stepPlan      `yaml:"steps"`
}

type stepPlan struct {
	Kind     string           `yaml:"kind"`
	Text     string           `yaml:"text"`
	Location *types.Location  `yaml:"location,omitempty"`
	Table    *types.DataTable `yaml:"table,omitempty"`
}

// Load reads and validates a plan file.
func Load(path string) ([]types.Feature, error) {
	log.Debug("Reading plan file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return Parse(data)
}

// Parse decodes plan YAML and converts it into the runner's input model.
func Parse(data []byte) ([]types.Feature, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}
	if len(doc.Features) == 0 {
		return nil, fmt.Errorf("plan contains no features")
	}

	features := make([]types.Feature, 0, len(doc.Features))
	for fi, fp := range doc.Features {
		if fp.Name == "" {
			return nil, fmt.Errorf("feature %d has no name", fi)
		}
		feature := types.Feature{
			Name:     fp.Name,
			Path:     fp.Path,
			Location: fp.Location,
		}
		for si, sp := range fp.Scenarios {
			if sp.Name == "" {
				return nil, fmt.Errorf("feature %q: scenario %d has no name", fp.Name, si)
			}
			scenario := types.Scenario{
				Name:     sp.Name,
				Location: sp.Location,
			}
			for ti, tp := range sp.Steps {
				step, err := convertStep(tp)
				if err != nil {
					return nil, fmt.Errorf("feature %q, scenario %q, step %d: %w", fp.Name, sp.Name, ti, err)
				}
				scenario.Steps = append(scenario.Steps, step)
			}
			feature.Scenarios = append(feature.Scenarios, scenario)
		}
		features = append(features, feature)
	}
	return features, nil
}

func convertStep(sp stepPlan) (types.Step, error) {
	kind, err := types.ParseStepKind(sp.Kind)
	if err != nil {
		return types.Step{}, err
	}
	if sp.Text == "" {
		return types.Step{}, fmt.Errorf("step has no text")
	}
	if sp.Table != nil {
		for i, row := range sp.Table.Rows {
			if len(row) == 0 {
				return types.Step{}, fmt.Errorf("table row %d is empty", i)
			}
		}
	}
	return types.Step{
		Kind:     kind,
		Text:     sp.Text,
		Location: sp.Location,
		Table:    sp.Table,
	}, nil
}
